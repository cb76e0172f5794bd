package export

import (
	"context"
	"fmt"

	"github.com/emberlab/emgsync/internal/constants"
	"github.com/emberlab/emgsync/internal/logger"
	"github.com/emberlab/emgsync/internal/store"
	"github.com/emberlab/emgsync/internal/storage"
	"github.com/emberlab/emgsync/internal/syncer"
)

// ExportFile is one entry of a session export.
type ExportFile struct {
	Name    string
	Content string
}

// Exporter assembles the contents of a session for packaging. Each
// recording is resolved under the same per-id lock the sync worker
// uses, so an export never reads a location change mid-sequence.
type Exporter struct {
	store    *store.DB
	resolver *Resolver
	guard    *syncer.Guard
	log      *logger.Logger
}

func NewExporter(db *store.DB, resolver *Resolver, guard *syncer.Guard, log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.Default()
	}
	return &Exporter{
		store:    db,
		resolver: resolver,
		guard:    guard,
		log:      log.WithComponent("exporter"),
	}
}

// ExportSession resolves every recording of the session, oldest first.
func (e *Exporter) ExportSession(ctx context.Context, sessionID string) ([]ExportFile, error) {
	if _, err := e.store.GetSession(sessionID); err != nil {
		return nil, err
	}

	recs, err := e.store.ListRecordingsBySession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings for session %s: %w", sessionID, err)
	}

	files := make([]ExportFile, 0, len(recs))
	seen := make(map[string]int)

	for _, rec := range recs {
		unlock := e.guard.Lock(rec.ID)

		// Fetch again under the lock; a sync pass may have moved the
		// content between the listing and now.
		current, err := e.store.GetRecording(rec.ID)
		if err != nil {
			unlock()
			return nil, err
		}
		content := e.resolver.Resolve(ctx, current)
		unlock()

		files = append(files, ExportFile{
			Name:    exportName(current.Filename, current.ID, seen),
			Content: content,
		})
	}

	return files, nil
}

func exportName(filename, id string, seen map[string]int) string {
	name := storage.Sanitize(filename)
	if name == "" {
		name = id + constants.ExtCSV
	}
	seen[name]++
	if n := seen[name]; n > 1 {
		name = fmt.Sprintf("%d-%s", n, name)
	}
	return name
}
