// Package export materializes recording content for shareable session
// archives. Resolution is total: every recording yields a string, even
// if it is only a diagnostic line explaining what went wrong.
package export

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/emberlab/emgsync/internal/domain"
	"github.com/emberlab/emgsync/internal/logger"
	"github.com/emberlab/emgsync/internal/storage"
	"github.com/emberlab/emgsync/internal/transport"
)

// Placeholder lines embedded in exported output when the actual content
// cannot be produced. Callers treat these as valid, degraded content.
const (
	PlaceholderRemoteError = "# Failed to download recording from server"
	PlaceholderOffline     = "# Recording data is on server (offline)"
	PlaceholderNoData      = "# No recording data available"
)

// Resolver produces a recording's content from its current location
// fields: local copy first, remote fallback second, placeholder last.
type Resolver struct {
	transport  transport.BlobTransport
	scratchDir string
	log        *logger.Logger
}

func NewResolver(bt transport.BlobTransport, scratchDir string, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Default()
	}
	return &Resolver{
		transport:  bt,
		scratchDir: scratchDir,
		log:        log.WithComponent("resolver"),
	}
}

// Resolve returns the recording's content, or one of the placeholder
// lines. It never returns an error: a failed resolution is degraded
// content, not a failure of the export.
func (r *Resolver) Resolve(ctx context.Context, rec *domain.Recording) string {
	log := r.log.WithRecording(rec.ID, rec.Filename)

	if rec.HasLocalPath() {
		if storage.Exists(*rec.LocalPath) {
			data, err := storage.ReadFile(*rec.LocalPath)
			if err == nil {
				return string(data)
			}
			log.Warn("failed to read local copy", "path", *rec.LocalPath, "error", err)
		}
		// Missing or unreadable local file is not terminal; the
		// content may have moved to the server already.
	}

	if !rec.HasRemoteURL() {
		return PlaceholderNoData
	}

	return r.resolveRemote(ctx, rec, log)
}

func (r *Resolver) resolveRemote(ctx context.Context, rec *domain.Recording, log *logger.Logger) string {
	scratch := storage.ScratchPath(r.scratchDir, filepath.Ext(rec.Filename))

	// The scratch file must not outlive resolution on any path,
	// including read failures after a successful download.
	defer func() {
		if err := storage.RemoveIfExists(scratch); err != nil {
			log.Warn("failed to remove scratch file", "path", scratch, "error", err)
		}
	}()

	outcome, err := r.transport.Download(ctx, *rec.RemoteURL, scratch)
	if err != nil {
		var remoteErr *transport.RemoteError
		if errors.As(err, &remoteErr) {
			log.Warn("server refused download", "status", outcome.StatusCode)
			return PlaceholderRemoteError
		}
		log.Warn("server unreachable for download", "error", err)
		return PlaceholderOffline
	}

	data, err := storage.ReadFile(scratch)
	if err != nil {
		log.Warn("failed to read downloaded content", "error", err)
		return PlaceholderRemoteError
	}
	return string(data)
}
