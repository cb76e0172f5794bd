// Package syncer moves pending recordings to the blob store without
// ever leaving a recording with no retrievable copy.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emberlab/emgsync/internal/constants"
	"github.com/emberlab/emgsync/internal/domain"
	"github.com/emberlab/emgsync/internal/logger"
	"github.com/emberlab/emgsync/internal/store"
	"github.com/emberlab/emgsync/internal/transport"
)

// Coordinator runs the upload sequence for one recording at a time:
//
//	upload -> persist remote_url -> best-effort local delete -> clear local_path
//
// The remote URL is persisted strictly before the local path is
// cleared. A crash anywhere in between leaves both set, which the
// resolver tolerates; there is no point where neither is set.
type Coordinator struct {
	store      *store.DB
	transport  transport.BlobTransport
	guard      *Guard
	log        *logger.Logger
	maxRetries int
}

func NewCoordinator(db *store.DB, bt transport.BlobTransport, guard *Guard, log *logger.Logger, maxRetries int) *Coordinator {
	if log == nil {
		log = logger.Default()
	}
	if guard == nil {
		guard = NewGuard()
	}
	if maxRetries < 1 {
		maxRetries = constants.DefaultUploadRetries
	}
	return &Coordinator{
		store:      db,
		transport:  bt,
		guard:      guard,
		log:        log.WithComponent("syncer"),
		maxRetries: maxRetries,
	}
}

// Guard exposes the per-id lock so export resolution can serialize
// against in-flight syncs.
func (c *Coordinator) Guard() *Guard {
	return c.guard
}

// SyncRecording drives one recording through the upload sequence.
// Upload failures are absorbed into the failed status and do not come
// back as errors; only store failures do.
func (c *Coordinator) SyncRecording(ctx context.Context, rec *domain.Recording) error {
	unlock := c.guard.Lock(rec.ID)
	defer unlock()

	// Re-read under the lock; the row may have moved on since the
	// worklist was selected.
	current, err := c.store.GetRecording(rec.ID)
	if err != nil {
		return err
	}
	if current.SyncStatus == domain.SyncStatusSynced {
		return nil
	}

	log := c.log.WithRecording(current.ID, current.Filename)

	remoteURL := ""
	if current.HasRemoteURL() {
		// A previous run crashed after the remote URL was persisted.
		// The upload already happened; resume at cleanup.
		remoteURL = *current.RemoteURL
		log.Info("resuming interrupted sync", "remote_url", remoteURL)
	} else {
		if !current.HasLocalPath() {
			return fmt.Errorf("recording %s has no local path to upload", current.ID)
		}

		loc, err := c.uploadWithRetries(ctx, current, log)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			// Retries exhausted. The local copy stays; the content is
			// never lost to a failed upload.
			log.Warn("upload failed, marking recording failed", "error", err)
			return c.store.MarkRecordingFailed(current.ID, err.Error())
		}
		remoteURL = loc.URL

		// Persist the remote location before anything touches the
		// local copy. Both fields are set from here until the clear.
		err = c.store.UpdateRecordingLocation(current.ID, domain.LocationUpdate{
			RemoteURL: domain.Set(remoteURL),
		})
		if err != nil {
			return err
		}
	}

	if current.HasLocalPath() {
		// Local storage reclamation is best-effort. A leftover file
		// wastes space but loses nothing.
		if err := c.transport.DeleteLocal(*current.LocalPath); err != nil {
			log.Warn("failed to delete local copy", "path", *current.LocalPath, "error", err)
		}
	}

	err = c.store.UpdateRecordingLocation(current.ID, domain.LocationUpdate{
		LocalPath:  domain.Clear(),
		SyncStatus: domain.Set(string(domain.SyncStatusSynced)),
		Error:      domain.Clear(),
	})
	if err != nil {
		return err
	}

	log.Info("recording synced", "remote_url", remoteURL)
	return nil
}

func (c *Coordinator) uploadWithRetries(ctx context.Context, rec *domain.Recording, log *logger.Logger) (transport.RemoteLocation, error) {
	meta := transport.UploadMetadata{
		RecordingID: rec.ID,
		SessionID:   rec.SessionID,
		Filename:    rec.Filename,
		DataType:    string(rec.DataType),
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return transport.RemoteLocation{}, ctx.Err()
		default:
		}

		loc, err := c.transport.Upload(ctx, *rec.LocalPath, meta)
		if err == nil {
			return loc, nil
		}
		lastErr = err

		if incErr := c.store.IncrementRetryCount(rec.ID); incErr != nil {
			log.Error("failed to record retry attempt", "error", incErr)
		}
		log.Warn("upload attempt failed", "attempt", attempt, "max", c.maxRetries, "error", err)

		if attempt < c.maxRetries {
			timer := time.NewTimer(time.Duration(attempt) * constants.DefaultRetryBase)
			select {
			case <-ctx.Done():
				timer.Stop()
				return transport.RemoteLocation{}, ctx.Err()
			case <-timer.C:
			}
		}
	}
	return transport.RemoteLocation{}, fmt.Errorf("upload failed after %d attempts: %w", c.maxRetries, lastErr)
}
