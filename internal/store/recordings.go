package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emberlab/emgsync/internal/domain"
)

var (
	ErrRecordingNotFound = errors.New("recording not found")
	ErrSessionNotFound   = errors.New("session not found")
)

// CreateRecording inserts a new recording. New recordings are unsynced
// by definition: sync_status is forced to pending and remote_url to
// NULL no matter what the caller filled in.
func (db *DB) CreateRecording(rec *domain.Recording) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.SyncStatus = domain.SyncStatusPending
	rec.RemoteURL = nil
	rec.RetryCount = 0
	rec.Error = nil

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = now
	}

	query := `INSERT INTO recordings (
		id, session_id, filename, duration_seconds, sample_count, data_type, sample_rate,
		sync_status, local_path, remote_url, retry_count, error,
		recorded_at, created_at, updated_at
	) VALUES (
		:id, :session_id, :filename, :duration_seconds, :sample_count, :data_type, :sample_rate,
		:sync_status, :local_path, :remote_url, :retry_count, :error,
		:recorded_at, :created_at, :updated_at
	)`

	if _, err := db.NamedExec(query, rec); err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}
	return nil
}

func (db *DB) GetRecording(id string) (*domain.Recording, error) {
	var rec domain.Recording
	err := db.Get(&rec, `SELECT * FROM recordings WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recording %s: %w", id, err)
	}
	return &rec, nil
}

func (db *DB) ListRecordings() ([]*domain.Recording, error) {
	query := `SELECT * FROM recordings ORDER BY created_at ASC`
	return selectRecordings(db, query)
}

func (db *DB) ListRecordingsBySession(sessionID string) ([]*domain.Recording, error) {
	query := `SELECT * FROM recordings WHERE session_id = ? ORDER BY recorded_at ASC`
	return selectRecordings(db, query, sessionID)
}

// ListPendingWithSyncedSession returns the sync worklist: pending
// recordings whose owning session has already been synced.
func (db *DB) ListPendingWithSyncedSession() ([]*domain.Recording, error) {
	query := `SELECT r.* FROM recordings r
		JOIN sessions s ON s.id = r.session_id
		WHERE r.sync_status = 'pending' AND s.sync_status = 'synced'
		ORDER BY r.recorded_at ASC`
	return selectRecordings(db, query)
}

// ListFailedWithSyncedSession returns failed recordings eligible for a
// re-attempt. Only consulted when resyncing failed uploads is enabled.
func (db *DB) ListFailedWithSyncedSession() ([]*domain.Recording, error) {
	query := `SELECT r.* FROM recordings r
		JOIN sessions s ON s.id = r.session_id
		WHERE r.sync_status = 'failed' AND s.sync_status = 'synced'
		ORDER BY r.recorded_at ASC`
	return selectRecordings(db, query)
}

// UpdateRecordingLocation applies a tagged partial update to the
// location and status columns. All touched columns change in a single
// UPDATE, so one call is one atomic commit point.
func (db *DB) UpdateRecordingLocation(id string, upd domain.LocationUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	setClauses := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	appendField := func(col string, f domain.Field) {
		switch {
		case f.IsKeep():
		case f.IsClear():
			setClauses = append(setClauses, col+" = NULL")
		default:
			setClauses = append(setClauses, col+" = ?")
			args = append(args, f.Value())
		}
	}

	appendField("local_path", upd.LocalPath)
	appendField("remote_url", upd.RemoteURL)
	appendField("sync_status", upd.SyncStatus)
	appendField("error", upd.Error)

	args = append(args, time.Now().UTC(), id)
	query := fmt.Sprintf("UPDATE recordings SET %s, updated_at = ? WHERE id = ?", strings.Join(setClauses, ", "))

	result, err := db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update recording %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordingNotFound
	}
	return nil
}

func (db *DB) IncrementRetryCount(id string) error {
	result, err := db.Exec(`UPDATE recordings SET retry_count = retry_count + 1, updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to increment retry count for %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordingNotFound
	}
	return nil
}

// MarkRecordingFailed records a terminal sync failure. The local copy
// reference is left in place so the content survives.
func (db *DB) MarkRecordingFailed(id string, errMsg string) error {
	return db.UpdateRecordingLocation(id, domain.LocationUpdate{
		SyncStatus: domain.Set(string(domain.SyncStatusFailed)),
		Error:      domain.Set(errMsg),
	})
}

func selectRecordings(q sqlx.Queryer, query string, args ...interface{}) ([]*domain.Recording, error) {
	var recs []*domain.Recording
	err := sqlx.Select(q, &recs, query, args...)
	return recs, err
}
