package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emberlab/emgsync/internal/domain"
)

func (db *DB) CreateSession(s *domain.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.SyncStatus == "" {
		s.SyncStatus = domain.SyncStatusPending
	}

	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.StartedAt.IsZero() {
		s.StartedAt = now
	}

	query := `INSERT INTO sessions (id, name, sync_status, started_at, created_at, updated_at)
		VALUES (:id, :name, :sync_status, :started_at, :created_at, :updated_at)`

	if _, err := db.NamedExec(query, s); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (db *DB) GetSession(id string) (*domain.Session, error) {
	var s domain.Session
	err := db.Get(&s, `SELECT * FROM sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return &s, nil
}

func (db *DB) ListSessions() ([]*domain.Session, error) {
	var sessions []*domain.Session
	err := db.Select(&sessions, `SELECT * FROM sessions ORDER BY started_at DESC`)
	return sessions, err
}

func (db *DB) UpdateSessionSyncStatus(id string, status domain.SyncStatus) error {
	result, err := db.Exec(`UPDATE sessions SET sync_status = ?, updated_at = ? WHERE id = ?`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}
