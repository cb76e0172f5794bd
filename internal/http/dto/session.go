package dto

import (
	"time"

	"github.com/emberlab/emgsync/internal/domain"
)

type SessionCreateRequest struct {
	Name      string  `form:"name"`
	StartedAt *string `form:"started_at"`
}

func (r *SessionCreateRequest) Validate() []ValidationError {
	var errs []ValidationError

	if r.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "name is required"})
	}
	if r.StartedAt != nil && *r.StartedAt != "" {
		if _, err := time.Parse(time.RFC3339, *r.StartedAt); err != nil {
			errs = append(errs, ValidationError{Field: "started_at", Message: "invalid timestamp (expected RFC 3339)"})
		}
	}

	return errs
}

func (r *SessionCreateRequest) ToSession() *domain.Session {
	s := &domain.Session{Name: r.Name}
	if r.StartedAt != nil && *r.StartedAt != "" {
		if ts, err := time.Parse(time.RFC3339, *r.StartedAt); err == nil {
			s.StartedAt = ts
		}
	}
	return s
}

type SessionSyncStatusRequest struct {
	SyncStatus string `form:"sync_status"`
}

func (r *SessionSyncStatusRequest) Validate() []ValidationError {
	switch domain.SyncStatus(r.SyncStatus) {
	case domain.SyncStatusPending, domain.SyncStatusSynced, domain.SyncStatusFailed:
		return nil
	}
	return []ValidationError{{Field: "sync_status", Message: "must be one of: pending, synced, failed"}}
}
