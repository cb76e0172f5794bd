package domain

import (
	"strings"
	"time"
)

// SyncStatus represents where a recording is in the upload lifecycle
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

// DataType identifies which processing stage a recording captured
type DataType string

const (
	DataTypeRaw      DataType = "raw"
	DataTypeFiltered DataType = "filtered"
	DataTypeRMS      DataType = "rms"
)

// ValidDataType reports whether s names a known data type.
func ValidDataType(s string) bool {
	switch DataType(s) {
	case DataTypeRaw, DataTypeFiltered, DataTypeRMS:
		return true
	}
	return false
}

// Session groups the recordings captured in one sitting
type Session struct {
	ID         string     `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	SyncStatus SyncStatus `json:"sync_status" db:"sync_status"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Recording is one captured data file plus its storage-location state.
//
// LocalPath and RemoteURL are the two possible homes for the content.
// A recording starts with only LocalPath set; a completed sync leaves
// only RemoteURL set. Both may be set during the sync handoff, but once
// content exists they are never both absent.
type Recording struct {
	ID              string     `json:"id" db:"id"`
	SessionID       string     `json:"session_id" db:"session_id"`
	Filename        string     `json:"filename" db:"filename"`
	DurationSeconds float64    `json:"duration_seconds" db:"duration_seconds"`
	SampleCount     int64      `json:"sample_count" db:"sample_count"`
	DataType        DataType   `json:"data_type" db:"data_type"`
	SampleRate      float64    `json:"sample_rate" db:"sample_rate"`
	SyncStatus      SyncStatus `json:"sync_status" db:"sync_status"`
	LocalPath       *string    `json:"local_path,omitempty" db:"local_path"`
	RemoteURL       *string    `json:"remote_url,omitempty" db:"remote_url"`
	RetryCount      int        `json:"retry_count" db:"retry_count"`
	Error           *string    `json:"error,omitempty" db:"error"`
	RecordedAt      time.Time  `json:"recorded_at" db:"recorded_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// HasLocalPath reports whether the recording still holds a local copy reference.
func (r *Recording) HasLocalPath() bool {
	return r.LocalPath != nil && *r.LocalPath != ""
}

// HasRemoteURL reports whether the recording has been assigned a remote location.
func (r *Recording) HasRemoteURL() bool {
	return r.RemoteURL != nil && *r.RemoteURL != ""
}

// IsRemoteURLString reports whether s looks like a network URL rather than
// a filesystem path. Used by the legacy repair and by input validation;
// the location columns themselves are kept apart by construction.
func IsRemoteURLString(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
