package dto

import (
	"time"

	"github.com/emberlab/emgsync/internal/domain"
)

type RecordingCreateRequest struct {
	SessionID       string   `form:"session_id"`
	Filename        string   `form:"filename"`
	DurationSeconds *float64 `form:"duration_seconds"`
	SampleCount     *int64   `form:"sample_count"`
	DataType        string   `form:"data_type"`
	SampleRate      *float64 `form:"sample_rate"`
	LocalPath       string   `form:"local_path"`
	RecordedAt      *string  `form:"recorded_at"`
}

func (r *RecordingCreateRequest) Validate() []ValidationError {
	var errs []ValidationError

	if r.SessionID == "" {
		errs = append(errs, ValidationError{Field: "session_id", Message: "session_id is required"})
	}
	if r.Filename == "" {
		errs = append(errs, ValidationError{Field: "filename", Message: "filename is required"})
	}
	if !domain.ValidDataType(r.DataType) {
		errs = append(errs, ValidationError{Field: "data_type", Message: "must be one of: raw, filtered, rms"})
	}
	if r.DurationSeconds != nil && *r.DurationSeconds < 0 {
		errs = append(errs, ValidationError{Field: "duration_seconds", Message: "must not be negative"})
	}
	if r.SampleCount != nil && *r.SampleCount < 0 {
		errs = append(errs, ValidationError{Field: "sample_count", Message: "must not be negative"})
	}
	if r.SampleRate != nil && *r.SampleRate <= 0 {
		errs = append(errs, ValidationError{Field: "sample_rate", Message: "must be positive"})
	}
	if r.LocalPath == "" {
		errs = append(errs, ValidationError{Field: "local_path", Message: "local_path is required"})
	} else if domain.IsRemoteURLString(r.LocalPath) {
		errs = append(errs, ValidationError{Field: "local_path", Message: "must be a local path, not a URL"})
	}
	if r.RecordedAt != nil && *r.RecordedAt != "" {
		if _, err := time.Parse(time.RFC3339, *r.RecordedAt); err != nil {
			errs = append(errs, ValidationError{Field: "recorded_at", Message: "invalid timestamp (expected RFC 3339)"})
		}
	}

	return errs
}

func (r *RecordingCreateRequest) ToRecording() *domain.Recording {
	localPath := r.LocalPath
	rec := &domain.Recording{
		SessionID: r.SessionID,
		Filename:  r.Filename,
		DataType:  domain.DataType(r.DataType),
		LocalPath: &localPath,
	}
	if r.DurationSeconds != nil {
		rec.DurationSeconds = *r.DurationSeconds
	}
	if r.SampleCount != nil {
		rec.SampleCount = *r.SampleCount
	}
	if r.SampleRate != nil {
		rec.SampleRate = *r.SampleRate
	}
	if r.RecordedAt != nil && *r.RecordedAt != "" {
		if ts, err := time.Parse(time.RFC3339, *r.RecordedAt); err == nil {
			rec.RecordedAt = ts
		}
	}
	return rec
}
