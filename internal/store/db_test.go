package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/emberlab/emgsync/internal/domain"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		if cErr := db.Close(); cErr != nil {
			t.Logf("db.Close error: %v", cErr)
		}
	})
	return db
}

func createTestSession(t *testing.T, db *DB, status domain.SyncStatus) *domain.Session {
	t.Helper()
	s := &domain.Session{Name: "Session", SyncStatus: status}
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return s
}

func strPtr(s string) *string {
	return &s
}

func TestDB_Sessions(t *testing.T) {
	db := setupTestDB(t)

	s := &domain.Session{Name: "Morning session"}
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if s.ID == "" {
		t.Fatal("Expected session ID to be generated")
	}
	if s.SyncStatus != domain.SyncStatusPending {
		t.Errorf("Expected status %s, got %s", domain.SyncStatusPending, s.SyncStatus)
	}

	fetched, err := db.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if fetched.Name != "Morning session" {
		t.Errorf("Expected name %q, got %q", "Morning session", fetched.Name)
	}

	if err := db.UpdateSessionSyncStatus(s.ID, domain.SyncStatusSynced); err != nil {
		t.Fatalf("UpdateSessionSyncStatus failed: %v", err)
	}
	fetched, _ = db.GetSession(s.ID)
	if fetched.SyncStatus != domain.SyncStatusSynced {
		t.Errorf("Expected status %s, got %s", domain.SyncStatusSynced, fetched.SyncStatus)
	}

	if _, err := db.GetSession("missing"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	list, err := db.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 session, got %d", len(list))
	}
}

func TestDB_CreateRecordingForcesUnsynced(t *testing.T) {
	db := setupTestDB(t)
	s := createTestSession(t, db, domain.SyncStatusPending)

	rec := &domain.Recording{
		SessionID:  s.ID,
		Filename:   "a.csv",
		DataType:   domain.DataTypeRaw,
		SampleRate: 215,
		LocalPath:  strPtr("file:///a.csv"),
		// Caller tries to smuggle in synced state; both must be ignored.
		RemoteURL:  strPtr("https://host/a.csv"),
		SyncStatus: domain.SyncStatusSynced,
		RetryCount: 7,
	}
	if err := db.CreateRecording(rec); err != nil {
		t.Fatalf("CreateRecording failed: %v", err)
	}

	fetched, err := db.GetRecording(rec.ID)
	if err != nil {
		t.Fatalf("GetRecording failed: %v", err)
	}
	if fetched.RemoteURL != nil {
		t.Errorf("Expected remote_url to be absent, got %q", *fetched.RemoteURL)
	}
	if fetched.SyncStatus != domain.SyncStatusPending {
		t.Errorf("Expected status %s, got %s", domain.SyncStatusPending, fetched.SyncStatus)
	}
	if fetched.RetryCount != 0 {
		t.Errorf("Expected retry_count 0, got %d", fetched.RetryCount)
	}
	if !fetched.HasLocalPath() || *fetched.LocalPath != "file:///a.csv" {
		t.Errorf("Expected local_path to survive, got %v", fetched.LocalPath)
	}
	if fetched.SampleRate != 215 {
		t.Errorf("Expected sample_rate 215, got %f", fetched.SampleRate)
	}
}

func TestDB_UpdateRecordingLocation(t *testing.T) {
	db := setupTestDB(t)
	s := createTestSession(t, db, domain.SyncStatusPending)

	rec := &domain.Recording{
		SessionID: s.ID,
		Filename:  "b.csv",
		DataType:  domain.DataTypeFiltered,
		LocalPath: strPtr("/data/b.csv"),
	}
	if err := db.CreateRecording(rec); err != nil {
		t.Fatalf("CreateRecording failed: %v", err)
	}

	// Set remote_url, keep everything else.
	err := db.UpdateRecordingLocation(rec.ID, domain.LocationUpdate{
		RemoteURL: domain.Set("https://host/b.csv"),
	})
	if err != nil {
		t.Fatalf("UpdateRecordingLocation failed: %v", err)
	}

	fetched, _ := db.GetRecording(rec.ID)
	if !fetched.HasRemoteURL() || *fetched.RemoteURL != "https://host/b.csv" {
		t.Errorf("Expected remote_url set, got %v", fetched.RemoteURL)
	}
	if !fetched.HasLocalPath() {
		t.Error("Expected local_path untouched by remote_url update")
	}

	// Explicit clear is distinct from omission.
	err = db.UpdateRecordingLocation(rec.ID, domain.LocationUpdate{
		LocalPath:  domain.Clear(),
		SyncStatus: domain.Set(string(domain.SyncStatusSynced)),
	})
	if err != nil {
		t.Fatalf("UpdateRecordingLocation failed: %v", err)
	}

	fetched, _ = db.GetRecording(rec.ID)
	if fetched.LocalPath != nil {
		t.Errorf("Expected local_path cleared, got %q", *fetched.LocalPath)
	}
	if !fetched.HasRemoteURL() {
		t.Error("Expected remote_url to survive the clear of local_path")
	}
	if fetched.SyncStatus != domain.SyncStatusSynced {
		t.Errorf("Expected status %s, got %s", domain.SyncStatusSynced, fetched.SyncStatus)
	}

	// Empty update is a no-op, not an error.
	if err := db.UpdateRecordingLocation(rec.ID, domain.LocationUpdate{}); err != nil {
		t.Errorf("Empty update failed: %v", err)
	}

	err = db.UpdateRecordingLocation("missing", domain.LocationUpdate{SyncStatus: domain.Set("failed")})
	if err != ErrRecordingNotFound {
		t.Errorf("Expected ErrRecordingNotFound, got %v", err)
	}
}

func TestDB_ListPendingWithSyncedSession(t *testing.T) {
	db := setupTestDB(t)
	synced := createTestSession(t, db, domain.SyncStatusSynced)
	pending := createTestSession(t, db, domain.SyncStatusPending)

	mk := func(sessionID string, status domain.SyncStatus, recordedAt time.Time) *domain.Recording {
		rec := &domain.Recording{
			SessionID:  sessionID,
			Filename:   "r.csv",
			DataType:   domain.DataTypeRaw,
			LocalPath:  strPtr("/data/r.csv"),
			RecordedAt: recordedAt,
		}
		if err := db.CreateRecording(rec); err != nil {
			t.Fatalf("CreateRecording failed: %v", err)
		}
		if status != domain.SyncStatusPending {
			if err := db.UpdateRecordingLocation(rec.ID, domain.LocationUpdate{SyncStatus: domain.Set(string(status))}); err != nil {
				t.Fatalf("status update failed: %v", err)
			}
		}
		return rec
	}

	base := time.Now().UTC().Truncate(time.Second)
	second := mk(synced.ID, domain.SyncStatusPending, base.Add(time.Minute))
	first := mk(synced.ID, domain.SyncStatusPending, base)
	mk(synced.ID, domain.SyncStatusFailed, base)
	mk(pending.ID, domain.SyncStatusPending, base) // session not synced; excluded

	worklist, err := db.ListPendingWithSyncedSession()
	if err != nil {
		t.Fatalf("ListPendingWithSyncedSession failed: %v", err)
	}
	if len(worklist) != 2 {
		t.Fatalf("Expected worklist of 2, got %d", len(worklist))
	}
	if worklist[0].ID != first.ID || worklist[1].ID != second.ID {
		t.Error("Expected worklist ordered by recorded_at ascending")
	}

	failed, err := db.ListFailedWithSyncedSession()
	if err != nil {
		t.Fatalf("ListFailedWithSyncedSession failed: %v", err)
	}
	if len(failed) != 1 {
		t.Errorf("Expected 1 failed recording, got %d", len(failed))
	}
}

func TestDB_RetryBookkeeping(t *testing.T) {
	db := setupTestDB(t)
	s := createTestSession(t, db, domain.SyncStatusSynced)

	rec := &domain.Recording{
		SessionID: s.ID,
		Filename:  "c.csv",
		DataType:  domain.DataTypeRMS,
		LocalPath: strPtr("/data/c.csv"),
	}
	if err := db.CreateRecording(rec); err != nil {
		t.Fatalf("CreateRecording failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := db.IncrementRetryCount(rec.ID); err != nil {
			t.Fatalf("IncrementRetryCount failed: %v", err)
		}
	}

	if err := db.MarkRecordingFailed(rec.ID, "upload failed after 3 attempts"); err != nil {
		t.Fatalf("MarkRecordingFailed failed: %v", err)
	}

	fetched, _ := db.GetRecording(rec.ID)
	if fetched.RetryCount != 3 {
		t.Errorf("Expected retry_count 3, got %d", fetched.RetryCount)
	}
	if fetched.SyncStatus != domain.SyncStatusFailed {
		t.Errorf("Expected status failed, got %s", fetched.SyncStatus)
	}
	if fetched.Error == nil || *fetched.Error == "" {
		t.Error("Expected error message recorded")
	}
	if !fetched.HasLocalPath() {
		t.Error("Expected local_path retained after failure")
	}
}

func TestDB_ListRecordingsBySession(t *testing.T) {
	db := setupTestDB(t)
	s := createTestSession(t, db, domain.SyncStatusPending)

	base := time.Now().UTC().Truncate(time.Second)
	for i, name := range []string{"third.csv", "first.csv", "second.csv"} {
		offsets := []time.Duration{2 * time.Minute, 0, time.Minute}
		rec := &domain.Recording{
			SessionID:  s.ID,
			Filename:   name,
			DataType:   domain.DataTypeRaw,
			LocalPath:  strPtr("/data/" + name),
			RecordedAt: base.Add(offsets[i]),
		}
		if err := db.CreateRecording(rec); err != nil {
			t.Fatalf("CreateRecording failed: %v", err)
		}
	}

	recs, err := db.ListRecordingsBySession(s.ID)
	if err != nil {
		t.Fatalf("ListRecordingsBySession failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("Expected 3 recordings, got %d", len(recs))
	}
	want := []string{"first.csv", "second.csv", "third.csv"}
	for i, rec := range recs {
		if rec.Filename != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], rec.Filename)
		}
	}
}
