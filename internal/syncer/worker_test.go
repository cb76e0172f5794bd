package syncer

import (
	"testing"
	"time"

	"github.com/emberlab/emgsync/internal/domain"
)

func TestWorker_RunPassSyncsWorklist(t *testing.T) {
	db := setupTestDB(t)
	rec := createPendingRecording(t, db, "/data/x.csv")

	ft := &fakeTransport{}
	c := NewCoordinator(db, ft, nil, nil, 3)
	w := NewWorker(c, db, nil, time.Hour, 2, false)

	w.runPass()

	fetched, err := db.GetRecording(rec.ID)
	if err != nil {
		t.Fatalf("GetRecording failed: %v", err)
	}
	if fetched.SyncStatus != domain.SyncStatusSynced {
		t.Errorf("Expected status synced after pass, got %s", fetched.SyncStatus)
	}
}

func TestWorker_PendingSessionExcluded(t *testing.T) {
	db := setupTestDB(t)

	session := &domain.Session{Name: "Unsynced"}
	if err := db.CreateSession(session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	rec := &domain.Recording{
		SessionID: session.ID,
		Filename:  "x.csv",
		DataType:  domain.DataTypeRaw,
		LocalPath: strPtr("/data/x.csv"),
	}
	if err := db.CreateRecording(rec); err != nil {
		t.Fatalf("CreateRecording failed: %v", err)
	}

	ft := &fakeTransport{}
	c := NewCoordinator(db, ft, nil, nil, 3)
	w := NewWorker(c, db, nil, time.Hour, 2, false)

	w.runPass()

	if ft.uploadCalls != 0 {
		t.Errorf("Expected no uploads for recordings of an unsynced session, got %d", ft.uploadCalls)
	}
	fetched, _ := db.GetRecording(rec.ID)
	if fetched.SyncStatus != domain.SyncStatusPending {
		t.Errorf("Expected status still pending, got %s", fetched.SyncStatus)
	}
}

func TestWorker_ResyncFailedConfigurable(t *testing.T) {
	db := setupTestDB(t)
	rec := createPendingRecording(t, db, "/data/x.csv")
	if err := db.MarkRecordingFailed(rec.ID, "previous exhaustion"); err != nil {
		t.Fatalf("MarkRecordingFailed failed: %v", err)
	}

	ft := &fakeTransport{}
	c := NewCoordinator(db, ft, nil, nil, 3)

	// Disabled: failed recordings stay failed.
	w := NewWorker(c, db, nil, time.Hour, 2, false)
	w.runPass()
	fetched, _ := db.GetRecording(rec.ID)
	if fetched.SyncStatus != domain.SyncStatusFailed {
		t.Fatalf("Expected failed recording untouched, got %s", fetched.SyncStatus)
	}

	// Enabled: the same recording is re-attempted.
	w = NewWorker(c, db, nil, time.Hour, 2, true)
	w.runPass()
	fetched, _ = db.GetRecording(rec.ID)
	if fetched.SyncStatus != domain.SyncStatusSynced {
		t.Errorf("Expected failed recording resynced, got %s", fetched.SyncStatus)
	}
}
