package httpapp

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/form/v4"

	"github.com/emberlab/emgsync/internal/constants"
	"github.com/emberlab/emgsync/internal/domain"
	"github.com/emberlab/emgsync/internal/export"
	"github.com/emberlab/emgsync/internal/http/dto"
	"github.com/emberlab/emgsync/internal/logger"
	"github.com/emberlab/emgsync/internal/storage"
	"github.com/emberlab/emgsync/internal/store"
	"github.com/emberlab/emgsync/internal/syncer"
)

type Handler struct {
	Store    *store.DB
	Exporter *export.Exporter
	Worker   *syncer.Worker
	Logger   *logger.Logger

	decoder *form.Decoder
}

func NewHandler(db *store.DB, exporter *export.Exporter, worker *syncer.Worker, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Store:    db,
		Exporter: exporter,
		Worker:   worker,
		Logger:   log.WithComponent("http"),
		decoder:  form.NewDecoder(),
	}
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req dto.SessionCreateRequest
	if !h.decodeForm(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		http.Error(w, dto.ToResponse(errs), http.StatusBadRequest)
		return
	}

	session := req.ToSession()
	if err := h.Store.CreateSession(session); err != nil {
		h.Logger.Error("Failed to create session", "error", err)
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Store.ListSessions()
	if err != nil {
		h.Logger.Error("Failed to list sessions", "error", err)
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	session, err := h.Store.GetSession(id)
	if err != nil {
		h.notFoundOrError(w, err, store.ErrSessionNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

func (h *Handler) UpdateSessionSyncStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.SessionSyncStatusRequest
	if !h.decodeForm(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		http.Error(w, dto.ToResponse(errs), http.StatusBadRequest)
		return
	}

	if err := h.Store.UpdateSessionSyncStatus(id, domain.SyncStatus(req.SyncStatus)); err != nil {
		h.notFoundOrError(w, err, store.ErrSessionNotFound)
		return
	}

	// A freshly synced session usually has recordings waiting.
	if req.SyncStatus == string(domain.SyncStatusSynced) && h.Worker != nil {
		h.Worker.Trigger()
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateRecording(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordingCreateRequest
	if !h.decodeForm(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		http.Error(w, dto.ToResponse(errs), http.StatusBadRequest)
		return
	}

	if _, err := h.Store.GetSession(req.SessionID); err != nil {
		h.notFoundOrError(w, err, store.ErrSessionNotFound)
		return
	}

	rec := req.ToRecording()
	if err := h.Store.CreateRecording(rec); err != nil {
		h.Logger.Error("Failed to create recording", "error", err)
		http.Error(w, "failed to create recording", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListRecordings()
	if err != nil {
		h.Logger.Error("Failed to list recordings", "error", err)
		http.Error(w, "failed to list recordings", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) GetRecording(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.Store.GetRecording(id)
	if err != nil {
		h.notFoundOrError(w, err, store.ErrRecordingNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) ListSessionRecordings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Store.GetSession(id); err != nil {
		h.notFoundOrError(w, err, store.ErrSessionNotFound)
		return
	}

	recs, err := h.Store.ListRecordingsBySession(id)
	if err != nil {
		h.Logger.Error("Failed to list session recordings", "error", err)
		http.Error(w, "failed to list recordings", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.Worker == nil {
		http.Error(w, "sync worker not running", http.StatusServiceUnavailable)
		return
	}
	h.Worker.Trigger()
	w.WriteHeader(http.StatusAccepted)
}

// ExportSession streams the session's resolved contents as a ZIP. The
// archive container lives here at the edge; the core only produces the
// per-recording contents.
func (h *Handler) ExportSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	session, err := h.Store.GetSession(id)
	if err != nil {
		h.notFoundOrError(w, err, store.ErrSessionNotFound)
		return
	}

	files, err := h.Exporter.ExportSession(r.Context(), id)
	if err != nil {
		h.Logger.Error("Failed to export session", "session_id", id, "error", err)
		http.Error(w, "failed to export session", http.StatusInternalServerError)
		return
	}

	name := storage.Sanitize(session.Name)
	if name == "" {
		name = session.ID
	}
	w.Header().Set("Content-Type", constants.MimeTypeZIP)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+constants.ExtZIP))

	zw := zip.NewWriter(w)
	for _, f := range files {
		entry, err := zw.Create(f.Name)
		if err != nil {
			h.Logger.Error("Failed to write export entry", "name", f.Name, "error", err)
			return
		}
		if _, err := entry.Write([]byte(f.Content)); err != nil {
			h.Logger.Error("Failed to write export entry", "name", f.Name, "error", err)
			return
		}
	}
	if err := zw.Close(); err != nil {
		h.Logger.Error("Failed to finalize export archive", "error", err)
	}
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return false
	}
	if err := h.decoder.Decode(dst, r.PostForm); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) notFoundOrError(w http.ResponseWriter, err, notFound error) {
	if errors.Is(err, notFound) {
		http.Error(w, notFound.Error(), http.StatusNotFound)
		return
	}
	h.Logger.Error("Store operation failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
