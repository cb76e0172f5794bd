package httpapp

import "github.com/go-chi/chi/v5"

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Get("/sessions", h.ListSessions)
		r.Get("/sessions/{id}", h.GetSession)
		r.Put("/sessions/{id}/sync-status", h.UpdateSessionSyncStatus)
		r.Get("/sessions/{id}/recordings", h.ListSessionRecordings)
		r.Get("/sessions/{id}/export", h.ExportSession)

		r.Post("/recordings", h.CreateRecording)
		r.Get("/recordings", h.ListRecordings)
		r.Get("/recordings/{id}", h.GetRecording)

		r.Post("/sync", h.TriggerSync)
	})
}
