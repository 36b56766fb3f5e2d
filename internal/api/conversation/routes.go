package conversation

import (
	"github.com/go-chi/chi/v5"
)

// Prefixes the conversation surface is served under
var Prefixes = []string{"/chat-agent", "/conversation", "/api/conversation"}

// RegisterRoutes registers conversation routes under every prefix
func RegisterRoutes(r chi.Router, h *Handler) {
	for _, prefix := range Prefixes {
		r.Route(prefix, func(r chi.Router) {
			r.Post("/start", h.Start)
			r.Post("/answer", h.SubmitAnswer)
			r.Post("/skip", h.Skip)
			r.Get("/status/{id}", h.GetStatus)
			r.Get("/history/{id}", h.GetHistory)
			r.Get("/sessions", h.ListSessions)
			r.Delete("/session/{id}", h.DeleteSession)
			r.Post("/session/{id}/diagnose", h.DiagnoseSession)
		})
	}
}
