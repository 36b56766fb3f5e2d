package diagnosis

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers diagnosis routes at the root and under /chatbot
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		mount(r, h)
	})
	r.Route("/chatbot", func(r chi.Router) {
		r.Get("/status", h.Status)
		mount(r, h)
	})
}

func mount(r chi.Router, h *Handler) {
	r.Post("/diagnosis", h.Diagnose)
	r.Post("/create-content", h.CreateContent)
	r.Post("/chat", h.Chat)

	r.Post("/diagnose/soft", h.DiagnoseSoft)
	r.Get("/diagnose/status/{thread_id}/{run_id}", h.RunStatus)
	r.Get("/diagnose/result/{thread_id}/{run_id}", h.RunResult)

	// query-string variants kept for older clients
	r.Post("/body-result", h.DiagnoseSoft)
	r.Get("/run-status", h.RunStatus)
	r.Get("/run-result", h.RunResult)
}
