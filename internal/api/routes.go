package api

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the handler's endpoints on r.
func RegisterRoutes(r chi.Router, h *TaskHandler) {
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/meetings", h.CreateMeeting)
		r.Post("/emails", h.SendEmail)
		r.Post("/nlp", h.ProcessCommand)
		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
	})
}
