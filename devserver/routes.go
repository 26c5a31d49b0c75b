package devserver

import (
	"github.com/go-chi/chi"
)

// Router builds the chi router with the same route shape as the real backend.
// Everything under /v1 except login, ping, and attachment downloads requires a
// valid bearer token.
func (s *APIServer) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/version", s.getVersion)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/session", s.login)
		r.Head("/ping", s.ping)
		r.Get("/ping", s.ping)
		r.Get("/attachments/{attachmentID}", s.downloadAttachment)

		r.Group(func(r chi.Router) {
			r.Use(s.jwtMiddleware())

			r.Delete("/session", s.logout)
			r.Post("/session/refresh", s.refreshSession)

			r.Get("/profile", s.getProfile)
			r.Put("/profile", s.updateProfile)

			r.Get("/entries", s.listEntries)
			r.Post("/entries", s.createEntry)
			r.Get("/entries/{entryID}", s.getEntry)
			r.Put("/entries/{entryID}", s.updateEntry)
			r.Patch("/entries/{entryID}", s.patchEntry)
			r.Delete("/entries/{entryID}", s.deleteEntry)
			r.Post("/entries/{entryID}/attachments", s.uploadAttachment)
		})
	})

	return r
}
