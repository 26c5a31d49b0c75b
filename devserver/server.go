package devserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
)

// Start runs the dev server on the passed in port, blocking until the listener fails
func (s *APIServer) Start(port uint16) error {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	})
	r.Use(c.Handler)

	r.Mount("/", s.Router())

	s.l.Infof("starting dev server on port %d\n", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), r)
}
