package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logging(s.logger))
	r.Use(Metrics(s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", s.handleHealth)

	r.Get("/", s.handlePage)
	r.Post("/lang/{code}", s.handleSetLang)

	r.Route("/fragments", func(r chi.Router) {
		r.Get("/books", s.handleBooksFragment)
		r.Get("/talks", s.handleTalksFragment)
		r.Get("/news", s.handleNewsFragment)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/refresh", s.handleRefresh)
		r.Get("/status", s.handleStatus)
	})

	return r
}
