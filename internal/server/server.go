package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/01101011010/Martin-Simonson/internal/archive"
	"github.com/01101011010/Martin-Simonson/internal/cache"
	"github.com/01101011010/Martin-Simonson/internal/config"
	"github.com/01101011010/Martin-Simonson/internal/content"
	"github.com/01101011010/Martin-Simonson/internal/monitoring"
	"github.com/01101011010/Martin-Simonson/internal/page"
	"github.com/01101011010/Martin-Simonson/internal/render"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	content    *content.Service
	composer   *page.Composer
	renderer   *render.Renderer
	store      cache.Store
	archive    *archive.PostgresArchive // nil when no archive is configured
	metrics    *monitoring.Metrics
	logger     *zap.Logger
	shell      []byte
}

func NewServer(cfg *config.Config, svc *content.Service, composer *page.Composer, renderer *render.Renderer,
	store cache.Store, arc *archive.PostgresArchive, m *monitoring.Metrics, logger *zap.Logger, shell []byte) *Server {
	s := &Server{
		config:   cfg,
		content:  svc,
		composer: composer,
		renderer: renderer,
		store:    store,
		archive:  arc,
		metrics:  m,
		logger:   logger,
		shell:    shell,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
