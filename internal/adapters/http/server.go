package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/longregen/voicedemo/internal/adapters/http/handlers"
	"github.com/longregen/voicedemo/internal/adapters/http/middleware"
	"github.com/longregen/voicedemo/internal/config"
	"github.com/longregen/voicedemo/internal/domain/models"
	"github.com/longregen/voicedemo/internal/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	config        *config.Config
	router        *chi.Mux
	httpServer    *http.Server
	bootstrappers []ports.ConnectionBootstrapper
	newLiveKit    ports.LiveKitServiceFactory
	dbPing        func(context.Context) error
	version       string
}

// NewServer wires one connection-details route per bootstrapper. newLiveKit and
// dbPing feed the detailed health check and may be nil.
func NewServer(
	cfg *config.Config,
	bootstrappers []ports.ConnectionBootstrapper,
	newLiveKit ports.LiveKitServiceFactory,
	dbPing func(context.Context) error,
	version string,
) *Server {
	s := &Server{
		config:        cfg,
		bootstrappers: bootstrappers,
		newLiveKit:    newLiveKit,
		dbPing:        dbPing,
		version:       version,
	}

	s.setupRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(s.config.Server.CORSOrigins))
	r.Use(middleware.Metrics)

	demos := make([]models.Demo, 0, len(s.bootstrappers))
	for _, b := range s.bootstrappers {
		demos = append(demos, b.Demo())
	}
	var defaultDemo string
	if demo, ok := s.config.DefaultDemo(); ok {
		defaultDemo = demo.Name
	}

	healthHandler := handlers.NewHealthHandler(s.version)
	detailedHealthHandler := handlers.NewHealthHandlerWithDeps(s.version, demos, s.newLiveKit, s.dbPing)
	r.Get("/health", healthHandler.Handle)
	r.Get("/health/detailed", detailedHealthHandler.HandleDetailed)
	r.Handle("/metrics", promhttp.Handler())

	connectionHandler := handlers.NewConnectionDetailsHandler(defaultDemo, s.bootstrappers...)
	demosHandler := handlers.NewDemosHandler(defaultDemo, demos)

	r.Route("/api", func(r chi.Router) {
		r.Get("/connection-details", connectionHandler.HandleDefault)
		r.Post("/connection-details", connectionHandler.HandleDefault)

		r.Get("/demos", demosHandler.List)
		r.Get("/demos/{demo}/connection-details", connectionHandler.HandleDemo)
		r.Post("/demos/{demo}/connection-details", connectionHandler.HandleDemo)
	})

	s.router = r
}

// Start blocks serving requests. It returns http.ErrServerClosed once Stop has
// been called, including when Stop ran first.
func (s *Server) Start() error {
	slog.Info("starting HTTP server", "addr", s.httpServer.Addr, "demos", len(s.bootstrappers))
	return s.httpServer.ListenAndServe()
}

// Stop may be called from another goroutine at any time relative to Start.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *chi.Mux {
	return s.router
}
