package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/longregen/voicedemo/internal/adapters/http"
	"github.com/longregen/voicedemo/internal/adapters/postgres"
	"github.com/longregen/voicedemo/internal/adapters/tracing"
	"github.com/longregen/voicedemo/internal/ports"
	"github.com/spf13/cobra"
)

// serveCmd starts the HTTP server
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the connection-details HTTP server",
		Long: `Start the voicedemo HTTP server.

Each configured demo is served at /api/demos/{demo}/connection-details and the
default demo additionally at /api/connection-details.

Required configuration:
  - LiveKit (LIVEKIT_URL, LIVEKIT_API_KEY, LIVEKIT_API_SECRET), either shared
    or per demo via <PREFIX>_LIVEKIT_*

Optional:
  - Session ledger (VOICEDEMO_POSTGRES_URL)
  - Tracing to stdout (VOICEDEMO_TRACING=true)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// runServer initializes and starts the HTTP server
func runServer(ctx context.Context) error {
	slog.Info("starting voicedemo server",
		"http", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port),
		"demos", len(cfg.Demos),
		"default_demo", defaultDemoName(),
		"version", version,
	)

	for _, demo := range cfg.ResolvedDemos() {
		if missing := demo.Credentials.Missing(); len(missing) > 0 {
			slog.Warn("demo is missing LiveKit configuration", "demo", demo.Name, "missing", missing)
		}
	}

	if cfg.Tracing {
		shutdown, err := tracing.InitTracer("voicedemo")
		if err != nil {
			slog.Warn("failed to initialize tracing", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					slog.Error("error shutting down tracer", "error", err)
				}
			}()
			slog.Info("OpenTelemetry tracing initialized")
		}
	}

	var sessions ports.SessionRepository
	var dbPing func(context.Context) error
	if cfg.IsDatabaseConfigured() {
		slog.Info("connecting to PostgreSQL")
		pool, err := initDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo := postgres.NewSessionRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare session ledger: %w", err)
		}
		sessions = repo
		dbPing = pool.Ping
		slog.Info("session ledger enabled")
	}

	newLiveKit := liveKitFactory(cfg)
	server := http.NewServer(cfg, buildBootstrappers(cfg, newLiveKit, sessions), newLiveKit, dbPing, version)

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		serverErrors <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		slog.Info("received signal, shutting down gracefully", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		slog.Info("server stopped")
		return nil
	}
}
