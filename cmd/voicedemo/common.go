package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/longregen/voicedemo/internal/adapters/id"
	"github.com/longregen/voicedemo/internal/adapters/livekit"
	"github.com/longregen/voicedemo/internal/application/services"
	"github.com/longregen/voicedemo/internal/config"
	"github.com/longregen/voicedemo/internal/ports"
)

// Version information (set via ldflags)
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var cfg *config.Config

// initDB initializes a database connection pool for the session ledger
func initDB(ctx context.Context) (*pgxpool.Pool, error) {
	if cfg.Database.PostgresURL == "" {
		return nil, fmt.Errorf("PostgreSQL connection required. Set VOICEDEMO_POSTGRES_URL")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Force UTC timezone to prevent timezone-related issues with TIMESTAMP columns
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return pool, nil
}

func liveKitFactory(c *config.Config) ports.LiveKitServiceFactory {
	return livekit.NewServiceFactory(uint32(c.LiveKit.EmptyTimeout))
}

// buildBootstrappers returns one bootstrapper per configured demo. sessions may be nil.
func buildBootstrappers(c *config.Config, newLiveKit ports.LiveKitServiceFactory, sessions ports.SessionRepository) []ports.ConnectionBootstrapper {
	idGen := id.New()
	demos := c.ResolvedDemos()
	bootstrappers := make([]ports.ConnectionBootstrapper, 0, len(demos))
	for _, demo := range demos {
		opts := []services.BootstrapperOption{
			services.WithTokenTTL(c.Connection.TokenTTL.Std()),
		}
		if sessions != nil {
			opts = append(opts, services.WithSessionRepository(sessions))
		}
		bootstrappers = append(bootstrappers, services.NewConnectionBootstrapper(demo, newLiveKit, idGen, opts...))
	}
	return bootstrappers
}

func defaultDemoName() string {
	if demo, ok := cfg.DefaultDemo(); ok {
		return demo.Name
	}
	return "(none)"
}

// maskSecret masks a secret string for display
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "(set)"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// boolStatus returns a status string for a boolean
func boolStatus(b bool) string {
	if b {
		return "configured"
	}
	return "not configured"
}
