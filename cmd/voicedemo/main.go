package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/longregen/voicedemo/internal/config"
	"github.com/longregen/voicedemo/pkg/otel"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "voicedemo",
		Short: "voicedemo - LiveKit connection service for the voice agent demos",
		Long: `voicedemo issues LiveKit connection details for the "Day N" voice agent
demo front ends and dispatches the agent that should join each room.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			slog.SetDefault(slog.New(otel.NewPrettyHandlerWithOptions(os.Stderr, otel.ParseLevel(cfg.LogLevel))))
			return nil
		},
	}

	rootCmd.AddCommand(
		serveCmd(),
		connectCmd(),
		demosCmd(),
		sessionsCmd(),
		configCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configCmd shows current configuration
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Current configuration:")
			fmt.Println()

			fmt.Println("LiveKit:")
			fmt.Printf("  URL:           %s\n", cfg.LiveKit.URL)
			fmt.Printf("  API Key:       %s\n", maskSecret(cfg.LiveKit.APIKey))
			fmt.Printf("  API Secret:    %s\n", maskSecret(cfg.LiveKit.APISecret))
			fmt.Printf("  Empty Timeout: %ds\n", cfg.LiveKit.EmptyTimeout)
			fmt.Printf("  Status:        %s\n", boolStatus(cfg.IsLiveKitConfigured()))
			fmt.Println()

			fmt.Println("Server:")
			fmt.Printf("  Address:      %s:%d\n", cfg.Server.Host, cfg.Server.Port)
			fmt.Printf("  CORS Origins: %v\n", cfg.Server.CORSOrigins)
			fmt.Println()

			fmt.Println("Connection:")
			fmt.Printf("  Token TTL:       %s\n", cfg.Connection.TokenTTL.Std())
			fmt.Printf("  Default Demo:    %s\n", defaultDemoName())
			fmt.Printf("  Agent Name:      %s\n", cfg.Connection.AgentName)
			fmt.Printf("  Dispatch Mode:   %s\n", cfg.Connection.DispatchMode)
			fmt.Printf("  Room Prefix:     %s\n", cfg.Connection.RoomPrefix)
			fmt.Printf("  Identity Prefix: %s\n", cfg.Connection.IdentityPrefix)
			fmt.Println()

			fmt.Println("Database:")
			fmt.Printf("  PostgreSQL: %s\n", maskSecret(cfg.Database.PostgresURL))
			fmt.Printf("  Status:     %s\n", boolStatus(cfg.IsDatabaseConfigured()))
			fmt.Println()

			fmt.Printf("Demos: %d (see 'voicedemo demos')\n", len(cfg.Demos))
			fmt.Printf("Tracing: %t, Log Level: %s\n", cfg.Tracing, cfg.LogLevel)
			fmt.Println()

			fmt.Println("Environment variables:")
			fmt.Println("  LIVEKIT_URL, LIVEKIT_API_KEY, LIVEKIT_API_SECRET (or VOICEDEMO_LIVEKIT_*)")
			fmt.Println("  <PREFIX>_LIVEKIT_URL, <PREFIX>_LIVEKIT_API_KEY, <PREFIX>_LIVEKIT_API_SECRET per demo")
			fmt.Println("  VOICEDEMO_SERVER_HOST, VOICEDEMO_SERVER_PORT, VOICEDEMO_CORS_ORIGINS")
			fmt.Println("  VOICEDEMO_TOKEN_TTL, VOICEDEMO_DEFAULT_DEMO, VOICEDEMO_AGENT_NAME, VOICEDEMO_DISPATCH_MODE")
			fmt.Println("  VOICEDEMO_DEMOS, VOICEDEMO_POSTGRES_URL, VOICEDEMO_TRACING, VOICEDEMO_LOG_LEVEL")

			return nil
		},
	}
}

// versionCmd shows version information
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("voicedemo %s\n", version)
			fmt.Printf("  Commit:     %s\n", commit)
			fmt.Printf("  Build Date: %s\n", buildDate)
		},
	}
}
