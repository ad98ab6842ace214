package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/longregen/voicedemo/internal/adapters/postgres"
	"github.com/longregen/voicedemo/internal/domain/models"
	"github.com/spf13/cobra"
)

// demosCmd lists the configured demos
func demosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demos",
		Short: "List demos and whether their LiveKit credentials are complete",
		RunE: func(cmd *cobra.Command, args []string) error {
			green := color.New(color.FgGreen)
			yellow := color.New(color.FgYellow)
			cyan := color.New(color.FgCyan)
			gray := color.New(color.FgHiBlack)

			defaultName := defaultDemoName()
			for _, demo := range cfg.ResolvedDemos() {
				cyan.Printf("%s", demo.Name)
				if demo.Name == defaultName {
					gray.Print(" (default)")
				}
				fmt.Printf("  %s\n", demo.Title)

				fmt.Printf("    Path:     %s\n", demo.Path())
				fmt.Printf("    Agent:    %s [%s]\n", orNone(demo.AgentName), demo.DispatchMode)
				fmt.Printf("    LiveKit:  %s\n", orNone(demo.Credentials.URL))
				fmt.Print("    Status:   ")
				if missing := demo.Credentials.Missing(); len(missing) > 0 {
					yellow.Printf("not configured (missing %s)\n", strings.Join(missing, ", "))
				} else {
					green.Println("configured")
				}
				fmt.Println()
			}

			return nil
		},
	}
}

// sessionsCmd lists recently issued connections from the session ledger
func sessionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recently issued connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			pool, err := initDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			records, err := postgres.NewSessionRepository(pool).ListRecent(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			if len(records) == 0 {
				fmt.Println("No sessions recorded.")
				return nil
			}

			for _, rec := range records {
				printSession(rec)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", postgres.DefaultListLimit, "Maximum number of sessions to show")

	return cmd
}

func printSession(rec *models.SessionRecord) {
	gray := color.New(color.FgHiBlack)
	gray.Printf("%s ", rec.CreatedAt.Local().Format(time.DateTime))
	fmt.Printf("%-10s %s  %s", rec.Demo, rec.RoomName, rec.ParticipantName)

	switch rec.DispatchStatus {
	case models.DispatchStatusDispatched, models.DispatchStatusEmbedded:
		color.New(color.FgGreen).Printf("  %s:%s", rec.DispatchStatus, rec.AgentName)
	case models.DispatchStatusFailed:
		color.New(color.FgRed).Printf("  failed:%s (%s)", rec.AgentName, rec.DispatchError)
	}
	fmt.Println()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
