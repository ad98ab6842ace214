package main

import (
	"encoding/json"
	"os"

	"github.com/longregen/voicedemo/internal/domain"
	"github.com/longregen/voicedemo/internal/domain/models"
	"github.com/longregen/voicedemo/internal/ports"
	"github.com/spf13/cobra"
)

// connectCmd issues connection details without going through HTTP
func connectCmd() *cobra.Command {
	var demoName, participantName, agentName string

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Issue connection details for a demo and print them as JSON",
		Long: `Run the connection bootstrap once, exactly as the HTTP route would, and print
the resulting ConnectionDetails. Useful for joining a demo room from a test client.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if demoName == "" {
				demoName = defaultDemoName()
			}

			b, err := findBootstrapper(buildBootstrappers(cfg, liveKitFactory(cfg), nil), demoName)
			if err != nil {
				return err
			}

			details, err := b.Bootstrap(cmd.Context(), models.ConnectionRequest{
				ParticipantName: participantName,
				AgentName:       agentName,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(details)
		},
	}

	cmd.Flags().StringVarP(&demoName, "demo", "d", "", "Demo to connect to (default: the default demo)")
	cmd.Flags().StringVarP(&participantName, "name", "n", "", "Participant display name")
	cmd.Flags().StringVarP(&agentName, "agent", "a", "", "Agent to dispatch instead of the demo's agent")

	return cmd
}

func findBootstrapper(bootstrappers []ports.ConnectionBootstrapper, name string) (ports.ConnectionBootstrapper, error) {
	for _, b := range bootstrappers {
		if b.Demo().Name == name {
			return b, nil
		}
	}
	return nil, domain.NewDomainError(domain.ErrDemoNotFound, name)
}
