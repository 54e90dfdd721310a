package commands

import (
	"github.com/spf13/cobra"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/cmd/lzdeploy/handlers"
)

// Doctor returns the diagnostics command.
//
// It checks the client tooling and the workspace without changing anything:
// required binaries, configuration validity, state file health, leftover
// locks, address-space collisions and drift.
func Doctor() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check tooling and workspace health",
		Long: `Check tooling and workspace health.

Runs the same read-only diagnostics a deployment session starts with, plus a
check that the required client tools (terraform, az) are installed. Nothing
is modified.

Examples:
  # Check the project in the current directory
  lzdeploy doctor

  # Check a specific project
  lzdeploy doctor -c prod/lzdeploy.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: lzdeploy.yaml)")

	return cmd
}
