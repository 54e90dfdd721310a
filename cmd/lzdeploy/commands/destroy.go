package commands

import (
	"github.com/spf13/cobra"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/cmd/lzdeploy/handlers"
)

// Destroy returns the command for tearing the deployment down.
//
// Destruction goes through the same pipeline as deployment: a destruction
// plan is produced and archived, and its own confirmation gate must be passed
// before anything is removed.
func Destroy() *cobra.Command {
	var opts handlers.DeployOptions

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Destroy the deployed landing zone",
		Long: `Destroy the deployed landing zone.

A destruction plan is produced first and shown like any other plan. The
destroy-specific confirmation gate must be answered in this run; approvals
never carry over from earlier sessions.

Examples:
  # Destroy with interactive confirmation
  lzdeploy destroy

  # Unattended teardown of an ephemeral environment
  lzdeploy destroy --auto-approve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Workflow = "destroy"
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: lzdeploy.yaml)")
	cmd.Flags().BoolVar(&opts.AutoApprove, "auto-approve", false, "Answer yes to every confirmation")

	return cmd
}
