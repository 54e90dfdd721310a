package commands

import (
	"github.com/spf13/cobra"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/cmd/lzdeploy/handlers"
)

// Plan returns the shortcut command for the plan-only workflow.
//
// It produces and archives a plan without applying it, so the changes can be
// reviewed (or fed to 'lzdeploy apply --plan') later.
func Plan() *cobra.Command {
	var opts handlers.DeployOptions

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Produce a plan without applying it",
		Long: `Produce a plan without applying it.

The plan and its JSON rendering are archived under the configured artifact
directory. Apply the reviewed plan later with 'lzdeploy apply --plan <file>'.

Examples:
  # Plan using lzdeploy.yaml in the current directory
  lzdeploy plan

  # Plan a specific project
  lzdeploy plan -c prod/lzdeploy.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Workflow = "plan-only"
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: lzdeploy.yaml)")
	cmd.Flags().BoolVar(&opts.AutoApprove, "auto-approve", false, "Answer yes to every confirmation")

	return cmd
}
