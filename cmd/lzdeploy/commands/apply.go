package commands

import (
	"github.com/spf13/cobra"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/cmd/lzdeploy/handlers"
)

// Apply returns the command that applies changes to the subscription.
//
// Without --plan it runs the full plan-and-apply cycle. With --plan it applies
// a previously produced plan file after validation; a plan that has gone stale
// is never forced through.
func Apply() *cobra.Command {
	var opts handlers.DeployOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply changes to the subscription",
		Long: `Apply changes to the subscription.

Without --plan this runs a full plan-and-apply cycle with a confirmation gate
between planning and applying. With --plan it applies an existing plan file;
if the workspace has changed since the plan was produced, the session aborts
and asks for a fresh cycle instead of forcing the stale plan.

Examples:
  # Plan, review, confirm, apply
  lzdeploy apply

  # Apply a previously reviewed plan
  lzdeploy apply --plan artifacts/tfplan-20260827-143000.bin`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.PlanFile != "" {
				opts.Workflow = "apply-existing"
			} else {
				opts.Workflow = "plan-and-apply"
			}
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: lzdeploy.yaml)")
	cmd.Flags().StringVar(&opts.PlanFile, "plan", "", "Existing plan file to apply")
	cmd.Flags().BoolVar(&opts.AutoApprove, "auto-approve", false, "Answer yes to every confirmation")

	return cmd
}
