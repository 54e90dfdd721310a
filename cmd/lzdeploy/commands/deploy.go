package commands

import (
	"github.com/spf13/cobra"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/cmd/lzdeploy/handlers"
)

// Deploy returns the command for the interactive deployment session.
//
// The session runs diagnostics, then the selected workflow (plan-and-apply by
// default), stopping at a confirmation gate before anything mutates the
// subscription. Failures are classified and matched against the remediation
// catalog before the operator is asked what to do.
//
// Optional flags:
//
//	--config, -c:    Path to project configuration YAML (default: auto-detect lzdeploy.yaml)
//	--workflow, -w:  Workflow to run; prompts when omitted on a terminal
//	--auto-approve:  Answer yes to every confirmation (for pipelines)
func Deploy() *cobra.Command {
	var opts handlers.DeployOptions

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Run a guided deployment session",
		Long: `Run a guided deployment session.

The session checks the workspace first (state file health, leftover locks,
address-space collisions, drift), then walks the chosen workflow. Nothing is
applied or destroyed without an explicit confirmation in the same run.

If no config file is specified, it looks for lzdeploy.yaml in the current
directory.

Examples:
  # Interactive session, workflow chosen from a menu
  lzdeploy deploy

  # Full plan-and-apply cycle against a specific project
  lzdeploy deploy -c prod/lzdeploy.yaml -w plan-and-apply

  # Unattended run for a pipeline
  lzdeploy deploy -w plan-and-apply --auto-approve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: lzdeploy.yaml)")
	cmd.Flags().StringVarP(&opts.Workflow, "workflow", "w", "", "Workflow: plan-only, plan-and-apply, apply-existing or destroy")
	cmd.Flags().BoolVar(&opts.AutoApprove, "auto-approve", false, "Answer yes to every confirmation")
	cmd.Flags().StringVar(&opts.PlanFile, "plan", "", "Existing plan file for the apply-existing workflow")

	return cmd
}
