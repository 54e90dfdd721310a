package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/artifacts"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/config"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/platform/azure"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/platform/terraform"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/remediate"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/session"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/ui"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/ui/wizard"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/util/prerequisites"
)

// DeployOptions are the flag values of the workflow commands.
type DeployOptions struct {
	ConfigPath  string
	Workflow    string
	PlanFile    string
	AutoApprove bool
}

// deployPrompter is what Deploy needs from a prompt implementation. Both
// wizard.Wizard and wizard.Auto satisfy the session and remediation sides;
// workflow selection is only available interactively.
type deployPrompter interface {
	Confirm(ctx context.Context, title, description string) (bool, error)
	Select(ctx context.Context, title string, options []string) (int, error)
}

// sessionRunner is the part of session.Session the handler drives.
type sessionRunner interface {
	Run(ctx context.Context) error
}

// Factory function variables for deploy - can be replaced in tests.
var (
	// checkPrerequisites verifies the client tooling before a session starts.
	checkPrerequisites = prerequisites.CheckDefault

	// isInteractive reports whether prompts can be rendered.
	isInteractive = ui.IsInteractive

	// newUploader builds the blob mirror for plan artifacts.
	newUploader = func(connectionString, container string) (session.Uploader, error) {
		return artifacts.NewUploader(connectionString, container)
	}

	// newSession builds the deployment session.
	newSession = func(cfg *config.Config, tf session.Runner, dispatch session.Dispatcher, prompt session.Prompter,
		out io.Writer, workflow session.Workflow, opts ...session.Option) sessionRunner {
		return session.New(cfg, tf, dispatch, prompt, out, workflow, opts...)
	}

	// selectWorkflow asks interactively which workflow to run.
	selectWorkflow = func(ctx context.Context, w *wizard.Wizard) (session.Workflow, error) {
		return w.SelectWorkflow(ctx)
	}
)

// Deploy handles the deploy, plan, apply and destroy commands.
//
// It loads the project configuration, verifies the client tooling, wires the
// terraform runner, the az client and the remediation catalog together, and
// runs one deployment session to a terminal state.
func Deploy(ctx context.Context, opts DeployOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	if err := checkPrerequisites(ctx).Error(); err != nil {
		return err
	}

	interactive := isInteractive() && !opts.AutoApprove

	var prompt deployPrompter
	var wiz *wizard.Wizard
	if interactive {
		wiz = &wizard.Wizard{}
		prompt = wiz
	} else {
		prompt = &wizard.Auto{Approve: opts.AutoApprove, Out: os.Stdout}
	}

	workflow, err := resolveWorkflow(ctx, opts, wiz)
	if err != nil {
		return err
	}
	if workflow == session.WorkflowApplyExisting && opts.PlanFile == "" {
		return fmt.Errorf("the apply-existing workflow requires --plan")
	}

	tf := terraform.NewRunner(cfg.WorkDir, cfg.VarFile)
	catalog := &remediate.Catalog{
		Roles:  azure.NewClient(),
		Prompt: prompt,
		Env:    tf,
		Out:    os.Stdout,
		Scope:  cfg.Azure.GrantScope,
	}

	sessionOpts, err := buildSessionOptions(cfg, opts)
	if err != nil {
		return err
	}

	return newSession(cfg, tf, catalog, prompt, os.Stdout, workflow, sessionOpts...).Run(ctx)
}

// resolveWorkflow turns the --workflow flag into a workflow, prompting when
// the flag is absent and a terminal is available.
func resolveWorkflow(ctx context.Context, opts DeployOptions, wiz *wizard.Wizard) (session.Workflow, error) {
	if opts.Workflow != "" {
		return session.ParseWorkflow(opts.Workflow)
	}
	if wiz == nil {
		return "", fmt.Errorf("--workflow is required in non-interactive runs")
	}
	return selectWorkflow(ctx, wiz)
}

// buildSessionOptions assembles the optional session collaborators: the
// externally supplied plan and the blob mirror for artifacts.
func buildSessionOptions(cfg *config.Config, opts DeployOptions) ([]session.Option, error) {
	var sessionOpts []session.Option
	if opts.PlanFile != "" {
		sessionOpts = append(sessionOpts, session.WithExistingPlan(opts.PlanFile))
	}

	if cfg.ArtifactStore.Enabled() {
		conn := os.Getenv(cfg.ArtifactStore.ConnectionStringEnv)
		if conn == "" {
			return nil, fmt.Errorf("artifact store configured but %s is not set", cfg.ArtifactStore.ConnectionStringEnv)
		}
		uploader, err := newUploader(conn, cfg.ArtifactStore.Container)
		if err != nil {
			return nil, fmt.Errorf("configuring artifact store: %w", err)
		}
		sessionOpts = append(sessionOpts, session.WithUploader(uploader))
	}
	return sessionOpts, nil
}
