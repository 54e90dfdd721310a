// Package wizard provides the interactive prompt implementations used by the
// deployment session. All prompts run through huh forms so the look and key
// handling stay consistent across the CLI.
package wizard

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/session"
)

// Wizard asks the operator through terminal forms. It satisfies the prompter
// interfaces of both the session state machine and the remediation catalog.
type Wizard struct {
	// Accessible switches huh to screen-reader friendly rendering.
	Accessible bool
}

// Confirm presents a yes/no question and blocks until answered.
func (w *Wizard) Confirm(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithAccessible(w.Accessible).RunWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	return ok, nil
}

// Select presents a single-choice list and returns the chosen index.
func (w *Wizard) Select(ctx context.Context, title string, options []string) (int, error) {
	opts := make([]huh.Option[int], len(options))
	for i, label := range options {
		opts[i] = huh.NewOption(label, i)
	}

	var choice int
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(title).
				Options(opts...).
				Value(&choice),
		),
	).WithAccessible(w.Accessible).RunWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("select prompt: %w", err)
	}
	return choice, nil
}

// workflowChoices maps menu labels to workflows, in display order.
var workflowChoices = []struct {
	Label    string
	Workflow session.Workflow
}{
	{"Plan and apply (full deployment cycle)", session.WorkflowPlanAndApply},
	{"Plan only (review changes, apply later)", session.WorkflowPlanOnly},
	{"Apply an existing plan file", session.WorkflowApplyExisting},
	{"Destroy the deployment", session.WorkflowDestroy},
}

// SelectWorkflow asks which deployment workflow to run.
func (w *Wizard) SelectWorkflow(ctx context.Context) (session.Workflow, error) {
	opts := make([]huh.Option[session.Workflow], len(workflowChoices))
	for i, c := range workflowChoices {
		opts[i] = huh.NewOption(c.Label, c.Workflow)
	}

	workflow := session.WorkflowPlanAndApply
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[session.Workflow]().
				Title("Deployment Workflow").
				Description("Choose how this session should run").
				Options(opts...).
				Value(&workflow),
		),
	).WithAccessible(w.Accessible).RunWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("workflow prompt: %w", err)
	}
	return workflow, nil
}
