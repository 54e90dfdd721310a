package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/config"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/platform/terraform"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/session"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/ui"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/ui/wizard"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/util/prerequisites"
)

// diagnoser is the part of session.Session the doctor drives.
type diagnoser interface {
	Diagnose(ctx context.Context) ([]session.Issue, error)
}

// newDiagnoser builds a diagnostics-only session. Replaceable in tests.
var newDiagnoser = func(cfg *config.Config, out io.Writer) diagnoser {
	tf := terraform.NewRunner(cfg.WorkDir, cfg.VarFile)
	// Doctor is read-only: the Auto prompter declines every offered fix, so
	// collisions are reported instead of rewritten.
	return session.New(cfg, tf, nil, &wizard.Auto{Out: out}, out, session.WorkflowPlanOnly)
}

// Doctor handles the doctor command.
//
// It reports tool availability and workspace health without modifying
// anything. A missing configuration degrades to a tooling-only report rather
// than failing, so doctor is usable before a project is set up.
func Doctor(ctx context.Context, configPath string) error {
	out := os.Stdout
	styled := isInteractive()

	fmt.Fprintln(out, heading(styled, "Client tools"))
	prereq := checkPrerequisites(ctx)
	printToolResults(out, styled, prereq)

	fmt.Fprintln(out, heading(styled, "Workspace"))
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(out, "  %s configuration: %v\n", mark(styled, false), err)
		fmt.Fprintln(out, "  workspace checks skipped")
		return prereq.Error()
	}
	fmt.Fprintf(out, "  %s configuration: project %s, subscription %s\n",
		mark(styled, true), cfg.ProjectName, cfg.Azure.SubscriptionID)

	issues, err := newDiagnoser(cfg, out).Diagnose(ctx)
	if err != nil {
		return fmt.Errorf("diagnostics failed: %w", err)
	}
	printIssues(out, styled, issues)

	if err := prereq.Error(); err != nil {
		return err
	}
	if len(issues) > 0 {
		return fmt.Errorf("doctor found %d issue(s)", len(issues))
	}
	return nil
}

func printToolResults(out io.Writer, styled bool, results *prerequisites.CheckResults) {
	for _, res := range results.Results {
		if res.Found {
			detail := res.Path
			if res.Version != "" {
				detail += " (" + res.Version + ")"
			}
			fmt.Fprintf(out, "  %s %s: %s\n", mark(styled, true), res.Tool.Name, detail)
			continue
		}
		line := fmt.Sprintf("  %s %s: not found - %s", mark(styled, false), res.Tool.Name, res.Tool.InstallURL)
		if !res.Tool.Required {
			line = fmt.Sprintf("  %s %s: not found (optional)", warn(styled), res.Tool.Name)
		}
		fmt.Fprintln(out, line)
	}
}

func printIssues(out io.Writer, styled bool, issues []session.Issue) {
	if len(issues) == 0 {
		fmt.Fprintf(out, "  %s no workspace issues found\n", mark(styled, true))
		return
	}
	for _, issue := range issues {
		fmt.Fprintf(out, "  %s %s\n", mark(styled, false), issue.Summary)
		if issue.Detail != "" {
			fmt.Fprintf(out, "     %s\n", dim(styled, issue.Detail))
		}
	}
}

func heading(styled bool, s string) string {
	if styled {
		return ui.SectionStyle.Render(s)
	}
	return s
}

func mark(styled, ok bool) string {
	if ok {
		if styled {
			return ui.OkStyle.Render(ui.CheckMark)
		}
		return ui.CheckMark
	}
	if styled {
		return ui.FailedStyle.Render(ui.CrossMark)
	}
	return ui.CrossMark
}

func warn(styled bool) string {
	if styled {
		return ui.WarningStyle.Render(ui.WarnMark)
	}
	return ui.WarnMark
}

func dim(styled bool, s string) string {
	if styled {
		return ui.DimStyle.Render(s)
	}
	return s
}
