package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/platform/terraform"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/tfedit"
)

// Issue is a diagnostics finding. Diagnostics never mutate infrastructure;
// at most they offer to rewrite the local var file with operator consent.
type Issue struct {
	Summary string
	Detail  string
}

const (
	stateFileName = "terraform.tfstate"
	lockFileName  = ".terraform.tfstate.lock.info"
	dotTerraform  = ".terraform"
)

// Diagnose runs the diagnostics checks without starting a workflow. The
// doctor command uses it for a standalone health report.
func (s *Session) Diagnose(ctx context.Context) ([]Issue, error) {
	return s.runDiagnostics(ctx)
}

// runDiagnostics performs the read-only checks of the Diagnosing state and
// returns the issue list. A returned error means diagnostics themselves could
// not run, which is fatal for the session.
func (s *Session) runDiagnostics(ctx context.Context) ([]Issue, error) {
	s.state = StateDiagnosing
	s.printf("[%s] checking workspace %s", StateDiagnosing, s.cfg.WorkDir)

	var issues []Issue
	issues = append(issues, s.checkStateFile()...)
	issues = append(issues, s.checkLockFile()...)

	addrIssues, err := s.checkAddressPlan(ctx)
	if err != nil {
		return nil, err
	}
	issues = append(issues, addrIssues...)

	if s.Workflow == WorkflowApplyExisting {
		if _, err := os.Stat(s.planFile); err != nil {
			issues = append(issues, Issue{
				Summary: "plan file not found",
				Detail:  fmt.Sprintf("%s does not exist or is unreadable", s.planFile),
			})
		}
	}

	issues = append(issues, s.checkDrift(ctx)...)
	return issues, nil
}

// checkStateFile verifies a local state file, when present, is parseable.
// Absence is normal: fresh workspaces and remote backends have none.
func (s *Session) checkStateFile() []Issue {
	path := filepath.Join(s.cfg.WorkDir, stateFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return []Issue{{Summary: "state file unreadable", Detail: err.Error()}}
	}
	if !json.Valid(data) {
		return []Issue{{
			Summary: "state file is not valid JSON",
			Detail:  path + " may be corrupted or mid-write by another process",
		}}
	}
	return nil
}

// checkLockFile reports a leftover or active lock, evidence that another
// operation holds or held the workspace.
func (s *Session) checkLockFile() []Issue {
	path := filepath.Join(s.cfg.WorkDir, lockFileName)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return []Issue{{
		Summary: "workspace lock file present",
		Detail:  path + " exists; another operation may be in progress",
	}}
}

// checkAddressPlan validates the proposed address space against existing
// ranges. On a collision with a known-free alternative it offers to rewrite
// the var file in place; accepting resolves the issue, declining records it.
func (s *Session) checkAddressPlan(ctx context.Context) ([]Issue, error) {
	report, err := s.cfg.CheckAddressPlan()
	if err != nil {
		return nil, err
	}
	if report == nil || report.Ok() {
		return nil, nil
	}

	issue := Issue{
		Summary: "address space collides with existing networks",
		Detail:  fmt.Sprintf("%s overlaps %v", s.cfg.Network.AddressSpace, report.Collisions),
	}
	if report.Suggestion == "" {
		return []Issue{issue}, nil
	}

	ok, err := s.prompt.Confirm(ctx, "Address space collision",
		fmt.Sprintf("%s overlaps %v. Rewrite %s to use the free range %s?",
			s.cfg.Network.AddressSpace, report.Collisions, s.cfg.VarFile, report.Suggestion))
	if err != nil {
		return nil, err
	}
	if !ok {
		issue.Detail += "; suggested free range: " + report.Suggestion
		return []Issue{issue}, nil
	}

	if err := s.rewriteAddressSpace(report.Suggestion); err != nil {
		return nil, fmt.Errorf("rewriting address space: %w", err)
	}
	s.cfg.Network.AddressSpace = report.Suggestion
	s.printf("Updated %s: %s.address_space = %q", s.cfg.VarFile, s.cfg.Network.BlockName, report.Suggestion)
	return nil, nil
}

// rewriteAddressSpace edits the address_space property inside the configured
// block of the var file, preserving all comments and formatting around it.
func (s *Session) rewriteAddressSpace(cidr string) error {
	path := s.cfg.VarFilePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc := string(data)
	block, err := tfedit.FindBlock(doc, s.cfg.Network.BlockName)
	if err != nil {
		return err
	}
	updated, err := tfedit.SetProperty(doc, block, "address_space", fmt.Sprintf("%q", cidr))
	if err != nil {
		return err
	}
	if updated == doc {
		return nil
	}
	return os.WriteFile(path, []byte(updated), 0o600)
}

// checkDrift runs a read-only plan to detect changes made outside this tool.
// It only makes sense in an initialized workspace with state, and only for
// workflows that build on the current state.
func (s *Session) checkDrift(ctx context.Context) []Issue {
	if s.Workflow == WorkflowDestroy {
		return nil
	}
	if _, err := os.Stat(filepath.Join(s.cfg.WorkDir, dotTerraform)); err != nil {
		return nil
	}
	if _, err := os.Stat(filepath.Join(s.cfg.WorkDir, stateFileName)); err != nil {
		return nil
	}

	res, err := s.tf.Plan(ctx, terraform.PlanOptions{DetailedExitCode: true})
	if err != nil {
		return []Issue{{Summary: "drift check could not run", Detail: err.Error()}}
	}
	switch res.ExitCode {
	case 0:
		return nil
	case terraform.ExitChangesPresent:
		return []Issue{{
			Summary: "configuration has drifted from deployed state",
			Detail:  "a read-only plan shows pending changes; review before applying",
		}}
	default:
		return []Issue{{
			Summary: "drift check failed",
			Detail:  res.Output,
		}}
	}
}

func (s *Session) printIssues(issues []Issue) {
	s.printf("Diagnostics found %d issue(s):", len(issues))
	for i, issue := range issues {
		s.printf("  %d. %s", i+1, issue.Summary)
		if issue.Detail != "" {
			s.printf("     %s", issue.Detail)
		}
	}
}
