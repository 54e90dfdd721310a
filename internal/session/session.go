// Package session drives one deployment run as a state machine: diagnostics,
// then a chosen workflow of tool invocations, routing every failure through
// classification and remediation. The session decides transitions; it never
// renders prompts itself and never mutates the process environment.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/artifacts"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/classify"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/config"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/platform/terraform"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/remediate"
)

// ErrAborted is returned by Run when the session ends in the Aborted state.
// The process exit code for an aborted run is 1.
var ErrAborted = errors.New("deployment aborted")

// State names a position in the deployment state machine.
type State string

// Session states. Complete and Aborted are the only terminal states.
const (
	StateDiagnosing     State = "diagnosing"
	StateInitializing   State = "initializing"
	StateValidating     State = "validating"
	StatePlanning       State = "planning"
	StateApplyConfirm   State = "apply-confirm"
	StateApplying       State = "applying"
	StateDestroyConfirm State = "destroy-confirm"
	StateDestroying     State = "destroying"
	StateRemediating    State = "remediating"
	StateComplete       State = "complete"
	StateAborted        State = "aborted"
)

// Workflow is an operator-selectable end-to-end sequence.
type Workflow string

// The supported workflows.
const (
	WorkflowPlanOnly      Workflow = "plan-only"
	WorkflowPlanAndApply  Workflow = "plan-and-apply"
	WorkflowApplyExisting Workflow = "apply-existing"
	WorkflowDestroy       Workflow = "destroy"
)

// ParseWorkflow validates a workflow name from a flag.
func ParseWorkflow(s string) (Workflow, error) {
	switch Workflow(s) {
	case WorkflowPlanOnly, WorkflowPlanAndApply, WorkflowApplyExisting, WorkflowDestroy:
		return Workflow(s), nil
	}
	return "", fmt.Errorf("unknown workflow %q (want plan-only, plan-and-apply, apply-existing or destroy)", s)
}

// Runner is the provisioning-tool surface the session drives.
// *terraform.Runner satisfies it.
type Runner interface {
	Init(ctx context.Context) (terraform.Result, error)
	Validate(ctx context.Context) (terraform.Result, error)
	Plan(ctx context.Context, opts terraform.PlanOptions) (terraform.Result, error)
	Apply(ctx context.Context, planFile string) (terraform.Result, error)
	ShowJSON(ctx context.Context, planFile string) (terraform.Result, error)
}

// Dispatcher routes a classified failure to remediation.
// *remediate.Catalog satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, category classify.Category) (handled bool, directive remediate.Directive, err error)
}

// Prompter supplies operator answers for the confirmation gates.
type Prompter interface {
	Confirm(ctx context.Context, title, description string) (bool, error)
	Select(ctx context.Context, title string, options []string) (int, error)
}

// Uploader mirrors archived artifacts; optional.
type Uploader interface {
	Upload(ctx context.Context, archive artifacts.Archive) error
}

// Session is one deployment run. Create it with New, run it once with Run,
// discard it. Nothing is persisted beyond the files the tool itself writes.
type Session struct {
	Workflow Workflow

	cfg      *config.Config
	tf       Runner
	dispatch Dispatcher
	prompt   Prompter
	out      io.Writer
	uploader Uploader

	state         State
	lastCompleted State
	artifacts     map[string]string

	// planFile is the plan being built, or the externally supplied plan for
	// the apply-existing workflow.
	planFile string

	// maxStepAttempts bounds remediation cycles for a single step so a
	// remediation that never helps cannot loop forever.
	maxStepAttempts int

	now func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithExistingPlan supplies the plan file for the apply-existing workflow.
func WithExistingPlan(path string) Option {
	return func(s *Session) { s.planFile = path }
}

// WithUploader mirrors plan artifacts to a blob container.
func WithUploader(u Uploader) Option {
	return func(s *Session) { s.uploader = u }
}

// WithClock overrides the artifact timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New builds a session for one workflow run.
func New(cfg *config.Config, tf Runner, dispatch Dispatcher, prompt Prompter, out io.Writer, workflow Workflow, opts ...Option) *Session {
	s := &Session{
		Workflow:        workflow,
		cfg:             cfg,
		tf:              tf,
		dispatch:        dispatch,
		prompt:          prompt,
		out:             out,
		state:           StateDiagnosing,
		artifacts:       map[string]string{},
		maxStepAttempts: 3,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// Artifacts returns the paths produced so far, keyed by kind.
func (s *Session) Artifacts() map[string]string { return s.artifacts }

// Run executes the workflow to a terminal state. It returns nil on Complete
// and ErrAborted (possibly wrapped with detail) on Aborted.
func (s *Session) Run(ctx context.Context) error {
	if s.Workflow == WorkflowApplyExisting && s.planFile == "" {
		return s.abort("the apply-existing workflow requires a plan file")
	}

	issues, err := s.runDiagnostics(ctx)
	if err != nil {
		return s.abort(fmt.Sprintf("diagnostics failed: %v", err))
	}
	if len(issues) > 0 {
		s.printIssues(issues)
		ok, err := s.prompt.Confirm(ctx, "Diagnostics found issues",
			fmt.Sprintf("%d issue(s) were found. Continue anyway?", len(issues)))
		if err != nil {
			return s.abort(fmt.Sprintf("confirmation failed: %v", err))
		}
		if !ok {
			// Declining the diagnostics gate does not consume a remediation
			// cycle; it goes straight to Aborted.
			return s.abort("operator declined to continue past diagnostics issues")
		}
	}
	s.completed(StateDiagnosing)
	s.state = StateInitializing

	for {
		switch s.state {
		case StateInitializing:
			if err := s.toolStep(ctx, StateInitializing, StateValidating, func() (terraform.Result, error) {
				return s.tf.Init(ctx)
			}); err != nil {
				return err
			}

		case StateValidating:
			next := StatePlanning
			if s.Workflow == WorkflowApplyExisting {
				next = StateApplyConfirm
			}
			if err := s.toolStep(ctx, StateValidating, next, func() (terraform.Result, error) {
				return s.tf.Validate(ctx)
			}); err != nil {
				return err
			}

		case StatePlanning:
			if err := s.planStep(ctx); err != nil {
				return err
			}

		case StateApplyConfirm:
			if err := s.confirmGate(ctx, StateApplyConfirm, StateApplying,
				"Apply the plan?", "The plan at "+s.planFile+" will be applied to subscription "+s.cfg.Azure.SubscriptionID+"."); err != nil {
				return err
			}

		case StateApplying:
			if err := s.toolStep(ctx, StateApplying, StateComplete, func() (terraform.Result, error) {
				return s.tf.Apply(ctx, s.planFile)
			}); err != nil {
				return err
			}

		case StateDestroyConfirm:
			if err := s.confirmGate(ctx, StateDestroyConfirm, StateDestroying,
				"Destroy the deployment?", "All resources in the destruction plan at "+s.planFile+" will be removed."); err != nil {
				return err
			}

		case StateDestroying:
			if err := s.toolStep(ctx, StateDestroying, StateComplete, func() (terraform.Result, error) {
				return s.tf.Apply(ctx, s.planFile)
			}); err != nil {
				return err
			}

		case StateComplete:
			s.printf("Workflow %s complete.", s.Workflow)
			return nil

		default:
			return s.abort(fmt.Sprintf("reached unexpected state %s", s.state))
		}
	}
}

// confirmGate is a mandatory human-in-the-loop gate before a mutating step.
// There is no path into Applying or Destroying that skips it, and an earlier
// affirmative answer in the same run never carries over.
func (s *Session) confirmGate(ctx context.Context, gate, next State, title, description string) error {
	s.state = gate
	ok, err := s.prompt.Confirm(ctx, title, description)
	if err != nil {
		return s.abort(fmt.Sprintf("confirmation failed: %v", err))
	}
	if !ok {
		return s.abort("operator declined at " + string(gate))
	}
	s.completed(gate)
	s.state = next
	return nil
}

// toolStep runs one external invocation, retrying through remediation per the
// dispatcher's directives.
func (s *Session) toolStep(ctx context.Context, step, next State, invoke func() (terraform.Result, error)) error {
	for attempt := 1; ; attempt++ {
		s.state = step
		s.printf("[%s] running...", step)

		res, err := invoke()
		if err != nil {
			return s.abort(fmt.Sprintf("%s: %v", step, err))
		}
		if res.Ok() {
			s.warnOnDeprecation(res.Output)
			s.completed(step)
			s.state = next
			return nil
		}

		directive, derr := s.remediateFailure(ctx, step, res)
		if derr != nil {
			return derr
		}
		switch directive {
		case remediate.RetrySameStep:
			if attempt >= s.maxStepAttempts {
				return s.abort(fmt.Sprintf("%s still failing after %d attempts", step, attempt))
			}
		case remediate.RetryFromInit:
			if s.Workflow == WorkflowApplyExisting {
				return s.abort("the supplied plan can no longer be applied; run a fresh plan-and-apply cycle")
			}
			s.state = StateInitializing
			s.planFile = ""
			return nil
		}
	}
}

// remediateFailure surfaces the raw output, classifies it, and dispatches.
// The full tool output is always shown before any automated remediation so
// the operator can override.
func (s *Session) remediateFailure(ctx context.Context, step State, res terraform.Result) (remediate.Directive, error) {
	s.printf("[%s] failed (exit %d). Tool output follows:", step, res.ExitCode)
	fmt.Fprintln(s.out, res.Output)

	category := classify.Classify(res.Output)
	s.printf("[%s] classified as: %s", step, category)

	s.state = StateRemediating
	handled, directive, err := s.dispatch.Dispatch(ctx, category)
	if err != nil {
		return directive, s.abort(fmt.Sprintf("remediation for %s failed: %v", category, err))
	}
	if !handled && directive == remediate.Abort {
		return directive, s.abort(fmt.Sprintf("unremediated failure: %s", category))
	}
	if directive == remediate.Abort {
		return directive, s.abort(fmt.Sprintf("remediation directed abort for %s", category))
	}
	s.printf("[%s] remediation done; next: %s", step, directive)
	return directive, nil
}

// planStep produces the plan artifact for the active workflow and decides
// where to go next.
func (s *Session) planStep(ctx context.Context) error {
	outFile := filepath.Join(s.cfg.ArtifactDir, "tfplan.bin")
	if err := os.MkdirAll(s.cfg.ArtifactDir, 0o750); err != nil {
		return s.abort(fmt.Sprintf("creating artifact dir: %v", err))
	}

	opts := terraform.PlanOptions{
		OutFile:          outFile,
		Destroy:          s.Workflow == WorkflowDestroy,
		DetailedExitCode: true,
	}

	for attempt := 1; ; attempt++ {
		s.state = StatePlanning
		s.printf("[%s] running...", StatePlanning)

		res, err := s.tf.Plan(ctx, opts)
		if err != nil {
			return s.abort(fmt.Sprintf("planning: %v", err))
		}

		switch res.ExitCode {
		case 0, terraform.ExitChangesPresent:
			s.warnOnDeprecation(res.Output)
			s.planFile = outFile
			s.artifacts["plan"] = outFile
			s.completed(StatePlanning)

			changes := res.ExitCode == terraform.ExitChangesPresent
			return s.afterPlan(ctx, changes)

		default:
			directive, derr := s.remediateFailure(ctx, StatePlanning, res)
			if derr != nil {
				return derr
			}
			switch directive {
			case remediate.RetrySameStep:
				if attempt >= s.maxStepAttempts {
					return s.abort(fmt.Sprintf("planning still failing after %d attempts", attempt))
				}
			case remediate.RetryFromInit:
				s.state = StateInitializing
				s.planFile = ""
				return nil
			}
		}
	}
}

// afterPlan archives the plan and routes to the next state.
func (s *Session) afterPlan(ctx context.Context, changes bool) error {
	show, err := s.tf.ShowJSON(ctx, s.planFile)
	if err != nil || !show.Ok() {
		// The binary plan is still usable; the JSON rendering is for
		// reporting only.
		s.printf("[%s] warning: could not render plan as JSON", StatePlanning)
	} else {
		if summary, perr := terraform.ParsePlanSummary([]byte(show.Output)); perr == nil {
			s.printf("Plan: %s", summary)
		}
		archive, aerr := artifacts.Store(s.cfg.ArtifactDir, s.planFile, []byte(show.Output), s.now())
		if aerr != nil {
			s.printf("[%s] warning: archiving failed: %v", StatePlanning, aerr)
		} else {
			s.artifacts["plan-archive"] = archive.PlanPath
			s.artifacts["plan-json"] = archive.JSONPath
			if s.uploader != nil {
				if uerr := s.uploader.Upload(ctx, archive); uerr != nil {
					s.printf("[%s] warning: artifact upload failed: %v", StatePlanning, uerr)
				}
			}
		}
	}

	if !changes {
		s.printf("No changes detected; nothing to do.")
		s.state = StateComplete
		return nil
	}

	switch s.Workflow {
	case WorkflowPlanOnly:
		s.printf("Plan written to %s; review it and run the apply-existing workflow to apply.", s.planFile)
		s.state = StateComplete
	case WorkflowPlanAndApply:
		s.state = StateApplyConfirm
	case WorkflowDestroy:
		s.state = StateDestroyConfirm
	default:
		return s.abort(fmt.Sprintf("workflow %s cannot continue after planning", s.Workflow))
	}
	return nil
}

// warnOnDeprecation surfaces deprecation warnings in otherwise successful
// output. They never block progress and never prompt.
func (s *Session) warnOnDeprecation(output string) {
	if classify.Classify(output) == classify.DeprecationWarning {
		s.printf("Note: the tool reported deprecation warnings; review them before the next upgrade.")
	}
}

// abort transitions to the terminal Aborted state, reporting enough for a
// manual resumption: the reason, the last completed state, and any artifacts
// produced before the failure.
func (s *Session) abort(reason string) error {
	s.state = StateAborted
	s.printf("Aborted: %s", reason)
	if s.lastCompleted != "" {
		s.printf("Last completed state: %s", s.lastCompleted)
	}
	for kind, path := range s.artifacts {
		s.printf("Artifact %s: %s", kind, path)
	}
	return fmt.Errorf("%w: %s", ErrAborted, reason)
}

func (s *Session) completed(state State) {
	s.lastCompleted = state
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}
