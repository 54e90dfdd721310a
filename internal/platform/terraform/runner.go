// Package terraform invokes the terraform binary as a subprocess and captures
// its output for classification. It deliberately knows nothing about the
// meaning of a plan or the state file format; those belong to the tool.
package terraform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ExitChangesPresent is terraform's reserved detailed exit code meaning "the
// plan succeeded and changes are present" (as opposed to 0 = no changes and
// 1 = error).
const ExitChangesPresent = 2

// Result is the outcome of one tool invocation. Output is the combined
// stdout+stderr, kept whole because error signatures can span lines.
type Result struct {
	Args     []string
	Output   string
	ExitCode int
}

// Ok reports whether the invocation exited zero.
func (r Result) Ok() bool { return r.ExitCode == 0 }

// Runner invokes terraform subcommands in a fixed working directory.
//
// ExtraEnv carries run-scoped settings (for example ARM_STORAGE_USE_AZUREAD
// after a key-auth remediation) that must apply to every subsequent
// invocation of this run without mutating the process environment.
type Runner struct {
	Bin      string
	Dir      string
	VarFile  string
	ExtraEnv map[string]string
}

// NewRunner returns a Runner for the given working directory.
func NewRunner(dir, varFile string) *Runner {
	return &Runner{Bin: "terraform", Dir: dir, VarFile: varFile}
}

// SetEnv records a run-scoped environment entry for subsequent invocations.
func (r *Runner) SetEnv(key, value string) {
	if r.ExtraEnv == nil {
		r.ExtraEnv = map[string]string{}
	}
	r.ExtraEnv[key] = value
}

// execCommand is a seam for tests.
var execCommand = func(ctx context.Context, dir string, env []string, bin string, args ...string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err == nil {
		return out, 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, exitErr.ExitCode(), nil
	}
	return out, -1, fmt.Errorf("running %s: %w", bin, err)
}

func (r *Runner) run(ctx context.Context, args ...string) (Result, error) {
	env := os.Environ()
	for k, v := range r.ExtraEnv {
		env = append(env, k+"="+v)
	}

	out, code, err := execCommand(ctx, r.Dir, env, r.Bin, args...)
	res := Result{Args: args, Output: string(out), ExitCode: code}
	if err != nil {
		return res, err
	}
	return res, nil
}

// Init runs terraform init with no interactive input.
func (r *Runner) Init(ctx context.Context) (Result, error) {
	return r.run(ctx, "init", "-input=false", "-no-color")
}

// Validate runs terraform validate.
func (r *Runner) Validate(ctx context.Context) (Result, error) {
	return r.run(ctx, "validate", "-no-color")
}

// PlanOptions selects the plan variant.
type PlanOptions struct {
	// OutFile receives the binary plan; required for a plan that will be
	// applied.
	OutFile string

	// Destroy produces a destruction plan.
	Destroy bool

	// DetailedExitCode asks for exit code 2 when changes are present, which
	// the drift check uses to distinguish "changes" from "error".
	DetailedExitCode bool

	// Targets limits the plan to specific resource addresses; used for the
	// staged re-invocation that works around count-not-determinable errors.
	Targets []string
}

// Plan runs terraform plan.
func (r *Runner) Plan(ctx context.Context, opts PlanOptions) (Result, error) {
	args := []string{"plan", "-input=false", "-no-color"}
	if r.VarFile != "" {
		args = append(args, "-var-file="+r.VarFile)
	}
	if opts.Destroy {
		args = append(args, "-destroy")
	}
	if opts.DetailedExitCode {
		args = append(args, "-detailed-exitcode")
	}
	for _, t := range opts.Targets {
		args = append(args, "-target="+t)
	}
	if opts.OutFile != "" {
		args = append(args, "-out="+opts.OutFile)
	}
	return r.run(ctx, args...)
}

// Apply applies a previously produced plan file. Applying without a plan file
// is not supported: every apply goes through a reviewed plan artifact.
func (r *Runner) Apply(ctx context.Context, planFile string) (Result, error) {
	if planFile == "" {
		return Result{}, fmt.Errorf("apply requires a plan file")
	}
	return r.run(ctx, "apply", "-input=false", "-no-color", planFile)
}

// ShowJSON renders a plan file as JSON.
func (r *Runner) ShowJSON(ctx context.Context, planFile string) (Result, error) {
	return r.run(ctx, "show", "-json", planFile)
}
