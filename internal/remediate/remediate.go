// Package remediate maps failure categories to corrective actions and tells
// the session how to continue. Automated actions (role grants, auth-mode
// switches) run after a single operator confirmation; advisory actions only
// print guidance. The catalog never guesses: an unclassified failure is never
// remediated.
package remediate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/classify"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/util/retry"
)

// Directive tells the session where to go after remediation.
type Directive int

const (
	// RetrySameStep re-enters the step that failed.
	RetrySameStep Directive = iota

	// RetryFromInit restarts the workflow from initialization, regenerating
	// every artifact on the way. Stale artifacts are never forced through.
	RetryFromInit

	// Abort terminates the session.
	Abort
)

func (d Directive) String() string {
	switch d {
	case RetrySameStep:
		return "retry-same-step"
	case RetryFromInit:
		return "retry-from-init"
	default:
		return "abort"
	}
}

// RoleClient is the subset of the az client automated actions need.
type RoleClient interface {
	SignedInObjectID(ctx context.Context) (string, error)
	EnsureRoleAssignment(ctx context.Context, scope, role, objectID string) (created bool, err error)
}

// Prompter supplies operator answers. The interactive implementation lives in
// the ui package; tests supply canned answers.
type Prompter interface {
	Confirm(ctx context.Context, title, description string) (bool, error)
	Select(ctx context.Context, title string, options []string) (int, error)
}

// EnvSetter threads run-scoped settings into subsequent tool invocations.
// *terraform.Runner satisfies it.
type EnvSetter interface {
	SetEnv(key, value string)
}

// Roles granted by automated remediation.
const (
	roleContributor     = "Contributor"
	roleBlobContributor = "Storage Blob Data Contributor"
)

// Catalog holds the collaborators remediation actions act through.
type Catalog struct {
	Roles  RoleClient
	Prompt Prompter
	Env    EnvSetter
	Out    io.Writer

	// Scope is where automated role grants land, normally the subscription.
	Scope string

	// PropagationDelay is waited after a new role assignment before the
	// failed step is retried. Overridable for tests.
	PropagationDelay time.Duration

	// RetryOptions tune the retry loop around az calls.
	RetryOptions []retry.Option
}

// Dispatch looks up the remediation for category and runs it. handled=false
// means nothing could (or was allowed to) be done and the directive is the
// caller's only guidance. The raw tool output has already been shown by the
// session before Dispatch is called.
func (c *Catalog) Dispatch(ctx context.Context, category classify.Category) (handled bool, directive Directive, err error) {
	switch category {
	case classify.VersionIncompatibility:
		c.printf("The installed provisioning tool does not satisfy the configuration's version constraints.")
		c.printf("Upgrade the tool (or relax required_version) and run again; no automated upgrade path is configured.")
		return false, Abort, nil

	case classify.StaleDependencyCount:
		return c.stagedReinvocation(ctx)

	case classify.AccessDenied:
		return c.grantRole(ctx, roleContributor,
			"Grant 'Contributor' on "+c.Scope+" to the signed-in principal?")

	case classify.KeyAuthDisabled:
		return c.keyAuthStrategy(ctx)

	case classify.MissingIdentityAfterCreate:
		c.printf("A just-created identity is not yet visible to the directory; this resolves itself once AAD replication catches up.")
		c.waitPropagation(ctx)
		return true, RetrySameStep, nil

	case classify.StalePlan:
		c.printf("The saved plan no longer matches the workspace state; it will not be forced through.")
		c.printf("Restarting from initialization to produce a fresh plan.")
		return true, RetryFromInit, nil

	case classify.DeprecationWarning:
		c.printf("Only deprecation warnings were recognized in the output; these do not block progress.")
		return true, RetrySameStep, nil

	default:
		c.printf("No remediation is known for this failure; manual intervention required.")
		return false, Abort, nil
	}
}

// stagedReinvocation handles count/for_each values that the tool cannot
// resolve in a single pass. Re-running from init with the partially created
// resources already in state lets the second pass resolve them.
func (c *Catalog) stagedReinvocation(ctx context.Context) (bool, Directive, error) {
	ok, err := c.Prompt.Confirm(ctx, "Staged re-invocation",
		"The tool could not determine a resource count before apply. Re-run the workflow from initialization so already-created resources resolve the count?")
	if err != nil {
		return false, Abort, err
	}
	if !ok {
		return false, Abort, nil
	}
	return true, RetryFromInit, nil
}

// grantRole grants role at the catalog scope to the signed-in principal,
// idempotently, then waits out AAD propagation if the assignment is new.
func (c *Catalog) grantRole(ctx context.Context, role, confirmText string) (bool, Directive, error) {
	ok, err := c.Prompt.Confirm(ctx, "Automated role grant", confirmText)
	if err != nil {
		return false, Abort, err
	}
	if !ok {
		return false, Abort, nil
	}

	objectID, err := c.Roles.SignedInObjectID(ctx)
	if err != nil {
		return false, Abort, fmt.Errorf("resolving signed-in principal: %w", err)
	}

	var created bool
	err = retry.Do(ctx, func() error {
		var grantErr error
		created, grantErr = c.Roles.EnsureRoleAssignment(ctx, c.Scope, role, objectID)
		return grantErr
	}, c.RetryOptions...)
	if err != nil {
		return false, Abort, fmt.Errorf("granting %q at %s: %w", role, c.Scope, err)
	}

	if created {
		c.printf("Granted %q at %s; waiting for the assignment to propagate.", role, c.Scope)
		c.waitPropagation(ctx)
	} else {
		c.printf("Role %q is already assigned at %s; retrying without changes.", role, c.Scope)
	}
	return true, RetrySameStep, nil
}

// keyAuthStrategy lets the operator choose how to deal with a storage account
// that rejects shared-key authentication.
func (c *Catalog) keyAuthStrategy(ctx context.Context) (bool, Directive, error) {
	choice, err := c.Prompt.Select(ctx, "Shared-key authentication is disabled on the target storage account", []string{
		"Grant a data-plane role and switch this run to AAD authentication (recommended)",
		"Switch this run to AAD authentication only (role already granted)",
		"Abort and resolve manually",
	})
	if err != nil {
		return false, Abort, err
	}

	switch choice {
	case 0:
		handled, directive, err := c.grantRole(ctx, roleBlobContributor,
			"Grant 'Storage Blob Data Contributor' on "+c.Scope+" to the signed-in principal?")
		if !handled || err != nil {
			return handled, directive, err
		}
		c.useAzureADAuth()
		return true, RetrySameStep, nil
	case 1:
		c.useAzureADAuth()
		return true, RetrySameStep, nil
	default:
		return false, Abort, nil
	}
}

// useAzureADAuth flips subsequent tool invocations of this run to AAD data-
// plane authentication. Run-scoped, not process-global.
func (c *Catalog) useAzureADAuth() {
	c.Env.SetEnv("ARM_STORAGE_USE_AZUREAD", "true")
	c.printf("Subsequent tool invocations in this run will use AAD storage authentication.")
}

func (c *Catalog) waitPropagation(ctx context.Context) {
	delay := c.PropagationDelay
	if delay == 0 {
		delay = 30 * time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func (c *Catalog) printf(format string, args ...any) {
	if c.Out == nil {
		return
	}
	fmt.Fprintf(c.Out, format+"\n", args...)
}
