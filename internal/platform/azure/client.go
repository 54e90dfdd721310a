// Package azure wraps the `az` CLI for the identity and role-assignment
// operations remediation needs. The CLI is the contract: this package builds
// argument arrays, runs the binary, and parses its JSON output. It never
// talks to ARM directly.
package azure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Client invokes az subcommands.
type Client struct {
	Bin string
}

// NewClient returns a Client using the az binary from PATH.
func NewClient() *Client {
	return &Client{Bin: "az"}
}

// execCommand is a seam for tests.
var execCommand = func(ctx context.Context, bin string, args ...string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
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

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	out, code, err := execCommand(ctx, c.Bin, args...)
	if err != nil {
		return out, err
	}
	if code != 0 {
		return out, fmt.Errorf("az %s exited %d: %s", args[0], code, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// Account identifies the active subscription.
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TenantID string `json:"tenantId"`
	User     struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"user"`
}

// AccountShow returns the signed-in account and subscription.
func (c *Client) AccountShow(ctx context.Context) (Account, error) {
	out, err := c.run(ctx, "account", "show", "-o", "json")
	if err != nil {
		return Account{}, err
	}
	var acct Account
	if err := json.Unmarshal(out, &acct); err != nil {
		return Account{}, fmt.Errorf("parsing account show output: %w", err)
	}
	return acct, nil
}

// SignedInObjectID returns the AAD object id of the signed-in principal,
// falling back from user to service-principal lookup, since pipeline runs are
// signed in as a service principal and `az ad signed-in-user` only works for
// users.
func (c *Client) SignedInObjectID(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "ad", "signed-in-user", "show", "--query", "id", "-o", "tsv")
	if err == nil {
		return strings.TrimSpace(string(out)), nil
	}

	acct, acctErr := c.AccountShow(ctx)
	if acctErr != nil {
		return "", fmt.Errorf("resolving signed-in principal: %w", errors.Join(err, acctErr))
	}
	if acct.User.Type != "servicePrincipal" {
		return "", fmt.Errorf("resolving signed-in principal: %w", err)
	}

	out, err = c.run(ctx, "ad", "sp", "show", "--id", acct.User.Name, "--query", "id", "-o", "tsv")
	if err != nil {
		return "", fmt.Errorf("resolving service principal object id: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// roleAssignment is the subset of `az role assignment list` output we read.
type roleAssignment struct {
	ID string `json:"id"`
}

// RoleAssignmentExists reports whether the principal already holds the role
// at the given scope.
func (c *Client) RoleAssignmentExists(ctx context.Context, scope, role, objectID string) (bool, error) {
	out, err := c.run(ctx, "role", "assignment", "list",
		"--assignee", objectID, "--role", role, "--scope", scope, "-o", "json")
	if err != nil {
		return false, err
	}
	var assignments []roleAssignment
	if err := json.Unmarshal(out, &assignments); err != nil {
		return false, fmt.Errorf("parsing role assignment list: %w", err)
	}
	return len(assignments) > 0, nil
}

// CreateRoleAssignment grants the role to the principal at the given scope.
func (c *Client) CreateRoleAssignment(ctx context.Context, scope, role, objectID string) error {
	_, err := c.run(ctx, "role", "assignment", "create",
		"--assignee", objectID, "--role", role, "--scope", scope, "-o", "none")
	return err
}

// EnsureRoleAssignment grants the role unless the assignment already exists.
// It returns true when a new assignment was created, which callers use to
// decide whether to wait out AAD propagation before retrying.
func (c *Client) EnsureRoleAssignment(ctx context.Context, scope, role, objectID string) (bool, error) {
	exists, err := c.RoleAssignmentExists(ctx, scope, role, objectID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := c.CreateRoleAssignment(ctx, scope, role, objectID); err != nil {
		return false, err
	}
	return true, nil
}

// ResourceExists probes for a resource by id; used by diagnostics.
func (c *Client) ResourceExists(ctx context.Context, resourceID string) (bool, error) {
	out, code, err := execCommand(ctx, c.Bin, "resource", "show", "--ids", resourceID, "-o", "none")
	if err != nil {
		return false, err
	}
	if code == 0 {
		return true, nil
	}
	if strings.Contains(string(out), "ResourceNotFound") || strings.Contains(string(out), "NotFound") {
		return false, nil
	}
	return false, fmt.Errorf("az resource show exited %d: %s", code, strings.TrimSpace(string(out)))
}
