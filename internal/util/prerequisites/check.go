// Package prerequisites verifies that the external binaries this tool drives
// are present before any workflow starts.
package prerequisites

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Tool describes a client binary the deployment workflows shell out to.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

// DefaultTools returns the tools every workflow needs.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:        "terraform",
			Required:    true,
			Description: "Provisioning tool driven by every workflow",
			InstallURL:  "https://developer.hashicorp.com/terraform/install",
		},
		{
			Name:        "az",
			Required:    true,
			Description: "Azure CLI, used for identity checks and role-grant remediation",
			InstallURL:  "https://learn.microsoft.com/cli/azure/install-azure-cli",
		},
		{
			Name:        "git",
			Required:    false,
			Description: "Used to report the configuration revision in diagnostics",
			InstallURL:  "https://git-scm.com/downloads",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error naming the missing required tools, or nil.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools are available in PATH.
func Check(ctx context.Context, tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := exec.LookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			result.Version = toolVersion(ctx, tool.Name)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckDefault checks the default tool set.
func CheckDefault(ctx context.Context) *CheckResults {
	return Check(ctx, DefaultTools())
}

// toolVersion asks the tool for its version, best effort. The first output
// line is enough for a diagnostics report.
func toolVersion(ctx context.Context, name string) string {
	out, err := exec.CommandContext(ctx, name, "version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}
