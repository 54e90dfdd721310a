// Package main is the entry point for the lzdeploy CLI.
//
// lzdeploy is an interactive deployment helper for Azure AI landing zones.
// It drives terraform and the Azure CLI through guarded workflows, classifies
// the failures those tools produce, and offers known remediations instead of
// leaving the operator to decode raw error output.
//
// Commands: deploy, plan, apply, destroy, doctor, version.
//
// For detailed usage information, run:
//
//	lzdeploy --help
package main

import (
	"fmt"
	"os"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/cmd/lzdeploy/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
