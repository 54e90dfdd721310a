// Package handlers implements the command logic behind the CLI. Commands
// parse flags; handlers load configuration, wire the collaborators, and run
// the session.
package handlers

import (
	"fmt"
	"os"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/config"
)

// Factory function variables - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// loadConfigFile parses and validates a configuration file.
	loadConfigFile = config.Load
)

// loadConfig resolves the configuration path and loads it. An empty path
// falls back to lzdeploy.yaml in the current directory.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if !fileExists(config.DefaultFileName) {
			return nil, fmt.Errorf("no configuration found: pass --config or create %s", config.DefaultFileName)
		}
		path = config.DefaultFileName
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
