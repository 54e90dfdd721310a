// Package config loads and validates the lzdeploy project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the current directory when no --config flag
// is given.
const DefaultFileName = "lzdeploy.yaml"

// Config holds the project configuration.
type Config struct {
	ProjectName string `mapstructure:"project_name" yaml:"project_name"`

	// WorkDir is the directory holding the provisioning configuration; every
	// tool invocation runs there.
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir"`

	// VarFile is the tfvars-style document this tool may edit. Relative to
	// WorkDir.
	VarFile string `mapstructure:"var_file" yaml:"var_file"`

	// ArtifactDir receives timestamped plan copies.
	ArtifactDir string `mapstructure:"artifact_dir" yaml:"artifact_dir"`

	Network       NetworkPlan   `mapstructure:"network" yaml:"network"`
	Azure         AzureConfig   `mapstructure:"azure" yaml:"azure"`
	ArtifactStore ArtifactStore `mapstructure:"artifact_store" yaml:"artifact_store"`
}

// NetworkPlan describes the proposed address space and what it must not
// collide with.
type NetworkPlan struct {
	// AddressSpace is the CIDR this deployment wants to claim.
	AddressSpace string `mapstructure:"address_space" yaml:"address_space"`

	// Existing lists CIDRs already in use by peered or neighboring networks.
	Existing []string `mapstructure:"existing" yaml:"existing"`

	// ParentSpace bounds the search for a replacement when AddressSpace
	// collides (e.g. the organization's 10.0.0.0/8 allocation).
	ParentSpace string `mapstructure:"parent_space" yaml:"parent_space"`

	// BlockName is the block in VarFile holding the address_space property.
	BlockName string `mapstructure:"block_name" yaml:"block_name"`
}

// AzureConfig identifies the target subscription.
type AzureConfig struct {
	SubscriptionID string `mapstructure:"subscription_id" yaml:"subscription_id"`

	// GrantScope is where automated role grants land. Defaults to the
	// subscription scope.
	GrantScope string `mapstructure:"grant_scope" yaml:"grant_scope"`
}

// ArtifactStore optionally mirrors plan artifacts to a blob container.
type ArtifactStore struct {
	// ConnectionStringEnv names the environment variable holding the storage
	// connection string; the secret itself never lives in this file.
	ConnectionStringEnv string `mapstructure:"connection_string_env" yaml:"connection_string_env"`

	Container string `mapstructure:"container" yaml:"container"`
}

// Enabled reports whether blob mirroring is configured.
func (s ArtifactStore) Enabled() bool {
	return s.ConnectionStringEnv != "" && s.Container != ""
}

// Load reads and validates the configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults(baseDir string) {
	if c.WorkDir == "" {
		c.WorkDir = baseDir
	} else if !filepath.IsAbs(c.WorkDir) {
		c.WorkDir = filepath.Join(baseDir, c.WorkDir)
	}
	if c.ArtifactDir == "" {
		c.ArtifactDir = filepath.Join(c.WorkDir, "artifacts")
	}
	if c.Network.BlockName == "" {
		c.Network.BlockName = "network"
	}
	if c.Azure.GrantScope == "" && c.Azure.SubscriptionID != "" {
		c.Azure.GrantScope = "/subscriptions/" + c.Azure.SubscriptionID
	}
}

func (c *Config) validate() error {
	if c.ProjectName == "" {
		return fmt.Errorf("project_name is required")
	}
	if c.Azure.SubscriptionID == "" {
		return fmt.Errorf("azure.subscription_id is required")
	}
	if c.Network.AddressSpace != "" && c.VarFile == "" {
		return fmt.Errorf("var_file is required when network.address_space is set")
	}
	return nil
}

// VarFilePath returns the absolute path of the editable var file, or "".
func (c *Config) VarFilePath() string {
	if c.VarFile == "" {
		return ""
	}
	if filepath.IsAbs(c.VarFile) {
		return c.VarFile
	}
	return filepath.Join(c.WorkDir, c.VarFile)
}
