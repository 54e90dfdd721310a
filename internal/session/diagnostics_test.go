package session

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/config"
	"github.com/gusitde/microsoft-ai-landingzone-sub000/internal/platform/terraform"
)

func TestDiagnostics_CorruptStateFile(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WorkDir, stateFileName), []byte("{truncated"), 0o600))

	s := New(cfg, &fakeTF{}, &fakeDispatch{}, &fakePrompt{}, &bytes.Buffer{}, WorkflowPlanOnly)
	issues, err := s.runDiagnostics(context.Background())

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Summary, "not valid JSON")
}

func TestDiagnostics_LockFilePresent(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WorkDir, lockFileName), []byte("{}"), 0o600))

	s := New(cfg, &fakeTF{}, &fakeDispatch{}, &fakePrompt{}, &bytes.Buffer{}, WorkflowPlanOnly)
	issues, err := s.runDiagnostics(context.Background())

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Summary, "lock file")
}

func TestDiagnostics_DriftDetected(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WorkDir, stateFileName), []byte(`{"version":4}`), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(cfg.WorkDir, dotTerraform), 0o750))

	tf := &fakeTF{planResults: []terraform.Result{{ExitCode: terraform.ExitChangesPresent}}}
	s := New(cfg, tf, &fakeDispatch{}, &fakePrompt{}, &bytes.Buffer{}, WorkflowPlanOnly)
	issues, err := s.runDiagnostics(context.Background())

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Summary, "drifted")
	// The drift check is read-only: no -out file.
	assert.Empty(t, tf.lastPlanOpts.OutFile)
	assert.True(t, tf.lastPlanOpts.DetailedExitCode)
}

func TestDiagnostics_DriftSkippedForDestroy(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WorkDir, stateFileName), []byte(`{"version":4}`), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(cfg.WorkDir, dotTerraform), 0o750))

	tf := &fakeTF{}
	s := New(cfg, tf, &fakeDispatch{}, &fakePrompt{}, &bytes.Buffer{}, WorkflowDestroy)
	issues, err := s.runDiagnostics(context.Background())

	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Zero(t, tf.planCalls)
}

const collidingVarFile = `# landing zone inputs
network = {
  address_space = "10.0.1.0/24" # chosen by the template
  dns_servers   = ["10.0.1.4"]
}
`

func collisionConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testConfig(t)
	cfg.VarFile = "landingzone.tfvars"
	cfg.Network = config.NetworkPlan{
		AddressSpace: "10.0.1.0/24",
		Existing:     []string{"10.0.0.0/23"},
		ParentSpace:  "10.0.0.0/16",
		BlockName:    "network",
	}
	require.NoError(t, os.WriteFile(cfg.VarFilePath(), []byte(collidingVarFile), 0o600))
	return cfg
}

func TestDiagnostics_AddressCollisionFixAccepted(t *testing.T) {
	t.Parallel()

	cfg := collisionConfig(t)
	prompt := &fakePrompt{confirms: []bool{true}}

	s := New(cfg, &fakeTF{}, &fakeDispatch{}, prompt, &bytes.Buffer{}, WorkflowPlanOnly)
	issues, err := s.runDiagnostics(context.Background())

	require.NoError(t, err)
	assert.Empty(t, issues, "an accepted fix resolves the issue")
	assert.Contains(t, prompt.titles, "Address space collision")

	data, err := os.ReadFile(cfg.VarFilePath())
	require.NoError(t, err)
	// The free /24 after 10.0.0.0/23 is 10.0.2.0/24; the comment survives.
	assert.Contains(t, string(data), `address_space = "10.0.2.0/24" # chosen by the template`)
	assert.Contains(t, string(data), "# landing zone inputs")
	assert.Contains(t, string(data), `dns_servers   = ["10.0.1.4"]`)
	assert.Equal(t, "10.0.2.0/24", cfg.Network.AddressSpace)
}

func TestDiagnostics_AddressCollisionFixDeclined(t *testing.T) {
	t.Parallel()

	cfg := collisionConfig(t)
	original, err := os.ReadFile(cfg.VarFilePath())
	require.NoError(t, err)

	prompt := &fakePrompt{confirms: []bool{false}}
	s := New(cfg, &fakeTF{}, &fakeDispatch{}, prompt, &bytes.Buffer{}, WorkflowPlanOnly)
	issues, err := s.runDiagnostics(context.Background())

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Summary, "collides")
	assert.Contains(t, issues[0].Detail, "10.0.2.0/24")

	after, err := os.ReadFile(cfg.VarFilePath())
	require.NoError(t, err)
	assert.Equal(t, original, after, "declining must leave the var file untouched")
}
