package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	cmd := Apply()

	require.NotNil(t, cmd)
	assert.Equal(t, "apply", cmd.Use)
	assert.NotNil(t, cmd.RunE, "Apply command should have RunE function")
}

func TestApply_PlanFlag(t *testing.T) {
	cmd := Apply()

	flag := cmd.Flags().Lookup("plan")
	require.NotNil(t, flag, "plan flag should exist")
	assert.Equal(t, "", flag.DefValue)
}

func TestPlan(t *testing.T) {
	cmd := Plan()

	require.NotNil(t, cmd)
	assert.Equal(t, "plan", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.Nil(t, cmd.Flags().Lookup("workflow"), "plan command pins the workflow")
}

func TestDestroy(t *testing.T) {
	cmd := Destroy()

	require.NotNil(t, cmd)
	assert.Equal(t, "destroy", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	auto := cmd.Flags().Lookup("auto-approve")
	require.NotNil(t, auto, "auto-approve flag should exist")
}

func TestDoctor(t *testing.T) {
	cmd := Doctor()

	require.NotNil(t, cmd)
	assert.Equal(t, "doctor", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	config := cmd.Flags().Lookup("config")
	require.NotNil(t, config, "config flag should exist")
	assert.Equal(t, "c", config.Shorthand)
}
