package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot(t *testing.T) {
	cmd := Root()

	require.NotNil(t, cmd)
	assert.Equal(t, "lzdeploy", cmd.Use)
}

func TestRoot_HasAllCommands(t *testing.T) {
	cmd := Root()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"deploy", "plan", "apply", "destroy", "doctor", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
