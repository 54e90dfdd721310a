package terraform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planJSON = `{
  "format_version": "1.2",
  "resource_changes": [
    {"address": "azurerm_resource_group.hub", "change": {"actions": ["create"]}},
    {"address": "azurerm_virtual_network.hub", "change": {"actions": ["create"]}},
    {"address": "azurerm_storage_account.logs", "change": {"actions": ["update"]}},
    {"address": "azurerm_key_vault.core", "change": {"actions": ["delete", "create"]}},
    {"address": "azurerm_role_assignment.old", "change": {"actions": ["delete"]}},
    {"address": "azurerm_subnet.unchanged", "change": {"actions": ["no-op"]}}
  ]
}`

func TestParsePlanSummary(t *testing.T) {
	t.Parallel()

	s, err := ParsePlanSummary([]byte(planJSON))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Create)
	assert.Equal(t, 1, s.Update)
	assert.Equal(t, 1, s.Replace)
	assert.Equal(t, 1, s.Delete)
	assert.Equal(t, 5, s.Total())
	assert.True(t, s.HasChanges())
	assert.Equal(t, "2 to create, 1 to update, 1 to replace, 1 to destroy", s.String())
}

func TestParsePlanSummary_Empty(t *testing.T) {
	t.Parallel()

	s, err := ParsePlanSummary([]byte(`{"format_version": "1.2"}`))
	require.NoError(t, err)
	assert.False(t, s.HasChanges())
}

func TestParsePlanSummary_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParsePlanSummary([]byte("not json"))
	require.Error(t, err)
}
