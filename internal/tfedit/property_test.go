package tfedit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFind(t *testing.T, doc, name string) Block {
	t.Helper()
	block, err := FindBlock(doc, name)
	require.NoError(t, err)
	return block
}

func TestGetProperty(t *testing.T) {
	t.Parallel()

	doc := "network = {\n  address_space = \"10.0.0.0/22\" # hub range\n  peers = 3\n}\n"
	block := mustFind(t, doc, "network")

	v, ok := GetProperty(doc, block, "address_space")
	require.True(t, ok)
	assert.Equal(t, `"10.0.0.0/22"`, v)

	v, ok = GetProperty(doc, block, "peers")
	require.True(t, ok)
	assert.Equal(t, "3", v)

	_, ok = GetProperty(doc, block, "absent")
	assert.False(t, ok)
}

func TestGetProperty_HashInsideString(t *testing.T) {
	t.Parallel()

	doc := "tags = {\n  label = \"a#b\" # real comment\n}\n"
	block := mustFind(t, doc, "tags")

	v, ok := GetProperty(doc, block, "label")
	require.True(t, ok)
	assert.Equal(t, `"a#b"`, v)
}

func TestSetProperty_ReplacesFirstAndKeepsComment(t *testing.T) {
	t.Parallel()

	doc := "network = {\n  address_space = \"10.0.0.0/22\"  # hub range\n}\n"
	block := mustFind(t, doc, "network")

	got, err := SetProperty(doc, block, "address_space", `"10.1.0.0/22"`)
	require.NoError(t, err)
	assert.Equal(t, "network = {\n  address_space = \"10.1.0.0/22\"  # hub range\n}\n", got)
}

func TestSetProperty_Idempotent(t *testing.T) {
	t.Parallel()

	doc := "network = {\n  address_space = \"10.0.0.0/22\" # hub\n  peers = 3\n}\n"
	block := mustFind(t, doc, "network")

	once, err := SetProperty(doc, block, "peers", "5")
	require.NoError(t, err)

	block = mustFind(t, once, "network")
	twice, err := SetProperty(once, block, "peers", "5")
	require.NoError(t, err)
	assert.Equal(t, once, twice)

	v, ok := GetProperty(twice, mustFind(t, twice, "network"), "peers")
	require.True(t, ok)
	assert.Equal(t, "5", v)
}

func TestSetProperty_CollapsesDuplicates(t *testing.T) {
	t.Parallel()

	doc := "network = {\n  peers = 1\n  other = true\n  peers = 2\n}\n"
	block := mustFind(t, doc, "network")

	got, err := SetProperty(doc, block, "peers", "9")
	require.NoError(t, err)
	assert.Equal(t, "network = {\n  peers = 9\n  other = true\n}\n", got)
	assert.Equal(t, 1, strings.Count(got, "peers"))
}

func TestSetProperty_AppendsWhenAbsent(t *testing.T) {
	t.Parallel()

	doc := "network = {\n  peers = 1\n}\n"
	block := mustFind(t, doc, "network")

	got, err := SetProperty(doc, block, "dns_enabled", "true")
	require.NoError(t, err)
	assert.Equal(t, "network = {\n  peers = 1\n  dns_enabled = true\n}\n", got)
}

func TestSetProperty_AppendsIntoEmptyBlock(t *testing.T) {
	t.Parallel()

	doc := "network = {}\n"
	block := mustFind(t, doc, "network")

	got, err := SetProperty(doc, block, "peers", "1")
	require.NoError(t, err)
	assert.Equal(t, "network = {\n  peers = 1\n}\n", got)
}

func TestSetProperty_RejectsMultilineValue(t *testing.T) {
	t.Parallel()

	doc := "network = {\n  peers = 1\n}\n"
	block := mustFind(t, doc, "network")

	_, err := SetProperty(doc, block, "peers", "1\n2")
	require.Error(t, err)
}

func TestSetProperty_LeavesOtherBlocksUntouched(t *testing.T) {
	t.Parallel()

	doc := "alpha = { x = 1 }\nbeta = { y = 2 }\n"
	block := mustFind(t, doc, "alpha")

	got, err := SetProperty(doc, block, "x", "5")
	require.NoError(t, err)
	assert.Contains(t, got, "beta = { y = 2 }")
	assert.Contains(t, got, "x = 5")
	assert.NotContains(t, got, "x = 1")
}

func TestSetProperty_CRLF(t *testing.T) {
	t.Parallel()

	doc := "network = {\r\n  peers = 1\r\n}\r\n"
	block := mustFind(t, doc, "network")

	got, err := SetProperty(doc, block, "peers", "2")
	require.NoError(t, err)
	assert.Equal(t, "network = {\r\n  peers = 2\r\n}\r\n", got)

	block = mustFind(t, got, "network")
	appended, err := SetProperty(got, block, "dns", "true")
	require.NoError(t, err)
	assert.Equal(t, "network = {\r\n  peers = 2\r\n  dns = true\r\n}\r\n", appended)
}
