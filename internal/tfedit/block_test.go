package tfedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `# landing zone network plan
network = {
  address_space = "10.0.0.0/22" # hub
  dns = {
    enabled = true
  }
}

compute = {
  sku = "Standard_D4s_v5"
}
`

func TestFindBlock(t *testing.T) {
	t.Parallel()

	block, err := FindBlock(sampleDoc, "network")
	require.NoError(t, err)

	assert.Equal(t, "network", block.Name)
	assert.Equal(t, byte('{'), sampleDoc[block.InnerSpan.Start-1])
	assert.Equal(t, byte('}'), sampleDoc[block.InnerSpan.End])
	assert.Equal(t, block.InnerSpan.Start-1, block.HeaderSpan.End)
	assert.Equal(t, block.InnerSpan.End+1, block.FullSpan.End)
	assert.Contains(t, block.Inner(sampleDoc), "address_space")
	assert.Contains(t, block.Inner(sampleDoc), "dns = {")
	assert.NotContains(t, block.Inner(sampleDoc), "compute")
}

func TestFindBlock_SecondBlock(t *testing.T) {
	t.Parallel()

	block, err := FindBlock(sampleDoc, "compute")
	require.NoError(t, err)
	assert.Contains(t, block.Inner(sampleDoc), "Standard_D4s_v5")
}

func TestFindBlock_NotFound(t *testing.T) {
	t.Parallel()

	_, err := FindBlock(sampleDoc, "storage")
	require.ErrorIs(t, err, ErrBlockNotFound)
}

func TestFindBlock_IdentifierBoundary(t *testing.T) {
	t.Parallel()

	doc := "networking = {\n  a = 1\n}\nnetwork = {\n  b = 2\n}\n"
	block, err := FindBlock(doc, "network")
	require.NoError(t, err)
	assert.Contains(t, block.Inner(doc), "b = 2")
	assert.NotContains(t, block.Inner(doc), "a = 1")
}

func TestFindBlock_BraceInString(t *testing.T) {
	t.Parallel()

	doc := "rules = {\n  pattern = \"{\\\"nested\\\": true}\"\n  extra = \"}\"\n  count = 3\n}\n"
	block, err := FindBlock(doc, "rules")
	require.NoError(t, err)
	assert.Contains(t, block.Inner(doc), "count = 3")
	assert.Equal(t, byte('}'), doc[block.InnerSpan.End])
	assert.Equal(t, len(doc)-1, block.FullSpan.End)
}

func TestFindBlock_BraceInComment(t *testing.T) {
	t.Parallel()

	doc := "tags = {\n  # closing } in a comment\n  // and another } here\n  env = \"prod\"\n}\n"
	block, err := FindBlock(doc, "tags")
	require.NoError(t, err)
	assert.Contains(t, block.Inner(doc), `env = "prod"`)
}

func TestFindBlock_LabeledBlock(t *testing.T) {
	t.Parallel()

	doc := "module \"hub\" {\n  source = \"./hub\"\n}\n"
	block, err := FindBlock(doc, "module")
	require.NoError(t, err)
	assert.Contains(t, block.Inner(doc), "source")
}

func TestFindBlock_MissingOpenBrace(t *testing.T) {
	t.Parallel()

	_, err := FindBlock("network = 17\n", "network")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no opening brace")
}

func TestFindBlock_Unbalanced(t *testing.T) {
	t.Parallel()

	_, err := FindBlock("network = {\n  a = {\n}\n", "network")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbalanced")
}

func TestReplaceBlockBody_RoundTrip(t *testing.T) {
	t.Parallel()

	// Replacing a block body with its own inner text is the identity.
	for _, name := range []string{"network", "compute"} {
		block, err := FindBlock(sampleDoc, name)
		require.NoError(t, err)
		assert.Equal(t, sampleDoc, ReplaceBlockBody(sampleDoc, block, block.Inner(sampleDoc)))
	}
}

func TestReplaceBlockBody_OutsideUntouched(t *testing.T) {
	t.Parallel()

	block, err := FindBlock(sampleDoc, "network")
	require.NoError(t, err)

	got := ReplaceBlockBody(sampleDoc, block, "\n  replaced = true\n")
	assert.Contains(t, got, "network = {\n  replaced = true\n}")
	assert.Contains(t, got, "# landing zone network plan")
	assert.Contains(t, got, "compute = {\n  sku = \"Standard_D4s_v5\"\n}")
}
