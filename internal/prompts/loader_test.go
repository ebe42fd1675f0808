package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownPrompts(t *testing.T) {
	for _, key := range []string{"rerank-candidates", "explain-results"} {
		prompt, err := Get("search.json", key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, prompt, key)
	}
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("search.json", "nope")
	assert.Error(t, err)
}

func TestGet_UnknownFile(t *testing.T) {
	_, err := Get("missing.json", "rerank-candidates")
	assert.Error(t, err)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() { MustGet("search.json", "nope") })
}

func TestFormat(t *testing.T) {
	out := Format("Query: {{.Query}} ({{.Limit}})", map[string]string{
		"Query": "comics",
		"Limit": "10",
	})
	assert.Equal(t, "Query: comics (10)", out)
}

func TestFormat_UnusedPlaceholderLeftAlone(t *testing.T) {
	out := Format("{{.Other}}", map[string]string{"Query": "x"})
	assert.Equal(t, "{{.Other}}", out)
}

func TestRerankPromptHasPlaceholders(t *testing.T) {
	prompt := MustGet("search.json", "rerank-candidates")
	assert.Contains(t, prompt, "{{.Query}}")
	assert.Contains(t, prompt, "{{.Candidates}}")
	assert.Contains(t, prompt, "{{.Limit}}")
}
