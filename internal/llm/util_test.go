package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	input := "```json\n[{\"url\": \"https://example.com\"}]\n```"
	assert.Equal(t, `[{"url": "https://example.com"}]`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_GenericFence(t *testing.T) {
	input := "```\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_FenceWithLanguage(t *testing.T) {
	input := "```javascript\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_NoFence(t *testing.T) {
	input := `[{"url": "https://example.com"}]`
	assert.Equal(t, input, CleanJSONBlock(input))
}

func TestCleanJSONBlock_WhitespaceOnly(t *testing.T) {
	assert.Equal(t, "", CleanJSONBlock("   \n  "))
}

func TestCleanJSONBlock_BraceOnFirstLine(t *testing.T) {
	// A brace right after the fence is content, not a language tag.
	input := "```\n{\"key\": \"value\"}\n```"
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}
