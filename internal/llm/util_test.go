package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	input := "```json\n{\"key\": \"value\"}\n```"
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_GenericFence(t *testing.T) {
	input := "```\n{\"key\": \"value\"}\n```"
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_FenceWithLanguage(t *testing.T) {
	input := "```javascript\n{\"key\": \"value\"}\n```"
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_NoFence(t *testing.T) {
	input := `{"key": "value"}`
	assert.Equal(t, input, CleanJSONBlock(input))
}

func TestCleanJSONBlock_Whitespace(t *testing.T) {
	input := "   \n{\"key\": \"value\"}\n  "
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}

func TestBuildExtractionPrompt_ContainsFields(t *testing.T) {
	prompt := BuildExtractionPrompt(ABMInsightsSchema("Acme"), "some input")
	assert.Contains(t, prompt, "Acme")
	assert.Contains(t, prompt, `"insights"`)
	assert.Contains(t, prompt, `"email_subject"`)
	assert.Contains(t, prompt, `"email_body"`)
	assert.Contains(t, prompt, `"citations"`)
	assert.Contains(t, prompt, "some input")
}
