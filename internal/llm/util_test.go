package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced json", "```json\n{\"score\": 80}\n```", `{"score": 80}`},
		{"bare fence", "```\n[\"a\"]\n```", `["a"]`},
		{"fence with language tag", "```js\n{\"score\": 80}\n```", `{"score": 80}`},
		{"already clean", `{"score": 80}`, `{"score": 80}`},
		{"leading prose", "Here is my evaluation:\n{\"score\": 65, \"strengths\": []}", `{"score": 65, "strengths": []}`},
		{"trailing prose", "{\"match_score\": 90}\n\nHope this helps!", `{"match_score": 90}`},
		{"question array with remark", "Sure! [{\"question\": \"Why Go?\", \"type\": \"technical\"}] Good luck.", `[{"question": "Why Go?", "type": "technical"}]`},
		{"braces inside strings", `Result: {"feedback": "uses {} well", "quote": "he said \"hi\""}`, `{"feedback": "uses {} well", "quote": "he said \"hi\""}`},
		{"no json at all", "Tell me about yourself.", "Tell me about yourself."},
		{"unterminated object", "Result: {\"score\": 8", "Result: {\"score\": 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.in))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	assert.Equal(t, `{"a": {"b": [1, 2]}}`, extractJSONObject(`{"a": {"b": [1, 2]}} tail`))
	assert.Equal(t, `[[1], [2]]`, extractJSONArray(`[[1], [2]], more`))
	assert.Empty(t, extractJSONObject(""))
	assert.Empty(t, extractJSONObject("score: 1"))
	assert.Empty(t, extractJSONArray(`[1, 2`))
}
