package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	result := CleanText("Line    with \t  multiple    spaces")
	assert.Equal(t, "Line with multiple spaces", result)
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	result := CleanText("Line 1\n\n\n\n\nLine 2")
	assert.Equal(t, "Line 1\n\nLine 2", result)
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	result := CleanText("Line 1\r\nLine 2\rLine 3\nLine 4")
	assert.Equal(t, "Line 1\nLine 2\nLine 3\nLine 4", result)
}

func TestCleanText_Bullets(t *testing.T) {
	result := CleanText("• Built APIs\n·   Led team\n* Mentored\n- Shipped")
	assert.Equal(t, "- Built APIs\n- Led team\n- Mentored\n- Shipped", result)
}

func TestCleanText_StripsControlCharacters(t *testing.T) {
	result := CleanText("\uFEFFJane\x00 Doe\x0b")
	assert.Equal(t, "Jane Doe", result)
}

func TestCleanText_ComposesUnicode(t *testing.T) {
	// "e" + combining acute accent
	result := CleanText("Rene\u0301")
	assert.Equal(t, "Ren\u00e9", result)
}

func TestCleanText_EmptyInput(t *testing.T) {
	assert.Empty(t, CleanText(""))
	assert.Empty(t, CleanText("   \n  \n  "))
}

func TestCleanText_SpecialCharacters(t *testing.T) {
	result := CleanText("Test with émojis 🚀 and spéciàl chàracters")
	assert.Equal(t, "Test with émojis 🚀 and spéciàl chàracters", result)
}

func TestFoldKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Go", "go"},
		{"  Node.js ", "node.js"},
		{"Résumé  Writing", "resume writing"},
		{"Café", "cafe"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FoldKey(tt.in))
		})
	}
}
