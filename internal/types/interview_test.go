package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuestionType(t *testing.T) {
	tests := map[string]string{
		"technical":       QuestionTechnical,
		" Behavioral ":    QuestionBehavioral,
		"problem-solving": QuestionProblemSolving,
		"Problem Solving": QuestionProblemSolving,
		"custom":          QuestionCustom,
		"":                QuestionGeneral,
		"situational":     QuestionGeneral,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeQuestionType(in), in)
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{72, 72},
		{72.6, 73},
		{-5, 0},
		{140, 100},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampScore(tt.in), "ClampScore(%v)", tt.in)
	}
}

func TestFormatConversation(t *testing.T) {
	assert.Equal(t, "No previous conversation.", FormatConversation(nil))

	got := FormatConversation([]ConversationTurn{
		{Role: RoleAssistant, Content: "Hello! Tell me about yourself."},
		{Role: RoleUser, Content: "I build databases."},
		{Role: "system", Content: "ignored role"},
	})
	assert.Equal(t, "Interviewer: Hello! Tell me about yourself.\nCandidate: I build databases.\nCandidate: ignored role", got)
}
