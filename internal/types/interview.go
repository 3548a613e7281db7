package types

import (
	"math"
	"strings"
)

// Question categories.
const (
	QuestionTechnical      = "technical"
	QuestionBehavioral     = "behavioral"
	QuestionProblemSolving = "problem_solving"
	QuestionCustom         = "custom"
	QuestionGeneral        = "general"
)

// QuestionTypes lists every valid question category.
var QuestionTypes = []string{
	QuestionTechnical,
	QuestionBehavioral,
	QuestionProblemSolving,
	QuestionCustom,
	QuestionGeneral,
}

// NormalizeQuestionType maps free-form category labels onto a known type.
// Unknown labels become QuestionGeneral.
func NormalizeQuestionType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	t = strings.NewReplacer("-", "_", " ", "_").Replace(t)
	for _, known := range QuestionTypes {
		if t == known {
			return t
		}
	}
	return QuestionGeneral
}

// QuestionItem is one generated interview question.
type QuestionItem struct {
	Question string `json:"question"`
	Type     string `json:"type"`
}

// Conversation roles.
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

// ConversationTurn is one message of an interview conversation.
type ConversationTurn struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content"`
}

// FormatConversation renders turns as "Interviewer:"/"Candidate:" lines for prompts.
func FormatConversation(turns []ConversationTurn) string {
	if len(turns) == 0 {
		return "No previous conversation."
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "Candidate"
		if t.Role == RoleAssistant {
			speaker = "Interviewer"
		}
		lines = append(lines, speaker+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

// Evaluation is the score and feedback for a single answer.
type Evaluation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// VideoAnalysis is the structured review of a recorded answer.
type VideoAnalysis struct {
	Score                int      `json:"score"`
	Feedback             string   `json:"feedback"`
	KeyPoints            []string `json:"key_points"`
	Strengths            []string `json:"strengths"`
	AreasToImprove       []string `json:"areas_to_improve"`
	RedFlags             []string `json:"red_flags"`
	OutstandingQualities []string `json:"outstanding_qualities"`
	FormattedFeedback    string   `json:"formatted_feedback"`
}

// ClampScore rounds a model score into [0, 100].
func ClampScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, score))))
}
