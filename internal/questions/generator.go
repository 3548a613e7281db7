// Package questions generates interview questions from a job and a resume.
// Generation never fails: when the model is unavailable or answers in an
// unexpected form, the caller still gets at least one question.
package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/schemas"
	"github.com/jonathan/interview-agent/internal/types"
)

// FallbackQuestion is asked when no question could be generated.
const FallbackQuestion = "Could you please tell me about your experience as a Senior Software Engineer?"

// DefaultMaxQuestions is used when a request does not set MaxQuestions.
const DefaultMaxQuestions = 5

// DefaultCategories are covered when a job has no interview settings.
var DefaultCategories = []string{types.QuestionTechnical, types.QuestionBehavioral, types.QuestionProblemSolving}

// Request describes what to generate questions for.
type Request struct {
	JobTitle       string
	JobDescription string
	ResumeText     string
	Categories     []string
	MaxQuestions   int
	Conversation   []types.ConversationTurn
}

// Generator produces questions through the AI gateway.
type Generator struct {
	gateway *llm.Gateway
}

// NewGenerator creates a Generator.
func NewGenerator(gateway *llm.Gateway) *Generator {
	return &Generator{gateway: gateway}
}

// Fallback returns the single canned question.
func Fallback() []types.QuestionItem {
	return []types.QuestionItem{{Question: FallbackQuestion, Type: types.QuestionGeneral}}
}

// Generate returns between one and req.MaxQuestions questions.
func (g *Generator) Generate(ctx context.Context, req Request) []types.QuestionItem {
	if strings.TrimSpace(req.JobDescription) == "" && strings.TrimSpace(req.ResumeText) == "" {
		log.Printf("[questions] no job description or resume for %q, using fallback question", req.JobTitle)
		return Fallback()
	}

	limit := req.MaxQuestions
	if limit <= 0 {
		limit = DefaultMaxQuestions
	}

	res := g.gateway.Run(ctx, llm.Task{
		Name:   "generate-questions",
		Prompt: BuildPrompt(req, limit),
		Shape:  llm.ShapeList,
		Tier:   llm.TierStandard,
		Schema: schemas.MustGet(schemas.Questions),
	})

	var items []types.QuestionItem
	switch res.Kind {
	case llm.ResultOK:
		items = parseItems(res.Value)
	case llm.ResultFallback:
		if raw := strings.TrimSpace(res.Raw); raw != "" {
			items = []types.QuestionItem{{Question: raw, Type: types.QuestionGeneral}}
		}
	case llm.ResultError:
		log.Printf("[questions] generation failed for %q: %v", req.JobTitle, res.Err)
	}

	if len(items) == 0 {
		return Fallback()
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// BuildPrompt renders the generation prompt for req.
func BuildPrompt(req Request, limit int) string {
	categories := req.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	instruction := prompts.MustGet("interview.json", "next-question-instruction")
	if len(req.Conversation) == 0 {
		instruction = prompts.MustGet("interview.json", "first-question-instruction")
	}
	return prompts.Format(prompts.MustGet("interview.json", "generate-questions"), map[string]string{
		"JobTitle":       req.JobTitle,
		"Categories":     strings.Join(categories, ", "),
		"MaxQuestions":   strconv.Itoa(limit),
		"JobDescription": req.JobDescription,
		"ResumeText":     req.ResumeText,
		"Conversation":   types.FormatConversation(req.Conversation),
		"Instruction":    instruction,
	})
}

// parseItems accepts both bare strings and {question, type} objects.
func parseItems(value json.RawMessage) []types.QuestionItem {
	var raw []json.RawMessage
	if err := json.Unmarshal(value, &raw); err != nil {
		return nil
	}

	items := make([]types.QuestionItem, 0, len(raw))
	for _, r := range raw {
		var item types.QuestionItem
		if bytes.HasPrefix(bytes.TrimSpace(r), []byte(`"`)) {
			if err := json.Unmarshal(r, &item.Question); err != nil {
				continue
			}
		} else {
			var obj struct {
				Question string  `json:"question"`
				Type     *string `json:"type"`
			}
			if err := json.Unmarshal(r, &obj); err != nil {
				continue
			}
			item.Question = obj.Question
			if obj.Type != nil {
				item.Type = *obj.Type
			}
		}

		item.Question = strings.TrimSpace(item.Question)
		if item.Question == "" {
			continue
		}
		item.Type = types.NormalizeQuestionType(item.Type)
		items = append(items, item)
	}
	return items
}
