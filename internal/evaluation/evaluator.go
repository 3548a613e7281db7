// Package evaluation scores candidate answers and writes the interviewer's
// conversational replies. Model failures degrade to fixed defaults instead of
// surfacing as errors.
package evaluation

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/schemas"
	"github.com/jonathan/interview-agent/internal/types"
)

// DefaultScore is assigned when an answer could not be evaluated.
const DefaultScore = 50

// Canned replies used when no follow-up could be generated.
const (
	ClosingStatement  = "Thank you for completing the interview. We'll review your responses and get back to you soon with next steps."
	ContinueStatement = "Thank you for sharing that. Let's move on to the next question."
)

const (
	evaluateFailedFeedback = "Failed to evaluate response. Please try again later."
	analyzeFailedFeedback  = "Failed to analyze response. Please try again later."
	processFailedFeedback  = "Thank you for your response. Feedback is not available right now."
)

// Evaluator runs the scoring and follow-up tasks through the AI gateway.
type Evaluator struct {
	gateway *llm.Gateway
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(gateway *llm.Gateway) *Evaluator {
	return &Evaluator{gateway: gateway}
}

// EvaluateResponse scores a written answer.
func (e *Evaluator) EvaluateResponse(ctx context.Context, question, answer, jobTitle string) types.Evaluation {
	prompt := prompts.Format(prompts.MustGet("evaluation.json", "evaluate-response"), map[string]string{
		"JobTitle": jobTitle,
		"Question": question,
		"Response": answer,
	})
	res := e.gateway.Run(ctx, llm.Task{
		Name:   "evaluate-response",
		Prompt: prompt,
		Shape:  llm.ShapeObject,
		Tier:   llm.TierStandard,
		Schema: schemas.MustGet(schemas.Evaluation),
	})

	var raw struct {
		Score        float64        `json:"score"`
		Strengths    types.TextList `json:"strengths"`
		Improvements types.TextList `json:"improvements"`
	}
	if err := decode(res, &raw); err != nil {
		log.Printf("[evaluation] evaluate-response failed: %v", err)
		return types.Evaluation{Score: DefaultScore, Feedback: evaluateFailedFeedback}
	}

	strengths := raw.Strengths.String()
	if strengths == "" {
		strengths = "No strengths identified"
	}
	improvements := raw.Improvements.String()
	if improvements == "" {
		improvements = "No improvements suggested"
	}
	return types.Evaluation{
		Score:    types.ClampScore(raw.Score),
		Feedback: fmt.Sprintf("Strengths: %s\n\nAreas for improvement: %s", strengths, improvements),
	}
}

// AnalyzeVideoResponse reviews the transcript of a recorded answer.
func (e *Evaluator) AnalyzeVideoResponse(ctx context.Context, question, transcript, jobDescription string) types.VideoAnalysis {
	prompt := prompts.Format(prompts.MustGet("evaluation.json", "analyze-video"), map[string]string{
		"Question":       question,
		"Transcript":     transcript,
		"JobDescription": jobDescription,
	})
	res := e.gateway.Run(ctx, llm.Task{
		Name:   "analyze-video",
		Prompt: prompt,
		Shape:  llm.ShapeObject,
		Tier:   llm.TierStandard,
		Schema: schemas.MustGet(schemas.VideoAnalysis),
	})

	var raw struct {
		Score                float64        `json:"score"`
		Feedback             string         `json:"feedback"`
		KeyPoints            types.TextList `json:"key_points"`
		Strengths            types.TextList `json:"strengths"`
		AreasToImprove       types.TextList `json:"areas_to_improve"`
		RedFlags             types.TextList `json:"red_flags"`
		OutstandingQualities types.TextList `json:"outstanding_qualities"`
	}
	if err := decode(res, &raw); err != nil {
		log.Printf("[evaluation] analyze-video failed: %v", err)
		return types.VideoAnalysis{
			Score:                DefaultScore,
			Feedback:             analyzeFailedFeedback,
			FormattedFeedback:    analyzeFailedFeedback,
			KeyPoints:            []string{},
			Strengths:            []string{},
			AreasToImprove:       []string{},
			RedFlags:             []string{},
			OutstandingQualities: []string{},
		}
	}

	a := types.VideoAnalysis{
		Score:                types.ClampScore(raw.Score),
		Feedback:             strings.TrimSpace(raw.Feedback),
		KeyPoints:            nonNil(raw.KeyPoints),
		Strengths:            nonNil(raw.Strengths),
		AreasToImprove:       nonNil(raw.AreasToImprove),
		RedFlags:             nonNil(raw.RedFlags),
		OutstandingQualities: nonNil(raw.OutstandingQualities),
	}
	if a.Feedback == "" {
		a.Feedback = "No feedback provided"
	}
	a.FormattedFeedback = FormatAnalysis(a)
	return a
}

// FormatAnalysis renders an analysis as the plain-text report shown to recruiters.
func FormatAnalysis(a types.VideoAnalysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Overall Evaluation: %d/100\n\n", a.Score)
	writeSection(&sb, "Key Points", a.KeyPoints, "No key points identified")
	writeSection(&sb, "Strengths", a.Strengths, "No specific strengths identified")
	writeSection(&sb, "Areas to Improve", a.AreasToImprove, "No specific areas for improvement identified")
	if len(a.RedFlags) > 0 {
		writeSection(&sb, "Red Flags", a.RedFlags, "")
	}
	if len(a.OutstandingQualities) > 0 {
		writeSection(&sb, "Outstanding Qualities", a.OutstandingQualities, "")
	}
	return strings.TrimSpace(sb.String())
}

func writeSection(sb *strings.Builder, title string, items []string, empty string) {
	if len(items) == 0 {
		items = []string{empty}
	}
	fmt.Fprintf(sb, "%s:\n- %s\n\n", title, strings.Join(items, "\n- "))
}

// GenerateFollowup writes the interviewer's reply to an answer. On the last
// question the reply is a closing statement.
func (e *Evaluator) GenerateFollowup(ctx context.Context, question, answer, jobTitle string, isLast bool) string {
	position, key, fallback := "not the last question", "followup-continue-instruction", ContinueStatement
	if isLast {
		position, key, fallback = "the last question", "followup-closing-instruction", ClosingStatement
	}
	prompt := prompts.Format(prompts.MustGet("interview.json", "followup"), map[string]string{
		"JobTitle":    jobTitle,
		"Question":    question,
		"Response":    answer,
		"Position":    position,
		"Instruction": prompts.MustGet("interview.json", key),
	})

	res := e.gateway.Run(ctx, llm.Task{Name: "followup", Prompt: prompt, Shape: llm.ShapeText, Tier: llm.TierLite})
	if res.Kind != llm.ResultOK {
		log.Printf("[evaluation] followup failed: %v", res.Err)
		return fallback
	}
	return res.Text
}

// ProcessRequest is the context for ProcessResponse.
type ProcessRequest struct {
	Response       string
	JobTitle       string
	JobDescription string
	ResumeText     string
	Conversation   []types.ConversationTurn
}

// ProcessResponse returns conversational feedback on the candidate's latest answer.
func (e *Evaluator) ProcessResponse(ctx context.Context, req ProcessRequest) string {
	prompt := prompts.Format(prompts.MustGet("interview.json", "process-response"), map[string]string{
		"JobTitle":       req.JobTitle,
		"JobDescription": req.JobDescription,
		"ResumeText":     req.ResumeText,
		"Conversation":   types.FormatConversation(req.Conversation),
		"Response":       req.Response,
	})

	res := e.gateway.Run(ctx, llm.Task{Name: "process-response", Prompt: prompt, Shape: llm.ShapeText, Tier: llm.TierStandard})
	if res.Kind != llm.ResultOK {
		log.Printf("[evaluation] process-response failed: %v", res.Err)
		return processFailedFeedback
	}
	return res.Text
}

// decode returns the result's error for non-OK kinds.
func decode(res llm.Result, v any) error {
	if res.Kind != llm.ResultOK {
		return res.Err
	}
	return res.Decode(v)
}

func nonNil(l types.TextList) []string {
	if l == nil {
		return []string{}
	}
	return l
}
