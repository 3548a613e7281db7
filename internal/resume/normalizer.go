// Package resume turns uploaded resume documents into structured candidate
// profiles and scores them against jobs.
package resume

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jonathan/interview-agent/internal/ingestion"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/schemas"
	"github.com/jonathan/interview-agent/internal/types"
)

// Parsed is a normalized resume together with the candidate's split name.
type Parsed struct {
	Profile   *types.ResumeProfile
	FirstName string
	LastName  string
	// Text is the cleaned document text the profile was extracted from.
	Text string
}

// Normalizer extracts resume profiles through the AI gateway.
type Normalizer struct {
	gateway *llm.Gateway
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(gateway *llm.Gateway) *Normalizer {
	return &Normalizer{gateway: gateway}
}

// Extract reads the document in r and returns its structured profile.
// Document problems yield *UnreadableDocumentError; anything that goes wrong
// with the model yields *MalformedExtractionError.
func (n *Normalizer) Extract(ctx context.Context, filename string, r io.Reader) (*Parsed, error) {
	doc, err := ingestion.Extract(filename, r)
	if err != nil {
		return nil, &UnreadableDocumentError{Filename: filename, Cause: err}
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, &UnreadableDocumentError{Filename: filename}
	}
	return n.ParseText(ctx, doc.Text)
}

// ExtractFile is Extract for a document on disk.
func (n *Normalizer) ExtractFile(ctx context.Context, path string) (*Parsed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &UnreadableDocumentError{Filename: filepath.Base(path), Cause: err}
	}
	defer func() { _ = f.Close() }()
	return n.Extract(ctx, filepath.Base(path), f)
}

// ParseText extracts a profile from already-cleaned resume text.
func (n *Normalizer) ParseText(ctx context.Context, text string) (*Parsed, error) {
	res := n.gateway.Run(ctx, llm.Task{
		Name:   "extract-resume",
		Prompt: llm.BuildExtractionPrompt(llm.ResumeSchema(), text),
		Shape:  llm.ShapeObject,
		Tier:   llm.TierStandard,
		Schema: schemas.MustGet(schemas.Resume),
	})

	var profile types.ResumeProfile
	switch res.Kind {
	case llm.ResultOK:
		if err := res.Decode(&profile); err != nil {
			return nil, &MalformedExtractionError{Message: "response does not match the resume structure", Cause: err}
		}
	case llm.ResultFallback:
		return nil, &MalformedExtractionError{Message: "response is not a resume object", Cause: res.Err}
	default:
		return nil, &MalformedExtractionError{Message: "model unavailable", Cause: res.Err}
	}

	profile.Normalize()
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return nil, &MalformedExtractionError{Message: "candidate name is missing"}
	}
	if strings.TrimSpace(profile.ResumeText) == "" {
		profile.ResumeText = text
	}

	first, last := SplitName(profile.Name)
	log.Printf("[resume] extracted %d positions, %d education entries for %s", len(profile.WorkExperience), len(profile.Education), first)
	return &Parsed{Profile: &profile, FirstName: first, LastName: last, Text: text}, nil
}

// AnalyzeMatch scores how well a resume fits a job. Gateway failures are returned as-is.
func (n *Normalizer) AnalyzeMatch(ctx context.Context, resumeText, jobDescription, jobRequirements string) (*types.ResumeMatch, error) {
	prompt := prompts.Format(prompts.MustGet("resume.json", "analyze-match"), map[string]string{
		"ResumeText":      resumeText,
		"JobDescription":  jobDescription,
		"JobRequirements": jobRequirements,
	})
	res := n.gateway.Run(ctx, llm.Task{
		Name:   "analyze-match",
		Prompt: prompt,
		Shape:  llm.ShapeObject,
		Tier:   llm.TierStandard,
		Schema: schemas.MustGet(schemas.ResumeMatch),
	})
	if res.Kind != llm.ResultOK {
		return nil, res.Err
	}

	var raw struct {
		MatchScore   float64        `json:"match_score"`
		Strengths    types.TextList `json:"strengths"`
		Improvements types.TextList `json:"improvements"`
		Feedback     string         `json:"feedback"`
	}
	if err := res.Decode(&raw); err != nil {
		return nil, &llm.GatewayError{Task: "analyze-match", Kind: llm.ErrMalformedResponse, Message: "unexpected match structure", Cause: err}
	}

	match := &types.ResumeMatch{
		MatchScore:   types.ClampScore(raw.MatchScore),
		Strengths:    raw.Strengths,
		Improvements: raw.Improvements,
		Feedback:     strings.TrimSpace(raw.Feedback),
	}
	if match.Strengths == nil {
		match.Strengths = types.TextList{}
	}
	if match.Improvements == nil {
		match.Improvements = types.TextList{}
	}
	if match.Feedback == "" {
		match.Feedback = fmt.Sprintf("Strengths: %s\n\nAreas for improvement: %s", match.Strengths, match.Improvements)
	}
	return match, nil
}

// SplitName splits a full name on its first whitespace boundary.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	i := strings.IndexFunc(full, unicode.IsSpace)
	if i < 0 {
		return full, ""
	}
	return full[:i], strings.TrimSpace(full[i:])
}
