// Package jobs drafts job posting copy with the AI gateway.
package jobs

import (
	"context"
	"strings"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/types"
	"golang.org/x/sync/errgroup"
)

// ContentGenerator writes job descriptions, requirements and benefits.
type ContentGenerator struct {
	gateway *llm.Gateway
}

// NewContentGenerator creates a ContentGenerator.
func NewContentGenerator(gateway *llm.Gateway) *ContentGenerator {
	return &ContentGenerator{gateway: gateway}
}

// Generate drafts all three sections concurrently. Any failed section fails
// the whole request with the section's *llm.GatewayError.
func (g *ContentGenerator) Generate(ctx context.Context, req types.GenerateJobContentRequest) (*types.JobContent, error) {
	data := map[string]string{
		"Title":      req.Title,
		"Department": valueOr(req.Department, "General"),
		"Location":   valueOr(req.Location, "Remote"),
		"Keywords":   "",
	}
	if len(req.Keywords) > 0 {
		data["Keywords"] = "Additional keywords to consider: " + strings.Join(req.Keywords, ", ")
	}

	var content types.JobContent
	sections := []struct {
		key string
		dst *string
	}{
		{"job-description", &content.Description},
		{"job-requirements", &content.Requirements},
		{"job-benefits", &content.Benefits},
	}

	eg, gctx := errgroup.WithContext(ctx)
	for _, s := range sections {
		eg.Go(func() error {
			res := g.gateway.Run(gctx, llm.Task{
				Name:   s.key,
				Prompt: prompts.Format(prompts.MustGet("jobs.json", s.key), data),
				Shape:  llm.ShapeText,
				Tier:   llm.TierLite,
			})
			if res.Kind != llm.ResultOK {
				return res.Err
			}
			*s.dst = res.Text
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &content, nil
}

func valueOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}
