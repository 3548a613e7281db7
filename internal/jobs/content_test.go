package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/llm/llmtest"
	"github.com/jonathan/interview-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	mock := &llmtest.MockClient{
		GenerateContentFunc: func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
			switch {
			case strings.Contains(prompt, "job description"):
				return "## Overview\nBuild things.", nil
			case strings.Contains(prompt, "job requirements"):
				return "- Go", nil
			default:
				return "- Health insurance", nil
			}
		},
	}
	g := NewContentGenerator(llm.NewGateway(mock, time.Second))

	content, err := g.Generate(context.Background(), types.GenerateJobContentRequest{
		Title:    "Platform Engineer",
		Keywords: []string{"Kubernetes", "Terraform"},
	})
	require.NoError(t, err)

	assert.Equal(t, "## Overview\nBuild things.", content.Description)
	assert.Equal(t, "- Go", content.Requirements)
	assert.Equal(t, "- Health insurance", content.Benefits)
	assert.Equal(t, 3, mock.Calls())
	for _, p := range mock.Prompts {
		assert.Contains(t, p, "Additional keywords to consider: Kubernetes, Terraform")
		assert.Contains(t, p, "General department, based in Remote")
	}
}

func TestGenerate_Failure(t *testing.T) {
	g := NewContentGenerator(llm.NewGateway(llmtest.Failing(errors.New("quota exceeded")), time.Second))

	content, err := g.Generate(context.Background(), types.GenerateJobContentRequest{Title: "Engineer"})

	assert.Nil(t, content)
	assert.True(t, llm.IsGatewayError(err, llm.ErrUpstreamUnavailable))
}
