// Package llmtest provides a scriptable llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jonathan/interview-agent/internal/llm"
)

// MockClient is a mock implementation of llm.Client, llm.Transcriber and
// llm.Speaker. Unset function fields return an error.
type MockClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	TranscribeFunc      func(ctx context.Context, filename string, audio io.Reader) (string, error)
	SpeakFunc           func(ctx context.Context, text string) ([]byte, error)

	mu      sync.Mutex
	Prompts []string
}

// JSON returns a mock whose GenerateJSON always answers with response.
func JSON(response string) *MockClient {
	return &MockClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return response, nil
		},
	}
}

// Text returns a mock whose GenerateContent always answers with response.
func Text(response string) *MockClient {
	return &MockClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return response, nil
		},
	}
}

// Failing returns a mock whose generation calls always fail with err.
func Failing(err error) *MockClient {
	return &MockClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "", err
		},
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "", err
		},
	}
}

func (m *MockClient) record(prompt string) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
}

// LastPrompt returns the most recent prompt sent to the mock.
func (m *MockClient) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}

// Calls returns how many generation calls were made.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

func (m *MockClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(prompt)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", fmt.Errorf("GenerateContent not mocked")
}

func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(prompt)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "", fmt.Errorf("GenerateJSON not mocked")
}

func (m *MockClient) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, filename, audio)
	}
	return "", fmt.Errorf("Transcribe not mocked")
}

func (m *MockClient) Speak(ctx context.Context, text string) ([]byte, error) {
	if m.SpeakFunc != nil {
		return m.SpeakFunc(ctx, text)
	}
	return nil, fmt.Errorf("Speak not mocked")
}

func (m *MockClient) GetModel(tier llm.ModelTier) string {
	return "mock-model"
}

func (m *MockClient) Close() error {
	return nil
}
