package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/llm"
)

// loadConfig reads the --config file and the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openGateway connects to the configured AI provider. The returned func
// closes the client.
func openGateway(ctx context.Context, cfg *config.Config) (*llm.Gateway, func(), error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, nil, fmt.Errorf("API key is required for provider %s (set GEMINI_API_KEY or OPENAI_API_KEY)", cfg.LLMProvider)
	}
	client, err := llm.NewClient(ctx, llm.DefaultConfigFor(llm.ParseProvider(cfg.LLMProvider)), apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	gw := llm.NewGateway(client, time.Duration(cfg.LLMTimeout)*time.Second)
	return gw, func() { _ = client.Close() }, nil
}
