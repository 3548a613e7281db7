// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. It can be loaded from a
// JSON or YAML file, overridden by environment variables and finally by CLI flags.
type Config struct {
	// Server
	Port        int      `json:"port,omitempty" yaml:"port,omitempty"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
	FrontendURL string   `json:"frontend_url,omitempty" yaml:"frontend_url,omitempty"` // Base URL for candidate interview links
	UploadDir   string   `json:"upload_dir,omitempty" yaml:"upload_dir,omitempty"`     // Resume and video storage root

	// Database
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	DBMaxConns  int    `json:"db_max_conns,omitempty" yaml:"db_max_conns,omitempty"`

	// LLM
	LLMProvider  string `json:"llm_provider,omitempty" yaml:"llm_provider,omitempty"` // gemini or openai
	GeminiAPIKey string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`
	OpenAIAPIKey string `json:"openai_api_key,omitempty" yaml:"openai_api_key,omitempty"`
	LLMTimeout   int    `json:"llm_timeout_seconds,omitempty" yaml:"llm_timeout_seconds,omitempty"`

	// Interviews
	QuestionsPerInterview int  `json:"questions_per_interview,omitempty" yaml:"questions_per_interview,omitempty"`
	ScoringConcurrency    int  `json:"scoring_concurrency,omitempty" yaml:"scoring_concurrency,omitempty"`
	ScoreOnComplete       bool `json:"score_on_complete,omitempty" yaml:"score_on_complete,omitempty"` // Score unscored transcripts when an interview completes
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		Port:                  8080,
		CORSOrigins:           []string{"*"},
		FrontendURL:           "http://localhost:5173",
		UploadDir:             "uploads",
		DBMaxConns:            10,
		LLMProvider:           "gemini",
		LLMTimeout:            60,
		QuestionsPerInterview: 5,
		ScoringConcurrency:    4,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with any environment variables that are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLMProvider = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.FrontendURL = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"PORT", &c.Port},
		{"DB_MAX_CONNS", &c.DBMaxConns},
		{"LLM_TIMEOUT_SECONDS", &c.LLMTimeout},
	}
	for _, i := range ints {
		v := os.Getenv(i.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %v", i.env, err)
		}
		*i.dst = n
	}
	return nil
}

// APIKey returns the key for the configured LLM provider.
func (c *Config) APIKey() string {
	if strings.EqualFold(c.LLMProvider, "openai") {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the commands that need them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	switch strings.ToLower(c.LLMProvider) {
	case "", "gemini", "openai":
	default:
		return fmt.Errorf("config error: unknown llm_provider %q", c.LLMProvider)
	}
	if c.DBMaxConns < 0 {
		return fmt.Errorf("config error: 'db_max_conns' must be non-negative")
	}
	if c.LLMTimeout < 0 {
		return fmt.Errorf("config error: 'llm_timeout_seconds' must be non-negative")
	}
	if c.QuestionsPerInterview < 0 || c.QuestionsPerInterview > 50 {
		return fmt.Errorf("config error: 'questions_per_interview' must be between 0 and 50")
	}
	if c.ScoringConcurrency < 0 {
		return fmt.Errorf("config error: 'scoring_concurrency' must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}
	if result.FrontendURL == "" {
		result.FrontendURL = defaults.FrontendURL
	}
	if result.UploadDir == "" {
		result.UploadDir = defaults.UploadDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.DBMaxConns == 0 {
		result.DBMaxConns = defaults.DBMaxConns
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.OpenAIAPIKey == "" {
		result.OpenAIAPIKey = defaults.OpenAIAPIKey
	}
	if result.LLMTimeout == 0 {
		result.LLMTimeout = defaults.LLMTimeout
	}
	if result.QuestionsPerInterview == 0 {
		result.QuestionsPerInterview = defaults.QuestionsPerInterview
	}
	if result.ScoringConcurrency == 0 {
		result.ScoringConcurrency = defaults.ScoringConcurrency
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// Load reads the optional config file, applies environment overrides and
// fills the remaining fields from Defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
