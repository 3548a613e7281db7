package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"port": 9090,
		"database_url": "postgres://localhost/interviews",
		"llm_provider": "openai",
		"cors_origins": ["https://app.example.com"],
		"score_on_complete": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/interviews", cfg.DatabaseURL)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.ScoreOnComplete)
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
port: 7070
frontend_url: https://jobs.example.com
questions_per_interview: 8
cors_origins:
  - https://a.example.com
  - https://b.example.com
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "https://jobs.example.com", cfg.FrontendURL)
	assert.Equal(t, 8, cfg.QuestionsPerInterview)
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{ invalid json }`)

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeFile(t, "config.yml", "port: [unclosed")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("PORT", "9999")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg := &Config{DatabaseURL: "postgres://file/db", Port: 8080}
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "sk-test", cfg.APIKey())
}

func TestApplyEnv_InvalidInt(t *testing.T) {
	t.Setenv("LLM_TIMEOUT_SECONDS", "soon")

	cfg := &Config{}
	err := cfg.ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_TIMEOUT_SECONDS")
}

func TestAPIKey_DefaultsToGemini(t *testing.T) {
	cfg := &Config{GeminiAPIKey: "g-key", OpenAIAPIKey: "o-key"}
	assert.Equal(t, "g-key", cfg.APIKey())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Defaults()},
		{name: "bad port", cfg: Config{Port: 70000}, wantErr: "port"},
		{name: "unknown provider", cfg: Config{LLMProvider: "claude"}, wantErr: "llm_provider"},
		{name: "negative timeout", cfg: Config{LLMTimeout: -1}, wantErr: "llm_timeout_seconds"},
		{name: "too many questions", cfg: Config{QuestionsPerInterview: 51}, wantErr: "questions_per_interview"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{Port: 9000, LLMProvider: "openai"}

	merged := cfg.MergeWithDefaults(Defaults())

	assert.Equal(t, 9000, merged.Port, "explicit values win")
	assert.Equal(t, "openai", merged.LLMProvider)
	assert.Equal(t, "uploads", merged.UploadDir)
	assert.Equal(t, 5, merged.QuestionsPerInterview)
	assert.Equal(t, []string{"*"}, merged.CORSOrigins)
	assert.Equal(t, 0, cfg.QuestionsPerInterview, "receiver is not modified")
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", "port: 7000\nupload_dir: /srv/uploads\n")
	t.Setenv("UPLOAD_DIR", "/data/uploads")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "/data/uploads", cfg.UploadDir)
}
