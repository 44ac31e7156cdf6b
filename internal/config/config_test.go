package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"api_key": "test-key",
		"database_url": "postgres://localhost/abm",
		"top_k": 3,
		"similarity_threshold": 0.5,
		"use_browser": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "postgres://localhost/abm", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.TopK)
	require.NotNil(t, cfg.SimilarityThreshold)
	assert.Equal(t, 0.5, *cfg.SimilarityThreshold)
	assert.True(t, cfg.UseBrowser)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path is empty")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, err = LoadConfig(writeConfigFile(t, "{not valid json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://env/abm")
	t.Setenv("ABM_WEBHOOK_URL", "https://hooks.example.com/abm")

	cfg := &Config{DatabaseURL: "postgres://file/abm"}
	cfg.ApplyEnv()

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "https://hooks.example.com/abm", cfg.WebhookURL)
	assert.Equal(t, "postgres://file/abm", cfg.DatabaseURL, "file values win over the environment")
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid minimal", Config{APIKey: "k"}, ""},
		{"valid tuned", Config{APIKey: "k", TopK: 5, SimilarityThreshold: floatPtr(0.7)}, ""},
		{"missing api key", Config{}, "api_key is required"},
		{"negative top_k", Config{APIKey: "k", TopK: -1}, "'top_k' must be non-negative"},
		{"threshold too high", Config{APIKey: "k", SimilarityThreshold: floatPtr(1)}, "'similarity_threshold' must be in (0, 1)"},
		{"explicit zero threshold", Config{APIKey: "k", SimilarityThreshold: floatPtr(0)}, "'similarity_threshold' must be in (0, 1)"},
		{"negative threshold", Config{APIKey: "k", SimilarityThreshold: floatPtr(-0.1)}, "'similarity_threshold'"},
		{"negative dimension", Config{APIKey: "k", EmbeddingDimension: -1}, "'embedding_dimension'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
