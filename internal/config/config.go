// Package config provides configuration loading and validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration. Values can come from a JSON
// file, with secrets overridable from the environment via ApplyEnv.
type Config struct {
	// Persistence. Empty DatabaseURL selects the in-memory stores.
	DatabaseURL string `json:"database_url,omitempty"`

	// LLM provider
	APIKey          string `json:"api_key,omitempty"`          // Gemini API key
	GenerationModel string `json:"generation_model,omitempty"` // defaults to the llm package default
	EmbeddingModel  string `json:"embedding_model,omitempty"`

	// Research service
	ResearchURL    string `json:"research_url,omitempty"`
	ResearchAPIKey string `json:"research_api_key,omitempty"`

	// Google Custom Search fallback
	GoogleSearchAPIKey string `json:"google_search_api_key,omitempty"`
	GoogleSearchCX     string `json:"google_search_cx,omitempty"`

	// Outbound webhook for completed reports
	WebhookURL string `json:"webhook_url,omitempty"`

	// Retrieval tuning. SimilarityThreshold is a pointer so an explicitly
	// configured value is distinguishable from an absent one.
	TopK                int      `json:"top_k,omitempty"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
	EmbeddingDimension  int      `json:"embedding_dimension,omitempty"`

	// Behavior
	UseBrowser bool `json:"use_browser,omitempty"` // headless browser for JS-heavy sites
}

// LoadConfig loads configuration from a JSON file.
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
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv fills empty secret fields from the environment. Environment
// variables win only where the config file left a value unset.
func (c *Config) ApplyEnv() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.ResearchURL == "" {
		c.ResearchURL = os.Getenv("RESEARCH_API_URL")
	}
	if c.ResearchAPIKey == "" {
		c.ResearchAPIKey = os.Getenv("RESEARCH_API_KEY")
	}
	if c.GoogleSearchAPIKey == "" {
		c.GoogleSearchAPIKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
	}
	if c.GoogleSearchCX == "" {
		c.GoogleSearchCX = os.Getenv("GOOGLE_SEARCH_CX")
	}
	if c.WebhookURL == "" {
		c.WebhookURL = os.Getenv("ABM_WEBHOOK_URL")
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("config error: api_key is required (or set GEMINI_API_KEY)")
	}
	if c.TopK < 0 {
		return fmt.Errorf("config error: 'top_k' must be non-negative")
	}
	if c.SimilarityThreshold != nil && (*c.SimilarityThreshold <= 0 || *c.SimilarityThreshold >= 1) {
		return fmt.Errorf("config error: 'similarity_threshold' must be in (0, 1)")
	}
	if c.EmbeddingDimension < 0 {
		return fmt.Errorf("config error: 'embedding_dimension' must be non-negative")
	}
	return nil
}
