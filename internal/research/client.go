// Package research retrieves cited web research about a company from an
// external research service. The client never returns an error: any failure
// degrades to an empty citation list so the pipeline can proceed.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/abm-insights/internal/types"
)

// DefaultTimeout bounds a single research-service call.
const DefaultTimeout = 15 * time.Second

// Query modes supported by the research service. The news mode is used as a
// secondary query when the default mode returns zero citations.
const (
	modeSearch = "search"
	modeNews   = "news"
)

// maxResults caps how many citations one query requests.
const maxResults = 10

// Searcher is an optional fallback provider consulted when the research
// service itself yields nothing.
type Searcher interface {
	Search(ctx context.Context, company string) []types.Citation
}

// Client queries the cited-research service.
type Client struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	fallback Searcher
}

// Config configures the research client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// Fallback is consulted when both query modes return nothing. Optional.
	Fallback Searcher
}

// NewClient creates a research client. An empty BaseURL disables the primary
// service entirely; only the fallback searcher (if any) is used.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
		fallback: cfg.Fallback,
	}
}

// Fetch returns cited research snippets about a company. The primary query
// mode is swapped for the news mode when it returns zero citations; the
// optional fallback searcher is the last resort. Never returns an error.
func (c *Client) Fetch(ctx context.Context, company string) []types.Citation {
	if c.baseURL != "" {
		for _, mode := range []string{modeSearch, modeNews} {
			citations, err := c.query(ctx, company, mode)
			if err != nil {
				log.Printf("[research] %s query failed for %q: %v", mode, company, err)
				continue
			}
			if len(citations) > 0 {
				return citations
			}
		}
	}

	if c.fallback != nil {
		return c.fallback.Search(ctx, company)
	}
	return nil
}

// query issues one research-service call in the given mode.
func (c *Client) query(ctx context.Context, company, mode string) ([]types.Citation, error) {
	payload, _ := json.Marshal(map[string]any{
		"query":       fmt.Sprintf("%s company news and recent developments", company),
		"mode":        mode,
		"num_results": maxResults,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return normalizeResponse(body), nil
}
