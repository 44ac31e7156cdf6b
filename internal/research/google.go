package research

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/abm-insights/internal/types"
)

// GoogleSearcher is a fallback research provider backed by the Google Custom
// Search API. Snippets become citation text.
type GoogleSearcher struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleSearcher creates a GoogleSearcher. apiKey and cx come from the
// Google programmable search engine console.
func NewGoogleSearcher(ctx context.Context, apiKey, cx string) (*GoogleSearcher, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &GoogleSearcher{svc: svc, cx: cx}, nil
}

// Search returns citations from a web search about the company. Failures are
// logged and produce an empty list.
func (g *GoogleSearcher) Search(ctx context.Context, company string) []types.Citation {
	query := fmt.Sprintf("%s company recent news", company)
	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(5).Context(ctx).Do()
	if err != nil {
		log.Printf("[research] google search failed for %q: %v", company, err)
		return nil
	}

	citations := make([]types.Citation, 0, len(resp.Items))
	for _, item := range resp.Items {
		if c, ok := buildCitation(item.Snippet, item.Link, item.Title); ok {
			citations = append(citations, c)
		}
	}
	return citations
}
