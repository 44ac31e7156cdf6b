package research

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/abm-insights/internal/types"
)

// The research service has shipped several response layouts over time.
// normalizeResponse tries each known shape in order and degrades to an empty
// list when none matches, so callers never see a raw provider payload.

// resultsShape is the current layout: {"results": [{text, url, title}]}.
type resultsShape struct {
	Results []struct {
		Text  string `json:"text"`
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"results"`
}

// citationsShape is the legacy layout: {"citations": [{snippet, source, title}]}.
type citationsShape struct {
	Citations []struct {
		Snippet string `json:"snippet"`
		Source  string `json:"source"`
		Title   string `json:"title"`
	} `json:"citations"`
}

// documentsShape is the oldest layout: {"data": {"documents": [{content, link, name}]}}.
type documentsShape struct {
	Data struct {
		Documents []struct {
			Content string `json:"content"`
			Link    string `json:"link"`
			Name    string `json:"name"`
		} `json:"documents"`
	} `json:"data"`
}

// normalizeResponse converts any known response layout into a citation list.
func normalizeResponse(body []byte) []types.Citation {
	var current resultsShape
	if err := json.Unmarshal(body, &current); err == nil && len(current.Results) > 0 {
		citations := make([]types.Citation, 0, len(current.Results))
		for _, r := range current.Results {
			if c, ok := buildCitation(r.Text, r.URL, r.Title); ok {
				citations = append(citations, c)
			}
		}
		return citations
	}

	var legacy citationsShape
	if err := json.Unmarshal(body, &legacy); err == nil && len(legacy.Citations) > 0 {
		citations := make([]types.Citation, 0, len(legacy.Citations))
		for _, r := range legacy.Citations {
			if c, ok := buildCitation(r.Snippet, r.Source, r.Title); ok {
				citations = append(citations, c)
			}
		}
		return citations
	}

	var oldest documentsShape
	if err := json.Unmarshal(body, &oldest); err == nil && len(oldest.Data.Documents) > 0 {
		citations := make([]types.Citation, 0, len(oldest.Data.Documents))
		for _, r := range oldest.Data.Documents {
			if c, ok := buildCitation(r.Content, r.Link, r.Name); ok {
				citations = append(citations, c)
			}
		}
		return citations
	}

	return nil
}

// buildCitation assembles a citation, rejecting entries with no usable URL.
func buildCitation(text, url, title string) (types.Citation, bool) {
	url = strings.TrimSpace(url)
	if url == "" {
		return types.Citation{}, false
	}
	return types.Citation{
		Text:  strings.TrimSpace(text),
		URL:   url,
		Title: strings.TrimSpace(title),
	}, true
}
