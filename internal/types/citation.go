package types

// Citation is a snippet of externally retrieved research tied to a source URL.
type Citation struct {
	Text  string `json:"text"`
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// DedupCitations collapses a citation list to one entry per distinct URL.
// The URL match is case-sensitive and exact. When a URL repeats, the
// last-seen citation wins; output order follows each URL's first appearance.
func DedupCitations(citations []Citation) []Citation {
	byURL := make(map[string]Citation, len(citations))
	order := make([]string, 0, len(citations))
	for _, c := range citations {
		if _, seen := byURL[c.URL]; !seen {
			order = append(order, c.URL)
		}
		byURL[c.URL] = c
	}
	deduped := make([]Citation, 0, len(order))
	for _, u := range order {
		deduped = append(deduped, byURL[u])
	}
	return deduped
}

// CitationURLs extracts the source URLs from a citation list, preserving order.
func CitationURLs(citations []Citation) []string {
	urls := make([]string, 0, len(citations))
	for _, c := range citations {
		urls = append(urls, c.URL)
	}
	return urls
}
