package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupCitations_LastWins(t *testing.T) {
	input := []Citation{
		{Text: "A", URL: "https://x.com"},
		{Text: "B", URL: "https://x.com"},
	}

	deduped := DedupCitations(input)
	require.Len(t, deduped, 1)
	assert.Equal(t, "B", deduped[0].Text)
	assert.Equal(t, "https://x.com", deduped[0].URL)
}

func TestDedupCitations_PreservesFirstSeenOrder(t *testing.T) {
	input := []Citation{
		{Text: "first", URL: "https://a.com"},
		{Text: "second", URL: "https://b.com"},
		{Text: "third", URL: "https://a.com"},
		{Text: "fourth", URL: "https://c.com"},
	}

	deduped := DedupCitations(input)
	require.Len(t, deduped, 3)
	assert.Equal(t, "https://a.com", deduped[0].URL)
	assert.Equal(t, "https://b.com", deduped[1].URL)
	assert.Equal(t, "https://c.com", deduped[2].URL)
	// a.com keeps the last occurrence's content
	assert.Equal(t, "third", deduped[0].Text)
}

func TestDedupCitations_Idempotent(t *testing.T) {
	input := []Citation{
		{Text: "A", URL: "https://x.com"},
		{Text: "B", URL: "https://x.com"},
		{Text: "C", URL: "https://y.com"},
	}

	once := DedupCitations(input)
	twice := DedupCitations(once)
	assert.Equal(t, once, twice)
}

func TestDedupCitations_CaseSensitiveURLs(t *testing.T) {
	input := []Citation{
		{Text: "A", URL: "https://x.com/Page"},
		{Text: "B", URL: "https://x.com/page"},
	}

	deduped := DedupCitations(input)
	assert.Len(t, deduped, 2)
}

func TestDedupCitations_Empty(t *testing.T) {
	assert.Empty(t, DedupCitations(nil))
}

func TestCitationURLs(t *testing.T) {
	input := []Citation{
		{URL: "https://a.com"},
		{URL: "https://b.com"},
	}

	urls := CitationURLs(input)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, urls)

	assert.NotNil(t, CitationURLs(nil))
	assert.Empty(t, CitationURLs(nil))
}
