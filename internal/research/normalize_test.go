package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeResponse_CurrentShape(t *testing.T) {
	body := []byte(`{"results": [
		{"text": "Acme raised a round", "url": "https://news.com/acme", "title": "Acme News"},
		{"text": "Acme shipped v2", "url": "https://blog.acme.com/v2", "title": ""}
	]}`)

	citations := normalizeResponse(body)
	require.Len(t, citations, 2)
	assert.Equal(t, "Acme raised a round", citations[0].Text)
	assert.Equal(t, "https://news.com/acme", citations[0].URL)
	assert.Equal(t, "Acme News", citations[0].Title)
	assert.Empty(t, citations[1].Title)
}

func TestNormalizeResponse_LegacyShape(t *testing.T) {
	body := []byte(`{"citations": [
		{"snippet": "Acme expands to EU", "source": "https://wire.com/1", "title": "Expansion"}
	]}`)

	citations := normalizeResponse(body)
	require.Len(t, citations, 1)
	assert.Equal(t, "Acme expands to EU", citations[0].Text)
	assert.Equal(t, "https://wire.com/1", citations[0].URL)
}

func TestNormalizeResponse_DocumentsShape(t *testing.T) {
	body := []byte(`{"data": {"documents": [
		{"content": "Acme hires CTO", "link": "https://press.com/cto", "name": "Press"}
	]}}`)

	citations := normalizeResponse(body)
	require.Len(t, citations, 1)
	assert.Equal(t, "Acme hires CTO", citations[0].Text)
	assert.Equal(t, "https://press.com/cto", citations[0].URL)
	assert.Equal(t, "Press", citations[0].Title)
}

func TestNormalizeResponse_UnknownShape(t *testing.T) {
	assert.Empty(t, normalizeResponse([]byte(`{"totally": "different"}`)))
	assert.Empty(t, normalizeResponse([]byte(`not json at all`)))
}

func TestNormalizeResponse_DropsEntriesWithoutURL(t *testing.T) {
	body := []byte(`{"results": [
		{"text": "no source", "url": "", "title": "X"},
		{"text": "has source", "url": "https://ok.com", "title": "Y"}
	]}`)

	citations := normalizeResponse(body)
	require.Len(t, citations, 1)
	assert.Equal(t, "https://ok.com", citations[0].URL)
}
