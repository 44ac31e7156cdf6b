package schemas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditInsightsClean(t *testing.T) {
	doc := `{"insights":["a","b"],"email_subject":"s","email_body":"b","citations":["https://example.com"]}`
	assert.Empty(t, AuditInsights(doc))
}

func TestAuditInsightsMissingCitationsIsClean(t *testing.T) {
	doc := `{"insights":["a"],"email_subject":"s","email_body":"b"}`
	assert.Empty(t, AuditInsights(doc))
}

func TestAuditInsightsMissingRequiredField(t *testing.T) {
	doc := `{"insights":["a"],"email_body":"b"}`
	findings := AuditInsights(doc)
	require.NotEmpty(t, findings)
	assert.Contains(t, strings.Join(findings, "; "), "email_subject")
}

func TestAuditInsightsWrongTypes(t *testing.T) {
	doc := `{"insights":"not an array","email_subject":1,"email_body":"b"}`
	findings := AuditInsights(doc)
	assert.GreaterOrEqual(t, len(findings), 2)
}

func TestAuditInsightsUnparseable(t *testing.T) {
	findings := AuditInsights("not json at all")
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0], "schema validation unavailable")
}
