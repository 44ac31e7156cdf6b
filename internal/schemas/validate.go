// Package schemas provides an advisory JSON-shape audit of generated
// artifacts. Findings are reported to the caller for logging; the generation
// contract itself only enforces a presence check on citations.
package schemas

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// insightsSchema describes the four-field ABM insight artifact. citations is
// deliberately optional: the pipeline backfills it when missing.
const insightsSchema = `{
	"type": "object",
	"required": ["insights", "email_subject", "email_body"],
	"properties": {
		"insights": {
			"type": "array",
			"items": {"type": "string"}
		},
		"email_subject": {"type": "string"},
		"email_body": {"type": "string"},
		"citations": {
			"type": "array",
			"items": {"type": "string"}
		}
	}
}`

// AuditInsights validates a generated artifact against the insights schema
// and returns human-readable findings. An unparseable document yields a
// single finding; a clean document yields none.
func AuditInsights(jsonText string) []string {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(insightsSchema),
		gojsonschema.NewStringLoader(jsonText),
	)
	if err != nil {
		return []string{fmt.Sprintf("schema validation unavailable: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	findings := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		findings = append(findings, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return findings
}
