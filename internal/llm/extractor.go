// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content generation.
// It provides a reusable way to describe the expected JSON output.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "ABMInsights")
	Description string        // System prompt preamble describing the task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Ground every statement in the provided material, do not invent facts.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// ABMInsightsSchema returns the generation schema for the ABM insight artifact.
func ABMInsightsSchema(company string) ExtractionSchema {
	return ExtractionSchema{
		Name: "ABMInsights",
		Description: fmt.Sprintf(`You are an account-based marketing analyst preparing outreach to %s.
Using the company information and numbered research context below, produce concise, specific insights
about the company and a short personalized outreach email. Reference the numbered citations where relevant.`, company),
		Fields: []SchemaField{
			{Name: "insights", Type: "[]string", Description: "3-5 specific insights about the company", Required: true},
			{Name: "email_subject", Type: "string", Description: "personalized outreach email subject", Required: true},
			{Name: "email_body", Type: "string", Description: "personalized outreach email body", Required: true},
			{Name: "citations", Type: "[]string", Description: "source URLs supporting the insights", Required: false},
		},
	}
}
