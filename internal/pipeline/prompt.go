package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/abm-insights/internal/llm"
	"github.com/jonathan/abm-insights/internal/types"
)

// buildInsightsPrompt assembles the generation prompt: the company header, a
// "Company Information" block holding the profile and the numbered retrieval
// context, and a numbered citation list with title and URL.
func buildInsightsPrompt(company string, profile *types.CompanyProfile, contextBlock string, citations []types.Citation) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Company: %s\n\n", company)

	sb.WriteString("Company Information:\n")
	if profile.Name != "" {
		fmt.Fprintf(&sb, "Name: %s\n", profile.Name)
	}
	if profile.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", profile.Description)
	}
	if contextBlock != "" {
		sb.WriteString("\nResearch context:\n")
		sb.WriteString(contextBlock)
	}

	if len(citations) > 0 {
		sb.WriteString("\nCitations:\n")
		for i, c := range citations {
			title := c.Title
			if title == "" {
				title = c.URL
			}
			fmt.Fprintf(&sb, "[%d] %s - %s\n", i+1, title, c.URL)
		}
	}

	return llm.BuildExtractionPrompt(llm.ABMInsightsSchema(company), sb.String())
}
