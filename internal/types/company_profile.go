// Package types defines the shared domain types for the ABM insight pipeline.
package types

// CompanyProfile is the best-effort record produced by scraping a company's
// website. Every field may be empty except Domain, which echoes the input.
type CompanyProfile struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Domain      string            `json:"domain"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// About returns the profile's "about" page text when the scraper found one.
func (p *CompanyProfile) About() string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata["about"]
}
