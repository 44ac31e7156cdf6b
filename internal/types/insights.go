package types

// Insights is the final ABM artifact: a handful of account insights plus a
// ready-to-send outreach email. Produced exactly once per run, either by
// generation or by the fallback synthesizer.
type Insights struct {
	Insights     []string `json:"insights"`
	EmailSubject string   `json:"email_subject"`
	EmailBody    string   `json:"email_body"`
	Citations    []string `json:"citations"`
}

// RunResult is the payload persisted on a completed run.
type RunResult struct {
	Insights       Insights       `json:"insights"`
	ScrapedData    CompanyProfile `json:"scraped_data"`
	CitationsCount int            `json:"external_citation_count"`
}
