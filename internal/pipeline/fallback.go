package pipeline

import (
	"fmt"

	"github.com/jonathan/abm-insights/internal/types"
)

// Fallback builds the deterministic low-information artifact returned when
// the pipeline cannot complete normally. Citations come straight from the
// externally retrieved list, not from retrieval and not deduplicated.
func Fallback(company string, profile *types.CompanyProfile, external []types.Citation) *types.Insights {
	name := profile.Name
	if name == "" {
		name = company
	}

	return &types.Insights{
		Insights: []string{
			"Company: " + name,
			"Domain: " + profile.Domain,
			"Research completed with available data",
		},
		EmailSubject: "Opportunity for " + name,
		EmailBody: fmt.Sprintf(
			"Hello %s team,\n\nWe have been researching companies in your space and believe "+
				"there is a strong opportunity to work together. We would welcome the chance "+
				"to share what we learned about recent developments relevant to %s.\n\nBest regards",
			name, profile.Domain),
		Citations: types.CitationURLs(external),
	}
}
