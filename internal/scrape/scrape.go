// Package scrape derives a best-effort company profile from a company's
// website. The scraper never returns an error: any fetch or parse failure
// degrades to a minimal profile carrying only the input domain.
package scrape

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/abm-insights/internal/types"
)

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 30 * time.Second

// userAgent identifies the scraper to company sites.
const userAgent = "Mozilla/5.0 (compatible; ABMInsightAgent/1.0)"

// minUsefulDescription is the shortest description we accept from static HTML
// before trying a headless-browser render for JS-heavy sites.
const minUsefulDescription = 40

// Scraper fetches and parses company websites.
type Scraper struct {
	client     *http.Client
	useBrowser bool
}

// New creates a Scraper. When useBrowser is true, pages whose static HTML
// yields no usable description are re-fetched through a headless browser.
func New(timeout time.Duration, useBrowser bool) *Scraper {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Scraper{
		client:     &http.Client{Timeout: timeout},
		useBrowser: useBrowser,
	}
}

// Scrape fetches https://<domain> and extracts a company profile.
// It never fails: on any error the returned profile contains the domain and
// whatever fields were recovered before the error.
func (s *Scraper) Scrape(ctx context.Context, domain string) *types.CompanyProfile {
	profile := &types.CompanyProfile{
		Domain:   domain,
		Metadata: map[string]string{},
	}

	html, err := s.fetchHTML(ctx, "https://"+domain)
	if err != nil {
		log.Printf("[scrape] fetch failed for %s: %v", domain, err)
		return profile
	}

	fillProfile(profile, html)

	if s.useBrowser && len(profile.Description) < minUsefulDescription {
		rendered, err := renderWithBrowser(ctx, "https://"+domain, s.client.Timeout)
		if err != nil {
			log.Printf("[scrape] browser render failed for %s: %v", domain, err)
			return profile
		}
		fillProfile(profile, rendered)
	}

	return profile
}

// fetchHTML retrieves a page as a string.
func (s *Scraper) fetchHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// fillProfile extracts name, description, and about text from HTML into the
// profile, keeping any previously recovered value when a field comes up empty.
func fillProfile(profile *types.CompanyProfile, html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[scrape] failed to parse HTML: %v", err)
		return
	}

	if name := extractName(doc); name != "" {
		profile.Name = name
	}
	if desc := extractDescription(doc); desc != "" {
		profile.Description = desc
	}
	if about := extractAbout(doc); about != "" {
		profile.Metadata["about"] = about
	}
	if kw, ok := doc.Find(`meta[name="keywords"]`).Attr("content"); ok && strings.TrimSpace(kw) != "" {
		profile.Metadata["keywords"] = strings.TrimSpace(kw)
	}
}

// extractName tries og:site_name, then the <title> tag stripped of taglines.
func extractName(doc *goquery.Document) string {
	if name, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return ""
	}
	// Titles are often "Company | Tagline" or "Company - Tagline".
	for _, sep := range []string{" | ", " - ", " – ", " — ", " :: "} {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}
	return title
}

// extractDescription tries meta description, og:description, then the first
// substantial paragraph.
func extractDescription(doc *goquery.Document) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if desc, ok := doc.Find(sel).Attr("content"); ok {
			if desc = strings.TrimSpace(desc); desc != "" {
				return desc
			}
		}
	}

	var fallback string
	doc.Find("main p, article p, body p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if len(text) >= minUsefulDescription {
			fallback = text
			return false
		}
		return true
	})
	return fallback
}

// extractAbout pulls text from sections that look like an about blurb.
func extractAbout(doc *goquery.Document) string {
	for _, sel := range []string{"#about", ".about", `section[id*="about"]`, `div[class*="about"]`} {
		selection := doc.Find(sel).First()
		if selection.Length() == 0 {
			continue
		}
		text := cleanWhitespace(selection.Text())
		if len(text) >= minUsefulDescription {
			return text
		}
	}
	return ""
}

// cleanWhitespace collapses blank lines and trims each remaining line.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
