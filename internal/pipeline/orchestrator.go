// Package pipeline contains the RAG orchestrator and the run lifecycle
// controller: scraped profile and external research are chunked, embedded,
// persisted, retrieved by similarity, and synthesized into an ABM insight
// artifact. The orchestrator never fails past its own boundary; every
// internal error degrades to a deterministic fallback artifact.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/abm-insights/internal/llm"
	"github.com/jonathan/abm-insights/internal/schemas"
	"github.com/jonathan/abm-insights/internal/types"
	"github.com/jonathan/abm-insights/internal/vectorstore"
)

// Retrieval defaults per the pipeline design.
const (
	DefaultTopK      = 5
	DefaultThreshold = 0.7
)

// queryTemplate is the fixed retrieval query, parameterized only by company
// name. It is intentionally static rather than derived from the chunks.
const queryTemplate = "What are the most recent developments, announcements, and strategic priorities at %s?"

// Embedder maps texts to fixed-dimension vectors, preserving input order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces JSON-shaped text for a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Chunk is one unit of retrievable content: text plus the citation it came
// from. Profile-derived chunks carry a synthetic citation pointing at the
// company's own domain.
type Chunk struct {
	Text     string
	Citation types.Citation
}

// Orchestrator coordinates chunking, embedding, persistence, retrieval, and
// generation for one run at a time.
type Orchestrator struct {
	embedder  Embedder
	store     vectorstore.Store
	generator Generator
	topK      int
	threshold float64
}

// NewOrchestrator wires the pipeline's capabilities together. topK and
// threshold fall back to the defaults when zero.
func NewOrchestrator(embedder Embedder, store vectorstore.Store, generator Generator, topK int, threshold float64) *Orchestrator {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Orchestrator{
		embedder:  embedder,
		store:     store,
		generator: generator,
		topK:      topK,
		threshold: threshold,
	}
}

// GenerateInsights runs the full RAG pipeline for a run. It always returns a
// usable artifact: any stage failure is logged and converted into the
// fallback insights built from the profile and the raw external citations.
func (o *Orchestrator) GenerateInsights(ctx context.Context, runID uuid.UUID, company string, profile *types.CompanyProfile, external []types.Citation) *types.Insights {
	insights, err := o.run(ctx, runID, company, profile, external)
	if err != nil {
		log.Printf("[pipeline] run %s: %v; returning fallback insights", runID, err)
		return Fallback(company, profile, external)
	}
	return insights
}

// run executes the pipeline stages in order, short-circuiting on the first
// stage error.
func (o *Orchestrator) run(ctx context.Context, runID uuid.UUID, company string, profile *types.CompanyProfile, external []types.Citation) (*types.Insights, error) {
	chunks, err := BuildChunks(profile, external)
	if err != nil {
		return nil, &StageError{Stage: StageChunk, Err: err}
	}

	if err := o.embedAndPersist(ctx, runID, chunks); err != nil {
		return nil, err
	}

	contextBlock, retrieved, err := o.retrieve(ctx, runID, company)
	if err != nil {
		return nil, err
	}

	insights, err := o.generate(ctx, company, profile, contextBlock, retrieved)
	if err != nil {
		return nil, err
	}
	return insights, nil
}

// BuildChunks assembles the ordered chunk list for a run: one chunk for the
// profile's name+description, one for its about text when present, then one
// per external citation. An empty result is a hard stop since there is
// nothing to embed.
func BuildChunks(profile *types.CompanyProfile, external []types.Citation) ([]Chunk, error) {
	var chunks []Chunk

	selfCitation := types.Citation{
		URL:   "https://" + profile.Domain,
		Title: profile.Name,
	}
	if profile.Description != "" {
		chunks = append(chunks, Chunk{
			Text:     profile.Name + ": " + profile.Description,
			Citation: selfCitation,
		})
	}
	if about := profile.About(); about != "" {
		chunks = append(chunks, Chunk{Text: about, Citation: selfCitation})
	}

	for _, c := range external {
		chunks = append(chunks, Chunk{Text: c.Text, Citation: c})
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("no content to process")
	}
	return chunks, nil
}

// embedAndPersist embeds every chunk in one batched call and persists each as
// an insight record. The stored ordinal index matches the chunk's position so
// citations stay associated with their text.
func (o *Orchestrator) embedAndPersist(ctx context.Context, runID uuid.UUID, chunks []Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := o.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return &StageError{Stage: StageEmbed, Err: err}
	}
	if len(vectors) != len(chunks) {
		return &StageError{Stage: StageEmbed, Err: fmt.Errorf("expected %d vectors, got %d", len(chunks), len(vectors))}
	}

	for i, chunk := range chunks {
		var citations []types.Citation
		if chunk.Citation.URL != "" {
			citations = []types.Citation{chunk.Citation}
		}
		content := vectorstore.Content{Text: chunk.Text, Index: i}
		if err := o.store.Insert(ctx, runID, content, vectors[i], citations); err != nil {
			return &StageError{Stage: StagePersist, Err: err}
		}
	}
	return nil
}

// retrieve embeds the fixed company query, pulls the run's nearest chunks,
// and assembles the numbered context block plus the deduplicated citations.
// When the similarity query is unavailable it degrades to the run's first
// chunks in stored order.
func (o *Orchestrator) retrieve(ctx context.Context, runID uuid.UUID, company string) (string, []types.Citation, error) {
	query := fmt.Sprintf(queryTemplate, company)
	vectors, err := o.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return "", nil, &StageError{Stage: StageRetrieve, Err: fmt.Errorf("failed to embed query: %w", err)}
	}
	if len(vectors) == 0 {
		return "", nil, &StageError{Stage: StageRetrieve, Err: fmt.Errorf("no query embedding returned")}
	}

	matches, err := o.store.Query(ctx, runID, vectors[0], o.threshold, o.topK)
	if err != nil {
		log.Printf("[pipeline] run %s: similarity query unavailable (%v), listing records instead", runID, err)
		records, listErr := o.store.List(ctx, runID, o.topK)
		if listErr != nil {
			return "", nil, &StageError{Stage: StageRetrieve, Err: listErr}
		}
		matches = make([]vectorstore.Match, 0, len(records))
		for _, r := range records {
			matches = append(matches, vectorstore.Match{Content: r.Content, Citations: r.Citations})
		}
	}

	var sb strings.Builder
	var citations []types.Citation
	for i, m := range matches {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, m.Content.Text)
		citations = append(citations, m.Citations...)
	}
	return sb.String(), types.DedupCitations(citations), nil
}

// generate invokes the generation capability and parses the artifact.
// Citations missing from the model output are backfilled from retrieval.
func (o *Orchestrator) generate(ctx context.Context, company string, profile *types.CompanyProfile, contextBlock string, retrieved []types.Citation) (*types.Insights, error) {
	prompt := buildInsightsPrompt(company, profile, contextBlock, retrieved)

	raw, err := o.generator.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, &StageError{Stage: StageGenerate, Err: err}
	}

	cleaned := llm.CleanJSONBlock(raw)
	var insights types.Insights
	if err := json.Unmarshal([]byte(cleaned), &insights); err != nil {
		return nil, &StageError{Stage: StageParse, Err: fmt.Errorf("failed to parse generated JSON: %w", err)}
	}

	// Shape audit is advisory only; the contract enforces nothing beyond the
	// citation presence check below.
	if issues := schemas.AuditInsights(cleaned); len(issues) > 0 {
		log.Printf("[pipeline] generated insights shape issues: %s", strings.Join(issues, "; "))
	}

	if len(insights.Citations) == 0 {
		insights.Citations = types.CitationURLs(retrieved)
	}
	return &insights, nil
}
