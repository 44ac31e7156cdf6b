// Package vectorstore defines the vector persistence capability used by the
// insight pipeline: run-scoped storage of embedded text chunks and
// nearest-neighbor retrieval over them.
package vectorstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/abm-insights/internal/types"
)

// Content is the retrievable document stored alongside each embedding.
// Index is the chunk's ordinal position within its run.
type Content struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// Record is one persisted insight entry, scoped to exactly one run.
type Record struct {
	RunID     uuid.UUID        `json:"run_id"`
	Content   Content          `json:"content"`
	Citations []types.Citation `json:"citations"`
}

// Match is a retrieval hit. Similarity is 1 minus cosine distance.
type Match struct {
	Content    Content          `json:"content"`
	Citations  []types.Citation `json:"citations"`
	Similarity float64          `json:"similarity"`
}

// Store persists (vector, metadata) pairs and answers similarity queries.
// Every operation requires a run id: unscoped queries are deliberately not
// supported to rule out cross-run leakage.
type Store interface {
	// Insert persists one embedded chunk under the given run.
	Insert(ctx context.Context, runID uuid.UUID, content Content, embedding []float32, citations []types.Citation) error
	// Query returns up to limit matches for the run whose similarity is
	// strictly above threshold, best match first.
	Query(ctx context.Context, runID uuid.UUID, embedding []float32, threshold float64, limit int) ([]Match, error)
	// List returns up to limit records for the run in chunk order, without
	// similarity ranking. It serves as the degraded retrieval path.
	List(ctx context.Context, runID uuid.UUID, limit int) ([]Record, error)
}
