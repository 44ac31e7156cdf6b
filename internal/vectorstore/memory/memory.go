// Package memory implements an in-process vector store. It backs the CLI when
// no database is configured and serves as the reference implementation of the
// similarity semantics in tests.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/abm-insights/internal/types"
	"github.com/jonathan/abm-insights/internal/vectorstore"
)

type entry struct {
	record    vectorstore.Record
	embedding []float32
}

// Store keeps all records in memory, grouped by run.
type Store struct {
	mu      sync.RWMutex
	entries []entry
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Insert persists one embedded chunk under the given run.
func (s *Store) Insert(_ context.Context, runID uuid.UUID, content vectorstore.Content, embedding []float32, citations []types.Citation) error {
	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{
		record: vectorstore.Record{
			RunID:     runID,
			Content:   content,
			Citations: citations,
		},
		embedding: vec,
	})
	return nil
}

// Query returns the run's matches with similarity strictly above threshold,
// best match first. Similarity is 1 minus cosine distance.
func (s *Store) Query(_ context.Context, runID uuid.UUID, embedding []float32, threshold float64, limit int) ([]vectorstore.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []vectorstore.Match
	for _, e := range s.entries {
		if e.record.RunID != runID {
			continue
		}
		sim := cosineSimilarity(embedding, e.embedding)
		if sim > threshold {
			matches = append(matches, vectorstore.Match{
				Content:    e.record.Content,
				Citations:  e.record.Citations,
				Similarity: sim,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// List returns the run's records in chunk order without similarity ranking.
func (s *Store) List(_ context.Context, runID uuid.UUID, limit int) ([]vectorstore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []vectorstore.Record
	for _, e := range s.entries {
		if e.record.RunID == runID {
			records = append(records, e.record)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Content.Index < records[j].Content.Index
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched or zero-magnitude vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
