package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/abm-insights/internal/types"
	"github.com/jonathan/abm-insights/internal/vectorstore"
)

func insertChunk(t *testing.T, s *Store, runID uuid.UUID, index int, text string, embedding []float32) {
	t.Helper()
	err := s.Insert(context.Background(), runID, vectorstore.Content{Text: text, Index: index}, embedding, nil)
	require.NoError(t, err)
}

func TestQuery_ScopedToRun(t *testing.T) {
	s := New()
	runA := uuid.New()
	runB := uuid.New()
	vec := []float32{1, 0, 0}

	insertChunk(t, s, runA, 0, "run A content", vec)
	insertChunk(t, s, runB, 0, "run B content", vec)

	matches, err := s.Query(context.Background(), runA, vec, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "run A content", matches[0].Content.Text)
}

func TestQuery_StrictThreshold(t *testing.T) {
	s := New()
	runID := uuid.New()

	// cos(query, identical) = 1.0; cos(query, borderline) = 24/25 = 0.96,
	// exact in float64, so it sits precisely on the threshold; orthogonal = 0.
	query := []float32{3, 4}
	insertChunk(t, s, runID, 0, "identical", []float32{6, 8})
	insertChunk(t, s, runID, 1, "borderline", []float32{4, 3})
	insertChunk(t, s, runID, 2, "orthogonal", []float32{4, -3})

	matches, err := s.Query(context.Background(), runID, query, 0.96, 10)
	require.NoError(t, err)

	require.Len(t, matches, 1, "similarity exactly at threshold must be excluded")
	assert.Equal(t, "identical", matches[0].Content.Text)
}

func TestQuery_BestMatchFirstAndLimited(t *testing.T) {
	s := New()
	runID := uuid.New()
	query := []float32{1, 0}

	insertChunk(t, s, runID, 0, "weak", []float32{1, 1})
	insertChunk(t, s, runID, 1, "strong", []float32{1, 0.1})
	insertChunk(t, s, runID, 2, "exact", []float32{1, 0})

	matches, err := s.Query(context.Background(), runID, query, 0.5, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "exact", matches[0].Content.Text)
	assert.Equal(t, "strong", matches[1].Content.Text)
}

func TestList_ChunkOrder(t *testing.T) {
	s := New()
	runID := uuid.New()
	vec := []float32{1, 0}

	// Insert out of order; List must come back ordered by index.
	insertChunk(t, s, runID, 2, "third", vec)
	insertChunk(t, s, runID, 0, "first", vec)
	insertChunk(t, s, runID, 1, "second", vec)

	records, err := s.List(context.Background(), runID, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "first", records[0].Content.Text)
	assert.Equal(t, "second", records[1].Content.Text)
	assert.Equal(t, "third", records[2].Content.Text)
}

func TestList_Limit(t *testing.T) {
	s := New()
	runID := uuid.New()
	vec := []float32{1, 0}
	for i := 0; i < 7; i++ {
		insertChunk(t, s, runID, i, "chunk", vec)
	}

	records, err := s.List(context.Background(), runID, 5)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestInsert_CopiesEmbeddingAndKeepsCitations(t *testing.T) {
	s := New()
	runID := uuid.New()
	vec := []float32{1, 0}
	citations := []types.Citation{{Text: "snippet", URL: "https://x.com"}}

	err := s.Insert(context.Background(), runID, vectorstore.Content{Text: "t", Index: 0}, vec, citations)
	require.NoError(t, err)

	// Mutating the caller's slice must not affect the stored vector.
	vec[0] = 0

	matches, err := s.Query(context.Background(), runID, []float32{1, 0}, 0.9, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Len(t, matches[0].Citations, 1)
	assert.Equal(t, "https://x.com", matches[0].Citations[0].URL)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{5, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}
