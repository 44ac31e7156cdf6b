// Package pgvector implements the vector store on PostgreSQL with the
// pgvector extension, using cosine distance for similarity.
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/abm-insights/internal/types"
	"github.com/jonathan/abm-insights/internal/vectorstore"
)

// DefaultDimension matches the text-embedding-004 vector size.
const DefaultDimension = 768

// Store is a pgvector-backed vectorstore.Store.
type Store struct {
	pool      *pgxpool.Pool
	dimension int
}

// New creates a Store over an existing connection pool. dimension must match
// the embedder's output size; zero selects DefaultDimension.
func New(pool *pgxpool.Pool, dimension int) *Store {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Store{pool: pool, dimension: dimension}
}

// EnsureSchema creates the pgvector extension and the insights table if they
// do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS abm_insights (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL,
			content JSONB NOT NULL,
			embedding vector(%d) NOT NULL,
			citations JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS abm_insights_run_id_idx ON abm_insights (run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure vector store schema: %w", err)
		}
	}
	return nil
}

// Insert persists one embedded chunk under the given run.
func (s *Store) Insert(ctx context.Context, runID uuid.UUID, content vectorstore.Content, embedding []float32, citations []types.Citation) error {
	if len(embedding) != s.dimension {
		return fmt.Errorf("embedding dimension %d does not match store dimension %d", len(embedding), s.dimension)
	}

	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}
	if citations == nil {
		citations = []types.Citation{}
	}
	citationsJSON, err := json.Marshal(citations)
	if err != nil {
		return fmt.Errorf("failed to marshal citations: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO abm_insights (run_id, content, embedding, citations)
		 VALUES ($1, $2, $3::vector, $4)`,
		runID, contentJSON, encodeVector(embedding), citationsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert insight record: %w", err)
	}
	return nil
}

// Query returns the run's nearest neighbors strictly above the similarity
// threshold, ordered by ascending cosine distance.
func (s *Store) Query(ctx context.Context, runID uuid.UUID, embedding []float32, threshold float64, limit int) ([]vectorstore.Match, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT content, citations, 1 - (embedding <=> $2::vector) AS similarity
		 FROM abm_insights
		 WHERE run_id = $1 AND 1 - (embedding <=> $2::vector) > $3
		 ORDER BY embedding <=> $2::vector ASC
		 LIMIT $4`,
		runID, encodeVector(embedding), threshold, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query insight records: %w", err)
	}
	defer rows.Close()

	var matches []vectorstore.Match
	for rows.Next() {
		var contentJSON, citationsJSON []byte
		var m vectorstore.Match
		if err := rows.Scan(&contentJSON, &citationsJSON, &m.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if err := json.Unmarshal(contentJSON, &m.Content); err != nil {
			return nil, fmt.Errorf("failed to unmarshal content: %w", err)
		}
		if err := json.Unmarshal(citationsJSON, &m.Citations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal citations: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// List returns the run's records in chunk order without similarity ranking.
func (s *Store) List(ctx context.Context, runID uuid.UUID, limit int) ([]vectorstore.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, content, citations
		 FROM abm_insights
		 WHERE run_id = $1
		 ORDER BY (content->>'index')::int ASC
		 LIMIT $2`,
		runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list insight records: %w", err)
	}
	defer rows.Close()

	var records []vectorstore.Record
	for rows.Next() {
		var contentJSON, citationsJSON []byte
		var r vectorstore.Record
		if err := rows.Scan(&r.RunID, &contentJSON, &citationsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if err := json.Unmarshal(contentJSON, &r.Content); err != nil {
			return nil, fmt.Errorf("failed to unmarshal content: %w", err)
		}
		if err := json.Unmarshal(citationsJSON, &r.Citations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal citations: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// encodeVector renders an embedding in pgvector's text format: [x,y,z].
func encodeVector(embedding []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
