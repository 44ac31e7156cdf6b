package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/abm-insights/internal/types"
)

// MemoryStore is an in-process run store used by the CLI when no database is
// configured, and by tests. It enforces the same one-way status transition as
// the Postgres store.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*Run
}

// NewMemoryStore creates an empty in-memory run store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[uuid.UUID]*Run)}
}

// CreateRun inserts a new run with status processing and returns its id.
func (m *MemoryStore) CreateRun(_ context.Context, company, domain string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New()
	m.runs[id] = &Run{
		ID:        id,
		Company:   company,
		Domain:    domain,
		Status:    StatusProcessing,
		CreatedAt: time.Now(),
	}
	return id, nil
}

// CompleteRun stores the result payload and marks the run completed.
func (m *MemoryStore) CompleteRun(_ context.Context, runID uuid.UUID, result *types.RunResult) error {
	return m.transition(runID, StatusCompleted, result)
}

// FailRun marks the run failed.
func (m *MemoryStore) FailRun(_ context.Context, runID uuid.UUID) error {
	return m.transition(runID, StatusFailed, nil)
}

func (m *MemoryStore) transition(runID uuid.UUID, status string, result *types.RunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run not found: %s", runID)
	}
	if run.Status != StatusProcessing {
		return fmt.Errorf("run %s is not in processing state", runID)
	}
	now := time.Now()
	run.Status = status
	run.Result = result
	run.CompletedAt = &now
	return nil
}

// GetRun retrieves a run by id. Returns nil when no run exists.
func (m *MemoryStore) GetRun(_ context.Context, runID uuid.UUID) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

// ListRuns retrieves recent runs, newest first.
func (m *MemoryStore) ListRuns(_ context.Context, limit int) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
