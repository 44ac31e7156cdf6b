package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/abm-insights/internal/db"
	"github.com/jonathan/abm-insights/internal/types"
	"github.com/jonathan/abm-insights/internal/vectorstore/memory"
)

type stubScraper struct {
	profile *types.CompanyProfile
}

func (s *stubScraper) Scrape(context.Context, string) *types.CompanyProfile {
	return s.profile
}

type stubResearcher struct {
	citations []types.Citation
}

func (s *stubResearcher) Fetch(context.Context, string) []types.Citation {
	return s.citations
}

type channelNotifier struct {
	payloads chan any
}

func (n *channelNotifier) Notify(_ context.Context, payload any) {
	n.payloads <- payload
}

// failCompleteStore simulates a run store whose completion write is rejected.
type failCompleteStore struct {
	*db.MemoryStore
}

func (s *failCompleteStore) CompleteRun(context.Context, uuid.UUID, *types.RunResult) error {
	return fmt.Errorf("connection reset")
}

func testRunner(store RunStore, external []types.Citation) *Runner {
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	generator := &fakeGenerator{
		output: `{"insights":["Acme is expanding"],"email_subject":"Acme outreach","email_body":"Hi","citations":["https://example.com/a"]}`,
	}
	return &Runner{
		Store:        store,
		Scraper:      &stubScraper{profile: testProfile()},
		Researcher:   &stubResearcher{citations: external},
		Orchestrator: NewOrchestrator(embedder, memory.New(), generator, 0, 0),
	}
}

func TestCreateReportCompletesRun(t *testing.T) {
	store := db.NewMemoryStore()
	external := []types.Citation{{Text: "news", URL: "https://example.com/a"}}
	runner := testRunner(store, external)

	report, err := runner.CreateReport(context.Background(), "Acme", "acme.com", false)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, "Acme", report.Company)
	assert.Equal(t, "acme.com", report.Domain)
	assert.Equal(t, []string{"Acme is expanding"}, report.Insights.Insights)
	assert.Equal(t, 1, report.CitationsCount)
	assert.Equal(t, "Acme", report.Profile.Name)

	run, err := store.GetRun(context.Background(), report.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, db.StatusCompleted, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, report.Insights, run.Result.Insights)
	assert.Equal(t, 1, run.Result.CitationsCount)
	require.NotNil(t, run.CompletedAt)
}

func TestCreateReportMarksFailedOnCompletionError(t *testing.T) {
	store := &failCompleteStore{MemoryStore: db.NewMemoryStore()}
	runner := testRunner(store, nil)

	report, err := runner.CreateReport(context.Background(), "Acme", "acme.com", false)
	require.Error(t, err)
	assert.Nil(t, report)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.NotEqual(t, uuid.Nil, runErr.RunID)

	run, getErr := store.GetRun(context.Background(), runErr.RunID)
	require.NoError(t, getErr)
	require.NotNil(t, run)
	assert.Equal(t, db.StatusFailed, run.Status)
}

func TestCreateReportStatusIsFinal(t *testing.T) {
	store := db.NewMemoryStore()
	runner := testRunner(store, nil)

	report, err := runner.CreateReport(context.Background(), "Acme", "acme.com", false)
	require.NoError(t, err)

	// Completed runs must not transition again.
	err = store.FailRun(context.Background(), report.RunID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in processing state")

	run, err := store.GetRun(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusCompleted, run.Status)
}

func TestCreateReportNotifies(t *testing.T) {
	store := db.NewMemoryStore()
	runner := testRunner(store, nil)
	notifier := &channelNotifier{payloads: make(chan any, 1)}
	runner.Notifier = notifier

	report, err := runner.CreateReport(context.Background(), "Acme", "acme.com", true)
	require.NoError(t, err)

	select {
	case payload := <-notifier.payloads:
		notified, ok := payload.(*Report)
		require.True(t, ok)
		assert.Equal(t, report.RunID, notified.RunID)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not invoked")
	}
}

func TestCreateReportSkipsNotificationWhenDisabled(t *testing.T) {
	store := db.NewMemoryStore()
	runner := testRunner(store, nil)
	notifier := &channelNotifier{payloads: make(chan any, 1)}
	runner.Notifier = notifier

	_, err := runner.CreateReport(context.Background(), "Acme", "acme.com", false)
	require.NoError(t, err)

	select {
	case <-notifier.payloads:
		t.Fatal("notifier must not be invoked when notify is false")
	case <-time.After(50 * time.Millisecond):
	}
}

// blockingEmbedder only returns once its context is done, simulating a hung
// provider call.
type blockingEmbedder struct{}

func (blockingEmbedder) EmbedTexts(ctx context.Context, _ []string) ([][]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCreateReportBoundsPipelinePhase(t *testing.T) {
	store := db.NewMemoryStore()
	external := []types.Citation{{Text: "news", URL: "https://example.com/a"}}
	runner := testRunner(store, external)
	runner.Orchestrator = NewOrchestrator(blockingEmbedder{}, memory.New(), &fakeGenerator{output: `{}`}, 0, 0)
	runner.PipelineTimeout = 50 * time.Millisecond

	done := make(chan struct{})
	var report *Report
	var err error
	go func() {
		report, err = runner.CreateReport(context.Background(), "Acme", "acme.com", false)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish within the pipeline time bound")
	}

	// The hung embedder degrades the run to the fallback artifact; the run
	// itself still completes and is recorded.
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, "Opportunity for Acme", report.Insights.EmailSubject)

	run, getErr := store.GetRun(context.Background(), report.RunID)
	require.NoError(t, getErr)
	require.NotNil(t, run)
	assert.Equal(t, db.StatusCompleted, run.Status)
}

func TestRunErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("boom")
	id := uuid.New()
	err := &RunError{RunID: id, Err: inner}

	assert.Contains(t, err.Error(), id.String())
	assert.ErrorIs(t, err, inner)
}
