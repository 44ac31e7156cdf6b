package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/abm-insights/internal/db"
	"github.com/jonathan/abm-insights/internal/types"
)

// RunStore is the durable record of run identity, status, and result.
type RunStore interface {
	CreateRun(ctx context.Context, company, domain string) (uuid.UUID, error)
	CompleteRun(ctx context.Context, runID uuid.UUID, result *types.RunResult) error
	FailRun(ctx context.Context, runID uuid.UUID) error
	GetRun(ctx context.Context, runID uuid.UUID) (*db.Run, error)
	ListRuns(ctx context.Context, limit int) ([]db.Run, error)
}

// Scraper derives a best-effort company profile from a domain. It never
// fails; degraded input is a minimal profile.
type Scraper interface {
	Scrape(ctx context.Context, domain string) *types.CompanyProfile
}

// Researcher retrieves cited research about a company. It never fails;
// degraded input is an empty citation list.
type Researcher interface {
	Fetch(ctx context.Context, company string) []types.Citation
}

// Notifier delivers the final artifact to an external automation endpoint.
// Delivery is fire-and-forget; failures are logged by the implementation.
type Notifier interface {
	Notify(ctx context.Context, payload any)
}

// Default time bounds for one run. The pipeline phase covers scraping,
// research, embedding, and generation; store writes and the detached
// notification carry their own shorter bounds so a spent pipeline deadline
// cannot leave a run stuck in processing.
const (
	defaultPipelineTimeout = 3 * time.Minute
	storeTimeout           = 10 * time.Second
	notifyTimeout          = 10 * time.Second
)

// Runner is the run lifecycle controller: it creates the run, gathers
// collaborator input, invokes the orchestrator, and records the outcome.
type Runner struct {
	Store        RunStore
	Scraper      Scraper
	Researcher   Researcher
	Orchestrator *Orchestrator
	Notifier     Notifier

	// PipelineTimeout bounds the scrape-through-generation phase of one run.
	// Zero selects defaultPipelineTimeout.
	PipelineTimeout time.Duration
}

// Report is the caller-visible outcome of a completed run.
type Report struct {
	RunID          uuid.UUID            `json:"run_id"`
	Company        string               `json:"company"`
	Domain         string               `json:"domain"`
	Insights       types.Insights       `json:"insights"`
	Profile        types.CompanyProfile `json:"scraped_data"`
	CitationsCount int                  `json:"external_citation_count"`
}

// RunError carries the run id alongside an outer failure so callers can still
// look up the partially recorded run.
type RunError struct {
	RunID uuid.UUID
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s failed: %v", e.RunID, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// CreateReport executes one end-to-end run for a company/domain pair. The
// orchestrator's own failures never surface here; an error return means an
// outer failure (the run store itself), and it carries the run id whenever a
// run was created.
func (r *Runner) CreateReport(ctx context.Context, company, domain string, notify bool) (*Report, error) {
	createCtx, cancelCreate := context.WithTimeout(ctx, storeTimeout)
	runID, err := r.Store.CreateRun(createCtx, company, domain)
	cancelCreate()
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	log.Printf("[run] %s: created for %s (%s)", runID, company, domain)

	// Every downstream network call inherits this deadline, so a hung
	// provider degrades the run instead of blocking it forever.
	pipelineTimeout := r.PipelineTimeout
	if pipelineTimeout <= 0 {
		pipelineTimeout = defaultPipelineTimeout
	}
	pipelineCtx, cancelPipeline := context.WithTimeout(ctx, pipelineTimeout)
	defer cancelPipeline()

	// Gather collaborator input concurrently. Both collaborators absorb
	// their own failures, so the group only observes context cancellation.
	var profile *types.CompanyProfile
	var external []types.Citation

	g, gCtx := errgroup.WithContext(pipelineCtx)
	g.Go(func() error {
		profile = r.Scraper.Scrape(gCtx, domain)
		return nil
	})
	g.Go(func() error {
		external = r.Researcher.Fetch(gCtx, company)
		return nil
	})
	if err := g.Wait(); err != nil {
		r.markFailed(ctx, runID)
		return nil, &RunError{RunID: runID, Err: err}
	}
	log.Printf("[run] %s: scraped profile %q, %d external citations", runID, profile.Name, len(external))

	insights := r.Orchestrator.GenerateInsights(pipelineCtx, runID, company, profile, external)

	result := &types.RunResult{
		Insights:       *insights,
		ScrapedData:    *profile,
		CitationsCount: len(external),
	}
	// Outcome writes get a fresh bound detached from the pipeline deadline:
	// the run record must be finalized even when the pipeline timed out.
	completeCtx, cancelComplete := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancelComplete()
	if err := r.Store.CompleteRun(completeCtx, runID, result); err != nil {
		r.markFailed(ctx, runID)
		return nil, &RunError{RunID: runID, Err: err}
	}
	log.Printf("[run] %s: completed", runID)

	report := &Report{
		RunID:          runID,
		Company:        company,
		Domain:         domain,
		Insights:       *insights,
		Profile:        *profile,
		CitationsCount: len(external),
	}

	if notify && r.Notifier != nil {
		// Detached from the request: notification failure never changes
		// the run outcome.
		go func() {
			notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
			defer cancel()
			r.Notifier.Notify(notifyCtx, report)
		}()
	}

	return report, nil
}

// markFailed records the failed status, logging when even that write fails.
// The write is bounded and detached from any expired pipeline deadline.
func (r *Runner) markFailed(ctx context.Context, runID uuid.UUID) {
	failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()
	if err := r.Store.FailRun(failCtx, runID); err != nil {
		log.Printf("[run] %s: failed to record failure: %v", runID, err)
	}
}
