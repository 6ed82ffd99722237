package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/parchlabs/clauseguard/internal/domain"
	"github.com/parchlabs/clauseguard/internal/metrics"
	"github.com/parchlabs/clauseguard/internal/telemetry"
)

const (
	// MaxDeliveryAttempts is how many times a job is delivered before it is
	// failed for good.
	MaxDeliveryAttempts = 3
	// BackoffBase is the delay before the first redelivery; each further
	// redelivery doubles it.
	BackoffBase = 5 * time.Second
	// StaleClaimAge is how long a claim may sit in processing before it is
	// presumed orphaned by a dead worker and requeued.
	StaleClaimAge = 10 * time.Minute
	// DefaultConcurrency caps parallel document analyses per worker.
	DefaultConcurrency = 3
)

// AnalysisJobRepository defines the queue operations the worker needs.
type AnalysisJobRepository interface {
	ClaimDue(ctx context.Context, limit int) ([]*domain.AnalysisJob, error)
	Complete(ctx context.Context, id string) error
	Fail(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, errMsg string, runAt time.Time) error
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// AnalysisPipeline runs the document analysis behind a job.
type AnalysisPipeline interface {
	Run(ctx context.Context, documentID string) (int, error)
	MarkFailed(ctx context.Context, documentID string) error
}

// AnalysisWorker drains the analysis job queue. Each tick requeues orphaned
// claims, then claims up to concurrency due jobs and runs them in parallel.
type AnalysisWorker struct {
	repo        AnalysisJobRepository
	pipeline    AnalysisPipeline
	concurrency int
}

// NewAnalysisWorker creates a new AnalysisWorker instance.
func NewAnalysisWorker(repo AnalysisJobRepository, pipeline AnalysisPipeline, concurrency int) *AnalysisWorker {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &AnalysisWorker{
		repo:        repo,
		pipeline:    pipeline,
		concurrency: concurrency,
	}
}

// ProcessJobs implements the JobProcessor interface.
func (w *AnalysisWorker) ProcessJobs(ctx context.Context) error {
	if n, err := w.repo.RequeueStale(ctx, StaleClaimAge); err != nil {
		log.Printf("jobs: failed to requeue stale claims: %v", err)
	} else if n > 0 {
		log.Printf("jobs: requeued %d stale claims", n)
	}

	jobs, err := w.repo.ClaimDue(ctx, w.concurrency)
	if err != nil {
		return fmt.Errorf("failed to claim due jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil
	}

	log.Printf("jobs: claimed %d analysis jobs", len(jobs))

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job *domain.AnalysisJob) {
			defer wg.Done()
			w.processJob(ctx, job)
		}(job)
	}
	wg.Wait()

	return nil
}

func (w *AnalysisWorker) processJob(ctx context.Context, job *domain.AnalysisJob) {
	metrics.IncrementJobsInFlight()
	defer metrics.DecrementJobsInFlight()

	ctx, span := telemetry.StartSpan(ctx, "jobs.analysis", telemetry.SpanAttributes{
		DocumentID: job.DocumentID,
		JobID:      job.ID,
		Operation:  "process_job",
	})
	defer span.End()

	count, err := w.pipeline.Run(ctx, job.DocumentID)
	if err != nil {
		w.handleFailure(ctx, job, err)
		return
	}

	if err := w.repo.Complete(ctx, job.ID); err != nil {
		log.Printf("jobs: failed to complete job %s: %v", job.ID, err)
		return
	}
	log.Printf("jobs: job %s completed, document %s has %d findings", job.ID, job.DocumentID, count)
}

func (w *AnalysisWorker) handleFailure(ctx context.Context, job *domain.AnalysisJob, jobErr error) {
	log.Printf("jobs: job %s delivery %d/%d failed: %v", job.ID, job.Attempts, MaxDeliveryAttempts, jobErr)

	if isPermanent(jobErr) || job.Attempts >= MaxDeliveryAttempts {
		telemetry.CaptureError(ctx, jobErr)
		if err := w.repo.Fail(ctx, job.ID, jobErr.Error()); err != nil {
			log.Printf("jobs: failed to mark job %s failed: %v", job.ID, err)
			return
		}
		if err := w.pipeline.MarkFailed(ctx, job.DocumentID); err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
			log.Printf("jobs: failed to mark document %s errored: %v", job.DocumentID, err)
		}
		return
	}

	delay := backoffDelay(job.Attempts)
	errMsg := fmt.Sprintf("delivery %d: %v", job.Attempts, jobErr)
	if err := w.repo.Reschedule(ctx, job.ID, errMsg, time.Now().UTC().Add(delay)); err != nil {
		log.Printf("jobs: failed to reschedule job %s: %v", job.ID, err)
		return
	}
	log.Printf("jobs: job %s rescheduled in %v", job.ID, delay)
}

// isPermanent reports failures that redelivery cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrDocumentNotFound) ||
		errors.Is(err, domain.ErrDocumentFileNotFound)
}

// backoffDelay doubles the base delay for each completed delivery attempt.
func backoffDelay(attempts int32) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return BackoffBase * (1 << (attempts - 1))
}
