package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parchlabs/clauseguard/internal/domain"
)

// AnalysisJobRepository is the durable queue behind the analysis worker.
// Claims go through FOR UPDATE SKIP LOCKED so concurrent workers never
// deliver the same job twice at once; redelivery after a crash comes from
// RequeueStale.
type AnalysisJobRepository struct {
	db dbtx
}

func NewAnalysisJobRepository(pool *pgxpool.Pool) *AnalysisJobRepository {
	return &AnalysisJobRepository{db: pool}
}

func NewAnalysisJobRepositoryWithTx(tx pgx.Tx) *AnalysisJobRepository {
	return &AnalysisJobRepository{db: tx}
}

func (r *AnalysisJobRepository) Enqueue(ctx context.Context, job *domain.AnalysisJob) error {
	var errPtr *string
	if job.Error != "" {
		errPtr = &job.Error
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO analysis_jobs (id, document_id, status, attempts, error, scheduled_at, created_at, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.DocumentID, job.Status, job.Attempts, errPtr, job.ScheduledAt, job.CreatedAt, job.ProcessedAt,
	)
	return err
}

func (r *AnalysisJobRepository) GetByID(ctx context.Context, id string) (*domain.AnalysisJob, error) {
	var job domain.AnalysisJob
	var errMsg pgtype.Text
	err := r.db.QueryRow(ctx,
		`SELECT id, document_id, status, attempts, error, scheduled_at, created_at, processed_at
		 FROM analysis_jobs WHERE id = $1`,
		id,
	).Scan(&job.ID, &job.DocumentID, &job.Status, &job.Attempts, &errMsg, &job.ScheduledAt, &job.CreatedAt, &job.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAnalysisJobNotFound
		}
		return nil, err
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	return &job, nil
}

// ClaimDue atomically claims up to limit due jobs for this worker. The claim
// increments the delivery attempt counter, so a claimed job's Attempts field
// already counts the delivery in progress.
func (r *AnalysisJobRepository) ClaimDue(ctx context.Context, limit int) ([]*domain.AnalysisJob, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM analysis_jobs
			 WHERE status = $1 AND scheduled_at <= now()
			 ORDER BY scheduled_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT $2
		 )
		 UPDATE analysis_jobs
		 SET status = $3,
		     attempts = analysis_jobs.attempts + 1,
		     claimed_at = now(),
		     error = NULL
		 FROM cte
		 WHERE analysis_jobs.id = cte.id
		 RETURNING analysis_jobs.id, analysis_jobs.document_id, analysis_jobs.status,
		           analysis_jobs.attempts, analysis_jobs.error, analysis_jobs.scheduled_at,
		           analysis_jobs.created_at, analysis_jobs.processed_at`,
		domain.AnalysisJobStatusPending, limit, domain.AnalysisJobStatusProcessing,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.AnalysisJob
	for rows.Next() {
		var job domain.AnalysisJob
		var errMsg pgtype.Text
		if err := rows.Scan(&job.ID, &job.DocumentID, &job.Status, &job.Attempts, &errMsg, &job.ScheduledAt, &job.CreatedAt, &job.ProcessedAt); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			job.Error = errMsg.String
		}
		jobs = append(jobs, &job)
	}

	return jobs, rows.Err()
}

// Complete marks a delivered job as done.
func (r *AnalysisJobRepository) Complete(ctx context.Context, id string) error {
	now := time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE analysis_jobs SET status = $1, processed_at = $2 WHERE id = $3`,
		domain.AnalysisJobStatusCompleted, now, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAnalysisJobNotFound
	}
	return nil
}

// Fail marks a job as permanently failed after its delivery budget is spent.
func (r *AnalysisJobRepository) Fail(ctx context.Context, id string, errMsg string) error {
	now := time.Now().UTC()
	var errPtr *string
	if errMsg != "" {
		errPtr = &errMsg
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE analysis_jobs SET status = $1, error = $2, processed_at = $3 WHERE id = $4`,
		domain.AnalysisJobStatusFailed, errPtr, now, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAnalysisJobNotFound
	}
	return nil
}

// Reschedule returns a failed delivery to the queue, due again at runAt.
func (r *AnalysisJobRepository) Reschedule(ctx context.Context, id string, errMsg string, runAt time.Time) error {
	var errPtr *string
	if errMsg != "" {
		errPtr = &errMsg
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE analysis_jobs SET status = $1, error = $2, scheduled_at = $3, claimed_at = NULL WHERE id = $4`,
		domain.AnalysisJobStatusPending, errPtr, runAt, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAnalysisJobNotFound
	}
	return nil
}

// RequeueStale returns jobs claimed by workers that died mid-delivery to the
// pending state. A claim older than olderThan is presumed orphaned.
func (r *AnalysisJobRepository) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE analysis_jobs
		 SET status = $1, claimed_at = NULL
		 WHERE status = $2 AND claimed_at IS NOT NULL AND claimed_at < $3`,
		domain.AnalysisJobStatusPending, domain.AnalysisJobStatusProcessing, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// HasActiveJob reports whether a pending or processing job already exists for
// the document, so repeated analyze requests do not pile up duplicate work.
func (r *AnalysisJobRepository) HasActiveJob(ctx context.Context, documentID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			 SELECT 1 FROM analysis_jobs
			 WHERE document_id = $1 AND status IN ($2, $3)
		 )`,
		documentID, domain.AnalysisJobStatusPending, domain.AnalysisJobStatusProcessing,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
