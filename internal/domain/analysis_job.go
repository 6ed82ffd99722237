package domain

import "time"

// AnalysisJobStatus represents the delivery state of a queued analysis task.
type AnalysisJobStatus string

const (
	AnalysisJobStatusPending    AnalysisJobStatus = "pending"
	AnalysisJobStatusProcessing AnalysisJobStatus = "processing"
	AnalysisJobStatusCompleted  AnalysisJobStatus = "completed"
	AnalysisJobStatusFailed     AnalysisJobStatus = "failed"
)

// AnalysisJob is one "analyze document D" task owned by the job queue.
// Delivery is at least once: a job claimed by a crashed worker is requeued
// and redelivered, so the pipeline must be safe to re-run per document.
type AnalysisJob struct {
	ID          string
	DocumentID  string
	Status      AnalysisJobStatus
	Attempts    int32
	Error       string
	ScheduledAt time.Time
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewAnalysisJob creates a pending job due immediately.
func NewAnalysisJob(id, documentID string, createdAt time.Time) *AnalysisJob {
	return &AnalysisJob{
		ID:          id,
		DocumentID:  documentID,
		Status:      AnalysisJobStatusPending,
		ScheduledAt: createdAt,
		CreatedAt:   createdAt,
	}
}
