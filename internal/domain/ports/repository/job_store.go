package repository

import (
	"context"
	"time"

	"page-summarizer/internal/domain/model"
)

// -----------------------------
// Summary jobs
// -----------------------------

// JobStore owns every SummaryJob. All operations are atomic with respect to each other.
// Returned jobs are copies.
type JobStore interface {
	// Create inserts a pending job, overwriting any job with the same id.
	Create(ctx context.Context, job *model.SummaryJob) error
	// Complete and Fail return domain.ErrNotFound when the id is absent and
	// domain.ErrJobFinalized when the job already reached a terminal state.
	Complete(ctx context.Context, id string, result model.SummaryResult) error
	Fail(ctx context.Context, id string, detail string) error
	// Take removes and returns a terminal job. A pending job is returned but kept.
	Take(ctx context.Context, id string) (*model.SummaryJob, error)
	// Get returns a snapshot without removing anything.
	Get(ctx context.Context, id string) (*model.SummaryJob, error)
	PeekStatus(ctx context.Context, id string) (model.JobStatus, error)
	// Sweep drops jobs created before cutoff and reports how many were removed.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}
