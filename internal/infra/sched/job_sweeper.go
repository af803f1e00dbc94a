package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"page-summarizer/internal/domain/ports/repository"
	"page-summarizer/internal/infra/metrics"
)

// JobSweeper periodically drops summary jobs older than ttl, pending or not.
// Without it an abandoned job stays in the store forever.
type JobSweeper struct {
	interval time.Duration
	ttl      time.Duration
	store    repository.JobStore
	log      *zerolog.Logger
	now      func() time.Time
}

func NewJobSweeper(interval, ttl time.Duration, store repository.JobStore, logger *zerolog.Logger) *JobSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	l := logger.With().Str("component", "JobSweeper").Logger()
	return &JobSweeper{
		interval: interval,
		ttl:      ttl,
		store:    store,
		log:      &l,
		now:      time.Now,
	}
}

func (w *JobSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("ttl", w.ttl).Msg("Starting job sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping job sweeper")
			return ctx.Err()
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce removes expired jobs and returns how many went.
func (w *JobSweeper) SweepOnce(ctx context.Context) int {
	if w.ttl <= 0 {
		return 0
	}
	n, err := w.store.Sweep(ctx, w.now().Add(-w.ttl))
	if err != nil {
		w.log.Error().Err(err).Msg("job sweep error")
		return 0
	}
	if n > 0 {
		metrics.AddJobsSwept(n)
		w.log.Info().Int("count", n).Msg("expired summary jobs removed")
	}
	return n
}
