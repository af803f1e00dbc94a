// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/infra/metrics"
)

// ErrPoolStopped is returned by Submit after Stop.
var ErrPoolStopped = errors.New("worker pool stopped")

type Task func(ctx context.Context) error

// Pool runs submitted tasks on a fixed set of goroutines fed by a bounded queue.
// Tasks get the pool's context, never a request's.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan Task
	quit chan struct{}
	n    int
	log  *zerolog.Logger

	mu          sync.RWMutex
	stopped     bool
	outstanding atomic.Int64
}

func NewPool(workers, queueSize int, log *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = workers * 4
	}
	l := log.With().Str("component", "worker_pool").Logger()
	return &Pool{jobs: make(chan Task, queueSize), quit: make(chan struct{}), n: workers, log: &l}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					p.drain(ctx, id)
					return
				case task := <-p.jobs:
					p.run(ctx, id, task)
				}
			}
		}(i)
	}
	p.log.Info().Int("workers", p.n).Int("queue", cap(p.jobs)).Msg("worker pool started")
}

// drain runs whatever is still queued so accepted work is not lost on shutdown.
func (p *Pool) drain(ctx context.Context, id int) {
	for {
		select {
		case task := <-p.jobs:
			p.run(ctx, id, task)
		default:
			return
		}
	}
}

func (p *Pool) run(ctx context.Context, id int, task Task) {
	defer func() {
		metrics.SetJobsOutstanding(p.outstanding.Add(-1))
	}()
	if task == nil {
		return
	}
	if err := safeRun(ctx, task); err != nil {
		p.log.Error().Err(err).Int("worker", id).Msg("task error")
	}
}

func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return task(ctx)
}

// Stop refuses new tasks, lets workers finish queued ones, and waits for them.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.quit)
	p.wg.Wait()
	p.log.Info().Int64("outstanding", p.outstanding.Load()).Msg("worker pool stopped")
}

// Submit enqueues task without blocking. It returns domain.ErrQueueFull when saturated.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	p.outstanding.Add(1)
	select {
	case p.jobs <- task:
		metrics.SetJobsOutstanding(p.outstanding.Load())
		return nil
	default:
		p.outstanding.Add(-1)
		return domain.ErrQueueFull
	}
}

// Outstanding counts tasks queued or running.
func (p *Pool) Outstanding() int64 { return p.outstanding.Load() }
