// Package memstore holds summary jobs in process memory.
package memstore

import (
	"context"
	"sync"
	"time"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/domain/model"
	"page-summarizer/internal/domain/ports/repository"
)

// JobStore is a mutex-guarded map. One global lock; contention is one job per user action.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*model.SummaryJob
	now  func() time.Time
}

var _ repository.JobStore = (*JobStore)(nil)

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*model.SummaryJob), now: time.Now}
}

func (s *JobStore) Create(_ context.Context, job *model.SummaryJob) error {
	if job == nil || job.ID == "" {
		return domain.ErrInvalidArgument
	}
	cp := job.Clone()
	s.mu.Lock()
	s.jobs[job.ID] = cp
	s.mu.Unlock()
	return nil
}

func (s *JobStore) Complete(_ context.Context, id string, result model.SummaryResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	return j.Complete(result, s.now())
}

func (s *JobStore) Fail(_ context.Context, id string, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	return j.Fail(detail, s.now())
}

func (s *JobStore) Take(_ context.Context, id string) (*model.SummaryJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if j.Status.IsTerminal() {
		delete(s.jobs, id)
		return j, nil
	}
	return j.Clone(), nil
}

func (s *JobStore) Get(_ context.Context, id string) (*model.SummaryJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return j.Clone(), nil
}

func (s *JobStore) PeekStatus(_ context.Context, id string) (model.JobStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return j.Status, nil
}

func (s *JobStore) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, j := range s.jobs {
		if j.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many jobs are held.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
