package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/domain/model"
)

func newJob(t *testing.T, id, payload string) *model.SummaryJob {
	t.Helper()
	j, err := model.NewSummaryJob(id, "alice", payload, "")
	if err != nil {
		t.Fatalf("NewSummaryJob: %v", err)
	}
	return j
}

func TestJobStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewJobStore()

	if err := s.Create(ctx, newJob(t, "a", "Hello world")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("pending take keeps the job", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			j, err := s.Take(ctx, "a")
			if err != nil {
				t.Fatalf("Take: %v", err)
			}
			if j.Status != model.JobStatusPending {
				t.Fatalf("status = %s, want pending", j.Status)
			}
		}
		if st, _ := s.PeekStatus(ctx, "a"); st != model.JobStatusPending {
			t.Fatalf("PeekStatus = %s", st)
		}
	})

	t.Run("complete then take once", func(t *testing.T) {
		if err := s.Complete(ctx, "a", model.SummaryResult{Summary: "Greeting."}); err != nil {
			t.Fatalf("Complete: %v", err)
		}
		j, err := s.Take(ctx, "a")
		if err != nil {
			t.Fatalf("Take: %v", err)
		}
		if j.Status != model.JobStatusComplete || j.Result == nil || j.Result.Summary != "Greeting." {
			t.Fatalf("unexpected job %+v", j)
		}
		if _, err := s.Take(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("second Take err = %v, want ErrNotFound", err)
		}
		if _, err := s.PeekStatus(ctx, "a"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("PeekStatus after consume err = %v", err)
		}
	})
}

func TestJobStore_TerminalIsFinal(t *testing.T) {
	ctx := context.Background()
	s := NewJobStore()
	_ = s.Create(ctx, newJob(t, "b", "x"))

	if err := s.Fail(ctx, "b", "upstream down"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if err := s.Complete(ctx, "b", model.SummaryResult{Summary: "late"}); !errors.Is(err, domain.ErrJobFinalized) {
		t.Fatalf("Complete after Fail err = %v", err)
	}
	if err := s.Fail(ctx, "b", "again"); !errors.Is(err, domain.ErrJobFinalized) {
		t.Fatalf("Fail after Fail err = %v", err)
	}
	j, _ := s.Take(ctx, "b")
	if j.Status != model.JobStatusError || j.ErrorDetail != "upstream down" || j.Result != nil {
		t.Fatalf("unexpected job %+v", j)
	}
}

func TestJobStore_MissingIDs(t *testing.T) {
	ctx := context.Background()
	s := NewJobStore()
	if err := s.Complete(ctx, "nope", model.SummaryResult{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Complete err = %v", err)
	}
	if err := s.Fail(ctx, "nope", "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Fail err = %v", err)
	}
	if _, err := s.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get err = %v", err)
	}
	if err := s.Create(ctx, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("Create(nil) err = %v", err)
	}
}

func TestJobStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewJobStore()
	in := newJob(t, "c", "payload")
	_ = s.Create(ctx, in)
	in.Status = model.JobStatusComplete

	got, _ := s.Get(ctx, "c")
	if got.Status != model.JobStatusPending {
		t.Fatal("caller mutation leaked into the store")
	}
	got.Payload = "changed"
	again, _ := s.Get(ctx, "c")
	if again.Payload != "payload" {
		t.Fatal("snapshot mutation leaked into the store")
	}
}

func TestJobStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s := NewJobStore()
	old := newJob(t, "old", "x")
	old.CreatedAt = time.Now().Add(-time.Hour)
	_ = s.Create(ctx, old)
	_ = s.Create(ctx, newJob(t, "fresh", "y"))

	n, err := s.Sweep(ctx, time.Now().Add(-10*time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("Sweep = %d, %v", n, err)
	}
	if _, err := s.Get(ctx, "old"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("old job survived sweep")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d", s.Len())
	}
}

func TestJobStore_ConcurrentNoCrossTalk(t *testing.T) {
	ctx := context.Background()
	s := NewJobStore()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("job-%d", i)
		_ = s.Create(ctx, newJob(t, id, id))
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Complete(ctx, id, model.SummaryResult{Summary: "summary of " + id})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.PeekStatus(ctx, id)
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("job-%d", i)
		j, err := s.Take(ctx, id)
		if err != nil {
			t.Fatalf("Take(%s): %v", id, err)
		}
		if j.Result == nil || j.Result.Summary != "summary of "+id {
			t.Fatalf("job %s got result %+v", id, j.Result)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d after consuming all", s.Len())
	}
}
