//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"page-summarizer/internal/domain"
)

// --- User Model Tests ---

func TestNewUser(t *testing.T) {
	t.Run("should create a new user successfully", func(t *testing.T) {
		user, err := NewUser("  alice ", "hash")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if user.Username != "alice" {
			t.Errorf("expected username to be trimmed to 'alice', but got %q", user.Username)
		}
		if user.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("should fail with empty username", func(t *testing.T) {
		user, err := NewUser("   ", "hash")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
		if user != nil {
			t.Error("expected user to be nil on error")
		}
	})

	t.Run("should fail with empty hash", func(t *testing.T) {
		if _, err := NewUser("bob", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}

// --- SummaryJob Model Tests ---

func TestNewSummaryJob(t *testing.T) {
	t.Run("starts pending", func(t *testing.T) {
		job, err := NewSummaryJob("job-1", "alice", "Hello world", "  list the key points ")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if job.Status != JobStatusPending {
			t.Errorf("expected pending, got %s", job.Status)
		}
		if job.CustomPrompt != "list the key points" {
			t.Errorf("expected trimmed custom prompt, got %q", job.CustomPrompt)
		}
	})

	t.Run("rejects empty id", func(t *testing.T) {
		if _, err := NewSummaryJob("", "alice", "text", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("rejects empty payload", func(t *testing.T) {
		if _, err := NewSummaryJob("job-1", "alice", " \n", ""); !errors.Is(err, domain.ErrEmptyContent) {
			t.Errorf("expected ErrEmptyContent, got %v", err)
		}
	})
}

func TestSummaryJobTransitions(t *testing.T) {
	now := time.Now()

	t.Run("complete once", func(t *testing.T) {
		job, _ := NewSummaryJob("job-1", "", "text", "")
		if err := job.Complete(SummaryResult{Summary: "Greeting."}, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Status != JobStatusComplete || job.Result.Summary != "Greeting." {
			t.Errorf("unexpected job state: %+v", job)
		}
		if err := job.Complete(SummaryResult{Summary: "again"}, now); !errors.Is(err, domain.ErrJobFinalized) {
			t.Errorf("expected ErrJobFinalized, got %v", err)
		}
		if err := job.Fail("late failure", now); !errors.Is(err, domain.ErrJobFinalized) {
			t.Errorf("expected ErrJobFinalized, got %v", err)
		}
		if job.Result.Summary != "Greeting." {
			t.Error("terminal job must not be mutated")
		}
	})

	t.Run("fail once", func(t *testing.T) {
		job, _ := NewSummaryJob("job-2", "", "text", "")
		if err := job.Fail("upstream down", now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Status != JobStatusError || job.ErrorDetail != "upstream down" {
			t.Errorf("unexpected job state: %+v", job)
		}
		if err := job.Complete(SummaryResult{}, now); !errors.Is(err, domain.ErrJobFinalized) {
			t.Errorf("expected ErrJobFinalized, got %v", err)
		}
	})

	t.Run("fail without detail", func(t *testing.T) {
		job, _ := NewSummaryJob("job-3", "", "text", "")
		_ = job.Fail("", now)
		if job.ErrorDetail == "" {
			t.Error("expected a default error detail")
		}
	})
}

func TestSummaryJobClone(t *testing.T) {
	job, _ := NewSummaryJob("job-1", "", "text", "")
	_ = job.Complete(SummaryResult{Summary: "one"}, time.Now())

	cp := job.Clone()
	cp.Result.Summary = "two"
	if job.Result.Summary != "one" {
		t.Error("clone must not share the result with the original")
	}
	var nilJob *SummaryJob
	if nilJob.Clone() != nil {
		t.Error("clone of nil should be nil")
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	if JobStatusPending.IsTerminal() {
		t.Error("pending is not terminal")
	}
	if !JobStatusComplete.IsTerminal() || !JobStatusError.IsTerminal() {
		t.Error("complete and error are terminal")
	}
}

func TestSummaryJobAge(t *testing.T) {
	job, _ := NewSummaryJob("job-1", "", "text", "")
	later := job.CreatedAt.Add(90 * time.Second)
	if got := job.Age(later); got != 90*time.Second {
		t.Errorf("Age = %v, want 90s", got)
	}
}
