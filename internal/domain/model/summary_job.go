package model

import (
	"strings"
	"time"

	"page-summarizer/internal/domain"
)

type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusComplete JobStatus = "complete"
	JobStatusError    JobStatus = "error"
)

// IsTerminal reports whether no further transitions are possible.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusComplete || s == JobStatusError
}

// SummaryResult is what a finished summarization produced.
// Custom and CustomError are only set when the job carried a custom instruction.
type SummaryResult struct {
	Summary          string        `json:"summary"`
	Custom           string        `json:"custom,omitempty"`
	CustomError      string        `json:"custom_error,omitempty"`
	Provider         string        `json:"provider"`
	Model            string        `json:"model"`
	Elapsed          time.Duration `json:"elapsed"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
}

// SummaryJob is one unit of background summarization work.
type SummaryJob struct {
	ID           string
	Owner        string
	Status       JobStatus
	Payload      string
	CustomPrompt string
	Result       *SummaryResult
	ErrorDetail  string
	CreatedAt    time.Time
	FinishedAt   time.Time
}

func NewSummaryJob(id, owner, payload, customPrompt string) (*SummaryJob, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(payload) == "" {
		return nil, domain.ErrEmptyContent
	}
	return &SummaryJob{
		ID:           id,
		Owner:        owner,
		Status:       JobStatusPending,
		Payload:      payload,
		CustomPrompt: strings.TrimSpace(customPrompt),
		CreatedAt:    time.Now(),
	}, nil
}

// Complete moves a pending job to complete.
func (j *SummaryJob) Complete(r SummaryResult, at time.Time) error {
	if j.Status.IsTerminal() {
		return domain.ErrJobFinalized
	}
	j.Status = JobStatusComplete
	j.Result = &r
	j.FinishedAt = at
	return nil
}

// Fail moves a pending job to error.
func (j *SummaryJob) Fail(detail string, at time.Time) error {
	if j.Status.IsTerminal() {
		return domain.ErrJobFinalized
	}
	if detail == "" {
		detail = "unknown error"
	}
	j.Status = JobStatusError
	j.ErrorDetail = detail
	j.FinishedAt = at
	return nil
}

// Clone returns a deep copy so callers never share state with a store.
func (j *SummaryJob) Clone() *SummaryJob {
	if j == nil {
		return nil
	}
	cp := *j
	if j.Result != nil {
		r := *j.Result
		cp.Result = &r
	}
	return &cp
}

// Age is measured from creation.
func (j *SummaryJob) Age(now time.Time) time.Duration { return now.Sub(j.CreatedAt) }
