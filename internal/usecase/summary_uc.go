package usecase

import (
	"context"
	"errors"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/domain/model"
	"page-summarizer/internal/domain/ports/repository"
	"page-summarizer/internal/infra/logging"
	"page-summarizer/internal/infra/metrics"
	"page-summarizer/internal/infra/page"
	"page-summarizer/internal/infra/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	_ SummaryUseCase = (*summaryUC)(nil)
	_ Dispatcher     = (*worker.Pool)(nil)
	_ JobRunner      = (*worker.SummaryWorker)(nil)
)

// BusyDetail is recorded on jobs the worker pool could not accept.
const BusyDetail = "summarizer is busy, try again later"

// Dispatcher runs tasks off the request path; worker.Pool implements it.
type Dispatcher interface {
	Submit(task worker.Task) error
}

// JobRunner performs the model calls for one job; worker.SummaryWorker implements it.
type JobRunner interface {
	Run(ctx context.Context, job *model.SummaryJob) error
}

type PollOutcome string

const (
	PollPending  PollOutcome = "pending"
	PollComplete PollOutcome = "complete"
	PollError    PollOutcome = "error"
	PollExpired  PollOutcome = "expired"
)

// PollResult carries the consumed job for complete and error outcomes.
type PollResult struct {
	Outcome PollOutcome
	Job     *model.SummaryJob
}

// SummaryUseCase is the job protocol: submit returns at once, poll consumes a terminal result once.
type SummaryUseCase interface {
	Submit(ctx context.Context, owner, payload, customPrompt string) (string, error)
	// Poll never fails for unknown ids; they come back as PollExpired.
	Poll(ctx context.Context, id, owner string) (*PollResult, error)
}

type SummaryOptions struct {
	MaxPayloadChars int
	// BindToSession makes jobs visible only to the user that submitted them.
	BindToSession bool
	NewID         func() string
}

type summaryUC struct {
	store      repository.JobStore
	dispatcher Dispatcher
	runner     JobRunner
	opts       SummaryOptions
	log        *zerolog.Logger
}

func NewSummaryUseCase(store repository.JobStore, dispatcher Dispatcher, runner JobRunner, opts SummaryOptions, logger *zerolog.Logger) *summaryUC {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	l := logger.With().Str("component", "SummaryUC").Logger()
	return &summaryUC{store: store, dispatcher: dispatcher, runner: runner, opts: opts, log: &l}
}

func (s *summaryUC) Submit(ctx context.Context, owner, payload, customPrompt string) (string, error) {
	defer logging.TraceDuration(s.log, "SummaryUC.Submit")()

	id := s.opts.NewID()
	job, err := model.NewSummaryJob(id, owner, page.Truncate(payload, s.opts.MaxPayloadChars), customPrompt)
	if err != nil {
		return "", err
	}
	if err := s.store.Create(ctx, job); err != nil {
		return "", err
	}
	log := logging.With(logging.WithJobID(ctx, id), s.log)

	err = s.dispatcher.Submit(func(taskCtx context.Context) error {
		return s.runner.Run(taskCtx, job)
	})
	if err != nil {
		// The job already exists; fail it so pollers see an error instead of waiting forever.
		log.Warn().Err(err).Msg("dispatch rejected")
		metrics.IncSummaryJob("rejected")
		if ferr := s.store.Fail(ctx, id, BusyDetail); ferr != nil && !errors.Is(ferr, domain.ErrJobFinalized) {
			return "", ferr
		}
		return id, nil
	}
	log.Debug().Bool("custom", job.CustomPrompt != "").Int("payload_chars", len(job.Payload)).Msg("summary job submitted")
	return id, nil
}

func (s *summaryUC) Poll(ctx context.Context, id, owner string) (*PollResult, error) {
	res, err := s.poll(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	metrics.IncJobPoll(string(res.Outcome))
	return res, nil
}

func (s *summaryUC) poll(ctx context.Context, id, owner string) (*PollResult, error) {
	expired := &PollResult{Outcome: PollExpired}

	if s.opts.BindToSession {
		snap, err := s.store.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return expired, nil
		}
		if err != nil {
			return nil, err
		}
		if snap.Owner != owner {
			return expired, nil
		}
		if !snap.Status.IsTerminal() {
			return &PollResult{Outcome: PollPending}, nil
		}
	} else {
		st, err := s.store.PeekStatus(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return expired, nil
		}
		if err != nil {
			return nil, err
		}
		if !st.IsTerminal() {
			return &PollResult{Outcome: PollPending}, nil
		}
	}

	job, err := s.store.Take(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		// another poller consumed it first
		return expired, nil
	}
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case model.JobStatusComplete:
		return &PollResult{Outcome: PollComplete, Job: job}, nil
	case model.JobStatusError:
		return &PollResult{Outcome: PollError, Job: job}, nil
	default:
		return &PollResult{Outcome: PollPending}, nil
	}
}
