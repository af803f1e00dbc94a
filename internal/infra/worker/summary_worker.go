package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/domain/model"
	"page-summarizer/internal/domain/ports/adapter"
	"page-summarizer/internal/domain/ports/repository"
	"page-summarizer/internal/infra/logging"
	"page-summarizer/internal/infra/metrics"
)

const (
	summarySystemPrompt = "You summarize web pages. Reply with a short, faithful summary in plain prose. Do not invent facts."
	summaryUserPrefix   = "Summarize the following page content:\n\n"
	customSystemPrompt  = "You answer instructions about a web page using only the page content provided."
)

// SummaryWorker performs the model calls for one job and records the terminal state.
type SummaryWorker struct {
	store   repository.JobStore
	ai      adapter.AIServiceAdapter
	model   string
	timeout time.Duration
	log     *zerolog.Logger
	now     func() time.Time
}

// NewSummaryWorker builds a worker. timeout bounds all model calls of one job; 0 disables it.
func NewSummaryWorker(store repository.JobStore, ai adapter.AIServiceAdapter, model string, timeout time.Duration, log *zerolog.Logger) *SummaryWorker {
	l := log.With().Str("component", "summary_worker").Logger()
	return &SummaryWorker{store: store, ai: ai, model: model, timeout: timeout, log: &l, now: time.Now}
}

// Run never lets a failure escape as a panic; every outcome ends in Complete or Fail.
// The returned error only reports a failed store write.
func (w *SummaryWorker) Run(ctx context.Context, job *model.SummaryJob) (err error) {
	log := logging.With(logging.WithJobID(ctx, job.ID), w.log)
	writeCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("summary worker panic")
			err = w.fail(writeCtx, job, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := w.now()
	res, callErr := w.summarize(ctx, job)
	res.Elapsed = w.now().Sub(start)

	if callErr != nil {
		log.Warn().Err(callErr).Dur("elapsed", res.Elapsed).Msg("summary failed")
		return w.fail(writeCtx, job, errorDetail(callErr))
	}

	if err := w.store.Complete(writeCtx, job.ID, res); err != nil {
		return w.storeErr(log, err)
	}
	metrics.IncSummaryJob(string(model.JobStatusComplete))
	metrics.ObserveJobDuration(job.Age(w.now()))
	log.Info().Dur("elapsed", res.Elapsed).Int("prompt_tokens", res.PromptTokens).
		Bool("custom", job.CustomPrompt != "").Msg("summary complete")
	return nil
}

// summarize runs the primary prompt and, when present, the custom prompt concurrently.
// A custom prompt failure is kept on the result; only a primary failure fails the job.
func (w *SummaryWorker) summarize(ctx context.Context, job *model.SummaryJob) (model.SummaryResult, error) {
	res := model.SummaryResult{
		Model:    w.model,
		Provider: w.ai.ProviderFor(w.model),
	}

	var (
		g                         errgroup.Group
		primaryUsage, customUsage adapter.Usage
		customErr                 error
	)
	g.Go(func() error {
		text, u, err := w.call(ctx, summarySystemPrompt, summaryUserPrefix+job.Payload)
		if err != nil {
			return err
		}
		res.Summary, primaryUsage = text, u
		return nil
	})
	if job.CustomPrompt != "" {
		g.Go(func() error {
			text, u, err := w.call(ctx, customSystemPrompt, job.CustomPrompt+"\n\n---\n\n"+job.Payload)
			if err != nil {
				customErr = err
				return nil
			}
			res.Custom, customUsage = text, u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	if customErr != nil {
		res.CustomError = errorDetail(customErr)
	}
	res.PromptTokens = primaryUsage.PromptTokens + customUsage.PromptTokens
	res.CompletionTokens = primaryUsage.CompletionTokens + customUsage.CompletionTokens
	return res, nil
}

func (w *SummaryWorker) call(ctx context.Context, system, user string) (text string, u adapter.Usage, err error) {
	start := w.now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model call panic: %v", r)
		}
		metrics.ObserveAICall(w.ai.ProviderFor(w.model), w.model,
			int64(u.PromptTokens), int64(u.CompletionTokens), w.now().Sub(start), err == nil)
	}()

	text, u, err = w.ai.ChatWithUsage(ctx, w.model, []adapter.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("model returned an empty response")
	}
	return strings.TrimSpace(text), u, err
}

func (w *SummaryWorker) fail(ctx context.Context, job *model.SummaryJob, detail string) error {
	if err := w.store.Fail(ctx, job.ID, detail); err != nil {
		return w.storeErr(w.log, err)
	}
	metrics.IncSummaryJob(string(model.JobStatusError))
	metrics.ObserveJobDuration(job.Age(w.now()))
	return nil
}

// storeErr tolerates jobs that vanished (swept or never polled) or were already finalized.
func (w *SummaryWorker) storeErr(log *zerolog.Logger, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrJobFinalized) {
		log.Debug().Err(err).Msg("job gone before result was recorded")
		return nil
	}
	log.Error().Err(err).Msg("record job result")
	return err
}

func errorDetail(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "summarization timed out: " + err.Error()
	}
	return err.Error()
}
