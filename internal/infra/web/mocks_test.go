//go:build !integration

package web

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"page-summarizer/internal/domain/ports/adapter"
	"page-summarizer/internal/infra/db/sqlite"
	"page-summarizer/internal/infra/i18n"
	"page-summarizer/internal/infra/memstore"
	"page-summarizer/internal/infra/page"
	"page-summarizer/internal/infra/security"
	"page-summarizer/internal/infra/worker"
	"page-summarizer/internal/usecase"
)

// --- Mock adapters ---

type stubPages struct {
	usecase.PageUseCase
	calls atomic.Int32
	err   error
	panic bool
}

func (s *stubPages) Process(_ context.Context, rawURL string, format page.Format) (*usecase.ProcessedPage, error) {
	s.calls.Add(1)
	if s.panic {
		panic("extractor exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	c := &page.Content{URL: rawURL, Title: "Example Domain", Markdown: "# Example\n\nHello world", Text: "Example Hello world", HTML: "<h1>Example</h1>", Format: format, Links: 1, LinkChars: 4}
	return &usecase.ProcessedPage{Content: c, Stats: page.ComputeStats(c, nil, 4.5), Payload: c.Payload()}, nil
}

type stubAI struct {
	reply string
	err   error
}

func (s *stubAI) ProviderFor(string) string { return "stub" }

func (s *stubAI) ChatWithUsage(context.Context, string, []adapter.Message) (string, adapter.Usage, error) {
	return s.reply, adapter.Usage{}, s.err
}

// holdDispatcher queues tasks until release so the pending state is observable.
type holdDispatcher struct {
	mu    sync.Mutex
	tasks []worker.Task
}

func (h *holdDispatcher) Submit(t worker.Task) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasks = append(h.tasks, t)
	return nil
}

func (h *holdDispatcher) release() {
	h.mu.Lock()
	tasks := h.tasks
	h.tasks = nil
	h.mu.Unlock()
	for _, t := range tasks {
		_ = t(context.Background())
	}
}

type fakeLimiter struct {
	allow bool
	keys  []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, nil
}

// --- Fixture ---

type fixture struct {
	srv      *Server
	store    *memstore.JobStore
	pages    *stubPages
	dispatch *holdDispatcher
	ai       *stubAI
}

func newFixture(t *testing.T, mutate ...func(*Deps)) *fixture {
	t.Helper()
	log := zerolog.Nop()

	db, err := sqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	hasher, err := security.NewPasswordHasher(4, "pepper")
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	tr, err := i18n.Load("en")
	if err != nil {
		t.Fatalf("i18n: %v", err)
	}

	f := &fixture{
		store:    memstore.NewJobStore(),
		pages:    &stubPages{},
		dispatch: &holdDispatcher{},
		ai:       &stubAI{reply: "A short summary."},
	}
	runner := worker.NewSummaryWorker(f.store, f.ai, "test-model", 0, &log)
	d := Deps{
		Auth:       usecase.NewAuthUseCase(sqlite.NewUserRepo(db), hasher, &log, true),
		Pages:      f.pages,
		Summaries:  usecase.NewSummaryUseCase(f.store, f.dispatch, runner, usecase.SummaryOptions{MaxPayloadChars: 4000}, &log),
		Sessions:   NewAuthManager("test-secret", false, "", time.Hour),
		Translator: tr,
	}
	for _, m := range mutate {
		m(&d)
	}
	f.srv = NewServer(d, &log)
	return f
}

// unreachableSummaries fails every poll the way a store outage does.
type unreachableSummaries struct {
	usecase.SummaryUseCase
}

func (unreachableSummaries) Poll(context.Context, string, string) (*usecase.PollResult, error) {
	return nil, errors.New("redis: connection refused")
}
