// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/domain/model"
	"page-summarizer/internal/domain/ports/adapter"
	"page-summarizer/internal/domain/ports/repository"
	"page-summarizer/internal/infra/fetch"
	"page-summarizer/internal/infra/worker"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memUserRepo is a small in-memory UserRepository.
type memUserRepo struct {
	repository.UserRepository
	mu      sync.RWMutex
	store   map[string]*model.User
	findErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[u.Username]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *u
	m.store[u.Username] = &cp
	return nil
}

func (m *memUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "h:" + p, nil }
func (plainHasher) Verify(h, p string) bool       { return h == "h:"+p }

// stubAI returns reply after delay, or err. It fails custom prompts when customErr is set.
type stubAI struct {
	reply     string
	err       error
	delay     time.Duration
	customErr error
	panicMsg  string
}

func (s *stubAI) ProviderFor(string) string { return "stub" }

func (s *stubAI) ChatWithUsage(ctx context.Context, _ string, msgs []adapter.Message) (string, adapter.Usage, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	if s.customErr != nil && len(msgs) > 1 && !isPrimary(msgs[1].Content) {
		return "", adapter.Usage{}, s.customErr
	}
	if s.err != nil {
		return "", adapter.Usage{}, s.err
	}
	return s.reply, adapter.Usage{PromptTokens: 5, CompletionTokens: 1, TotalTokens: 6}, nil
}

func isPrimary(user string) bool {
	const prefix = "Summarize the following page content:"
	return len(user) >= len(prefix) && user[:len(prefix)] == prefix
}

// echoAI answers with the payload it was given, to detect cross-talk between jobs.
type echoAI struct{}

func (echoAI) ProviderFor(string) string { return "echo" }

func (echoAI) ChatWithUsage(_ context.Context, _ string, msgs []adapter.Message) (string, adapter.Usage, error) {
	return "echo:" + msgs[len(msgs)-1].Content, adapter.Usage{}, nil
}

// rejectingDispatcher simulates a saturated pool.
type rejectingDispatcher struct{ err error }

func (r rejectingDispatcher) Submit(worker.Task) error { return r.err }

// holdDispatcher keeps tasks until Release so tests can observe the pending state.
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

func (h *holdDispatcher) Release(ctx context.Context) {
	h.mu.Lock()
	tasks := h.tasks
	h.tasks = nil
	h.mu.Unlock()
	for _, t := range tasks {
		_ = t(ctx)
	}
}

// fakeFetcher serves canned HTML or an error.
type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*fetch.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &fetch.Result{URL: rawURL, HTML: f.html, StatusCode: 200}, nil
}

var errUpstream = errors.New("upstream down")
