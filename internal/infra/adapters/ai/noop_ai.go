package ai

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"page-summarizer/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIServiceAdapter for local/dev runs without an API key.
// It answers with the opening of the last user message after a short delay.
type NoopAIAdapter struct {
	delay time.Duration
	log   *zerolog.Logger
}

func NewNoopAIAdapter(delay time.Duration, log *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{delay: delay, log: log}
}

func (a *NoopAIAdapter) ProviderFor(string) string { return "noop" }

func (a *NoopAIAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}

	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			last = messages[i].Content
			break
		}
	}
	reply := "[noop] " + preview(last, 200)
	if a.log != nil {
		a.log.Debug().Str("model", model).Int("messages", len(messages)).Msg("noop ai reply")
	}
	in := utf8.RuneCountInString(last) / 4
	out := utf8.RuneCountInString(reply) / 4
	return reply, adapter.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out}, nil
}

func preview(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}
