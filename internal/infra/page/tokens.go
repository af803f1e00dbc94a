package page

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/pkoukk/tiktoken-go"
)

// ErrTokenizerUnavailable is returned by Count until Load has succeeded.
var ErrTokenizerUnavailable = errors.New("tokenizer not loaded")

// TiktokenCounter counts tokens with the BPE encoding of a model,
// falling back to cl100k_base for models tiktoken does not know (e.g. Gemini).
// Count never loads the encoding itself; call Load once at startup.
type TiktokenCounter struct {
	model   string
	resolve func(model string) (*tiktoken.Tiktoken, error)

	enc atomic.Pointer[tiktoken.Tiktoken]
}

func NewTiktokenCounter(model string) *TiktokenCounter {
	return &TiktokenCounter{model: model, resolve: resolveEncoding}
}

func resolveEncoding(model string) (*tiktoken.Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	return enc, err
}

// Load fetches the BPE ranks, giving up when ctx ends. tiktoken downloads
// without a deadline, so an abandoned download keeps running in the
// background and still enables exact counts if it completes later.
func (c *TiktokenCounter) Load(ctx context.Context) error {
	if c.enc.Load() != nil {
		return nil
	}
	done := make(chan error, 1)
	go func() {
		enc, err := c.resolve(c.model)
		if err == nil {
			c.enc.Store(enc)
		}
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("load tiktoken encoding: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("load tiktoken encoding: %w", ctx.Err())
	}
}

// Ready reports whether exact counts are available.
func (c *TiktokenCounter) Ready() bool { return c.enc.Load() != nil }

func (c *TiktokenCounter) Count(text string) (int, error) {
	enc := c.enc.Load()
	if enc == nil {
		return 0, ErrTokenizerUnavailable
	}
	return len(enc.Encode(text, nil, nil)), nil
}
