package usecase

import (
	"context"
	"errors"
	"fmt"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/infra/fetch"
	"page-summarizer/internal/infra/logging"
	"page-summarizer/internal/infra/metrics"
	"page-summarizer/internal/infra/page"

	"github.com/rs/zerolog"
)

var _ PageUseCase = (*pageUC)(nil)

// PageFetcher downloads a page; fetch.Client implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Result, error)
}

// ProcessedPage is everything the process view shows synchronously.
type ProcessedPage struct {
	Content *page.Content
	Stats   page.Stats
	// Payload is the bounded prefix handed to the summarizer.
	Payload string
}

// PageUseCase fetches, extracts and measures a page. No job is involved.
type PageUseCase interface {
	Process(ctx context.Context, rawURL string, format page.Format) (*ProcessedPage, error)
}

type pageUC struct {
	fetcher       PageFetcher
	counter       page.TokenCounter
	charsPerToken float64
	maxPayload    int
	log           *zerolog.Logger
}

// NewPageUseCase wires the fetch and extract steps. counter may be nil.
func NewPageUseCase(fetcher PageFetcher, counter page.TokenCounter, charsPerToken float64, maxPayload int, logger *zerolog.Logger) *pageUC {
	l := logger.With().Str("component", "PageUC").Logger()
	return &pageUC{fetcher: fetcher, counter: counter, charsPerToken: charsPerToken, maxPayload: maxPayload, log: &l}
}

func (p *pageUC) Process(ctx context.Context, rawURL string, format page.Format) (*ProcessedPage, error) {
	defer logging.TraceDuration(p.log, "PageUC.Process")()
	log := logging.With(ctx, p.log)

	res, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		log.Warn().Err(err).Msg("fetch failed")
		return nil, err
	}

	content, err := page.Extract(res.HTML, res.URL, format)
	if err != nil {
		metrics.ObservePageFetch("extract_error", 0)
		log.Warn().Err(err).Str("url", res.URL).Msg("extract failed")
		if errors.Is(err, domain.ErrEmptyContent) || errors.Is(err, domain.ErrExtractionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	out := &ProcessedPage{
		Content: content,
		Stats:   page.ComputeStats(content, p.counter, p.charsPerToken),
		Payload: page.Truncate(content.Payload(), p.maxPayload),
	}
	log.Debug().Str("url", res.URL).Int("chars", out.Stats.Chars).Int("links", out.Stats.Links).Msg("page processed")
	return out, nil
}
