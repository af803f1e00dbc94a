package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"page-summarizer/internal/domain"
	"page-summarizer/internal/infra/fetch"
	"page-summarizer/internal/infra/metrics"
	"page-summarizer/internal/infra/page"
	red "page-summarizer/internal/infra/redis"
)

const processAction = "process"

var _ RateLimiter = (*red.RateLimiter)(nil)

type processForm struct {
	URL    string `validate:"required,url,max=2048"`
	Format string `validate:"omitempty,oneof=markdown html"`
	Custom string `validate:"max=2000"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := CurrentUser(ctx)
	l := s.reqLog(r)

	f := processForm{
		URL:    strings.TrimSpace(r.PostFormValue("resource-locator")),
		Format: strings.ToLower(strings.TrimSpace(r.PostFormValue("output-format"))),
		Custom: strings.TrimSpace(r.PostFormValue("custom-instruction")),
	}
	if err := s.validate.Struct(f); err != nil {
		s.renderError(w, r, http.StatusBadRequest, s.tr.T("err_url_invalid"))
		return
	}
	if _, err := fetch.Validate(f.URL); err != nil {
		s.renderError(w, r, http.StatusBadRequest, s.tr.T("err_url_invalid"))
		return
	}

	if s.limiter != nil && s.perMinute > 0 {
		ok, err := s.limiter.Allow(ctx, red.UserActionKey(user, processAction), s.perMinute, time.Minute)
		if err != nil {
			// fail open
			l.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			metrics.IncRateLimited("/process")
			w.Header().Set("Retry-After", "60")
			s.renderError(w, r, http.StatusTooManyRequests, s.tr.T("err_rate_limited"))
			return
		}
	}

	format := page.ParseFormat(f.Format)
	processed, err := s.pageUC.Process(ctx, f.URL, format)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFetchFailed):
			s.renderError(w, r, http.StatusBadGateway, s.tr.T("err_fetch", describeFetchErr(fetch.StatusCode(err))))
		case errors.Is(err, domain.ErrEmptyContent), errors.Is(err, domain.ErrExtractionFailed):
			s.renderError(w, r, http.StatusUnprocessableEntity, s.tr.T("err_extract"))
		default:
			l.Error().Err(err).Msg("process page")
			s.renderError(w, r, http.StatusInternalServerError, "")
		}
		return
	}

	id, err := s.summaryUC.Submit(ctx, user, processed.Payload, f.Custom)
	if err != nil {
		l.Error().Err(err).Msg("submit summary job")
		s.renderError(w, r, http.StatusInternalServerError, "")
		return
	}

	s.render(w, r, http.StatusOK, "process", processData{
		URL:    f.URL,
		Title:  processed.Content.Title,
		Format: format,
		Stats:  processed.Stats,
		Body:   processed.Content.Rendered(),
		JobID:  id,
	})
}
