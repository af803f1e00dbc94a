package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"page-summarizer/internal/infra/logging"
	"page-summarizer/internal/usecase"
)

// handleJobStatus answers htmx polls. Every outcome is a 200 fragment; unknown ids render as expired
// and store failures as pending.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := logging.WithJobID(r.Context(), id)

	res, err := s.summaryUC.Poll(ctx, id, CurrentUser(ctx))
	if err != nil {
		l := logging.With(ctx, s.log)
		l.Error().Err(err).Msg("poll job")
		// nothing was consumed; keep the client polling
		w.Header().Set("Retry-After", "1")
		s.renderJob(w, r, "job_pending", id)
		return
	}

	switch res.Outcome {
	case usecase.PollPending:
		w.Header().Set("Retry-After", "1")
		s.renderJob(w, r, "job_pending", id)
	case usecase.PollComplete:
		s.renderJob(w, r, "job_complete", jobResult(res.Job))
	case usecase.PollError:
		s.renderJob(w, r, "job_error", res.Job.ErrorDetail)
	default:
		s.renderJob(w, r, "job_expired", nil)
	}
}
