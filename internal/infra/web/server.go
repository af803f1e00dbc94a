package web

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"page-summarizer/internal/infra/i18n"
	"page-summarizer/internal/infra/logging"
	"page-summarizer/internal/usecase"
)

// RateLimiter bounds how often one user may call an action; redis.RateLimiter implements it.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Deps struct {
	Auth       usecase.AuthUseCase
	Pages      usecase.PageUseCase
	Summaries  usecase.SummaryUseCase
	Sessions   *AuthManager
	Translator *i18n.Translator
	// Limiter may be nil; ProcessPerMinute <= 0 disables limiting.
	Limiter          RateLimiter
	ProcessPerMinute int
	// RequestTimeout bounds synchronous handlers; 0 disables it.
	RequestTimeout time.Duration
	Health         func(ctx context.Context) error
}

type Server struct {
	authUC    usecase.AuthUseCase
	pageUC    usecase.PageUseCase
	summaryUC usecase.SummaryUseCase
	sessions  *AuthManager
	tr        *i18n.Translator
	tmpl      *template.Template
	validate  *validator.Validate
	limiter   RateLimiter
	perMinute int
	timeout   time.Duration
	health    func(ctx context.Context) error
	log       *zerolog.Logger
}

func NewServer(d Deps, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		authUC:    d.Auth,
		pageUC:    d.Pages,
		summaryUC: d.Summaries,
		sessions:  d.Sessions,
		tr:        d.Translator,
		tmpl:      parseTemplates(d.Translator),
		validate:  validator.New(),
		limiter:   d.Limiter,
		perMinute: d.ProcessPerMinute,
		timeout:   d.RequestTimeout,
		health:    d.Health,
		log:       &l,
	}
}

// Routes returns the full handler tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		TraceID(),
		Metrics(),
		RequestLog(s.log),
		Recover(s.log, s.renderError),
		s.sessions.Session,
	)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Timeout(s.timeout))
		r.Get("/", s.handleHome)
		r.Get("/register", s.handleRegisterForm)
		r.Post("/register", s.handleRegister)
		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLogin)
		r.Get("/logout", s.handleLogout)
		r.Get("/job-status/{id}", s.handleJobStatus)
	})

	// The fetch carries its own timeout.
	r.With(RequireUser).Post("/process", s.handleProcess)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			l := s.reqLog(r)
			l.Warn().Err(err).Msg("health check failed")
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) reqLog(r *http.Request) *zerolog.Logger {
	return logging.With(r.Context(), s.log)
}
