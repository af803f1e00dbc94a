package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"page-summarizer/internal/config"
	"page-summarizer/internal/domain/ports/adapter"
	"page-summarizer/internal/domain/ports/repository"
	aiAdapters "page-summarizer/internal/infra/adapters/ai"
	pg "page-summarizer/internal/infra/db/postgres"
	"page-summarizer/internal/infra/db/sqlite"
	"page-summarizer/internal/infra/fetch"
	"page-summarizer/internal/infra/i18n"
	"page-summarizer/internal/infra/logging"
	"page-summarizer/internal/infra/memstore"
	"page-summarizer/internal/infra/metrics"
	"page-summarizer/internal/infra/page"
	red "page-summarizer/internal/infra/redis"
	"page-summarizer/internal/infra/sched"
	"page-summarizer/internal/infra/security"
	"page-summarizer/internal/infra/web"
	"page-summarizer/internal/infra/worker"
	"page-summarizer/internal/usecase"
)

const tokenizerLoadTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(cfgPath, devMode)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Credential store ----
	users, closeUsers, err := openUserRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeUsers()
	if n, err := users.CountUsers(ctx); err == nil {
		logger.Info().Str("driver", cfg.Database.Driver).Int("users", n).Msg("credential store ready")
	}

	// ---- Redis (optional) ----
	var redisClient *red.Client
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
	}

	// ---- Job store ----
	var jobs repository.JobStore
	switch cfg.Jobs.Backend {
	case "redis":
		jobs = red.NewJobStore(redisClient, cfg.Jobs.TTL)
	default:
		jobs = memstore.NewJobStore()
	}

	// ---- AI ----
	ai, err := buildAI(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// ---- Use cases ----
	hasher, err := security.NewPasswordHasher(cfg.Security.BcryptCost, cfg.Security.PasswordPepper)
	if err != nil {
		return fmt.Errorf("password hasher: %w", err)
	}
	authUC := usecase.NewAuthUseCase(users, hasher, logger, cfg.Runtime.Dev)

	fetcher := fetch.NewClient(&fetch.Options{
		Timeout:      cfg.Fetch.Timeout,
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})
	counter := page.NewTiktokenCounter(cfg.AI.DefaultModel)
	loadCtx, cancelLoad := context.WithTimeout(ctx, tokenizerLoadTimeout)
	if err := counter.Load(loadCtx); err != nil {
		logger.Warn().Err(err).Msg("exact token counts disabled; using estimates")
	}
	cancelLoad()
	pageUC := usecase.NewPageUseCase(fetcher, counter,
		cfg.Jobs.CharsPerToken, cfg.Jobs.MaxPayloadChars, logger)

	// Workers outlive request contexts; they stop only through pool.Stop.
	pool := worker.NewPool(cfg.Jobs.Workers, cfg.Jobs.QueueSize, logger)
	pool.Start(context.Background())
	defer pool.Stop()

	runner := worker.NewSummaryWorker(jobs, ai, cfg.AI.DefaultModel, cfg.AI.RequestTimeout, logger)
	summaryUC := usecase.NewSummaryUseCase(jobs, pool, runner, usecase.SummaryOptions{
		MaxPayloadChars: cfg.Jobs.MaxPayloadChars,
		BindToSession:   cfg.Jobs.BindToSession,
	}, logger)

	// ---- Expiry ----
	sweeper := sched.NewJobSweeper(cfg.Jobs.SweepInterval, cfg.Jobs.TTL, jobs, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- HTTP ----
	tr, err := i18n.Load(cfg.Server.Language)
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}
	deps := web.Deps{
		Auth:             authUC,
		Pages:            pageUC,
		Summaries:        summaryUC,
		Sessions:         web.NewAuthManager(cfg.Server.SessionSecret, cfg.Server.SecureCookie, cfg.Server.CookieDomain, cfg.Server.SessionTTL),
		Translator:       tr,
		ProcessPerMinute: cfg.RateLimit.ProcessPerMinute,
		RequestTimeout:   cfg.Server.ReadTimeout,
	}
	if redisClient != nil {
		deps.Limiter = red.NewRateLimiter(redisClient)
		deps.Health = redisClient.Ping
	}
	srv := web.NewServer(deps, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("ai_provider", cfg.AI.Provider).
			Str("model", cfg.AI.DefaultModel).Str("jobs_backend", cfg.Jobs.Backend).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// ---- Graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	logger.Info().Int64("outstanding_jobs", pool.Outstanding()).Msg("waiting for summary workers")
	return nil
}

func openUserRepo(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (repository.UserRepository, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		go pg.ReportPoolStats(ctx, pool, 15*time.Second, logger)
		return pg.NewPostgresUserRepo(pool), pool.Close, nil
	default:
		db, err := sqlite.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewUserRepo(db), func() { _ = db.Close() }, nil
	}
}

// buildAI picks the provider from config and caps concurrent model calls.
func buildAI(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.AIServiceAdapter, error) {
	ac := cfg.AI
	var (
		ai  adapter.AIServiceAdapter
		err error
	)
	switch ac.Provider {
	case "openai":
		ai, err = aiAdapters.NewOpenAIAdapter(ac.OpenAIKey, ac.OpenAIBaseURL, ac.DefaultModel, ac.MaxOutputTokens)
	case "gemini":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, ac.GeminiKey, ac.GeminiURL, ac.DefaultModel, ac.MaxOutputTokens)
	case "multi":
		byProvider := map[string]adapter.AIServiceAdapter{}
		defaultProvider := ""
		if ac.OpenAIKey != "" {
			oa, err := aiAdapters.NewOpenAIAdapter(ac.OpenAIKey, ac.OpenAIBaseURL, "", ac.MaxOutputTokens)
			if err != nil {
				return nil, fmt.Errorf("openai adapter: %w", err)
			}
			byProvider["openai"] = oa
			defaultProvider = "openai"
		}
		if ac.GeminiKey != "" {
			ga, err := aiAdapters.NewGeminiAdapter(ctx, ac.GeminiKey, ac.GeminiURL, "", ac.MaxOutputTokens)
			if err != nil {
				return nil, fmt.Errorf("gemini adapter: %w", err)
			}
			byProvider["gemini"] = ga
			if defaultProvider == "" {
				defaultProvider = "gemini"
			}
		}
		ai = aiAdapters.NewMultiAIAdapter(defaultProvider, byProvider, nil)
	case "noop":
		logger.Warn().Msg("AI provider is noop; summaries are placeholders")
		ai = aiAdapters.NewNoopAIAdapter(300*time.Millisecond, logger)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", ac.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%s adapter: %w", ac.Provider, err)
	}
	logger.Info().Str("provider", ac.Provider).Str("model", ac.DefaultModel).
		Str("key", logging.Redact(firstNonEmpty(ac.OpenAIKey, ac.GeminiKey), cfg.Runtime.Dev)).Msg("AI adapter ready")
	return aiAdapters.NewLimitedAI(ai, ac.ConcurrentLimit), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
