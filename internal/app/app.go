// Package app wires configuration into the news service and serves it over HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deusflow/newsflash/internal/cache"
	"github.com/deusflow/newsflash/internal/config"
	"github.com/deusflow/newsflash/internal/gemini"
	"github.com/deusflow/newsflash/internal/keywords"
	"github.com/deusflow/newsflash/internal/logger"
	"github.com/deusflow/newsflash/internal/news"
	"github.com/deusflow/newsflash/internal/newsapi"
	"github.com/deusflow/newsflash/internal/openai"
	"github.com/deusflow/newsflash/internal/ratelimit"
	"github.com/deusflow/newsflash/internal/retry"
	"github.com/deusflow/newsflash/internal/rss"
	"github.com/deusflow/newsflash/internal/scheduler"
	"github.com/deusflow/newsflash/internal/scraper"
	"github.com/deusflow/newsflash/internal/storage"
	"github.com/deusflow/newsflash/internal/summary"
)

const shutdownTimeout = 10 * time.Second

// model is what both providers offer.
type model interface {
	keywords.Provider
	summary.Model
}

// App holds the wired components. Close releases them.
type App struct {
	Config  *config.Config
	Service *news.Service
	Store   storage.Store
	Limiter *ratelimit.AIRateLimiter

	responses *cache.Cache
	closers   []func()
}

// Build creates every component described by cfg. A missing model key is
// not an error: keyword extraction falls back and summaries stay empty.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg}

	a.responses = cache.New(cfg.ResponseCacheTTL)
	a.closers = append(a.closers, a.responses.Close)

	api := newsapi.NewClient(cfg.NewsAPIKey,
		newsapi.WithBaseURL(cfg.NewsAPIBaseURL),
		newsapi.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		newsapi.WithCache(a.responses, cfg.ResponseCacheTTL),
		newsapi.WithRetry(retry.RetryConfig{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Backoff:     true,
		}),
	)

	if cfg.MaxAIRequests > 0 {
		a.Limiter = ratelimit.NewAIRateLimiter(cfg.MaxAIRequests)
	}

	m, err := a.buildModel(ctx)
	if err != nil {
		logger.Warn("AI provider unavailable, using fallbacks", "provider", cfg.AIProvider, "error", err)
	}

	fallback, err := keywords.NewFallback(cfg.KeywordFallback)
	if err != nil {
		a.Close()
		return nil, err
	}
	chain := keywords.Chain{Fallback: fallback}
	var sumModel summary.Model
	if m != nil {
		chain.Primary = m
		sumModel = m
	}

	store, err := storage.Open(cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open AI store: %w", err)
	}
	a.Store = store
	a.closers = append(a.closers, func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close AI store", "error", err)
		}
	})

	opts := news.Options{
		API:        api,
		Feeds:      rss.NewFetcher(cfg.RequestTimeout),
		Keywords:   chain,
		Summarizer: summary.New(sumModel),
		Store:      store,
		Catalog:    cfg.Catalog,
		Country:    cfg.DefaultCountry,
		PageSize:   cfg.PageSize,
		AICacheTTL: cfg.AICacheTTL(),
	}
	if cfg.ScrapeFullContent {
		opts.Scraper = scraper.New(cfg.RequestTimeout)
	}
	a.Service = news.NewService(opts)

	logger.Info("Application built",
		"ai_provider", cfg.AIProvider,
		"ai_enabled", m != nil,
		"store", cfg.StoreDriver,
		"scrape", cfg.ScrapeFullContent,
	)
	return a, nil
}

// buildModel returns nil with no error when the provider is "none".
func (a *App) buildModel(ctx context.Context) (model, error) {
	cfg := a.Config
	switch cfg.AIProvider {
	case gemini.Provider:
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, a.Limiter)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c.Close)
		return c, nil
	case openai.Provider:
		c, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, a.Limiter)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, nil
}

// Close releases components in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Run serves the API until ctx is cancelled, pruning the AI store on
// cfg.PruneSchedule.
func Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.RequireNewsAPI(); err != nil {
		return err
	}

	a, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(a.Store, cfg.AICacheTTL())
	if err := sched.SchedulePrune(cfg.PruneSchedule); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewServer(a.Service, a.Store, a.Limiter, cfg.SiteURL).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
