// Package app wires configuration into the hunt orchestrator and owns the
// process lifecycle for both one-shot and daemon runs.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NewsHunter/internal/config"
	"NewsHunter/internal/domain"
	"NewsHunter/internal/hunt"
	"NewsHunter/internal/infrastructure/calendarsync"
	"NewsHunter/internal/infrastructure/discord"
	"NewsHunter/internal/infrastructure/feeds"
	"NewsHunter/internal/infrastructure/finnhub"
	"NewsHunter/internal/infrastructure/marketaux"
	"NewsHunter/internal/infrastructure/pagefetch"
	"NewsHunter/internal/infrastructure/scheduler"
	"NewsHunter/internal/infrastructure/storage"
	"NewsHunter/internal/logging"
	"NewsHunter/internal/ports"
	"NewsHunter/internal/scan"
	"NewsHunter/internal/session"
)

// Application wires configs into the orchestrator and its collaborators.
type Application struct {
	cfg          config.Config
	logger       *slog.Logger
	store        *storage.PostgresStore
	cache        *storage.RedisCache
	orchestrator *hunt.Orchestrator
	scheduler    ports.Scheduler
	closers      []func() error
}

// New builds a runnable application: database, cache, adapters, engines,
// orchestrator. Callers must Close it.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	app := &Application{cfg: cfg, logger: baseLogger}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	app.closers = append(app.closers, db.Close)

	if cfg.Redis.Addr != "" {
		cache, err := storage.NewRedisCache(ctx, cfg.Redis.Addr)
		if err != nil {
			// The cache is an accelerator; Postgres alone is correct.
			baseLogger.Warn("redis unavailable, continuing without cache", "error", err)
		} else {
			app.cache = cache
			app.closers = append(app.closers, cache.Close)
		}
	}

	app.store = storage.NewPostgresStore(db, app.cache)
	if err := app.store.EnsureSchema(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}

	resolver, err := session.NewResolver(session.NYSE2026())
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("build session resolver: %w", err)
	}

	huntCfg := hunt.Config{
		MaxAttempts:      cfg.Hunt.MaxAttempts,
		CalendarRequired: cfg.Hunt.CalendarRequired,
	}
	if base, max := cfg.Hunt.Backoff(); base > 0 {
		huntCfg.Backoff = hunt.ExponentialBackoff{Base: base, Max: max}
	}

	app.orchestrator = hunt.New(huntCfg, hunt.Deps{
		Resolver: resolver,
		Engines:  app.buildEngines(baseLogger),
		Store:    app.store,
		Calendar: app.buildCalendarSyncer(baseLogger),
		Notifier: app.buildNotifier(),
		Logger:   baseLogger.With("component", "orchestrator"),
	})

	app.scheduler = scheduler.NewTickerScheduler(cfg.Scheduler.Interval())
	return app, nil
}

func (a *Application) buildEngines(logger *slog.Logger) []hunt.CategoryEngine {
	feedOpts := feeds.Options{
		Logger:   logger.With("component", "feeds"),
		Lookback: time.Duration(a.cfg.Hunt.LookbackHours) * time.Hour,
		MaxItems: a.cfg.Hunt.MaxItemsPerFeed,
	}
	if a.cfg.Hunt.EnrichPageContent {
		feedOpts.Enricher = pagefetch.NewFetcher(nil)
	}

	macroAdapters := []scan.SourceAdapter{feeds.NewMacroAdapter(feedOpts)}
	stockAdapters := []scan.SourceAdapter{feeds.NewStocksAdapter(feedOpts)}
	companyAdapters := []scan.SourceAdapter{feeds.NewCompanyAdapter(feedOpts)}

	if len(a.cfg.Sources.MarketAuxKeys) > 0 {
		client, err := marketaux.NewClient(a.cfg.Sources.MarketAuxKeys, marketaux.Options{
			Logger: logger.With("component", "marketaux"),
		})
		if err != nil {
			logger.Warn("marketaux disabled", "error", err)
		} else {
			companyAdapters = append(companyAdapters, marketaux.NewAdapter(client, logger.With("component", "marketaux")))
		}
	}
	if a.cfg.Sources.FinnhubKey != "" {
		companyAdapters = append(companyAdapters, finnhub.NewAdapter(a.cfg.Sources.FinnhubKey, logger.With("component", "finnhub")))
	}

	return []hunt.CategoryEngine{
		scan.NewEngine(domain.GroupMacro, macroAdapters, a.store, logger.With("engine", "macro")),
		scan.NewEngine(domain.GroupStocks, stockAdapters, a.store, logger.With("engine", "stocks")),
		scan.NewEngine(domain.GroupCompany, companyAdapters, a.store, logger.With("engine", "company")),
	}
}

func (a *Application) buildCalendarSyncer(logger *slog.Logger) ports.CalendarSyncer {
	var economic calendarsync.EconomicSource
	if a.cfg.Calendar.EconomicFeedURL != "" {
		economic = calendarsync.NewEconomicClient(a.cfg.Calendar.EconomicFeedURL, nil)
	}
	earnings := calendarsync.NewYahooEarningsClient("", nil)
	return calendarsync.NewSyncer(a.store, economic, earnings, logger.With("component", "calendarsync"))
}

func (a *Application) buildNotifier() ports.Notifier {
	if a.cfg.Notifications.Discord.WebhookURL == "" {
		return nil
	}
	return discord.NewNotifier(a.cfg.Notifications.Discord.WebhookURL)
}

// Filters assembles the run's filter set from configuration.
func (a *Application) Filters() domain.ScanFilterSet {
	filters := domain.DefaultFilters(a.cfg.Hunt.Companies)
	filters.EnableMacro = a.cfg.Hunt.MacroEnabled()
	filters.EnableStocks = a.cfg.Hunt.StocksEnabled()
	filters.EnableCompany = a.cfg.Hunt.CompanyEnabled()
	return filters
}

// HuntOnce executes a single hunt for the given target.
func (a *Application) HuntOnce(ctx context.Context, target hunt.Target) (domain.RunSummary, error) {
	return a.orchestrator.Run(ctx, target, a.Filters())
}

// RunDaemon hunts on the configured interval until the context ends.
func (a *Application) RunDaemon(ctx context.Context) error {
	err := a.scheduler.Start(ctx, func(t time.Time) {
		summary, err := a.HuntOnce(ctx, hunt.Now())
		if err != nil {
			a.logger.Error("scheduled hunt aborted", "error", err)
			return
		}
		if !summary.Success {
			a.logger.Warn("scheduled hunt finished with failures", "run_id", summary.RunID)
		}
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

// Store exposes the persistence gateway for the query API.
func (a *Application) Store() *storage.PostgresStore {
	return a.store
}

// Resolver rebuilds a session resolver for API consumers.
func (a *Application) Resolver() (*session.Resolver, error) {
	return session.NewResolver(session.NYSE2026())
}

// ServeAPI blocks serving the query surface until the context ends.
func (a *Application) ServeAPI(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{Addr: a.cfg.API.Addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases the database and cache connections.
func (a *Application) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
