package hunt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsHunter/internal/dedup"
	"NewsHunter/internal/domain"
	"NewsHunter/internal/ports"
	"NewsHunter/internal/scan"
	"NewsHunter/internal/session"
)

// Target selects the session for one run: either the current wall clock
// or an explicit calendar date.
type Target struct {
	date     time.Time
	explicit bool
}

// Now targets the session relevant at the current instant.
func Now() Target { return Target{} }

// On targets the session of an explicit calendar date.
func On(date time.Time) Target { return Target{date: date, explicit: true} }

// CategoryEngine is one category's scan engine, narrowed for the
// orchestrator so tests can substitute fakes.
type CategoryEngine interface {
	Group() domain.CategoryGroup
	Run(ctx context.Context, index *dedup.Index, req scan.Request) (scan.Report, error)
}

// Config tunes the per-category retry policy.
type Config struct {
	// MaxAttempts bounds attempts per category, retries included.
	MaxAttempts int
	// Backoff delays retries; never nil after DefaultConfig.
	Backoff Backoff
	// CalendarRequired escalates a calendar-sync failure from a logged
	// warning to aborting the whole run.
	CalendarRequired bool
}

// DefaultConfig matches the production retry policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff{Base: 2 * time.Second, Max: 30 * time.Second},
	}
}

// Deps wires the orchestrator's collaborators.
type Deps struct {
	Resolver *session.Resolver
	Engines  []CategoryEngine
	Store    ports.ArticleStore
	Calendar ports.CalendarSyncer
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// Orchestrator sequences the category engines for one resolved session and
// aggregates their outcomes into a RunSummary. Categories run sequentially
// to bound load on rate-limited and browser-backed sources.
type Orchestrator struct {
	cfg      Config
	resolver *session.Resolver
	engines  []CategoryEngine
	store    ports.ArticleStore
	calendar ports.CalendarSyncer
	notifier ports.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// New builds an orchestrator. Calendar and Notifier may be nil; those
// steps are then skipped.
func New(cfg Config, deps Deps) *Orchestrator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.Backoff == nil {
		cfg.Backoff = DefaultConfig().Backoff
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:      cfg,
		resolver: deps.Resolver,
		engines:  deps.Engines,
		store:    deps.Store,
		calendar: deps.Calendar,
		notifier: deps.Notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one hunt. The returned error is non-nil only when the run
// aborted before any scan: session resolution failed, or calendar sync
// failed while configured as required. Everything scan-related lands in
// the summary instead.
func (o *Orchestrator) Run(ctx context.Context, target Target, filters domain.ScanFilterSet) (domain.RunSummary, error) {
	summary := domain.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: o.now(),
	}

	sess, err := o.resolveSession(target)
	if err != nil {
		summary.FinishedAt = o.now()
		return summary, err
	}
	summary.Session = sess
	o.logger.Info("hunt started", "run_id", summary.RunID, "session", sess.Date.Format("2006-01-02"))

	if err := o.syncCalendar(ctx, sess); err != nil {
		if o.cfg.CalendarRequired {
			summary.FinishedAt = o.now()
			return summary, fmt.Errorf("required calendar sync: %w", err)
		}
		o.logger.Warn("calendar sync failed, scanning with stale calendar data", "error", err)
	} else if o.calendar != nil {
		summary.CalendarSynced = true
	}

	// One dedup index per run: the single-writer in-run set is shared by
	// every category and discarded with the summary.
	index := dedup.NewIndex(o.store)

	canceled := false
	for _, engine := range o.engines {
		group := engine.Group()

		if !filters.Enabled(group) {
			summary.Categories = append(summary.Categories, domain.CategoryResult{
				Group:  group,
				Status: domain.StatusSkipped,
			})
			o.logger.Info("category disabled by filters", "group", group)
			continue
		}

		// Cancellation is honored at category boundaries only.
		if canceled || ctx.Err() != nil {
			canceled = true
			summary.Categories = append(summary.Categories, domain.CategoryResult{
				Group:  group,
				Status: domain.StatusSkipped,
				Errors: []string{"hunt canceled before category started"},
			})
			continue
		}

		summary.Categories = append(summary.Categories, o.runCategory(ctx, engine, index, scan.Request{
			Session: sess,
			Filters: filters,
		}))
	}

	summary.Success = true
	for _, c := range summary.Categories {
		if c.Status == domain.StatusFailedTerminally {
			summary.Success = false
		}
	}
	if canceled {
		summary.Success = false
	}
	summary.FinishedAt = o.now()

	o.notify(ctx, &summary)

	o.logger.Info("hunt finished",
		"run_id", summary.RunID,
		"success", summary.Success,
		"new", summary.TotalNew(),
		"notified", summary.Notified,
	)
	if canceled {
		return summary, ctx.Err()
	}
	return summary, nil
}

func (o *Orchestrator) resolveSession(target Target) (domain.TradingSession, error) {
	if target.explicit {
		return o.resolver.ResolveDate(target.date)
	}
	return o.resolver.Resolve(o.now(), session.Backward)
}

// syncCalendar refreshes the week's economic/earnings events as a
// precondition; scans tolerate stale data unless configured otherwise.
func (o *Orchestrator) syncCalendar(ctx context.Context, sess domain.TradingSession) error {
	if o.calendar == nil {
		return nil
	}
	count, err := o.calendar.SyncWeek(ctx, sess.Date)
	if err != nil {
		return err
	}
	o.logger.Info("calendar synced", "events", count)
	return nil
}

// runCategory drives one category through the bounded retry state machine:
// Pending -> Running -> {Succeeded | PartiallySucceeded | FailedTerminally},
// looping back to Pending only on a fully-failed attempt with attempts
// remaining. Partial success is accepted, never retried.
func (o *Orchestrator) runCategory(ctx context.Context, engine CategoryEngine, index *dedup.Index, req scan.Request) domain.CategoryResult {
	result := domain.CategoryResult{Group: engine.Group(), Status: domain.StatusPending}

	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		result.Attempts = attempt
		result.Status = domain.StatusRunning

		report, err := engine.Run(ctx, index, req)
		if err != nil {
			report.FullyFailed = true
			result.Errors = append(result.Errors, err.Error())
		}
		result.Errors = append(result.Errors, report.Errors...)

		// Inserts from a failed attempt are durable; keep counting them
		// so the summary never undercounts what was persisted.
		result.New += report.New

		if !report.FullyFailed {
			result.Attempted = report.Attempted
			result.Duplicate = report.Duplicate
			result.Failed = report.Failed
			result.Status = report.Status()
			if attempt > 1 && result.Status == domain.StatusSucceeded {
				result.Status = domain.StatusSucceededAfterRetry
			}
			return result
		}

		if attempt == o.cfg.MaxAttempts {
			break
		}

		delay := o.cfg.Backoff.Delay(attempt)
		o.logger.Warn("category attempt failed, retrying",
			"group", engine.Group(), "attempt", attempt, "delay", delay)
		if !o.sleep(ctx, delay) {
			break
		}
	}

	result.Status = domain.StatusFailedTerminally
	o.logger.Error("category failed terminally", "group", engine.Group(), "attempts", result.Attempts)
	return result
}

// sleep waits out a backoff delay, returning false when the run is
// canceled meanwhile.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// notify best-effort delivers the summary. The delivery outcome is
// captured on the summary and never propagated.
func (o *Orchestrator) notify(ctx context.Context, summary *domain.RunSummary) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.Deliver(ctx, *summary); err != nil {
		o.logger.Warn("notification failed", "run_id", summary.RunID, "error", err)
		return
	}
	summary.Notified = true
}
