package scan

import (
	"context"
	"fmt"
	"log/slog"

	"NewsHunter/internal/dedup"
	"NewsHunter/internal/domain"
	"NewsHunter/internal/ports"
)

// Request carries everything an adapter needs for one fetch: the resolved
// session window and the run's filter set.
type Request struct {
	Session domain.TradingSession
	Filters domain.ScanFilterSet
}

// SourceAdapter fetches raw records from one upstream source. Adapters own
// per-call timeouts and surface fetch/parse problems as errors; they hold
// no state the engine depends on between calls.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.ArticleRecord, error)
}

// Report aggregates one engine invocation for the run summary.
type Report struct {
	Group     domain.CategoryGroup
	Attempted int
	New       int
	Duplicate int
	Failed    int
	Errors    []string

	// FullyFailed is set when every adapter failed; a category with at
	// least one working adapter is only partially failed.
	FullyFailed bool

	Records []domain.ArticleRecord
}

// Status maps the report to a category status, ignoring retry history.
func (r Report) Status() domain.EngineStatus {
	switch {
	case r.FullyFailed:
		return domain.StatusFailedTerminally
	case len(r.Errors) > 0:
		return domain.StatusPartiallySucceeded
	default:
		return domain.StatusSucceeded
	}
}

// Engine drives the adapters of one category: fetch, dedupe, persist
// write-then-continue, and aggregate failures. No internal state survives
// across Run calls; the dedup index is supplied per run.
type Engine struct {
	group    domain.CategoryGroup
	adapters []SourceAdapter
	store    ports.ArticleStore
	logger   *slog.Logger
}

// NewEngine wires the adapters for one category group.
func NewEngine(group domain.CategoryGroup, adapters []SourceAdapter, store ports.ArticleStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{group: group, adapters: adapters, store: store, logger: logger}
}

// Group identifies the category this engine hunts.
func (e *Engine) Group() domain.CategoryGroup { return e.group }

// Run executes one scan attempt. A non-nil error means the attempt is
// terminal for the category: either the persistence gateway is unavailable
// (accepted records would be silently lost) or no adapters are configured.
// Adapter failures never produce an error here; they are aggregated into
// the report so one source's failure cannot block its siblings.
func (e *Engine) Run(ctx context.Context, index *dedup.Index, req Request) (Report, error) {
	report := Report{Group: e.group}
	if len(e.adapters) == 0 {
		report.FullyFailed = true
		return report, fmt.Errorf("category %s has no source adapters", e.group)
	}

	failedAdapters := 0
	for _, adapter := range e.adapters {
		records, err := adapter.Fetch(ctx, req)
		if err != nil {
			failedAdapters++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", adapter.Name(), err))
			e.logger.Warn("adapter failed", "group", e.group, "adapter", adapter.Name(), "error", err)
			continue
		}

		for _, rec := range records {
			report.Attempted++
			if rec.SessionDate.IsZero() {
				rec.SessionDate = req.Session.Date
			}

			accepted, isNew, err := index.Admit(ctx, rec)
			if err != nil {
				report.FullyFailed = true
				return report, fmt.Errorf("dedup check via gateway: %w", err)
			}
			if !isNew {
				report.Duplicate++
				continue
			}

			// Persist immediately so a later crash cannot lose records
			// accepted earlier in the attempt.
			inserted, err := e.store.UpsertIfAbsent(ctx, accepted)
			if err != nil {
				report.FullyFailed = true
				return report, fmt.Errorf("persist %s: %w", accepted.Fingerprint, err)
			}
			if !inserted {
				// Another writer beat us to the fingerprint.
				report.Duplicate++
				continue
			}

			report.New++
			report.Records = append(report.Records, accepted)
		}
	}

	report.Failed = failedAdapters
	report.FullyFailed = failedAdapters == len(e.adapters)
	if report.FullyFailed {
		return report, nil
	}

	e.logger.Info("scan finished",
		"group", e.group,
		"attempted", report.Attempted,
		"new", report.New,
		"duplicate", report.Duplicate,
		"adapter_errors", len(report.Errors),
	)
	return report, nil
}
