// Package calendarsync refreshes the weekly economic and earnings
// calendar that scans and notifications read from.
package calendarsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsHunter/internal/domain"
	"NewsHunter/internal/ports"
)

// EconomicSource lists macro events between two dates.
type EconomicSource interface {
	EconomicEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error)
}

// EarningsSource lists earnings reports for one calendar date.
type EarningsSource interface {
	EarningsOn(ctx context.Context, date time.Time) ([]domain.CalendarEvent, error)
}

// Syncer rebuilds one week of calendar data: clear, refetch, insert.
type Syncer struct {
	store    ports.CalendarStore
	economic EconomicSource
	earnings EarningsSource
	logger   *slog.Logger
}

var _ ports.CalendarSyncer = (*Syncer)(nil)

// NewSyncer wires the two sources; either may be nil to skip that half.
func NewSyncer(store ports.CalendarStore, economic EconomicSource, earnings EarningsSource, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{store: store, economic: economic, earnings: earnings, logger: logger}
}

// SyncWeek replaces the events of the week containing base. The window
// snaps to Monday so every day of the week resolves the same week. One
// dead source degrades the sync; both dead fails it.
func (s *Syncer) SyncWeek(ctx context.Context, base time.Time) (int, error) {
	monday := snapToMonday(base)

	if err := s.store.ClearCalendarWeek(ctx, monday); err != nil {
		return 0, fmt.Errorf("clear calendar week: %w", err)
	}

	var (
		events  []domain.CalendarEvent
		sources int
		failed  int
		lastErr error
	)

	if s.economic != nil {
		sources++
		eco, err := s.economic.EconomicEvents(ctx, monday, monday.AddDate(0, 0, 7))
		if err != nil {
			failed++
			lastErr = err
			s.logger.Warn("economic calendar fetch failed", "error", err)
		} else {
			events = append(events, dedupeEvents(eco)...)
		}
	}

	if s.earnings != nil {
		sources++
		earn, err := s.fetchEarningsWeek(ctx, monday)
		if err != nil {
			failed++
			lastErr = err
			s.logger.Warn("earnings calendar fetch failed", "error", err)
		} else {
			events = append(events, earn...)
		}
	}

	if sources > 0 && failed == sources {
		return 0, fmt.Errorf("every calendar source failed, last: %w", lastErr)
	}

	count, err := s.store.InsertCalendarEvents(ctx, events)
	if err != nil {
		return 0, fmt.Errorf("insert calendar events: %w", err)
	}
	s.logger.Info("calendar week synced", "monday", monday.Format("2006-01-02"), "events", count)
	return count, nil
}

// fetchEarningsWeek walks the five trading days. A single dead day is
// skipped; all five dead count as a source failure.
func (s *Syncer) fetchEarningsWeek(ctx context.Context, monday time.Time) ([]domain.CalendarEvent, error) {
	var (
		events  []domain.CalendarEvent
		failed  int
		lastErr error
	)
	for i := 0; i < 5; i++ {
		day := monday.AddDate(0, 0, i)
		dayEvents, err := s.earnings.EarningsOn(ctx, day)
		if err != nil {
			failed++
			lastErr = err
			s.logger.Warn("earnings day fetch failed", "day", day.Format("2006-01-02"), "error", err)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		events = append(events, dayEvents...)
	}
	if failed == 5 {
		return nil, lastErr
	}
	return events, nil
}

func snapToMonday(base time.Time) time.Time {
	base = time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(base.Weekday()) + 6) % 7
	return base.AddDate(0, 0, -offset)
}

func dedupeEvents(events []domain.CalendarEvent) []domain.CalendarEvent {
	type signature struct {
		name string
		date string
	}
	seen := make(map[signature]struct{}, len(events))
	out := events[:0]
	for _, ev := range events {
		sig := signature{name: ev.Name, date: ev.Date.Format("2006-01-02")}
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, ev)
	}
	return out
}
