package ports

import (
	"context"
	"time"

	"NewsHunter/internal/domain"
)

// ArticleStore is the durable owner of article records. Upserts are keyed
// by fingerprint; existence checks are scoped to a session date.
type ArticleStore interface {
	Exists(ctx context.Context, fingerprint string, sessionDate time.Time) (bool, error)
	UpsertIfAbsent(ctx context.Context, record domain.ArticleRecord) (inserted bool, err error)
	QueryRange(ctx context.Context, from, to time.Time, category domain.Category) ([]domain.ArticleRecord, error)
}

// CalendarStore persists the weekly economic/earnings calendar.
type CalendarStore interface {
	ClearCalendarWeek(ctx context.Context, monday time.Time) error
	InsertCalendarEvents(ctx context.Context, events []domain.CalendarEvent) (int, error)
	UpcomingEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error)
}

// Notifier best-effort delivers a run summary. Failures are logged by the
// caller and never change the run's recorded outcome.
type Notifier interface {
	Deliver(ctx context.Context, summary domain.RunSummary) error
}

// CalendarSyncer refreshes economic and earnings events for the week
// containing the given date. Returns the number of events written.
type CalendarSyncer interface {
	SyncWeek(ctx context.Context, base time.Time) (int, error)
}

// Scheduler controls when recurring hunts execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
