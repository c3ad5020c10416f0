package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"NewsHunter/internal/domain"
	"NewsHunter/internal/ports"
)

// PostgresStore persists article records and calendar events. Articles are
// keyed by fingerprint, so concurrent writers race safely through
// ON CONFLICT DO NOTHING.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	cache   *RedisCache
}

var (
	_ ports.ArticleStore  = (*PostgresStore)(nil)
	_ ports.CalendarStore = (*PostgresStore)(nil)
)

// NewPostgresStore wires a sql.DB; cache may be nil to skip the Redis
// fast path.
func NewPostgresStore(db *sql.DB, cache *RedisCache) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		cache:   cache,
	}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS articles (
    fingerprint  TEXT PRIMARY KEY,
    source       TEXT NOT NULL,
    url          TEXT NOT NULL DEFAULT '',
    headline     TEXT NOT NULL,
    body         TEXT NOT NULL DEFAULT '',
    publisher    TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMPTZ,
    category     TEXT NOT NULL,
    session_date DATE NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_articles_session_date ON articles (session_date);
CREATE INDEX IF NOT EXISTS idx_articles_category ON articles (category);

CREATE TABLE IF NOT EXISTS calendar_events (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    ticker     TEXT NOT NULL DEFAULT '',
    type       TEXT NOT NULL,
    date       DATE NOT NULL,
    importance TEXT NOT NULL DEFAULT '',
    time       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_calendar_events_date ON calendar_events (date);
`

// EnsureSchema creates the tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Exists checks the fingerprint against the cache, then Postgres.
func (s *PostgresStore) Exists(ctx context.Context, fingerprint string, sessionDate time.Time) (bool, error) {
	if s.cache != nil && s.cache.Seen(ctx, fingerprint, sessionDate) {
		return true, nil
	}

	query, args, err := s.builder.
		Select("1").
		From("articles").
		Where(sq.Eq{"fingerprint": fingerprint}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}

	if s.cache != nil {
		s.cache.Mark(ctx, fingerprint, sessionDate)
	}
	return true, nil
}

// UpsertIfAbsent inserts the record unless its fingerprint is already
// stored. Persisted records are never rewritten.
func (s *PostgresStore) UpsertIfAbsent(ctx context.Context, record domain.ArticleRecord) (bool, error) {
	query, args, err := s.builder.
		Insert("articles").
		Columns("fingerprint", "source", "url", "headline", "body", "publisher", "published_at", "category", "session_date").
		Values(record.Fingerprint, record.Source, record.URL, record.Headline, record.Body,
			record.Publisher, nullableTime(record.PublishedAt), string(record.Category), record.SessionDate).
		Suffix("ON CONFLICT (fingerprint) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert article: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	if s.cache != nil {
		s.cache.Mark(ctx, record.Fingerprint, record.SessionDate)
	}
	return affected > 0, nil
}

// QueryRange returns records whose session date falls in [from, to]. An
// empty category matches everything.
func (s *PostgresStore) QueryRange(ctx context.Context, from, to time.Time, category domain.Category) ([]domain.ArticleRecord, error) {
	builder := s.builder.
		Select("fingerprint", "source", "url", "headline", "body", "publisher", "published_at", "category", "session_date").
		From("articles").
		Where(sq.GtOrEq{"session_date": from}).
		Where(sq.LtOrEq{"session_date": to}).
		OrderBy("published_at DESC NULLS LAST")
	if category != "" {
		builder = builder.Where(sq.Eq{"category": string(category)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build range query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query range: %w", err)
	}
	defer rows.Close()

	var records []domain.ArticleRecord
	for rows.Next() {
		var (
			rec         domain.ArticleRecord
			cat         string
			publishedAt sql.NullTime
		)
		if err := rows.Scan(&rec.Fingerprint, &rec.Source, &rec.URL, &rec.Headline, &rec.Body,
			&rec.Publisher, &publishedAt, &cat, &rec.SessionDate); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		rec.Category = domain.Category(cat)
		if publishedAt.Valid {
			rec.PublishedAt = publishedAt.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return records, nil
}

// ClearCalendarWeek removes the events of the week starting at monday.
func (s *PostgresStore) ClearCalendarWeek(ctx context.Context, monday time.Time) error {
	query, args, err := s.builder.
		Delete("calendar_events").
		Where(sq.GtOrEq{"date": monday}).
		Where(sq.Lt{"date": monday.AddDate(0, 0, 7)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear calendar week: %w", err)
	}
	return nil
}

// InsertCalendarEvents writes the refreshed week of events.
func (s *PostgresStore) InsertCalendarEvents(ctx context.Context, events []domain.CalendarEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	builder := s.builder.
		Insert("calendar_events").
		Columns("name", "ticker", "type", "date", "importance", "time")
	for _, ev := range events {
		builder = builder.Values(ev.Name, ev.Ticker, ev.Type, ev.Date, ev.Importance, ev.Time)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build events insert: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert calendar events: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// UpcomingEvents lists events inside [from, to] ordered by date.
func (s *PostgresStore) UpcomingEvents(ctx context.Context, from, to time.Time) ([]domain.CalendarEvent, error) {
	query, args, err := s.builder.
		Select("name", "ticker", "type", "date", "importance", "time").
		From("calendar_events").
		Where(sq.GtOrEq{"date": from}).
		Where(sq.LtOrEq{"date": to}).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build events query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.CalendarEvent
	for rows.Next() {
		var ev domain.CalendarEvent
		if err := rows.Scan(&ev.Name, &ev.Ticker, &ev.Type, &ev.Date, &ev.Importance, &ev.Time); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return events, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
