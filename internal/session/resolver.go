package session

import (
	"errors"
	"fmt"
	"time"

	"NewsHunter/internal/domain"
)

var (
	// ErrCalendarUnavailable means the market-calendar data cannot serve
	// the requested date (missing calendar, unknown timezone, or a year
	// outside the loaded schedule).
	ErrCalendarUnavailable = errors.New("market calendar unavailable")

	// ErrInvalidDate means an explicit target date is not a trading day.
	ErrInvalidDate = errors.New("not a trading day")
)

// Direction selects which neighboring session Resolve falls back to when
// the market is closed at the given instant.
type Direction int

const (
	// Backward returns the most recently completed session. This is the
	// hunt default: news is scoped to the last session that traded.
	Backward Direction = iota
	// Forward returns the upcoming session, used by forward-looking
	// calendar sync.
	Forward
)

const referenceTimezone = "America/New_York"

// Resolver maps a wall-clock instant or an explicit date to a trading
// session. It is a pure function of its inputs and the calendar snapshot.
type Resolver struct {
	cal *Calendar
	loc *time.Location
}

// NewResolver binds a calendar to the exchange's reference timezone.
func NewResolver(cal *Calendar) (*Resolver, error) {
	if cal == nil {
		return nil, fmt.Errorf("%w: no calendar loaded", ErrCalendarUnavailable)
	}
	loc, err := time.LoadLocation(referenceTimezone)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrCalendarUnavailable, referenceTimezone, err)
	}
	return &Resolver{cal: cal, loc: loc}, nil
}

// Resolve maps an instant to its session: the session currently open, or
// the neighboring one in the given direction when the market is closed.
func (r *Resolver) Resolve(at time.Time, dir Direction) (domain.TradingSession, error) {
	local := at.In(r.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	if !r.cal.Covers(day) {
		return domain.TradingSession{}, fmt.Errorf("%w: no schedule for %d", ErrCalendarUnavailable, day.Year())
	}

	if r.cal.IsTradingDay(day) {
		sess := r.session(day)
		if sess.Contains(at) {
			return sess, nil
		}
		if at.Before(sess.Open) {
			if dir == Forward {
				return sess, nil
			}
			return r.session(r.cal.PrevTradingDay(day)), nil
		}
		// After close: today's session is the most recent completed one.
		if dir == Forward {
			return r.session(r.cal.NextTradingDay(day)), nil
		}
		return sess, nil
	}

	if dir == Forward {
		return r.session(r.cal.NextTradingDay(day)), nil
	}
	return r.session(r.cal.PrevTradingDay(day)), nil
}

// ResolveDate maps an explicit calendar date to its session and fails with
// ErrInvalidDate when the date does not trade.
func (r *Resolver) ResolveDate(date time.Time) (domain.TradingSession, error) {
	day := midnightUTC(date)
	if !r.cal.Covers(day) {
		return domain.TradingSession{}, fmt.Errorf("%w: no schedule for %d", ErrCalendarUnavailable, day.Year())
	}
	if !r.cal.IsTradingDay(day) {
		return domain.TradingSession{}, fmt.Errorf("%w: %s", ErrInvalidDate, day.Format(dateKeyLayout))
	}
	return r.session(day), nil
}

// ParseDate parses an ISO calendar date string for ResolveDate.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(dateKeyLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return d, nil
}

func (r *Resolver) session(day time.Time) domain.TradingSession {
	open := time.Date(day.Year(), day.Month(), day.Day(), 9, 30, 0, 0, r.loc)
	closeHour := 16
	early := r.cal.IsEarlyClose(day)
	if early {
		closeHour = 13
	}
	close := time.Date(day.Year(), day.Month(), day.Day(), closeHour, 0, 0, 0, r.loc)
	return domain.TradingSession{
		Date:       day,
		Open:       open,
		Close:      close,
		EarlyClose: early,
	}
}
