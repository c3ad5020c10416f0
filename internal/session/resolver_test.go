package session

import (
	"errors"
	"testing"
	"time"
)

func mustResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(NYSE2026())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestIsTradingDay(t *testing.T) {
	t.Parallel()
	cal := NYSE2026()

	cases := []struct {
		date string
		want bool
	}{
		{"2026-06-10", true},  // Wednesday
		{"2026-06-13", false}, // Saturday
		{"2026-06-14", false}, // Sunday
		{"2026-07-03", false}, // Independence Day observed
		{"2026-11-27", true},  // early close still trades
	}
	for _, tc := range cases {
		d, _ := time.Parse("2006-01-02", tc.date)
		if got := cal.IsTradingDay(d); got != tc.want {
			t.Errorf("IsTradingDay(%s) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestResolveDateRejectsNonTradingDays(t *testing.T) {
	t.Parallel()
	r := mustResolver(t)

	for _, date := range []string{"2026-06-13", "2026-07-03"} {
		d, _ := time.Parse("2006-01-02", date)
		_, err := r.ResolveDate(d)
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ResolveDate(%s) error = %v, want ErrInvalidDate", date, err)
		}
	}
}

func TestResolveDateOutsideSchedule(t *testing.T) {
	t.Parallel()
	r := mustResolver(t)

	d, _ := time.Parse("2006-01-02", "2027-06-10")
	_, err := r.ResolveDate(d)
	if !errors.Is(err, ErrCalendarUnavailable) {
		t.Errorf("ResolveDate(2027) error = %v, want ErrCalendarUnavailable", err)
	}
}

func TestResolveDuringOpenSession(t *testing.T) {
	t.Parallel()
	r := mustResolver(t)

	// Wednesday 2026-06-10, noon Eastern.
	at := time.Date(2026, time.June, 10, 12, 0, 0, 0, r.loc)
	sess, err := r.Resolve(at, Backward)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sess.Date.Format("2006-01-02") != "2026-06-10" {
		t.Fatalf("unexpected session date: %v", sess.Date)
	}
	if !sess.Contains(at) {
		t.Fatal("expected session window to contain the instant")
	}
	if !sess.Open.Before(sess.Close) {
		t.Fatal("open must precede close")
	}
}

func TestResolveWeekendFallsBack(t *testing.T) {
	t.Parallel()
	r := mustResolver(t)

	// Saturday 2026-06-13.
	at := time.Date(2026, time.June, 13, 10, 0, 0, 0, r.loc)

	back, err := r.Resolve(at, Backward)
	if err != nil {
		t.Fatalf("Resolve backward: %v", err)
	}
	if back.Date.Format("2006-01-02") != "2026-06-12" {
		t.Errorf("backward resolved %v, want Friday 2026-06-12", back.Date)
	}

	fwd, err := r.Resolve(at, Forward)
	if err != nil {
		t.Fatalf("Resolve forward: %v", err)
	}
	if fwd.Date.Format("2006-01-02") != "2026-06-15" {
		t.Errorf("forward resolved %v, want Monday 2026-06-15", fwd.Date)
	}
}

func TestResolveBeforeOpenReturnsPreviousSession(t *testing.T) {
	t.Parallel()
	r := mustResolver(t)

	// Wednesday 2026-06-10, 7 AM Eastern (premarket).
	at := time.Date(2026, time.June, 10, 7, 0, 0, 0, r.loc)
	sess, err := r.Resolve(at, Backward)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if sess.Date.Format("2006-01-02") != "2026-06-09" {
		t.Errorf("resolved %v, want previous session 2026-06-09", sess.Date)
	}
}

func TestEarlyCloseSession(t *testing.T) {
	t.Parallel()
	r := mustResolver(t)

	d, _ := time.Parse("2006-01-02", "2026-11-27")
	sess, err := r.ResolveDate(d)
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	if !sess.EarlyClose {
		t.Fatal("expected early close flag")
	}
	if sess.Close.In(r.loc).Hour() != 13 {
		t.Errorf("early close hour = %d, want 13", sess.Close.In(r.loc).Hour())
	}
}

func TestPremarketSwitchHour(t *testing.T) {
	t.Parallel()
	cal := NYSE2026()

	winter, _ := time.Parse("2006-01-02", "2026-01-15")
	summer, _ := time.Parse("2006-01-02", "2026-06-15")
	if got := cal.PremarketSwitchHourUTC(winter); got != 9 {
		t.Errorf("standard-time switch hour = %d, want 9", got)
	}
	if got := cal.PremarketSwitchHourUTC(summer); got != 8 {
		t.Errorf("DST switch hour = %d, want 8", got)
	}
}

func TestPrevNextTradingDaySkipsHoliday(t *testing.T) {
	t.Parallel()
	cal := NYSE2026()

	// Thanksgiving 2026-11-26 (Thursday).
	d, _ := time.Parse("2006-01-02", "2026-11-26")
	if prev := cal.PrevTradingDay(d); prev.Format("2006-01-02") != "2026-11-25" {
		t.Errorf("PrevTradingDay = %v", prev)
	}
	if next := cal.NextTradingDay(d); next.Format("2006-01-02") != "2026-11-27" {
		t.Errorf("NextTradingDay = %v", next)
	}

	// Friday before a Monday holiday (Labor Day 2026-09-07).
	fri, _ := time.Parse("2006-01-02", "2026-09-04")
	if next := cal.NextTradingDay(fri); next.Format("2006-01-02") != "2026-09-08" {
		t.Errorf("NextTradingDay over Labor Day = %v", next)
	}
}
