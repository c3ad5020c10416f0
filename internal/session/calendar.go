package session

import "time"

// Calendar holds the exchange's trading-day data for one covered year:
// full-day holidays, early-close days, and the DST window that moves the
// premarket switchover hour.
type Calendar struct {
	year        int
	holidays    map[string]struct{}
	earlyCloses map[string]struct{}
	dstStart    time.Time
	dstEnd      time.Time
}

const dateKeyLayout = "2006-01-02"

// NYSE2026 builds the calendar for the 2026 NYSE schedule.
func NYSE2026() *Calendar {
	holidays := []string{
		"2026-01-01", // New Year's Day
		"2026-01-19", // MLK Jr. Day
		"2026-02-16", // Presidents Day
		"2026-04-03", // Good Friday
		"2026-05-25", // Memorial Day
		"2026-06-19", // Juneteenth
		"2026-07-03", // Independence Day (observed)
		"2026-09-07", // Labor Day
		"2026-11-26", // Thanksgiving
		"2026-12-25", // Christmas
	}
	earlyCloses := []string{
		"2026-07-02", // day before Independence Day
		"2026-11-27", // day after Thanksgiving
		"2026-12-24", // Christmas Eve
	}

	cal := &Calendar{
		year:        2026,
		holidays:    make(map[string]struct{}, len(holidays)),
		earlyCloses: make(map[string]struct{}, len(earlyCloses)),
		dstStart:    time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC),
		dstEnd:      time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range holidays {
		cal.holidays[d] = struct{}{}
	}
	for _, d := range earlyCloses {
		cal.earlyCloses[d] = struct{}{}
	}
	return cal
}

// Covers reports whether the calendar has data for the date's year.
func (c *Calendar) Covers(d time.Time) bool {
	return d.Year() == c.year
}

// IsTradingDay reports whether the date is a regular or early-close
// trading day.
func (c *Calendar) IsTradingDay(d time.Time) bool {
	wd := d.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := c.holidays[d.Format(dateKeyLayout)]
	return !holiday
}

// IsEarlyClose reports whether the date closes at 1 PM Eastern.
func (c *Calendar) IsEarlyClose(d time.Time) bool {
	_, ok := c.earlyCloses[d.Format(dateKeyLayout)]
	return ok
}

// IsDST reports whether the date falls within US daylight saving time.
func (c *Calendar) IsDST(d time.Time) bool {
	day := midnightUTC(d)
	return !day.Before(c.dstStart) && day.Before(c.dstEnd)
}

// PremarketSwitchHourUTC is the UTC hour at which premarket focus begins:
// 4 AM Eastern, so 8 UTC during DST and 9 UTC otherwise.
func (c *Calendar) PremarketSwitchHourUTC(d time.Time) int {
	if c.IsDST(d) {
		return 8
	}
	return 9
}

// PrevTradingDay walks backward to the most recent trading day before d.
func (c *Calendar) PrevTradingDay(d time.Time) time.Time {
	curr := midnightUTC(d).AddDate(0, 0, -1)
	for !c.IsTradingDay(curr) {
		curr = curr.AddDate(0, 0, -1)
	}
	return curr
}

// NextTradingDay walks forward to the next trading day after d.
func (c *Calendar) NextTradingDay(d time.Time) time.Time {
	curr := midnightUTC(d).AddDate(0, 0, 1)
	for !c.IsTradingDay(curr) {
		curr = curr.AddDate(0, 0, 1)
	}
	return curr
}

// CurrentOrPrevTradingDay returns d when it trades, else the last day
// that did.
func (c *Calendar) CurrentOrPrevTradingDay(d time.Time) time.Time {
	curr := midnightUTC(d)
	for !c.IsTradingDay(curr) {
		curr = curr.AddDate(0, 0, -1)
	}
	return curr
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
