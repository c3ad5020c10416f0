package domain

import "time"

// TradingSession is one market day's open/close window in the exchange's
// reference timezone. Sessions are computed on demand and never mutated;
// only the session date is stored alongside articles.
type TradingSession struct {
	Date       time.Time // calendar date, midnight UTC
	Open       time.Time
	Close      time.Time
	EarlyClose bool
}

// Contains reports whether the instant falls inside the open/close window.
func (s TradingSession) Contains(t time.Time) bool {
	return !t.Before(s.Open) && t.Before(s.Close)
}

// Before orders sessions by date.
func (s TradingSession) Before(other TradingSession) bool {
	return s.Date.Before(other.Date)
}
