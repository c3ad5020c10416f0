package hunt

import "time"

// Backoff yields the delay before retry attempt n (n starts at 1 for the
// first retry). Injected so tests substitute a zero-delay strategy.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// ExponentialBackoff doubles a base delay per retry, capped at Max.
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration
}

func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := b.Base << (attempt - 1)
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// NoBackoff retries immediately.
type NoBackoff struct{}

func (NoBackoff) Delay(int) time.Duration { return 0 }
