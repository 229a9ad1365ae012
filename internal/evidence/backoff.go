package evidence

import "time"

const (
	DefaultBaseBackoff = 30 * time.Second
	DefaultMaxBackoff  = time.Hour
	DefaultMaxAttempts = 8
)

// Backoff is exponential with factor 2, capped at Max.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultBackoff is 30s doubling up to one hour.
func DefaultBackoff() Backoff {
	return Backoff{Base: DefaultBaseBackoff, Max: DefaultMaxBackoff}
}

// Delay returns the wait after the given number of failed attempts (>= 1).
func (b Backoff) Delay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := b.Base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= b.Max {
			return b.Max
		}
	}
	if d > b.Max {
		return b.Max
	}
	return d
}
