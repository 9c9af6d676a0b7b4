// Package examtime computes exam availability from a reference instant.
// Every function is pure and total: callers inject the current time, and all
// instants are normalised to UTC before comparison so naive/local mixups
// cannot skew the window.
package examtime

import "time"

// Status describes where an exam sits relative to a reference instant.
type Status string

const (
	StatusUpcoming Status = "Upcoming"
	StatusActive   Status = "Active"
	StatusExpired  Status = "Expired"
)

// DefaultGracePeriod is the extra window after the nominal end during which
// late submissions are still accepted.
const DefaultGracePeriod = 30 * time.Second

// ExamStatus classifies now against [scheduledStart, scheduledStart+duration).
// The start boundary is inclusive, the end boundary exclusive.
func ExamStatus(now, scheduledStart time.Time, duration time.Duration) Status {
	now = now.UTC()
	start := scheduledStart.UTC()
	end := start.Add(duration)

	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.Before(end):
		return StatusActive
	default:
		return StatusExpired
	}
}

// WithinSubmissionWindow reports whether a submission at now is still
// acceptable. The deadline end+grace is itself inclusive.
func WithinSubmissionWindow(now, scheduledStart time.Time, duration, grace time.Duration) bool {
	deadline := scheduledStart.UTC().Add(duration).Add(grace)
	return !now.UTC().After(deadline)
}

// Remaining returns the time left until the nominal end, floored at zero.
func Remaining(now, scheduledStart time.Time, duration time.Duration) time.Duration {
	left := scheduledStart.UTC().Add(duration).Sub(now.UTC())
	if left < 0 {
		return 0
	}
	return left
}
