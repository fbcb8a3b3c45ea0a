package dateutil

import "time"

// NextTick returns the first multiple of interval, counted from the Unix
// epoch, strictly after now.
func NextTick(now time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		return now
	}

	return now.Truncate(interval).Add(interval)
}

// Within reports whether t lies in the half-open window [start, end).
func Within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
