// Package streak derives consecutive-day activity streaks from a single "last
// activity date" marker.  Days are civil dates in the user's own time zone;
// callers must never pass a UTC day for a user who lives elsewhere.
package streak

import "github.com/iliyamo/questboard/internal/calendar"

// State is the persisted streak triple.
type State struct {
	Current      int
	Longest      int
	LastActivity calendar.Date
}

// Result describes what Advance did.
type Result struct {
	State State
	// Changed is false when today was already counted; the caller skips the
	// write in that case.
	Changed bool
	// Incremented is true when the streak continued from yesterday.
	Incremented bool
}

// Advance records activity on today.  The streak grows by at most one per
// calendar day no matter how often it is called.
func Advance(s State, today calendar.Date) Result {
	if !s.LastActivity.IsZero() && s.LastActivity.Equal(today) {
		return Result{State: normalize(s)}
	}

	next := s
	incremented := false
	if !s.LastActivity.IsZero() && s.LastActivity.Equal(today.AddDays(-1)) {
		next.Current = s.Current + 1
		incremented = true
	} else {
		next.Current = 1
	}
	next.LastActivity = today
	return Result{State: normalize(next), Changed: true, Incremented: incremented}
}

// Current is the streak as seen on today without recording activity: a
// streak whose last day is before yesterday has lapsed and reads as 0.
func Current(s State, today calendar.Date) int {
	if s.LastActivity.IsZero() {
		return 0
	}
	if s.LastActivity.Equal(today) || s.LastActivity.Equal(today.AddDays(-1)) {
		return s.Current
	}
	return 0
}

// normalize re-establishes Longest >= Current.
func normalize(s State) State {
	if s.Current < 0 {
		s.Current = 0
	}
	if s.Longest < s.Current {
		s.Longest = s.Current
	}
	return s
}
