// Package session carries the per-request identity that every core operation
// receives explicitly: whose data is being touched and which time zone their
// calendar days are counted in.
package session

import (
	"time"

	"github.com/iliyamo/questboard/internal/calendar"
)

// Session is scoped to one authenticated request.
type Session struct {
	UserID   uint64
	Location *time.Location
}

// New builds a Session.  A nil location falls back to UTC.
func New(userID uint64, loc *time.Location) Session {
	if loc == nil {
		loc = time.UTC
	}
	return Session{UserID: userID, Location: loc}
}

// Loc never returns nil.
func (s Session) Loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// Today is the user's local calendar day at the clock's current instant.
func (s Session) Today(c calendar.Clock) calendar.Date {
	return calendar.In(c.Now(), s.Loc())
}

// ResolveLocation returns the named IANA zone, or def when name is empty or
// unknown.
func ResolveLocation(name string, def *time.Location) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if def == nil {
		return time.UTC
	}
	return def
}
