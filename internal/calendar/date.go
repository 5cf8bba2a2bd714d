// Package calendar provides a civil calendar date that is independent of
// time zones once constructed.  Streaks and recurring quest periods are
// counted in whole local days, so they are compared as Dates and never as
// timestamps.
package calendar

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Layout is the textual form used in JSON, SQL DATE columns and logs.
const Layout = "2006-01-02"

// Date is a calendar day.  The zero value means "no date" and is stored as
// SQL NULL.
type Date struct {
	year  int
	month time.Month
	day   int
}

// New builds a Date, normalizing out-of-range values the way time.Date does.
func New(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

// In returns the calendar day of t as observed in loc.  A nil loc means UTC.
func In(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

// Parse reads a "2006-01-02" string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("calendar: parse %q: %w", s, err)
	}
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}, nil
}

func (d Date) IsZero() bool { return d.year == 0 && d.month == 0 && d.day == 0 }

func (d Date) Year() int         { return d.year }
func (d Date) Month() time.Month { return d.month }
func (d Date) Day() int          { return d.day }

// AddDays moves the date by n days (n may be negative).
func (d Date) AddDays(n int) Date {
	return New(d.year, d.month, d.day+n)
}

// Equal reports whether both values name the same day.
func (d Date) Equal(o Date) bool { return d == o }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

// StartIn returns the first instant of the day in loc.
func (d Date) StartIn(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// EndIn returns the last second of the day in loc.
func (d Date) EndIn(loc *time.Location) time.Time {
	return d.AddDays(1).StartIn(loc).Add(-time.Second)
}

// Weekday of the date.
func (d Date) Weekday() time.Weekday {
	return d.StartIn(time.UTC).Weekday()
}

// WeekStart returns the Monday of the ISO week containing d.
func (d Date) WeekStart() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MarshalText encodes the date as "2006-01-02"; the zero date encodes as "".
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts "2006-01-02" or "".
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = p
	return nil
}

// Value implements driver.Valuer.  The zero date is written as NULL.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner for DATE columns read with or without
// parseTime=true.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = Date{year: v.Year(), month: v.Month(), day: v.Day()}
		return nil
	case []byte:
		return d.UnmarshalText(v)
	case string:
		return d.UnmarshalText([]byte(v))
	}
	return fmt.Errorf("calendar: cannot scan %T into Date", src)
}
