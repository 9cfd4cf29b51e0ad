// Package dateutil handles civil (calendar) dates. Every value it returns is
// midnight UTC so that day arithmetic never crosses a DST boundary.
package dateutil

import (
	"time"
)

// Layout is the wire format for dates in query strings, JSON and the CLI.
const Layout = "2006-01-02"

// Parse parses a YYYY-MM-DD string.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Normalize(t), nil
}

// ParseOptional returns nil for an empty string.
func ParseOptional(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Normalize drops the clock part, keeping the calendar date of t in its own location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current local calendar date.
func Today() time.Time {
	return Normalize(time.Now())
}

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return Normalize(t).AddDate(0, 0, n)
}

// DaysBetween returns the signed number of whole days from -> to.
func DaysBetween(from, to time.Time) int {
	return int(Normalize(to).Sub(Normalize(from)) / (24 * time.Hour))
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Within reports whether t lies in [from, to] inclusive.
func Within(t, from, to time.Time) bool {
	t = Normalize(t)
	return !t.Before(Normalize(from)) && !t.After(Normalize(to))
}
