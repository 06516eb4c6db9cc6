// Package clock provides the "now" capability used by lending, overdue and
// statistics code so tests can run at arbitrary dates.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in the given location (time.Local when nil).
type System struct {
	Location *time.Location
}

func (s System) Now() time.Time {
	if s.Location == nil {
		return time.Now()
	}
	return time.Now().In(s.Location)
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Date builds a civil date as UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Today returns the civil date of c.Now() in its own location, expressed as
// UTC midnight so that dates compare and subtract in whole days.
func Today(c Clock) time.Time {
	now := c.Now()
	return Date(now.Year(), now.Month(), now.Day())
}

// DaysBetween returns to - from in whole civil days.
func DaysBetween(from, to time.Time) int {
	f := Date(from.Year(), from.Month(), from.Day())
	t := Date(to.Year(), to.Month(), to.Day())
	return int(t.Sub(f).Hours() / 24)
}

// LoadLocation resolves a timezone name, treating "" and "Local" as time.Local.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
