package entities

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the textual form of a calendar date on the command line.
	DateLayout = "2006-01-02"

	// DatetimeLayout is how KOReader stamps annotations and how they are stored.
	DatetimeLayout = "2006-01-02 15:04:05"
)

// DateRange is an inclusive interval of calendar dates. From and To are
// UTC midnights and From is never after To once resolved.
type DateRange struct {
	From time.Time
	To   time.Time
}

// DateOf truncates t to its calendar date, expressed as a UTC midnight.
// The date is taken in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether the calendar date of t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	day := DateOf(t)
	return !day.Before(r.From) && !day.After(r.To)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.From.Format(DateLayout), r.To.Format(DateLayout))
}
