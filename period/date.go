/*
Package period resolves calendar boundaries for summaries and retention.

PURPOSE:
  Every summary in the tracker is computed over a date range: "this week",
  "this month", a calendar page, or everything newer than the retention
  cutoff. This package owns that arithmetic so the aggregation code only
  ever sees two ISO date strings.

KEY CONCEPTS:
  - Date:   a calendar day with no time-of-day and no zone
  - Period: an inclusive [Start, End] range of Dates
  - Week:   Sunday..Saturday, always
  - Now:    always passed in by the caller, never read from the clock here

WHY ISO STRINGS:
  Entries store their date as "YYYY-MM-DD". Zero-padded ISO dates sort
  lexically in calendar order, so Period.Strings() can be handed straight to
  the string-comparing filters in the attendance package.

SEE ALSO:
  - period.go: Period, week/month ranges, display labels
  - calendar.go: month grid and retention cutoff
*/
package period

import (
	"errors"
	"fmt"
	"time"
)

// ISOLayout is the storage format of every date in the tracker.
const ISOLayout = "2006-01-02"

// ErrInvalidDate is returned when a string is not a valid YYYY-MM-DD date.
var ErrInvalidDate = errors.New("invalid date")

// =============================================================================
// DATE - Day-granularity calendar value
// =============================================================================

// Date is a calendar day. The underlying time is always midnight UTC so
// that day arithmetic is never affected by DST transitions.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a strict YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals. It panics on bad input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(o Date) bool        { return d.t.Before(o.t) }
func (d Date) After(o Date) bool         { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool         { return d.t.Equal(o.t) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int              { return d.t.Year() }
func (d Date) Month() time.Month      { return d.t.Month() }
func (d Date) Day() int               { return d.t.Day() }
func (d Date) Weekday() time.Weekday  { return d.t.Weekday() }
func (d Date) IsZero() bool           { return d.t.IsZero() }
func (d Date) Time() time.Time        { return d.t }
func (d Date) String() string         { return d.t.Format(ISOLayout) }

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

// EndOfMonth returns the last day of the month. Day 0 of the next month
// normalizes to it.
func EndOfMonth(year int, month time.Month) Date { return NewDate(year, month+1, 0) }
