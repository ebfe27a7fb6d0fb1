package period

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is the inclusive range [Start, End].
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Strings returns the ISO boundaries, ready for lexical filtering.
func (p Period) Strings() (start, end string) {
	return p.Start.String(), p.End.String()
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// Label is the human-readable form used in summary headers.
func (p Period) Label() string {
	return formatRange(p.Start, p.End)
}

// =============================================================================
// WEEKS AND MONTHS
// =============================================================================

// WeekStart returns the Sunday on or before d.
func WeekStart(d Date) Date {
	return d.AddDays(-int(d.Weekday()))
}

// WeekOf returns the Sunday..Saturday week containing d.
func WeekOf(d Date) Period {
	start := WeekStart(d)
	return Period{Start: start, End: start.AddDays(6)}
}

// MonthOf returns the first through last day of the month.
func MonthOf(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// ThisWeek returns the week containing the calendar date of now.
func ThisWeek(now time.Time) Period {
	return WeekOf(DateOf(now))
}

// ThisMonth returns the month containing the calendar date of now.
func ThisMonth(now time.Time) Period {
	return MonthOf(now.Year(), now.Month())
}

// AddWeeks shifts a week by n weeks; negative n goes back in time.
func AddWeeks(week Period, n int) Period {
	return WeekOf(week.Start.AddDays(7 * n))
}

// AddMonths shifts a month by n months. Anchoring on the 1st avoids the
// day-overflow of Jan 31 + 1 month.
func AddMonths(month Period, n int) Period {
	first := StartOfMonth(month.Start.Year(), month.Start.Month()).AddMonths(n)
	return MonthOf(first.Year(), first.Month())
}

// =============================================================================
// DISPLAY
// =============================================================================

// FormatDateRange renders "3월 1일 - 7일" when both dates are in the same
// month and "3월 29일 - 4월 2일" otherwise. The year is never shown.
func FormatDateRange(start, end string) (string, error) {
	s, err := ParseDate(start)
	if err != nil {
		return "", err
	}
	e, err := ParseDate(end)
	if err != nil {
		return "", err
	}
	return formatRange(s, e), nil
}

func formatRange(s, e Date) string {
	if s.Month() == e.Month() {
		return fmt.Sprintf("%d월 %d일 - %d일", int(s.Month()), s.Day(), e.Day())
	}
	return fmt.Sprintf("%d월 %d일 - %d월 %d일", int(s.Month()), s.Day(), int(e.Month()), e.Day())
}

// FormatLongDate renders "2025년 3월 1일".
func FormatLongDate(d Date) string {
	return fmt.Sprintf("%d년 %d월 %d일", d.Year(), int(d.Month()), d.Day())
}

// ParseLongDate reverses FormatLongDate.
func ParseLongDate(s string) (Date, error) {
	var y, m, d int
	if _, err := fmt.Sscanf(s, "%d년 %d월 %d일", &y, &m, &d); err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return NewDate(y, time.Month(m), d), nil
}
