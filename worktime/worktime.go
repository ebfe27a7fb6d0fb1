/*
Package worktime converts clock-in/clock-out times into worked hours.

PURPOSE:
  The smallest building block of the tracker. A shift is two wall-clock
  times on the same calendar date; the elapsed time between them is the
  number of hours the person worked.

RULES:
  - Times are "HH:MM", 24-hour, local to the entry's date.
  - A clock-out earlier than the clock-in crosses midnight exactly once
    (22:00 -> 06:00 is 8 hours). Shifts of 24 hours or more are not
    representable.
  - Equal times are a zero-length shift, not a full day.
  - Hours are rounded to one decimal place, half away from zero.

PRECISION:
  Hours are decimal.Decimal so that summing many 0.1h steps never drifts.

SEE ALSO:
  - attendance/entry.go: stores the computed hours on every entry
  - export/workbook.go: renders hours with FormatHours
*/
package worktime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinutesPerHour = 60
	MinutesPerDay  = 24 * MinutesPerHour

	// HoursSuffix is appended to hour labels in exports ("9.0시간").
	HoursSuffix = "시간"
)

// ErrInvalidClock is returned when a time-of-day is not "HH:MM".
var ErrInvalidClock = errors.New("invalid clock time")

var minutesPerHour = decimal.NewFromInt(MinutesPerHour)

// TimeToMinutes converts "HH:MM" into minutes since midnight.
func TimeToMinutes(t string) (int, error) {
	hh, mm, ok := strings.Cut(t, ":")
	if !ok || !twoDigits(hh) || !twoDigits(mm) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, t)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, t)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, t)
	}
	return hours*MinutesPerHour + minutes, nil
}

// twoDigits rejects signs and spaces that strconv.Atoi would accept.
func twoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

// ShiftMinutes returns the minutes between clockIn and clockOut, wrapping
// past midnight at most once.
func ShiftMinutes(clockIn, clockOut string) (int, error) {
	start, err := TimeToMinutes(clockIn)
	if err != nil {
		return 0, err
	}
	end, err := TimeToMinutes(clockOut)
	if err != nil {
		return 0, err
	}

	diff := end - start
	if diff < 0 {
		diff += MinutesPerDay
	}
	return diff, nil
}

// CalculateWorkHours returns the hours worked between clockIn and clockOut,
// rounded to one decimal place.
func CalculateWorkHours(clockIn, clockOut string) (decimal.Decimal, error) {
	minutes, err := ShiftMinutes(clockIn, clockOut)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(int64(minutes)).DivRound(minutesPerHour, 1), nil
}

// FormatHours renders hours with one decimal place and the hours suffix.
func FormatHours(h decimal.Decimal) string {
	return h.StringFixed(1) + HoursSuffix
}

// ParseHours reverses FormatHours.
func ParseHours(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(s), HoursSuffix))
}
