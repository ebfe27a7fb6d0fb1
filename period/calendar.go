package period

import "time"

// RetentionMonths is how many whole months before the current one are kept.
const RetentionMonths = 2

// CalendarGrid returns the weeks of a month page: from the Sunday on or
// before the 1st through the Saturday on or after the last day. Every week
// has exactly seven days.
func CalendarGrid(year int, month time.Month) [][]Date {
	first := StartOfMonth(year, month)
	last := EndOfMonth(year, month)

	start := WeekStart(first)
	end := last.AddDays(int(time.Saturday - last.Weekday()))

	days := Period{Start: start, End: end}.Days()
	weeks := make([][]Date, 0, len(days)/7)
	for len(days) >= 7 {
		weeks = append(weeks, days[:7:7])
		days = days[7:]
	}
	return weeks
}

// RetentionCutoff returns the oldest date still kept: the first day of the
// month RetentionMonths before the month of now. Entries dated on the
// cutoff are kept; anything earlier is dropped.
func RetentionCutoff(now time.Time) Date {
	return StartOfMonth(now.Year(), now.Month()).AddMonths(-RetentionMonths)
}
