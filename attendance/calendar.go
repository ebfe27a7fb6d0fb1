package attendance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/worklog/period"
)

// CalendarDay is one cell of a month page.
type CalendarDay struct {
	Date    period.Date
	InMonth bool
	Entries []Entry // sorted by name
}

// CalendarMonth is a month page of whole Sunday..Saturday weeks.
type CalendarMonth struct {
	Year         int
	Month        time.Month
	Weeks        [][]CalendarDay
	MonthlyTotal decimal.Decimal
}

// BuildCalendar lays entries out on the month's grid. Days outside the
// month still carry their entries; MonthlyTotal counts only the month.
func BuildCalendar(entries []Entry, year int, month time.Month) CalendarMonth {
	byDate := make(map[string][]Entry)
	for _, e := range entries {
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	for _, list := range byDate {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}

	grid := period.CalendarGrid(year, month)
	weeks := make([][]CalendarDay, 0, len(grid))
	for _, days := range grid {
		week := make([]CalendarDay, 0, len(days))
		for _, d := range days {
			week = append(week, CalendarDay{
				Date:    d,
				InMonth: d.Month() == month && d.Year() == year,
				Entries: byDate[d.String()],
			})
		}
		weeks = append(weeks, week)
	}

	start, end := period.MonthOf(year, month).Strings()
	total := decimal.Zero
	for _, e := range FilterRange(entries, start, end) {
		total = total.Add(e.WorkHours)
	}

	return CalendarMonth{Year: year, Month: month, Weeks: weeks, MonthlyTotal: total}
}
