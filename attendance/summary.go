package attendance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/worklog/period"
)

// WeeklyAllowanceHours is the weekly total at which a person qualifies for
// the paid weekly rest allowance (주휴수당).
var WeeklyAllowanceHours = decimal.NewFromInt(15)

// =============================================================================
// EMPLOYEE SUMMARY
// =============================================================================

// EmployeeSummary aggregates one person's entries over a range.
//
// TotalPay is HourlyWage (the mean of the wages present) times TotalHours.
// It differs from summing each entry's own hours times its own wage
// whenever a person's wages vary across entries.
type EmployeeSummary struct {
	Name        string
	TotalHours  decimal.Decimal
	TotalPay    decimal.Decimal
	HourlyWage  decimal.Decimal
	RecordCount int
}

type employeeAccumulator struct {
	name    string
	hours   decimal.Decimal
	wageSum decimal.Decimal
	wages   int
	records int
}

// CalculateEmployeeSummaries groups entries by exact name, optionally
// limited to [start, end], and orders the result by TotalHours descending.
// Ties keep the order in which each name first appeared.
func CalculateEmployeeSummaries(entries []Entry, start, end string) []EmployeeSummary {
	filtered := FilterRange(entries, start, end)

	var order []*employeeAccumulator
	byName := make(map[string]*employeeAccumulator)
	for _, e := range filtered {
		acc, ok := byName[e.Name]
		if !ok {
			acc = &employeeAccumulator{name: e.Name}
			byName[e.Name] = acc
			order = append(order, acc)
		}
		acc.hours = acc.hours.Add(e.WorkHours)
		if e.HourlyWage.Valid {
			acc.wageSum = acc.wageSum.Add(e.HourlyWage.Decimal)
			acc.wages++
		}
		acc.records++
	}

	summaries := make([]EmployeeSummary, 0, len(order))
	for _, acc := range order {
		avg := decimal.Zero
		if acc.wages > 0 {
			avg = acc.wageSum.Div(decimal.NewFromInt(int64(acc.wages)))
		}
		summaries = append(summaries, EmployeeSummary{
			Name:        acc.name,
			TotalHours:  acc.hours,
			TotalPay:    avg.Mul(acc.hours),
			HourlyWage:  avg,
			RecordCount: acc.records,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalHours.GreaterThan(summaries[j].TotalHours)
	})
	return summaries
}

// Totals sums hours and pay across summaries.
func Totals(summaries []EmployeeSummary) (hours, pay decimal.Decimal) {
	for _, s := range summaries {
		hours = hours.Add(s.TotalHours)
		pay = pay.Add(s.TotalPay)
	}
	return hours, pay
}

// =============================================================================
// EMPLOYEE WORK PERIODS - Export grouping
// =============================================================================

// EmployeeWorkPeriod keeps one person's individual entries for export.
type EmployeeWorkPeriod struct {
	Name       string
	WorkDays   int
	TotalHours decimal.Decimal
	Entries    []Entry
}

// CalculateEmployeeWorkPeriods groups entries in [start, end] by name.
// People are sorted by name ascending and each person's entries by date
// ascending.
func CalculateEmployeeWorkPeriods(entries []Entry, start, end string) []EmployeeWorkPeriod {
	filtered := FilterRange(entries, start, end)

	var names []string
	byName := make(map[string][]Entry)
	for _, e := range filtered {
		if _, ok := byName[e.Name]; !ok {
			names = append(names, e.Name)
		}
		byName[e.Name] = append(byName[e.Name], e)
	}
	sort.Strings(names)

	periods := make([]EmployeeWorkPeriod, 0, len(names))
	for _, name := range names {
		records := append([]Entry(nil), byName[name]...)
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Date < records[j].Date
		})

		total := decimal.Zero
		for _, r := range records {
			total = total.Add(r.WorkHours)
		}
		periods = append(periods, EmployeeWorkPeriod{
			Name:       name,
			WorkDays:   len(records),
			TotalHours: total,
			Entries:    records,
		})
	}
	return periods
}

// =============================================================================
// WEEKLY SUMMARY
// =============================================================================

// WeeklySummary is the combined total of everyone's hours in one week.
type WeeklySummary struct {
	WeekStart                   string
	WeekEnd                     string
	TotalHours                  decimal.Decimal
	QualifiesForWeeklyAllowance bool
}

// CalculateWeeklySummary totals the Sunday..Saturday week containing day.
func CalculateWeeklySummary(entries []Entry, day period.Date) WeeklySummary {
	week := period.WeekOf(day)
	start, end := week.Strings()

	total := decimal.Zero
	for _, e := range FilterRange(entries, start, end) {
		total = total.Add(e.WorkHours)
	}
	total = total.Round(1)

	return WeeklySummary{
		WeekStart:                   start,
		WeekEnd:                     end,
		TotalHours:                  total,
		QualifiesForWeeklyAllowance: total.GreaterThanOrEqual(WeeklyAllowanceHours),
	}
}

// GroupByMonth buckets entries under their "YYYY-MM" prefix.
func GroupByMonth(entries []Entry) map[string][]Entry {
	grouped := make(map[string][]Entry)
	for _, e := range entries {
		if len(e.Date) < 7 {
			continue
		}
		month := e.Date[:7]
		grouped[month] = append(grouped[month], e)
	}
	return grouped
}
