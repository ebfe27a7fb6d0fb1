/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Entries themselves are
  sent in their stored wire shape (attendance.Entry marshals itself); the
  types here cover request bodies and derived views.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Entries:
    EntryRequest

  Summaries:
    SummaryResponse, EmployeeSummaryDTO, WeeklySummaryDTO

  Calendar:
    CalendarDTO, CalendarDayDTO

  Status:
    StatusDTO, LoadResultDTO

VALIDATION:
  Request DTOs carry validator tags checked before they reach the tracker.
  The tracker re-validates through attendance.Entry.Validate, so the tags
  are the fast path for clear 400s, not the only guard.

SEE ALSO:
  - handlers.go: Uses these types
  - attendance/entry.go: Entry wire format
*/
package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/warp/worklog/attendance"
	"github.com/warp/worklog/period"
	"github.com/warp/worklog/tracker"
	"github.com/warp/worklog/worktime"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// EntryRequest is the body of POST /api/entries and PUT /api/entries/{id}.
type EntryRequest struct {
	Date       string           `json:"date" validate:"required,datetime=2006-01-02"`
	Name       string           `json:"name" validate:"required"`
	ClockIn    string           `json:"clockIn" validate:"required,datetime=15:04"`
	ClockOut   string           `json:"clockOut" validate:"required,datetime=15:04"`
	HourlyWage *decimal.Decimal `json:"hourlyWage,omitempty"`
}

// Input converts the request to tracker input.
func (r EntryRequest) Input() attendance.EntryInput {
	in := attendance.EntryInput{
		Date:     r.Date,
		Name:     r.Name,
		ClockIn:  r.ClockIn,
		ClockOut: r.ClockOut,
	}
	if r.HourlyWage != nil {
		in.HourlyWage = decimal.NewNullDecimal(*r.HourlyWage)
	}
	return in
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// StatusDTO reports storage state.
type StatusDTO struct {
	Mode            string `json:"mode"`
	Syncing         bool   `json:"syncing"`
	Count           int    `json:"count"`
	Today           string `json:"today"`
	RetentionCutoff string `json:"retention_cutoff"`
	// Months counts retained entries per "YYYY-MM".
	Months map[string]int `json:"months"`
}

// LoadResultDTO is returned by POST /api/entries/reload.
type LoadResultDTO struct {
	Source   string `json:"source"`
	Fallback bool   `json:"fallback"`
	Warning  string `json:"warning,omitempty"`
	Count    int    `json:"count"`
	Dropped  int    `json:"dropped"`
}

func toLoadResultDTO(res tracker.LoadResult) LoadResultDTO {
	dto := LoadResultDTO{
		Source:   string(res.Source),
		Fallback: res.Fallback,
		Count:    res.Count,
		Dropped:  res.Dropped,
	}
	if res.Err != nil {
		dto.Warning = res.Err.Error()
	}
	return dto
}

// EmployeeSummaryDTO is one person's totals over a range.
type EmployeeSummaryDTO struct {
	Name         string      `json:"name"`
	TotalHours   json.Number `json:"totalHours"`
	TotalPay     json.Number `json:"totalPay"`
	HourlyWage   json.Number `json:"hourlyWage"`
	RecordCount  int         `json:"recordCount"`
	HoursDisplay string      `json:"hoursDisplay"`
	PayDisplay   string      `json:"payDisplay"`
}

// WeeklySummaryDTO is the combined week total and allowance flag.
type WeeklySummaryDTO struct {
	WeekStart                   string      `json:"weekStart"`
	WeekEnd                     string      `json:"weekEnd"`
	TotalHours                  json.Number `json:"totalHours"`
	QualifiesForWeeklyAllowance bool        `json:"qualifiesForWeeklyAllowance"`
}

// SummaryResponse is returned by every /api/summaries endpoint.
type SummaryResponse struct {
	Start      string               `json:"start"`
	End        string               `json:"end"`
	Label      string               `json:"label"`
	Employees  []EmployeeSummaryDTO `json:"employees"`
	TotalHours json.Number          `json:"totalHours"`
	TotalPay   json.Number          `json:"totalPay"`
	PayDisplay string               `json:"payDisplay"`
	Weekly     *WeeklySummaryDTO    `json:"weekly,omitempty"`
}

func toSummaryResponse(p period.Period, summaries []attendance.EmployeeSummary) SummaryResponse {
	start, end := p.Strings()
	employees := make([]EmployeeSummaryDTO, len(summaries))
	for i, s := range summaries {
		employees[i] = EmployeeSummaryDTO{
			Name:         s.Name,
			TotalHours:   number(s.TotalHours),
			TotalPay:     number(s.TotalPay),
			HourlyWage:   number(s.HourlyWage),
			RecordCount:  s.RecordCount,
			HoursDisplay: worktime.FormatHours(s.TotalHours),
			PayDisplay:   attendance.FormatCurrency(s.TotalPay),
		}
	}

	hours, pay := attendance.Totals(summaries)
	return SummaryResponse{
		Start:      start,
		End:        end,
		Label:      p.Label(),
		Employees:  employees,
		TotalHours: number(hours),
		TotalPay:   number(pay),
		PayDisplay: attendance.FormatCurrency(pay),
	}
}

func toWeeklySummaryDTO(s attendance.WeeklySummary) *WeeklySummaryDTO {
	return &WeeklySummaryDTO{
		WeekStart:                   s.WeekStart,
		WeekEnd:                     s.WeekEnd,
		TotalHours:                  number(s.TotalHours),
		QualifiesForWeeklyAllowance: s.QualifiesForWeeklyAllowance,
	}
}

// CalendarDayDTO is one grid cell.
type CalendarDayDTO struct {
	Date       string             `json:"date"`
	Day        int                `json:"day"`
	InMonth    bool               `json:"inMonth"`
	TotalHours json.Number        `json:"totalHours"`
	Entries    []attendance.Entry `json:"entries"`
}

// CalendarDTO is a month page of whole weeks, Sunday first.
type CalendarDTO struct {
	Year         int                `json:"year"`
	Month        int                `json:"month"`
	MonthlyTotal json.Number        `json:"monthlyTotal"`
	Weeks        [][]CalendarDayDTO `json:"weeks"`
}

func toCalendarDTO(c attendance.CalendarMonth) CalendarDTO {
	weeks := make([][]CalendarDayDTO, len(c.Weeks))
	for i, week := range c.Weeks {
		days := make([]CalendarDayDTO, len(week))
		for j, d := range week {
			total := decimal.Zero
			for _, e := range d.Entries {
				total = total.Add(e.WorkHours)
			}
			entries := d.Entries
			if entries == nil {
				entries = []attendance.Entry{}
			}
			days[j] = CalendarDayDTO{
				Date:       d.Date.String(),
				Day:        d.Date.Day(),
				InMonth:    d.InMonth,
				TotalHours: number(total),
				Entries:    entries,
			}
		}
		weeks[i] = days
	}
	return CalendarDTO{
		Year:         c.Year,
		Month:        int(c.Month),
		MonthlyTotal: number(c.MonthlyTotal),
		Weeks:        weeks,
	}
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
