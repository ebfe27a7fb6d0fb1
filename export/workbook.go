/*
Package export writes attendance records to an xlsx workbook.

LAYOUT (every sheet):
  Row 1: header
      근무자 이름 | 근무 날짜 | 출근 | 퇴근 | 근무시간 | 근무자 총 근무시간
  Per person (name ascending), entries by date ascending:
      name | 2025년 3월 1일 | 09:00 | 18:00 | 9.0시간 |
  Then the person's subtotal row, last column only:
                                                       | 27.0시간
  Then one blank row, except after the last person.

SHEETS:
  1. "{Y}년 {M}월"          the requested month (required, must be non-empty)
  2. "주간 {start}~{end}"   optional week sheet, same layout

  A failure while building the week sheet is logged and the sheet is
  dropped; the month sheet is still delivered.

SEE ALSO:
  - attendance/summary.go: CalculateEmployeeWorkPeriods
  - api/handlers.go: GET /api/export
*/
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/warp/worklog/attendance"
	"github.com/warp/worklog/logging"
	"github.com/warp/worklog/period"
	"github.com/warp/worklog/worktime"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Header is the first row of every sheet.
var Header = []string{"근무자 이름", "근무 날짜", "출근", "퇴근", "근무시간", "근무자 총 근무시간"}

var columnWidths = []float64{15, 18, 8, 8, 12, 15}

// Request selects what goes into a workbook.
type Request struct {
	Year  int
	Month time.Month
	// Week adds a week sheet when non-nil.
	Week *period.Period
}

// FileName is the suggested download name for a month export.
func FileName(year int, month time.Month) string {
	return fmt.Sprintf("근무기록_%d년_%d월.xlsx", year, int(month))
}

// MonthSheetName names the month sheet.
func MonthSheetName(year int, month time.Month) string {
	return fmt.Sprintf("%d년 %d월", year, int(month))
}

// WeekSheetName names the week sheet.
func WeekSheetName(week period.Period) string {
	start, end := week.Strings()
	return fmt.Sprintf("주간 %s~%s", start, end)
}

// =============================================================================
// BUILD
// =============================================================================

// Build assembles the workbook. The caller must Close the returned file.
func Build(entries []attendance.Entry, req Request) (*excelize.File, error) {
	month := period.MonthOf(req.Year, req.Month)
	start, end := month.Strings()

	periods := attendance.CalculateEmployeeWorkPeriods(entries, start, end)
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: %d-%02d", attendance.ErrNothingToExport, req.Year, int(req.Month))
	}

	f := excelize.NewFile()
	monthSheet := MonthSheetName(req.Year, req.Month)
	if err := f.SetSheetName(f.GetSheetName(0), monthSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name month sheet: %w", err)
	}
	if err := writeSheet(f, monthSheet, periods); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write month sheet: %w", err)
	}

	if req.Week != nil {
		if err := addWeekSheet(f, entries, *req.Week); err != nil {
			logging.For("export").
				WithError(err).
				WithField("week", req.Week.String()).
				Error("Failed to build week sheet, exporting month only")
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, entries []attendance.Entry, req Request) error {
	f, err := Build(entries, req)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func addWeekSheet(f *excelize.File, entries []attendance.Entry, week period.Period) error {
	name := WeekSheetName(week)
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	start, end := week.Strings()
	if err := writeSheet(f, name, attendance.CalculateEmployeeWorkPeriods(entries, start, end)); err != nil {
		if delErr := f.DeleteSheet(name); delErr != nil {
			logging.For("export").WithError(delErr).Warn("Failed to remove partial week sheet")
		}
		return err
	}
	return nil
}

// =============================================================================
// SHEET LAYOUT
// =============================================================================

func writeSheet(f *excelize.File, sheet string, periods []attendance.EmployeeWorkPeriod) error {
	row := 1
	if err := setRow(f, sheet, row, toCells(Header)); err != nil {
		return err
	}
	row++

	for i, p := range periods {
		for _, e := range p.Entries {
			date, err := period.ParseDate(e.Date)
			if err != nil {
				return fmt.Errorf("entry %s: %w", e.ID, err)
			}
			cells := []interface{}{
				p.Name,
				period.FormatLongDate(date),
				e.ClockIn,
				e.ClockOut,
				worktime.FormatHours(e.WorkHours),
			}
			if err := setRow(f, sheet, row, cells); err != nil {
				return err
			}
			row++
		}

		// Subtotal: only the last column is set.
		cell, err := excelize.CoordinatesToCellName(len(Header), row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, worktime.FormatHours(p.TotalHours)); err != nil {
			return err
		}
		row++

		if i < len(periods)-1 {
			row++
		}
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
