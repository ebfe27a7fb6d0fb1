package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/worklog/attendance"
	"github.com/warp/worklog/period"
	"github.com/warp/worklog/worktime"
)

func mustEntry(t *testing.T, id, date, name, in, out string) attendance.Entry {
	t.Helper()
	e, err := attendance.NewEntry(id, attendance.EntryInput{Date: date, Name: name, ClockIn: in, ClockOut: out})
	require.NoError(t, err)
	return e
}

func readBack(t *testing.T, entries []attendance.Entry, req Request) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, entries, req))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestNames(t *testing.T) {
	assert.Equal(t, "근무기록_2025년_3월.xlsx", FileName(2025, time.March))
	assert.Equal(t, "2025년 3월", MonthSheetName(2025, time.March))

	week := period.WeekOf(period.MustParseDate("2025-03-18"))
	assert.Equal(t, "주간 2025-03-16~2025-03-22", WeekSheetName(week))
}

func TestBuild_EmptyMonthHasNothingToExport(t *testing.T) {
	entries := []attendance.Entry{mustEntry(t, "1", "2025-02-28", "Kim", "09:00", "18:00")}

	_, err := Build(entries, Request{Year: 2025, Month: time.March})
	assert.True(t, errors.Is(err, attendance.ErrNothingToExport))
}

func TestWrite_MonthSheetLayout(t *testing.T) {
	// GIVEN: two people in March, one entry outside the month
	entries := []attendance.Entry{
		mustEntry(t, "1", "2025-03-05", "Park", "09:00", "18:00"),
		mustEntry(t, "2", "2025-03-03", "Park", "22:00", "06:00"),
		mustEntry(t, "3", "2025-03-04", "Kim", "10:00", "14:30"),
		mustEntry(t, "4", "2025-04-01", "Kim", "09:00", "18:00"),
	}

	// WHEN: exporting March
	f := readBack(t, entries, Request{Year: 2025, Month: time.March})

	// THEN: one sheet named after the month
	assert.Equal(t, []string{"2025년 3월"}, f.GetSheetList())

	rows, err := f.GetRows("2025년 3월")
	require.NoError(t, err)

	// AND: header, Kim block, blank separator, Park block
	require.Len(t, rows, 7)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"Kim", "2025년 3월 4일", "10:00", "14:30", "4.5시간"}, rows[1])
	assert.Equal(t, []string{"", "", "", "", "", "4.5시간"}, rows[2])
	assert.Empty(t, rows[3])
	assert.Equal(t, []string{"Park", "2025년 3월 3일", "22:00", "06:00", "8.0시간"}, rows[4])
	assert.Equal(t, []string{"Park", "2025년 3월 5일", "09:00", "18:00", "9.0시간"}, rows[5])
	assert.Equal(t, []string{"", "", "", "", "", "17.0시간"}, rows[6])

	width, err := f.GetColWidth("2025년 3월", "B")
	require.NoError(t, err)
	assert.Equal(t, 18.0, width)
}

func TestWrite_CellsParseBackToEntries(t *testing.T) {
	entries := []attendance.Entry{
		mustEntry(t, "1", "2025-03-09", "Lee", "08:15", "12:45"),
		mustEntry(t, "2", "2025-03-10", "Lee", "13:00", "17:00"),
	}

	f := readBack(t, entries, Request{Year: 2025, Month: time.March})
	rows, err := f.GetRows("2025년 3월")
	require.NoError(t, err)

	total := decimal.Zero
	for i, row := range rows[1:3] {
		date, err := period.ParseLongDate(row[1])
		require.NoError(t, err)
		assert.Equal(t, entries[i].Date, date.String())

		hours, err := worktime.ParseHours(row[4])
		require.NoError(t, err)
		assert.True(t, hours.Equal(entries[i].WorkHours))
		total = total.Add(hours)
	}

	subtotal, err := worktime.ParseHours(rows[3][5])
	require.NoError(t, err)
	assert.True(t, subtotal.Equal(total))
}

func TestWrite_WeekSheet(t *testing.T) {
	entries := []attendance.Entry{
		mustEntry(t, "1", "2025-03-01", "Kim", "09:00", "18:00"),
		mustEntry(t, "2", "2025-03-17", "Kim", "09:00", "13:00"),
		mustEntry(t, "3", "2025-03-23", "Kim", "09:00", "13:00"),
	}
	week := period.WeekOf(period.MustParseDate("2025-03-18"))

	f := readBack(t, entries, Request{Year: 2025, Month: time.March, Week: &week})

	assert.Equal(t, []string{"2025년 3월", "주간 2025-03-16~2025-03-22"}, f.GetSheetList())

	rows, err := f.GetRows("주간 2025-03-16~2025-03-22")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025년 3월 17일", rows[1][1])
	assert.Equal(t, "4.0시간", rows[2][5])
}

func TestWrite_EmptyWeekStillHasHeader(t *testing.T) {
	entries := []attendance.Entry{mustEntry(t, "1", "2025-03-01", "Kim", "09:00", "18:00")}
	week := period.WeekOf(period.MustParseDate("2025-03-18"))

	f := readBack(t, entries, Request{Year: 2025, Month: time.March, Week: &week})

	rows, err := f.GetRows(WeekSheetName(week))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Header, rows[0])
}
