/*
handlers_test.go - Tests for API handlers and routing

Tests for:
- Entry CRUD through the router (status codes, recomputed hours)
- Validation and not-found mapping
- Week/month/range summaries against a pinned clock
- Calendar grid shape
- Workbook export headers and the empty-month 404
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/worklog/attendance"
	"github.com/warp/worklog/store/memory"
	"github.com/warp/worklog/tracker"
)

// Tuesday.
var testNow = time.Date(2025, time.March, 18, 9, 30, 0, 0, time.UTC)

type testServer struct {
	tracker *tracker.Tracker
	local   *memory.Memory
	router  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	local := memory.New()
	n := 0
	tr := tracker.New(local,
		tracker.WithClock(func() time.Time { return testNow }),
		tracker.WithIDGenerator(func() string { n++; return fmt.Sprintf("e%d", n) }),
	)
	_, err := tr.Load(context.Background())
	require.NoError(t, err)

	return &testServer{
		tracker: tr,
		local:   local,
		router:  NewRouter(NewHandler(tr), []string{"http://localhost:5173"}),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) add(t *testing.T, date, name, in, out string, wage any) map[string]any {
	t.Helper()
	body := map[string]any{"date": date, "name": name, "clockIn": in, "clockOut": out}
	if wage != nil {
		body["hourlyWage"] = wage
	}
	rec := s.do(t, http.MethodPost, "/api/entries", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestCreateEntry_ComputesOvernightHours(t *testing.T) {
	s := newTestServer(t)

	got := s.add(t, "2025-03-17", "Kim", "22:00", "06:00", 10030)

	assert.Equal(t, "e1", got["id"])
	assert.Equal(t, 8.0, got["workHours"])
	assert.Equal(t, 10030.0, got["hourlyWage"])
}

func TestCreateEntry_WithoutWageOmitsField(t *testing.T) {
	s := newTestServer(t)

	got := s.add(t, "2025-03-17", "Kim", "09:00", "18:00", nil)

	_, present := got["hourlyWage"]
	assert.False(t, present)
}

func TestCreateEntry_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]any{"date": "2025-03-17", "clockIn": "09:00", "clockOut": "18:00"}},
		{"bad date", map[string]any{"date": "03/17/2025", "name": "Kim", "clockIn": "09:00", "clockOut": "18:00"}},
		{"bad clock", map[string]any{"date": "2025-03-17", "name": "Kim", "clockIn": "9am", "clockOut": "18:00"}},
		{"blank name", map[string]any{"date": "2025-03-17", "name": "   ", "clockIn": "09:00", "clockOut": "18:00"}},
		{"negative wage", map[string]any{"date": "2025-03-17", "name": "Kim", "clockIn": "09:00", "clockOut": "18:00", "hourlyWage": -1}},
		{"not json", "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/entries", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			resp := decode[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
		})
	}
	assert.Empty(t, s.tracker.Entries())
}

func TestUpdateEntry_RecomputesHours(t *testing.T) {
	s := newTestServer(t)
	created := s.add(t, "2025-03-17", "Kim", "09:00", "18:00", nil)

	rec := s.do(t, http.MethodPut, "/api/entries/"+created["id"].(string), map[string]any{
		"date": "2025-03-17", "name": "Kim", "clockIn": "09:00", "clockOut": "12:30",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[map[string]any](t, rec)
	assert.Equal(t, created["id"], got["id"])
	assert.Equal(t, 3.5, got["workHours"])
}

func TestCreateEntry_RemoteConflictIs409(t *testing.T) {
	// GIVEN: remote mode where the remote rejects the write as stale
	local, remote := memory.New(), memory.New()
	tr := tracker.New(local,
		tracker.WithRemote(remote),
		tracker.WithClock(func() time.Time { return testNow }),
	)
	_, err := tr.Load(context.Background())
	require.NoError(t, err)
	remote.FailWith(fmt.Errorf("write: %w", attendance.ErrConcurrentModification))
	router := NewRouter(NewHandler(tr), nil)

	// WHEN: creating an entry
	body := strings.NewReader(`{"date":"2025-03-17","name":"Kim","clockIn":"09:00","clockOut":"18:00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/entries", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// THEN: the conflict surfaces as 409 with the error details
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Details, "concurrent modification")
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/entries/missing", map[string]any{
		"date": "2025-03-17", "name": "Kim", "clockIn": "09:00", "clockOut": "18:00",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/entries/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteEntry(t *testing.T) {
	s := newTestServer(t)
	created := s.add(t, "2025-03-17", "Kim", "09:00", "18:00", nil)

	rec := s.do(t, http.MethodDelete, "/api/entries/"+created["id"].(string), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.tracker.Entries())
}

func TestListEntries_NewestFirstAndRange(t *testing.T) {
	s := newTestServer(t)
	s.add(t, "2025-03-10", "Kim", "09:00", "18:00", nil)
	s.add(t, "2025-03-17", "Kim", "09:00", "18:00", nil)
	s.add(t, "2025-02-20", "Kim", "09:00", "18:00", nil)

	all := decode[[]attendance.Entry](t, s.do(t, http.MethodGet, "/api/entries", nil))
	require.Len(t, all, 3)
	assert.Equal(t, "2025-03-17", all[0].Date)
	assert.Equal(t, "2025-02-20", all[2].Date)

	march := decode[[]attendance.Entry](t, s.do(t, http.MethodGet, "/api/entries?start=2025-03-01&end=2025-03-31", nil))
	assert.Len(t, march, 2)

	rec := s.do(t, http.MethodGet, "/api/entries?start=2025-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEntry_OlderThanRetentionIsDropped(t *testing.T) {
	// GIVEN: today is 2025-03-18, so the cutoff is 2025-01-01
	s := newTestServer(t)

	// WHEN: adding an entry from December
	s.add(t, "2024-12-31", "Kim", "09:00", "18:00", nil)

	// THEN: it is gone from the list
	status := decode[StatusDTO](t, s.do(t, http.MethodGet, "/api/status", nil))
	assert.Equal(t, 0, status.Count)
	assert.Equal(t, "2025-01-01", status.RetentionCutoff)
	assert.Equal(t, "2025-03-18", status.Today)
	assert.Equal(t, "local", status.Mode)
}

func TestStatus_MonthCounts(t *testing.T) {
	s := newTestServer(t)

	// GIVEN: two March entries and one February entry
	s.add(t, "2025-03-17", "Kim", "09:00", "18:00", nil)
	s.add(t, "2025-03-18", "Kim", "09:00", "13:00", nil)
	s.add(t, "2025-02-10", "Lee", "10:00", "14:00", nil)

	// WHEN: reading the status
	status := decode[StatusDTO](t, s.do(t, http.MethodGet, "/api/status", nil))

	// THEN: entries are counted per month
	assert.Equal(t, 3, status.Count)
	assert.Equal(t, map[string]int{"2025-03": 2, "2025-02": 1}, status.Months)
	assert.False(t, status.Syncing)
}

func TestReloadEntries(t *testing.T) {
	s := newTestServer(t)
	s.add(t, "2025-03-17", "Kim", "09:00", "18:00", nil)

	rec := s.do(t, http.MethodPost, "/api/entries/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[LoadResultDTO](t, rec)
	assert.Equal(t, "local", res.Source)
	assert.Equal(t, 1, res.Count)
	assert.False(t, res.Fallback)
}

// =============================================================================
// SUMMARIES
// =============================================================================

func TestWeekSummary_CurrentAndPreviousWeek(t *testing.T) {
	s := newTestServer(t)
	// Week of 2025-03-16..22
	s.add(t, "2025-03-17", "Lee", "09:00", "18:00", 10000)
	s.add(t, "2025-03-18", "Lee", "09:00", "18:00", 10000)
	s.add(t, "2025-03-16", "Park", "09:00", "11:00", nil)
	// Previous week
	s.add(t, "2025-03-15", "Kim", "09:00", "18:00", nil)

	resp := decode[SummaryResponse](t, s.do(t, http.MethodGet, "/api/summaries/week", nil))
	assert.Equal(t, "2025-03-16", resp.Start)
	assert.Equal(t, "2025-03-22", resp.End)
	assert.Equal(t, "3월 16일 - 22일", resp.Label)
	require.Len(t, resp.Employees, 2)
	assert.Equal(t, "Lee", resp.Employees[0].Name)
	assert.Equal(t, "18", resp.Employees[0].TotalHours.String())
	assert.Equal(t, "180000", resp.Employees[0].TotalPay.String())
	assert.Equal(t, "180,000원", resp.Employees[0].PayDisplay)
	assert.Equal(t, "18.0시간", resp.Employees[0].HoursDisplay)
	assert.Equal(t, "20", resp.TotalHours.String())

	require.NotNil(t, resp.Weekly)
	assert.True(t, resp.Weekly.QualifiesForWeeklyAllowance)

	prev := decode[SummaryResponse](t, s.do(t, http.MethodGet, "/api/summaries/week?offset=-1", nil))
	assert.Equal(t, "2025-03-09", prev.Start)
	require.Len(t, prev.Employees, 1)
	assert.Equal(t, "Kim", prev.Employees[0].Name)
	assert.False(t, prev.Weekly.QualifiesForWeeklyAllowance)
}

func TestMonthSummary_Offset(t *testing.T) {
	s := newTestServer(t)
	s.add(t, "2025-02-03", "Kim", "09:00", "13:00", nil)
	s.add(t, "2025-03-03", "Kim", "09:00", "18:00", nil)

	march := decode[SummaryResponse](t, s.do(t, http.MethodGet, "/api/summaries/month", nil))
	assert.Equal(t, "2025-03-01", march.Start)
	assert.Equal(t, "2025-03-31", march.End)
	assert.Equal(t, "9", march.TotalHours.String())

	feb := decode[SummaryResponse](t, s.do(t, http.MethodGet, "/api/summaries/month?offset=-1", nil))
	assert.Equal(t, "2025-02-28", feb.End)
	assert.Equal(t, "4", feb.TotalHours.String())

	rec := s.do(t, http.MethodGet, "/api/summaries/month?offset=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRangeSummary_MeanWageTimesHours(t *testing.T) {
	// GIVEN: Lee worked 2h at 10000 and 3h at 5000
	s := newTestServer(t)
	s.add(t, "2025-03-03", "Lee", "09:00", "11:00", 10000)
	s.add(t, "2025-03-04", "Lee", "09:00", "12:00", 5000)

	// WHEN: summarizing the range
	resp := decode[SummaryResponse](t, s.do(t, http.MethodGet, "/api/summaries?start=2025-03-01&end=2025-03-31", nil))

	// THEN: pay is mean wage (7500) times 5h, not the per-entry sum
	require.Len(t, resp.Employees, 1)
	assert.Equal(t, "7500", resp.Employees[0].HourlyWage.String())
	assert.Equal(t, "37500", resp.Employees[0].TotalPay.String())
	assert.Equal(t, "3월 1일 - 31일", resp.Label)
}

func TestRangeSummary_InvalidRange(t *testing.T) {
	s := newTestServer(t)

	for _, q := range []string{"", "?start=2025-03-01", "?start=2025-03-31&end=2025-03-01", "?start=x&end=y"} {
		rec := s.do(t, http.MethodGet, "/api/summaries"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

// =============================================================================
// CALENDAR
// =============================================================================

func TestCalendar(t *testing.T) {
	s := newTestServer(t)
	s.add(t, "2025-03-01", "Kim", "09:00", "13:00", nil)
	s.add(t, "2025-03-01", "Choi", "09:00", "10:00", nil)

	cal := decode[CalendarDTO](t, s.do(t, http.MethodGet, "/api/calendar?year=2025&month=3", nil))

	assert.Equal(t, 2025, cal.Year)
	assert.Equal(t, 3, cal.Month)
	assert.Equal(t, "5", cal.MonthlyTotal.String())
	require.NotEmpty(t, cal.Weeks)
	for _, week := range cal.Weeks {
		assert.Len(t, week, 7)
	}

	// 2025-03-01 is a Saturday: the last cell of the first row.
	first := cal.Weeks[0][6]
	assert.Equal(t, "2025-03-01", first.Date)
	assert.True(t, first.InMonth)
	assert.Equal(t, "5", first.TotalHours.String())
	require.Len(t, first.Entries, 2)
	assert.Equal(t, "Choi", first.Entries[0].Name)
	assert.False(t, cal.Weeks[0][0].InMonth)

	rec := s.do(t, http.MethodGet, "/api/calendar?month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExport_Workbook(t *testing.T) {
	s := newTestServer(t)
	s.add(t, "2025-03-17", "Kim", "09:00", "18:00", nil)

	rec := s.do(t, http.MethodGet, "/api/export?year=2025&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment; filename*=UTF-8''"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"2025년 3월", "주간 2025-03-16~2025-03-22"}, f.GetSheetList())
}

func TestExport_WeekParameter(t *testing.T) {
	s := newTestServer(t)
	s.add(t, "2025-03-05", "Kim", "09:00", "18:00", nil)

	rec := s.do(t, http.MethodGet, "/api/export?year=2025&month=3&week=2025-03-05", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "주간 2025-03-02~2025-03-08")

	rec = s.do(t, http.MethodGet, "/api/export?week=someday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport_EmptyMonthIsNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/export?year=2025&month=2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Contains(t, resp.Details, "nothing to export")
}
