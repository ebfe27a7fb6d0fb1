/*
handlers.go - HTTP API handlers for the attendance tracker

PURPOSE:
  Exposes the tracker and the calculation packages via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Status:
    GET    /api/status                  Storage mode, syncing flag, cutoff

  Entries:
    GET    /api/entries?start=&end=     List entries, newest first
    POST   /api/entries                 Create entry
    PUT    /api/entries/{id}            Edit entry (hours recomputed)
    DELETE /api/entries/{id}            Delete entry
    POST   /api/entries/reload          Reload from storage

  Summaries:
    GET    /api/summaries/week?offset=  This week, shifted by offset weeks
    GET    /api/summaries/month?offset= This month, shifted by offset months
    GET    /api/summaries?start=&end=   Arbitrary inclusive range

  Calendar:
    GET    /api/calendar?year=&month=   Month grid with entries per day

  Export:
    GET    /api/export?year=&month=&week=  xlsx download

ARCHITECTURE:
  Handler holds the tracker. "Today" always comes from Tracker.Now so the
  whole request sees one clock and tests can pin it.

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call the tracker or the calculation packages
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Entry not found, nothing to export
  - 409: Remote file changed since it was read
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The tracker is a single-user tool meant to run on a
  private host.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Retention sweep
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/warp/worklog/attendance"
	"github.com/warp/worklog/export"
	"github.com/warp/worklog/logging"
	"github.com/warp/worklog/period"
	"github.com/warp/worklog/tracker"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Tracker *tracker.Tracker

	validate *validator.Validate
	log      *logrus.Entry
}

// NewHandler creates a new handler around t.
func NewHandler(t *tracker.Tracker) *Handler {
	return &Handler{
		Tracker:  t,
		validate: validator.New(),
		log:      logging.For("api"),
	}
}

func (h *Handler) today() period.Date {
	return period.DateOf(h.Tracker.Now())
}

// =============================================================================
// STATUS
// =============================================================================

// GetStatus reports storage mode and sync state.
// GET /api/status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	entries := h.Tracker.Entries()

	months := make(map[string]int)
	for month, inMonth := range attendance.GroupByMonth(entries) {
		months[month] = len(inMonth)
	}

	writeJSON(w, http.StatusOK, StatusDTO{
		Mode:            string(h.Tracker.Mode()),
		Syncing:         h.Tracker.Syncing(),
		Count:           len(entries),
		Today:           h.today().String(),
		RetentionCutoff: h.Tracker.Cutoff().String(),
		Months:          months,
	})
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns entries newest first, optionally limited to a range.
// GET /api/entries?start=&end=
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries := h.Tracker.Entries()

	start, end := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	if start != "" || end != "" {
		p, err := parseRange(start, end)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid range", err)
			return
		}
		s, e := p.Strings()
		entries = attendance.FilterRange(entries, s, e)
	}
	if entries == nil {
		entries = []attendance.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// CreateEntry adds a new entry.
// POST /api/entries
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeEntryRequest(w, r)
	if !ok {
		return
	}

	entry, err := h.Tracker.Add(r.Context(), req.Input())
	if err != nil {
		h.writeTrackerError(w, "Failed to add entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// UpdateEntry replaces an entry's fields and recomputes its hours.
// PUT /api/entries/{id}
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, ok := h.decodeEntryRequest(w, r)
	if !ok {
		return
	}

	entry, err := h.Tracker.Update(r.Context(), id, req.Input())
	if err != nil {
		h.writeTrackerError(w, "Failed to update entry", err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry removes an entry.
// DELETE /api/entries/{id}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Tracker.Delete(r.Context(), id); err != nil {
		h.writeTrackerError(w, "Failed to delete entry", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReloadEntries re-reads storage, falling back to the local copy when the
// remote read fails.
// POST /api/entries/reload
func (h *Handler) ReloadEntries(w http.ResponseWriter, r *http.Request) {
	res, err := h.Tracker.Load(r.Context())
	if err != nil {
		h.writeTrackerError(w, "Failed to load entries", err)
		return
	}

	writeJSON(w, http.StatusOK, toLoadResultDTO(res))
}

func (h *Handler) decodeEntryRequest(w http.ResponseWriter, r *http.Request) (EntryRequest, bool) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload", err)
		return req, false
	}

	if err := h.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			writeError(w, http.StatusBadRequest, "Validation error",
				fmt.Errorf("%s failed on '%s'", fe.Field(), fe.Tag()))
			return req, false
		}
		writeError(w, http.StatusBadRequest, "Validation error", err)
		return req, false
	}
	return req, true
}

// =============================================================================
// SUMMARY HANDLERS
// =============================================================================

// GetWeekSummary summarizes the Sunday..Saturday week offset from this one.
// GET /api/summaries/week?offset=-1
func (h *Handler) GetWeekSummary(w http.ResponseWriter, r *http.Request) {
	offset, err := parseOffset(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offset", err)
		return
	}

	week := period.AddWeeks(period.WeekOf(h.today()), offset)
	entries := h.Tracker.Entries()
	start, end := week.Strings()

	resp := toSummaryResponse(week, attendance.CalculateEmployeeSummaries(entries, start, end))
	resp.Weekly = toWeeklySummaryDTO(attendance.CalculateWeeklySummary(entries, week.Start))

	writeJSON(w, http.StatusOK, resp)
}

// GetMonthSummary summarizes the calendar month offset from this one.
// GET /api/summaries/month?offset=-1
func (h *Handler) GetMonthSummary(w http.ResponseWriter, r *http.Request) {
	offset, err := parseOffset(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offset", err)
		return
	}

	today := h.today()
	month := period.AddMonths(period.MonthOf(today.Year(), today.Month()), offset)
	start, end := month.Strings()

	summaries := attendance.CalculateEmployeeSummaries(h.Tracker.Entries(), start, end)
	writeJSON(w, http.StatusOK, toSummaryResponse(month, summaries))
}

// GetRangeSummary summarizes an arbitrary inclusive range.
// GET /api/summaries?start=2025-03-01&end=2025-03-15
func (h *Handler) GetRangeSummary(w http.ResponseWriter, r *http.Request) {
	p, err := parseRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid range", err)
		return
	}
	start, end := p.Strings()

	summaries := attendance.CalculateEmployeeSummaries(h.Tracker.Entries(), start, end)
	writeJSON(w, http.StatusOK, toSummaryResponse(p, summaries))
}

// =============================================================================
// CALENDAR
// =============================================================================

// GetCalendar returns the month grid. Defaults to the current month.
// GET /api/calendar?year=2025&month=3
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	cal := attendance.BuildCalendar(h.Tracker.Entries(), year, month)
	writeJSON(w, http.StatusOK, toCalendarDTO(cal))
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportWorkbook streams the month workbook with a week sheet. The week is
// the one containing ?week=YYYY-MM-DD, or the current week.
// GET /api/export?year=2025&month=3&week=2025-03-18
func (h *Handler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	day := h.today()
	if s := r.URL.Query().Get("week"); s != "" {
		if day, err = period.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid week", err)
			return
		}
	}
	week := period.WeekOf(day)

	// Buffer so a failure can still be reported as JSON.
	var buf bytes.Buffer
	err = export.Write(&buf, h.Tracker.Entries(), export.Request{Year: year, Month: month, Week: &week})
	if err != nil {
		h.writeTrackerError(w, "Failed to export", err)
		return
	}

	name := export.FileName(year, month)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.WithError(err).Warn("Failed to stream workbook")
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) parseYearMonth(r *http.Request) (int, time.Month, error) {
	today := h.today()
	year, month := today.Year(), int(today.Month())

	q := r.URL.Query()
	if s := q.Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, fmt.Errorf("year must be a positive integer, got %q", s)
		}
		year = v
	}
	if s := q.Get("month"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 12 {
			return 0, 0, fmt.Errorf("month must be 1-12, got %q", s)
		}
		month = v
	}
	return year, time.Month(month), nil
}

func parseOffset(r *http.Request) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get("offset"))
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// parseRange requires both bounds and start <= end.
func parseRange(start, end string) (period.Period, error) {
	if start == "" || end == "" {
		return period.Period{}, errors.New("start and end are both required")
	}
	s, err := period.ParseDate(start)
	if err != nil {
		return period.Period{}, err
	}
	e, err := period.ParseDate(end)
	if err != nil {
		return period.Period{}, err
	}
	if e.Before(s) {
		return period.Period{}, fmt.Errorf("end %s is before start %s", end, start)
	}
	return period.Period{Start: s, End: e}, nil
}

// writeTrackerError maps domain errors to HTTP status codes.
func (h *Handler) writeTrackerError(w http.ResponseWriter, message string, err error) {
	switch {
	case attendance.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case attendance.IsNotFound(err), errors.Is(err, attendance.ErrNothingToExport):
		writeError(w, http.StatusNotFound, message, err)
	case attendance.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.log.WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
