/*
Package attendance holds the tracker's data model and aggregation engine.

PURPOSE:
  An Entry is one clock-in/clock-out record for one person on one date.
  Everything else in this package is derived from a plain []Entry:
  per-person summaries, export groupings, weekly allowance checks and the
  calendar page. None of the derived values are persisted.

KEY CONCEPTS IN THIS FILE (entry.go):
  - Entry:       the persisted record
  - EntryInput:  the user-editable fields of an Entry
  - Validate:    format checks shared by every write path
  - JSON wire:   field names and number encoding of the stored file

IDENTITY:
  A person is identified by the exact Name string. "Kim" and "kim " are
  different people. Names are trimmed once on input and never normalized
  again.

WAGES:
  HourlyWage is a NullDecimal. An absent wage means pay is not tracked for
  that entry; it is excluded from averages rather than counted as zero.

SEE ALSO:
  - summary.go: aggregation over entries
  - store.go: persistence contract
  - worktime/worktime.go: WorkHours computation
*/
package attendance

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/worklog/period"
	"github.com/warp/worklog/worktime"
)

// =============================================================================
// ENTRY
// =============================================================================

type Entry struct {
	ID         string
	Date       string // YYYY-MM-DD
	Name       string
	ClockIn    string // HH:MM
	ClockOut   string // HH:MM
	WorkHours  decimal.Decimal
	HourlyWage decimal.NullDecimal
}

// EntryInput is what a user submits when creating or editing an entry.
// WorkHours is never accepted from input; it is always recomputed.
type EntryInput struct {
	Date       string
	Name       string
	ClockIn    string
	ClockOut   string
	HourlyWage decimal.NullDecimal
}

// NewEntry builds a validated entry with computed hours.
func NewEntry(id string, in EntryInput) (Entry, error) {
	e := Entry{ID: id}
	if err := e.Apply(in); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Apply overwrites the editable fields and recomputes WorkHours. The ID is
// preserved. On error the entry is left unchanged.
func (e *Entry) Apply(in EntryInput) error {
	next := Entry{
		ID:         e.ID,
		Date:       strings.TrimSpace(in.Date),
		Name:       strings.TrimSpace(in.Name),
		ClockIn:    strings.TrimSpace(in.ClockIn),
		ClockOut:   strings.TrimSpace(in.ClockOut),
		HourlyWage: in.HourlyWage,
	}
	if err := next.Validate(); err != nil {
		return err
	}

	hours, err := worktime.CalculateWorkHours(next.ClockIn, next.ClockOut)
	if err != nil {
		return &ValidationError{Field: "clockOut", Message: err.Error()}
	}
	next.WorkHours = hours

	*e = next
	return nil
}

// Input returns the editable fields of e.
func (e Entry) Input() EntryInput {
	return EntryInput{
		Date:       e.Date,
		Name:       e.Name,
		ClockIn:    e.ClockIn,
		ClockOut:   e.ClockOut,
		HourlyWage: e.HourlyWage,
	}
}

// Validate checks formats only. It does not check WorkHours against the
// clock times.
func (e Entry) Validate() error {
	if _, err := period.ParseDate(e.Date); err != nil {
		return &ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if e.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if _, err := worktime.TimeToMinutes(e.ClockIn); err != nil {
		return &ValidationError{Field: "clockIn", Message: "must be HH:MM"}
	}
	if _, err := worktime.TimeToMinutes(e.ClockOut); err != nil {
		return &ValidationError{Field: "clockOut", Message: "must be HH:MM"}
	}
	if e.HourlyWage.Valid && e.HourlyWage.Decimal.IsNegative() {
		return &ValidationError{Field: "hourlyWage", Message: "must not be negative"}
	}
	return nil
}

// =============================================================================
// JSON WIRE FORMAT
// =============================================================================

// entryJSON is the stored shape. Numbers are written as JSON numbers and an
// absent wage is omitted, matching files written by earlier versions of the
// tracker.
type entryJSON struct {
	ID         string       `json:"id"`
	Date       string       `json:"date"`
	Name       string       `json:"name"`
	ClockIn    string       `json:"clockIn"`
	ClockOut   string       `json:"clockOut"`
	WorkHours  json.Number  `json:"workHours"`
	HourlyWage *json.Number `json:"hourlyWage,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	w := entryJSON{
		ID:        e.ID,
		Date:      e.Date,
		Name:      e.Name,
		ClockIn:   e.ClockIn,
		ClockOut:  e.ClockOut,
		WorkHours: json.Number(e.WorkHours.String()),
	}
	if e.HourlyWage.Valid {
		n := json.Number(e.HourlyWage.Decimal.String())
		w.HourlyWage = &n
	}
	return json.Marshal(w)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var w entryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	hours := decimal.Zero
	if w.WorkHours != "" {
		h, err := decimal.NewFromString(w.WorkHours.String())
		if err != nil {
			return fmt.Errorf("workHours: %w", err)
		}
		hours = h
	}

	var wage decimal.NullDecimal
	if w.HourlyWage != nil {
		d, err := decimal.NewFromString(w.HourlyWage.String())
		if err != nil {
			return fmt.Errorf("hourlyWage: %w", err)
		}
		wage = decimal.NewNullDecimal(d)
	}

	*e = Entry{
		ID:         w.ID,
		Date:       w.Date,
		Name:       w.Name,
		ClockIn:    w.ClockIn,
		ClockOut:   w.ClockOut,
		WorkHours:  hours,
		HourlyWage: wage,
	}
	return nil
}

// =============================================================================
// LIST HELPERS
// =============================================================================

// SortByDateDesc orders entries newest first. Entries on the same date keep
// their relative order.
func SortByDateDesc(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
}

// Retain keeps entries dated on or after cutoff.
func Retain(entries []Entry, cutoff period.Date) []Entry {
	c := cutoff.String()
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Date >= c {
			kept = append(kept, e)
		}
	}
	return kept
}

// FilterRange keeps entries with start <= date <= end by lexical compare.
// Both bounds are required; if either is empty the input is returned as is.
func FilterRange(entries []Entry, start, end string) []Entry {
	if start == "" || end == "" {
		return entries
	}
	var filtered []Entry
	for _, e := range entries {
		if e.Date >= start && e.Date <= end {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// IndexByID returns the position of id in entries, or -1.
func IndexByID(entries []Entry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
