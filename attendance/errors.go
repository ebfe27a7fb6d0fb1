/*
errors.go - Centralized error types for the attendance domain

PURPOSE:
  All error types in one place for consistency and discoverability.
  Store implementations and the tracker wrap these with context.

ERROR CATEGORIES:
  1. Entry errors - Missing entries, invalid input
  2. Store errors - Malformed stored data, remote failures, stale versions
  3. Export errors - Nothing to export

USAGE:
    if errors.Is(err, attendance.ErrConcurrentModification) {
        // someone else wrote the remote file since we last read it
    }

SEE ALSO:
  - store.go: Store contract returning these errors
  - tracker/tracker.go: Fallback and propagation rules
  - api/handlers.go: HTTP status mapping
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEntryNotFound is returned when no entry has the requested ID.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrInvalidEntry is returned when an entry fails validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrMalformedData is returned when stored JSON cannot be decoded.
	ErrMalformedData = errors.New("malformed stored data")

	// ErrConcurrentModification is returned when the remote file changed
	// since the version token we hold was read.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrRemoteUnavailable is returned when the remote store cannot be reached
	// or answers with an unexpected status.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrNothingToExport is returned when an export range contains no entries.
	ErrNothingToExport = errors.New("nothing to export")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidEntry
}

// RemoteError carries the status and body of a failed remote call.
type RemoteError struct {
	Op     string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *RemoteError) Unwrap() error {
	return ErrRemoteUnavailable
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidEntry)
}

// IsConflict returns true if the write lost an optimistic concurrency race.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
