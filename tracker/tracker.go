/*
Package tracker owns the in-memory entry list and its persistence.

PURPOSE:
  The tracker is the single owner of the attendance records for the
  process. It is constructed once at startup with its stores and held for
  the lifetime of the server; nothing else mutates the list.

STORAGE MODES:
  local:  one attendance.Store (SQLite key-value table)
  remote: a remote attendance.Store plus the local store as backup

LOAD:
  remote mode reads the remote file and backs it up locally. If the remote
  read fails, the local copy is used and LoadResult.Fallback is set so the
  caller can tell the user. Local mode reads the local store only.

SAVE (add, update, delete, prune):
  1. Apply the retention cutoff to the new list
  2. Replace the in-memory list
  3. Write the remote file (remote mode), then the local copy
  A failed write is returned to the caller. The in-memory list is NOT
  rolled back, so a failed remote write leaves memory ahead of the remote
  file until the next successful save.

RETENTION:
  Entries older than period.RetentionCutoff(now) are dropped on every load
  and every save. The only history left is whatever the remote repository
  keeps in its commits.

CONCURRENCY:
  All operations hold one mutex; saves are serialized. Syncing() is readable
  without the lock.

SEE ALSO:
  - attendance/store.go: Store contract
  - store/github/github.go: remote store
  - api/handlers.go: HTTP surface
*/
package tracker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/warp/worklog/attendance"
	"github.com/warp/worklog/logging"
	"github.com/warp/worklog/period"
)

// Source names where a load came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// LoadResult describes a completed load.
type LoadResult struct {
	Source   Source
	Fallback bool  // remote read failed and the local copy was used
	Err      error // the remote error behind a fallback
	Count    int
	Dropped  int // entries removed by retention
}

// Tracker is the persistence service for attendance entries.
type Tracker struct {
	local  attendance.Store
	remote attendance.Store
	now    func() time.Time
	newID  func() string
	log    *logrus.Entry

	mu      sync.Mutex
	entries []attendance.Entry
	syncing atomic.Bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRemote enables remote mode with the given store.
func WithRemote(remote attendance.Store) Option {
	return func(t *Tracker) { t.remote = remote }
}

// WithClock sets the source of "now" used for retention.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) { t.newID = newID }
}

// New creates a tracker backed by local. The list is empty until Load.
func New(local attendance.Store, opts ...Option) *Tracker {
	t := &Tracker{
		local:   local,
		now:     time.Now,
		newID:   uuid.NewString,
		log:     logging.For("tracker"),
		entries: []attendance.Entry{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Mode reports the storage mode.
func (t *Tracker) Mode() Source {
	if t.remote != nil {
		return SourceRemote
	}
	return SourceLocal
}

// Syncing is true while a save is in flight.
func (t *Tracker) Syncing() bool {
	return t.syncing.Load()
}

// Now returns the tracker's current instant.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// Cutoff returns the current retention cutoff.
func (t *Tracker) Cutoff() period.Date {
	return period.RetentionCutoff(t.now())
}

// =============================================================================
// READ
// =============================================================================

// Entries returns a copy of the list, newest first.
func (t *Tracker) Entries() []attendance.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]attendance.Entry(nil), t.entries...)
}

// Get returns one entry by ID.
func (t *Tracker) Get(id string) (attendance.Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := attendance.IndexByID(t.entries, id)
	if i < 0 {
		return attendance.Entry{}, fmt.Errorf("%w: %s", attendance.ErrEntryNotFound, id)
	}
	return t.entries[i], nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load replaces the in-memory list from storage.
func (t *Tracker) Load(ctx context.Context) (LoadResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remote != nil {
		entries, err := t.remote.Load(ctx)
		if err == nil {
			kept := t.retain(entries)
			if backupErr := t.local.Save(ctx, kept); backupErr != nil {
				t.log.WithError(backupErr).Warn("Failed to back up remote records locally")
			}
			t.set(kept)
			t.log.WithField("count", len(kept)).Info("Loaded records from remote")
			return LoadResult{Source: SourceRemote, Count: len(kept), Dropped: len(entries) - len(kept)}, nil
		}

		t.log.WithError(err).Warn("Failed to load remote records, using local copy")
		entries, localErr := t.local.Load(ctx)
		if localErr != nil {
			t.log.WithError(localErr).Error("Failed to load local records")
			return LoadResult{}, fmt.Errorf("load failed: remote: %v: local: %w", err, localErr)
		}
		kept := t.retain(entries)
		t.set(kept)
		return LoadResult{Source: SourceLocal, Fallback: true, Err: err, Count: len(kept), Dropped: len(entries) - len(kept)}, nil
	}

	entries, err := t.local.Load(ctx)
	if err != nil {
		t.log.WithError(err).Error("Failed to load local records")
		return LoadResult{}, fmt.Errorf("load failed: %w", err)
	}
	kept := t.retain(entries)
	t.set(kept)
	t.log.WithField("count", len(kept)).Debug("Loaded records from local store")
	return LoadResult{Source: SourceLocal, Count: len(kept), Dropped: len(entries) - len(kept)}, nil
}

// =============================================================================
// WRITE
// =============================================================================

// Add creates an entry with a fresh ID and computed hours.
func (t *Tracker) Add(ctx context.Context, in attendance.EntryInput) (attendance.Entry, error) {
	e, err := attendance.NewEntry(t.newID(), in)
	if err != nil {
		return attendance.Entry{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next := append(append([]attendance.Entry(nil), t.entries...), e)
	attendance.SortByDateDesc(next)
	if err := t.save(ctx, next); err != nil {
		return e, err
	}
	return e, nil
}

// Update replaces the editable fields of an entry and recomputes its hours.
func (t *Tracker) Update(ctx context.Context, id string, in attendance.EntryInput) (attendance.Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := attendance.IndexByID(t.entries, id)
	if i < 0 {
		return attendance.Entry{}, fmt.Errorf("%w: %s", attendance.ErrEntryNotFound, id)
	}

	next := append([]attendance.Entry(nil), t.entries...)
	updated := next[i]
	if err := updated.Apply(in); err != nil {
		return attendance.Entry{}, err
	}
	next[i] = updated

	if err := t.save(ctx, next); err != nil {
		return updated, err
	}
	return updated, nil
}

// Delete removes an entry by ID.
func (t *Tracker) Delete(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := attendance.IndexByID(t.entries, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", attendance.ErrEntryNotFound, id)
	}

	next := make([]attendance.Entry, 0, len(t.entries)-1)
	next = append(next, t.entries[:i]...)
	next = append(next, t.entries[i+1:]...)
	return t.save(ctx, next)
}

// Prune re-saves the list if the retention cutoff has moved past some
// entries. It returns how many were dropped.
func (t *Tracker) Prune(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.retain(t.entries)
	dropped := len(t.entries) - len(kept)
	if dropped == 0 {
		return 0, nil
	}
	if err := t.save(ctx, kept); err != nil {
		return dropped, err
	}
	t.log.WithField("dropped", dropped).Info("Pruned records past retention cutoff")
	return dropped, nil
}

// save must be called with t.mu held.
func (t *Tracker) save(ctx context.Context, next []attendance.Entry) error {
	t.syncing.Store(true)
	defer t.syncing.Store(false)

	kept := t.retain(next)
	t.set(kept)

	if t.remote != nil {
		if err := t.remote.Save(ctx, kept); err != nil {
			t.log.WithError(err).Error("Failed to save records to remote")
			return fmt.Errorf("save failed: %w", err)
		}
	}
	if err := t.local.Save(ctx, kept); err != nil {
		t.log.WithError(err).Error("Failed to save records locally")
		return fmt.Errorf("save failed: %w", err)
	}
	return nil
}

func (t *Tracker) retain(entries []attendance.Entry) []attendance.Entry {
	return attendance.Retain(entries, period.RetentionCutoff(t.now()))
}

func (t *Tracker) set(entries []attendance.Entry) {
	if entries == nil {
		entries = []attendance.Entry{}
	}
	t.entries = entries
}
