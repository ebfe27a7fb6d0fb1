/*
scheduler.go - Automated retention sweep

PURPOSE:
  Entries older than the retention cutoff are dropped whenever the list is
  loaded or saved. A tracker that nobody edits would otherwise keep stale
  entries indefinitely, so a cron job prunes on a schedule as well.

DESIGN:
  - robfig/cron runs the sweep in the configured time zone
  - Each run calls Tracker.Prune, which saves only when something dropped
  - The last run is kept for logging and tests

CONFIGURATION:
  - Schedule: cron spec or descriptor (default "@daily")
  - "off" or "" disables the scheduler

USAGE:
  scheduler := NewRetentionScheduler(tracker, "@daily", loc)
  if err := scheduler.Start(); err != nil { ... }
  // ... later
  scheduler.Stop()

SEE ALSO:
  - tracker/tracker.go: Prune
  - period/calendar.go: RetentionCutoff
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/warp/worklog/logging"
	"github.com/warp/worklog/tracker"
)

// RetentionJobTimeout bounds one sweep, including a remote write.
const RetentionJobTimeout = 30 * time.Second

// RetentionRun records the outcome of one sweep.
type RetentionRun struct {
	At      time.Time
	Dropped int
	Err     error
}

// RetentionScheduler prunes the tracker on a cron schedule.
type RetentionScheduler struct {
	Tracker  *tracker.Tracker
	Schedule string

	cron *cron.Cron
	log  *logrus.Entry

	mu      sync.Mutex
	lastRun *RetentionRun
}

// NewRetentionScheduler creates a scheduler; nothing runs until Start.
func NewRetentionScheduler(t *tracker.Tracker, schedule string, loc *time.Location) *RetentionScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &RetentionScheduler{
		Tracker:  t,
		Schedule: schedule,
		cron:     cron.New(cron.WithLocation(loc)),
		log:      logging.For("scheduler"),
	}
}

// Enabled reports whether a schedule is configured.
func (rs *RetentionScheduler) Enabled() bool {
	return rs.Schedule != "" && rs.Schedule != "off"
}

// Start registers the sweep and starts the cron loop.
func (rs *RetentionScheduler) Start() error {
	if !rs.Enabled() {
		rs.log.Info("Retention scheduler disabled")
		return nil
	}

	if _, err := rs.cron.AddFunc(rs.Schedule, func() { rs.RunNow() }); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", rs.Schedule, err)
	}
	rs.cron.Start()

	rs.log.WithField("schedule", rs.Schedule).Info("Retention scheduler started")
	return nil
}

// Stop stops the cron loop and waits for a running sweep to finish.
func (rs *RetentionScheduler) Stop() {
	if !rs.Enabled() {
		return
	}
	<-rs.cron.Stop().Done()
	rs.log.Info("Retention scheduler stopped")
}

// RunNow performs one sweep immediately.
func (rs *RetentionScheduler) RunNow() RetentionRun {
	ctx, cancel := context.WithTimeout(context.Background(), RetentionJobTimeout)
	defer cancel()

	dropped, err := rs.Tracker.Prune(ctx)
	run := RetentionRun{At: rs.Tracker.Now(), Dropped: dropped, Err: err}

	entry := rs.log.WithFields(logrus.Fields{
		"dropped": dropped,
		"cutoff":  rs.Tracker.Cutoff().String(),
	})
	if err != nil {
		entry.WithError(err).Error("Retention sweep failed")
	} else {
		entry.Debug("Retention sweep completed")
	}

	rs.mu.Lock()
	rs.lastRun = &run
	rs.mu.Unlock()
	return run
}

// LastRun returns the most recent sweep, if any.
func (rs *RetentionScheduler) LastRun() (RetentionRun, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.lastRun == nil {
		return RetentionRun{}, false
	}
	return *rs.lastRun, true
}

// NextRun returns when the sweep will next fire, or the zero time when the
// scheduler is not running.
func (rs *RetentionScheduler) NextRun() time.Time {
	entries := rs.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
