// Package cron owns the live job set: an id-keyed scheduler over
// robfig/cron plus the daily rebuild controller that populates it.
package cron

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Trigger yields a job's next fire time strictly after t, or the zero time
// when the job will never fire again. It is the same contract as
// cron.Schedule, so cron-native schedules plug in directly.
type Trigger interface {
	Next(t time.Time) time.Time
}

// Scheduler maintains fire-time → action bindings, one per job id.
// Registering an existing id atomically replaces the old binding. All
// mutation happens from the rebuild controller and the installers; job
// actions only read.
type Scheduler struct {
	cron   *cron.Cron
	loc    *time.Location
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]*jobEntry

	now func() time.Time
}

type jobEntry struct {
	trigger Trigger
	entryID cron.EntryID
}

// NewScheduler creates a stopped scheduler in the given location.
func NewScheduler(loc *time.Location, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		loc:    loc,
		logger: logger,
		jobs:   make(map[string]*jobEntry),
		now:    func() time.Time { return time.Now().In(loc) },
	}
}

// Now returns the current time in the scheduler's location.
func (s *Scheduler) Now() time.Time { return s.now() }

// Location returns the scheduler's time zone.
func (s *Scheduler) Location() *time.Location { return s.loc }

// Add registers fn under id. An existing job with the same id is removed
// first; its old binding never fires after Add returns.
func (s *Scheduler) Add(id string, trig Trigger, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[id]; ok {
		s.cron.Remove(old.entryID)
	}

	wrapped := func() {
		defer s.recoverFromPanic(id)
		s.logger.Debug("Job fired", zap.String("job", id))
		fn()
	}
	entryID := s.cron.Schedule(asSchedule(trig), cron.FuncJob(wrapped))
	s.jobs[id] = &jobEntry{trigger: trig, entryID: entryID}
}

// Remove drops the job with the given id, if present.
func (s *Scheduler) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.jobs[id]; ok {
		s.cron.Remove(entry.entryID)
		delete(s.jobs, id)
	}
}

// RemoveAll drops every job whose id is not listed in except. Called with
// no arguments it guarantees a clean slate.
func (s *Scheduler) RemoveAll(except ...string) {
	keep := make(map[string]bool, len(except))
	for _, id := range except {
		keep[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.jobs {
		if keep[id] {
			continue
		}
		s.cron.Remove(entry.entryID)
		delete(s.jobs, id)
	}
}

// Jobs returns the registered job ids, sorted.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NextFire returns the id and time of the soonest job fire strictly after
// now, or ok=false when nothing is due to fire again (for example a
// no-rotation day before the infrastructure jobs are installed, or all of
// today's one-shot jobs already fired).
func (s *Scheduler) NextFire() (string, time.Time, bool) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var bestID string
	var best time.Time
	for id, entry := range s.jobs {
		next := entry.trigger.Next(now)
		if next.IsZero() || !next.After(now) {
			continue
		}
		if best.IsZero() || next.Before(best) {
			best = next
			bestID = id
		}
	}
	if best.IsZero() {
		return "", time.Time{}, false
	}
	return bestID, best, true
}

// Start begins firing jobs. Jobs may be registered before or after.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop halts firing. The returned context is done once in-flight jobs have
// returned.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) recoverFromPanic(id string) {
	if r := recover(); r != nil {
		s.logger.Error("Job panicked", zap.String("job", id), zap.Any("error", r))
	}
}

// asSchedule adapts a Trigger to cron.Schedule.
type triggerSchedule struct{ t Trigger }

func (ts triggerSchedule) Next(t time.Time) time.Time { return ts.t.Next(t) }

func asSchedule(t Trigger) cron.Schedule {
	if s, ok := t.(cron.Schedule); ok {
		return s
	}
	return triggerSchedule{t: t}
}
