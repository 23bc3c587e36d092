// Package scheduler drives the periodic background sync. A cron runner is
// used instead of a bare time.Ticker so the schedule carries a stable
// identity and registration stays idempotent.
package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jiangwan/chrome-outlook-calendar/internal/logger"
)

// DefaultInterval matches the original 30-minute refresh alarm.
const DefaultInterval = 30 * time.Minute

// Scheduler fires the sync job at a fixed interval and, when asked, once
// immediately at startup.
type Scheduler struct {
	interval time.Duration
	job      func()

	mu    sync.Mutex
	cron  *cron.Cron
	entry cron.EntryID
}

// New creates a scheduler running job every interval.
func New(interval time.Duration, job func()) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval: interval,
		job:      job,
		cron:     cron.New(),
	}
}

// Start registers the repeating job and starts the runner. Registration is
// idempotent: calling Start on an already-scheduled instance does nothing,
// so the schedule is never duplicated. When kickoff is true the job also
// runs once right away (the caller decides based on whether a prior
// schedule left fresh state behind).
func (s *Scheduler) Start(kickoff bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != 0 {
		logger.Debug("scheduler already running")
		return
	}

	s.entry = s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(s.job))
	s.cron.Start()
	logger.Info("scheduler started", "interval", s.interval)

	if kickoff {
		go s.job()
	}
}

// Stop halts the runner; a job already in flight finishes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry == 0 {
		return
	}
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entry)
	s.entry = 0
	logger.Info("scheduler stopped")
}

// Running reports whether the repeating job is registered.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry != 0
}
