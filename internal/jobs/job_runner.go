package jobs

import (
	"sync"
	"time"

	"rentwear-backend/internal/config"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store   repository.Store
	emitter *service.Emitter
	config  *config.Config
	now     func() time.Time

	mu       sync.Mutex
	reminded map[string]time.Time // trial id -> trial date
	flagged  map[string]time.Time // order id -> end of the day it was flagged
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store repository.Store, emitter *service.Emitter, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:    store,
		emitter:  emitter,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
		reminded: make(map[string]time.Time),
		flagged:  make(map[string]time.Time),
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	log := logger.WithService("jobs")
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	log.Info("Starting job", "job", jobName)
	jobFunc()
	log.Info("Job completed", "job", jobName)
}

// markOnce records key in seen until expires and reports whether it was new.
func (jr *JobRunner) markOnce(seen map[string]time.Time, key string, now, expires time.Time) bool {
	jr.mu.Lock()
	defer jr.mu.Unlock()
	if exp, ok := seen[key]; ok && now.Before(exp) {
		return false
	}
	seen[key] = expires
	return true
}

// prune drops entries of seen that expired at or before now.
func (jr *JobRunner) prune(seen map[string]time.Time, now time.Time) {
	jr.mu.Lock()
	defer jr.mu.Unlock()
	for key, exp := range seen {
		if !now.Before(exp) {
			delete(seen, key)
		}
	}
}

// tracked reports how many reminder and overdue entries are held.
func (jr *JobRunner) tracked() (reminded, flagged int) {
	jr.mu.Lock()
	defer jr.mu.Unlock()
	return len(jr.reminded), len(jr.flagged)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SendTrialReminders()
	jr.FlagOverdueReturns()
}
