// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glassline/erp-api/internal/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler manages background jobs using cron scheduling.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	mu     sync.Mutex
	jobs   map[string]cron.EntryID
	runs   map[string]RunInfo
}

// RunInfo describes the most recent run of a job
type RunInfo struct {
	StartedAt time.Time
	Duration  time.Duration
	Panicked  bool
}

// cronLogger routes cron's own messages, such as skipped overlapping runs,
// through zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler creates a new job scheduler with the given logger.
func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := cronLogger{sugar: logger.Named("cron").Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithLogger(cl), cron.WithChain(
			cron.SkipIfStillRunning(cl),
		)),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
		runs:   make(map[string]RunInfo),
	}
}

// Start starts the scheduler. Jobs added before this call will begin running.
func (s *Scheduler) Start() {
	s.logger.Info("starting job scheduler")
	s.cron.Start()
}

// Stop gracefully stops the scheduler. Running jobs will complete.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping job scheduler")
	return s.cron.Stop()
}

// AddJob adds a job with the given name and cron expression.
// Expressions have a leading seconds field, e.g. "0 30 2 * * *" runs
// daily at 02:30:00. Descriptors such as "@hourly" and "@every 1h" work too.
func (s *Scheduler) AddJob(name string, cronExpr string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() { s.runJob(name, job) })
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.Info("added scheduled job",
		zap.String("job_name", name),
		zap.String("cron_expr", cronExpr))

	return nil
}

// runJob runs one scheduled invocation. A panic is logged with the job name
// and does not stop the scheduler.
func (s *Scheduler) runJob(name string, job func()) {
	start := time.Now()
	log := logger.WithJob(s.logger, name, start)
	log.Info("running scheduled job")

	info := RunInfo{StartedAt: start}
	defer func() {
		if r := recover(); r != nil {
			info.Panicked = true
			log.Error("scheduled job panicked",
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
		info.Duration = time.Since(start)

		s.mu.Lock()
		s.runs[name] = info
		s.mu.Unlock()

		if !info.Panicked {
			log.Info("completed scheduled job", zap.Duration("duration", info.Duration))
		}
	}()

	job()
}

// LastRun returns the most recent run of the named job. The second return
// value is false when the job has not run yet.
func (s *Scheduler) LastRun(name string) (RunInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.runs[name]
	return info, ok
}

// RemoveJob removes a job by name.
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	s.cron.Remove(entryID)
	delete(s.jobs, name)
	delete(s.runs, name)

	s.logger.Info("removed scheduled job",
		zap.String("job_name", name))

	return nil
}

// GetJobNames returns the names of all registered jobs.
func (s *Scheduler) GetJobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}
