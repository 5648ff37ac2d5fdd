// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a named unit of background work run on a cron schedule.
type Job struct {
	Name    string
	Spec    string // standard five-field cron expression or @descriptor
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// DefaultJobTimeout bounds a job run when Job.Timeout is zero.
const DefaultJobTimeout = 5 * time.Minute

// Scheduler runs jobs with robfig/cron. Overlapping runs of the same job are
// skipped and a panicking job is recovered and logged.
type Scheduler struct {
	cron *cron.Cron
	loc  *time.Location
	log  *zap.Logger

	mu      sync.Mutex
	started bool
	jobs    map[string]cron.EntryID
}

// NewScheduler creates a scheduler that evaluates specs in loc (UTC when nil).
func NewScheduler(loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{s: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		loc:  loc,
		log:  logger,
		jobs: make(map[string]cron.EntryID),
	}
}

// Add registers j. Names must be unique.
func (s *Scheduler) Add(j Job) error {
	if j.Name == "" || j.Run == nil {
		return errors.New("job needs a name and a run function")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.Name]; ok {
		return fmt.Errorf("job %q already registered", j.Name)
	}
	id, err := s.cron.AddFunc(j.Spec, func() { s.run(j) })
	if err != nil {
		return fmt.Errorf("job %q: invalid schedule %q: %w", j.Name, j.Spec, err)
	}
	s.jobs[j.Name] = id
	return nil
}

// Next reports the next activation time of the named job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	e := s.cron.Entry(id)
	if !e.Valid() {
		return time.Time{}, false
	}
	if e.Next.IsZero() {
		// Specs are evaluated in the scheduler's zone, not the host's.
		return e.Schedule.Next(time.Now().In(s.loc)), true
	}
	return e.Next, true
}

// Start begins running jobs. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.log.Info("task scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop stops the scheduler and waits for running jobs until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		s.log.Warn("task scheduler stop timed out; jobs still running")
		return
	}
	s.log.Info("task scheduler stopped")
}

func (s *Scheduler) run(j Job) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	if err := j.Run(ctx); err != nil {
		s.log.Error("scheduled job failed",
			zap.String("job", j.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return
	}
	s.log.Debug("scheduled job finished",
		zap.String("job", j.Name),
		zap.Duration("elapsed", time.Since(start)))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
