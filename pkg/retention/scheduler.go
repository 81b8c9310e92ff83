package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Target is something that can delete its expired records.
type Target interface {
	// Name identifies the target in logs.
	Name() string

	// Prune deletes expired records and returns how many were removed.
	Prune(ctx context.Context) (int, error)
}

// Scheduler runs pruning jobs on cron schedules (e.g., hourly for the
// response cache, daily at 3 AM for debug captures).
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	jobs    []job
	running bool
}

type job struct {
	schedule string
	target   Target
	entryID  cron.EntryID
}

// NewScheduler creates a new retention scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: slog.Default().With("component", "retention.scheduler"),
	}
}

// Add registers target to be pruned on schedule, a standard five-field cron
// expression. An empty schedule registers the target for RunOnce only.
//
// Common cron expressions:
//   - "0 3 * * *"    - Daily at 3 AM
//   - "0 * * * *"    - Hourly
//   - "0 0 * * 0"    - Weekly on Sunday at midnight
func (s *Scheduler) Add(schedule string, target Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("cannot add jobs to a running scheduler")
	}
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return fmt.Errorf("invalid cron schedule %q for %s: %w", schedule, target.Name(), err)
		}
	}
	s.jobs = append(s.jobs, job{schedule: schedule, target: target})
	return nil
}

// Start begins scheduled pruning. Jobs stop when ctx is cancelled or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}

	scheduled := 0
	for i := range s.jobs {
		j := &s.jobs[i]
		if j.schedule == "" {
			s.logger.Info("prune schedule not configured, skipping", "target", j.target.Name())
			continue
		}
		target := j.target
		id, err := s.cron.AddFunc(j.schedule, func() {
			s.runPruning(ctx, target)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule pruning for %s: %w", target.Name(), err)
		}
		j.entryID = id
		scheduled++

		s.logger.Info("pruning scheduled",
			"target", target.Name(),
			"schedule", j.schedule,
		)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("retention scheduler started", "jobs", scheduled)

	// Wait for context cancellation in background
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce prunes every registered target immediately and returns the number
// of records removed per target. Errors from individual targets are joined.
func (s *Scheduler) RunOnce(ctx context.Context) (map[string]int, error) {
	s.mu.Lock()
	jobs := append([]job(nil), s.jobs...)
	s.mu.Unlock()

	results := make(map[string]int, len(jobs))
	var errs []error
	for _, j := range jobs {
		n, err := j.target.Prune(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", j.target.Name(), err))
			continue
		}
		results[j.target.Name()] = n
	}
	return results, errors.Join(errs...)
}

// runPruning executes a pruning cycle for one target.
func (s *Scheduler) runPruning(ctx context.Context, target Target) {
	s.logger.Info("starting scheduled pruning", "target", target.Name())

	deleted, err := target.Prune(ctx)
	if err != nil {
		s.logger.Error("scheduled pruning failed",
			"target", target.Name(),
			"error", err,
		)
		return
	}

	if deleted > 0 {
		s.logger.Info("scheduled pruning completed",
			"target", target.Name(),
			"deleted_count", deleted,
		)
	} else {
		s.logger.Debug("scheduled pruning completed, no records deleted", "target", target.Name())
	}
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		ctx := s.cron.Stop()
		<-ctx.Done() // Wait for running jobs to finish
		s.running = false
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled pruning time for the named target, or
// nil when it is not scheduled or the scheduler is not running.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	for _, j := range s.jobs {
		if j.target.Name() != name || j.entryID == 0 {
			continue
		}
		next := s.cron.Entry(j.entryID).Next
		return &next
	}
	return nil
}
