package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned when a task is triggered while it still runs.
var ErrAlreadyRunning = errors.New("task is already running")

// Job is the work executed for a task.
type Job func(ctx context.Context) error

// Scheduler triggers task jobs on cron expressions. A task never runs twice
// at the same time; overlapping triggers are skipped.
type Scheduler struct {
	cron     *cron.Cron
	registry Registry
	logger   *zap.Logger
	loc      *time.Location

	mu      sync.Mutex
	entries map[uint]cron.EntryID
}

// New creates a Scheduler. A nil registry uses a MemoryRegistry.
func New(cfg Config, registry Registry, logger *zap.Logger) (*Scheduler, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}
	if registry == nil {
		registry = NewMemoryRegistry()
	}

	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithParser(parser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		registry: registry,
		logger:   logger,
		loc:      loc,
		entries:  make(map[uint]cron.EntryID),
	}, nil
}

// Location returns the timezone expressions are evaluated in.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Add schedules job for task id, replacing any previous schedule of id.
func (s *Scheduler) Add(id uint, expr string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, err := s.cron.AddFunc(expr, func() {
		if err := s.execute(id, job); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			s.logger.Error("Scheduled task failed", zap.Uint("task_id", id), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule task %d: %w", id, err)
	}

	if old, ok := s.entries[id]; ok {
		s.cron.Remove(old)
	}
	s.entries[id] = entryID
	return nil
}

// Remove unschedules task id. A running execution is not interrupted.
func (s *Scheduler) Remove(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
}

// RemoveAll unschedules every task.
func (s *Scheduler) RemoveAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entryID := range s.entries {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
}

// Len returns the number of scheduled tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Next returns the next activation of task id once the scheduler runs.
func (s *Scheduler) Next(id uint) (time.Time, bool) {
	s.mu.Lock()
	entryID, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	entry := s.cron.Entry(entryID)
	if !entry.Valid() || entry.Next.IsZero() {
		return time.Time{}, false
	}
	return entry.Next, true
}

// Run executes job for task id immediately on the calling goroutine, with
// the same overlap guard as scheduled executions.
func (s *Scheduler) Run(ctx context.Context, id uint, job Job) error {
	if !s.registry.TryAcquire(id) {
		s.logger.Warn("Skipping task, previous execution still running", zap.Uint("task_id", id))
		return ErrAlreadyRunning
	}
	defer s.registry.Release(id)
	return job(ctx)
}

func (s *Scheduler) execute(id uint, job Job) error {
	return s.Run(context.Background(), id, job)
}

// Start begins triggering jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops triggering jobs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
