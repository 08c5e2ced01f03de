package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"table-reconciler/core/scheduler"
	"table-reconciler/core/store"
	"table-reconciler/feature/comparison"

	"go.uber.org/zap"
)

// ErrTaskDisabled is returned when a disabled task is asked to run.
var ErrTaskDisabled = errors.New("scheduled task is disabled")

// Service registers the stored scheduled tasks with the scheduler and runs
// them as project comparisons.
type Service struct {
	store      *store.Store
	scheduler  *scheduler.Scheduler
	comparison *comparison.Service
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a schedule service.
func NewService(st *store.Store, sched *scheduler.Scheduler, cmp *comparison.Service, logger *zap.Logger) *Service {
	return &Service{
		store:      st,
		scheduler:  sched,
		comparison: cmp,
		logger:     logger,
		now:        time.Now,
	}
}

// LoadResult reports the outcome of Load.
type LoadResult struct {
	Scheduled []uint          `json:"scheduled"`
	Invalid   map[uint]string `json:"invalid,omitempty"`
}

// Load replaces every schedule with the enabled tasks of the store. Tasks
// with an invalid schedule are skipped and reported.
func (s *Service) Load(ctx context.Context) (*LoadResult, error) {
	tasks, err := s.store.ListScheduledTasks(ctx)
	if err != nil {
		return nil, err
	}

	s.scheduler.RemoveAll()
	result := &LoadResult{Scheduled: []uint{}, Invalid: map[uint]string{}}
	for _, task := range tasks {
		expr, err := scheduler.Expression(task.ScheduleType, task.ScheduleValue)
		if err == nil {
			err = s.scheduler.Add(task.ID, expr, s.job(task.ID))
		}
		if err != nil {
			s.logger.Warn("Skipping scheduled task", zap.Uint("task_id", task.ID), zap.Error(err))
			result.Invalid[task.ID] = err.Error()
			continue
		}

		next, err := scheduler.NextRun(expr, s.now(), s.scheduler.Location())
		if err == nil {
			err = s.store.SetTaskNextRun(ctx, task.ID, &next)
		}
		if err != nil {
			s.logger.Warn("Failed to store next run", zap.Uint("task_id", task.ID), zap.Error(err))
		}
		result.Scheduled = append(result.Scheduled, task.ID)
	}

	s.logger.Info("Scheduled tasks loaded", zap.Int("scheduled", len(result.Scheduled)), zap.Int("invalid", len(result.Invalid)))
	return result, nil
}

// job is the cron entry of task id. A task disabled since the last load
// removes its own entry.
func (s *Service) job(id uint) scheduler.Job {
	return func(ctx context.Context) error {
		_, err := s.execute(ctx, id)
		if errors.Is(err, ErrTaskDisabled) {
			s.scheduler.Remove(id)
			return nil
		}
		return err
	}
}

// Trigger runs task id now. It fails with scheduler.ErrAlreadyRunning while
// another execution of the task is in progress.
func (s *Service) Trigger(ctx context.Context, id uint) (*comparison.Outcome, error) {
	var outcome *comparison.Outcome
	err := s.scheduler.Run(ctx, id, func(ctx context.Context) error {
		var err error
		outcome, err = s.execute(ctx, id)
		return err
	})
	return outcome, err
}

// execute runs the comparison of task id and records the run on the task.
func (s *Service) execute(ctx context.Context, id uint) (*comparison.Outcome, error) {
	task, err := s.store.GetScheduledTask(ctx, id)
	if err != nil {
		return nil, err
	}
	l := s.logger.With(zap.Uint("task_id", id), zap.String("task", task.Name))
	if !task.Enabled {
		l.Info("Skipping disabled scheduled task")
		return nil, ErrTaskDisabled
	}
	startedAt := s.now()

	job := comparison.JobFromProject(&task.Project, comparison.Overrides{
		PrimaryKeys: task.PrimaryKeys.V,
		KeyMappings: task.KeyMappings.V,
	})
	job.ScheduledTaskID = task.ID

	l.Info("Running scheduled comparison", zap.Uint("project_id", task.ProjectID))
	outcome, runErr := s.comparison.RunProjectJob(ctx, &task.Project, job)

	var message string
	if runErr != nil {
		message = runErr.Error()
	} else {
		message = fmt.Sprintf("comparison %d found %d differences", outcome.Run.ID, outcome.Run.Total)
	}

	var next *time.Time
	if expr, err := scheduler.Expression(task.ScheduleType, task.ScheduleValue); err == nil {
		if t, err := scheduler.NextRun(expr, s.now(), s.scheduler.Location()); err == nil {
			next = &t
		}
	}

	if err := s.store.RecordTaskRun(ctx, task.ID, runErr == nil, message, startedAt, next); err != nil {
		l.Error("Failed to record task run", zap.Error(err))
		if runErr == nil {
			return outcome, err
		}
	}
	if runErr != nil {
		return outcome, fmt.Errorf("scheduled task %d: %w", id, runErr)
	}

	l.Info("Scheduled comparison completed", zap.String("result", message))
	return outcome, nil
}

// IsAlreadyRunning reports whether err means the task was already running.
func IsAlreadyRunning(err error) bool {
	return errors.Is(err, scheduler.ErrAlreadyRunning)
}

// IsDisabled reports whether err means the task is disabled.
func IsDisabled(err error) bool {
	return errors.Is(err, ErrTaskDisabled)
}
