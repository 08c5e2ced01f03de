package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store reads and writes the metadata models.
type Store struct {
	db *gorm.DB
}

// New creates a Store over db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the tables of every model.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return nil
}

// Create inserts value, which must be a pointer to a model.
func (s *Store) Create(ctx context.Context, value any) error {
	return s.db.WithContext(ctx).Create(value).Error
}

// GetConnection loads a connection by id.
func (s *Store) GetConnection(ctx context.Context, id uint) (*Connection, error) {
	var conn Connection
	if err := s.db.WithContext(ctx).First(&conn, id).Error; err != nil {
		return nil, notFound("connection", id, err)
	}
	return &conn, nil
}

// GetProject loads a project with both connections.
func (s *Store) GetProject(ctx context.Context, id uint) (*Project, error) {
	var project Project
	err := s.db.WithContext(ctx).
		Preload("SourceConnection").
		Preload("TargetConnection").
		First(&project, id).Error
	if err != nil {
		return nil, notFound("project", id, err)
	}
	return &project, nil
}

// GetConsistencyConfig loads a consistency config with both connections.
func (s *Store) GetConsistencyConfig(ctx context.Context, id uint) (*ConsistencyConfig, error) {
	var cfg ConsistencyConfig
	err := s.db.WithContext(ctx).
		Preload("SourceConnection").
		Preload("TargetConnection").
		First(&cfg, id).Error
	if err != nil {
		return nil, notFound("consistency config", id, err)
	}
	return &cfg, nil
}

// GetComparison loads a comparison run with its results in insertion order.
func (s *Store) GetComparison(ctx context.Context, id uint) (*ComparisonRun, error) {
	var run ComparisonRun
	err := s.db.WithContext(ctx).
		Preload("Results", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&run, id).Error
	if err != nil {
		return nil, notFound("comparison", id, err)
	}
	return &run, nil
}

// ListComparisons returns the latest comparison runs of a project without
// results, newest first.
func (s *Store) ListComparisons(ctx context.Context, projectID uint, limit int) ([]ComparisonRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []ComparisonRun
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comparisons: %w", err)
	}
	return runs, nil
}

// GetConsistencyCheck loads a consistency check with its results.
func (s *Store) GetConsistencyCheck(ctx context.Context, id uint) (*ConsistencyCheck, error) {
	var check ConsistencyCheck
	err := s.db.WithContext(ctx).
		Preload("Results", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&check, id).Error
	if err != nil {
		return nil, notFound("consistency check", id, err)
	}
	return &check, nil
}

// ListScheduledTasks returns the enabled scheduled tasks with their projects
// and connections.
func (s *Store) ListScheduledTasks(ctx context.Context) ([]ScheduledTask, error) {
	var tasks []ScheduledTask
	err := s.db.WithContext(ctx).
		Preload("Project.SourceConnection").
		Preload("Project.TargetConnection").
		Where("enabled = ?", true).
		Order("id").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled tasks: %w", err)
	}
	return tasks, nil
}

// GetScheduledTask loads a scheduled task with its project and connections.
func (s *Store) GetScheduledTask(ctx context.Context, id uint) (*ScheduledTask, error) {
	var task ScheduledTask
	err := s.db.WithContext(ctx).
		Preload("Project.SourceConnection").
		Preload("Project.TargetConnection").
		First(&task, id).Error
	if err != nil {
		return nil, notFound("scheduled task", id, err)
	}
	return &task, nil
}

// RecordTaskRun updates the counters and last-run fields of a task.
func (s *Store) RecordTaskRun(ctx context.Context, taskID uint, success bool, message string, at time.Time, next *time.Time) error {
	status := "success"
	counter := "successful_runs"
	if !success {
		status = "failed"
		counter = "failed_runs"
	}

	updates := map[string]any{
		"total_runs":       gorm.Expr("total_runs + 1"),
		counter:            gorm.Expr(counter + " + 1"),
		"last_run_at":      at,
		"last_run_status":  status,
		"last_run_message": message,
		"next_run_at":      next,
	}
	res := s.db.WithContext(ctx).Model(&ScheduledTask{}).Where("id = ?", taskID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to record run of task %d: %w", taskID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("scheduled task %d: %w", taskID, ErrNotFound)
	}
	return nil
}

// SetTaskNextRun stores the next planned execution of a task.
func (s *Store) SetTaskNextRun(ctx context.Context, taskID uint, next *time.Time) error {
	err := s.db.WithContext(ctx).Model(&ScheduledTask{}).Where("id = ?", taskID).Update("next_run_at", next).Error
	if err != nil {
		return fmt.Errorf("failed to set next run of task %d: %w", taskID, err)
	}
	return nil
}

func notFound(what string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %d: %w", what, id, err)
}
