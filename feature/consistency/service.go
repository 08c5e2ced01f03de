package consistency

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"table-reconciler/core/archive"
	"table-reconciler/core/reconcile"
	"table-reconciler/core/rowsource"
	"table-reconciler/core/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job describes one consistency check.
type Job struct {
	SourceTable string
	TargetTable string
	Config      reconcile.ConsistencyConfig
	// StrictTypes overrides the configured comparator when set.
	StrictTypes *bool
}

// Outcome is the result of a consistency check run.
type Outcome struct {
	Run             *reconcile.Run
	Inconsistencies []reconcile.Inconsistency
	Counts          map[reconcile.InconsistencyType]int
	MatchedRows     int
	ArchiveObject   string
}

// Service runs consistency checks.
type Service struct {
	store     *store.Store
	pool      *rowsource.Pool
	persister reconcile.RunPersister
	archiver  *archive.Archiver
	settings  reconcile.Settings
	logger    *zap.Logger
}

// NewService creates a consistency service. st and pool are only needed for
// stored configs; a nil persister skips persistence.
func NewService(st *store.Store, pool *rowsource.Pool, persister reconcile.RunPersister, settings reconcile.Settings, logger *zap.Logger) *Service {
	return &Service{
		store:     st,
		pool:      pool,
		persister: persister,
		settings:  settings,
		logger:    logger,
	}
}

// SetArchiver enables report export of finished runs.
func (s *Service) SetArchiver(a *archive.Archiver) {
	s.archiver = a
}

// RunConfig runs the stored consistency config id.
func (s *Service) RunConfig(ctx context.Context, id uint) (*Outcome, error) {
	if s.store == nil || s.pool == nil {
		return nil, errors.New("stored checks require a metadata store")
	}

	cfg, err := s.store.GetConsistencyConfig(ctx, id)
	if err != nil {
		return nil, err
	}

	src, releaseSource, err := s.pool.Acquire(fmt.Sprintf("connection-%d", cfg.SourceConnection.ID), cfg.SourceConnection.Config.V)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source: %w", err)
	}
	defer releaseSource()
	tgt, releaseTarget, err := s.pool.Acquire(fmt.Sprintf("connection-%d", cfg.TargetConnection.ID), cfg.TargetConnection.Config.V)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target: %w", err)
	}
	defer releaseTarget()

	return s.Check(ctx, id, src, tgt, Job{
		SourceTable: cfg.SourceTable,
		TargetTable: cfg.TargetTable,
		Config:      cfg.Reconcile(),
	})
}

// Check runs job against src and tgt. Configuration errors are returned
// before a run exists; later failures are stored as failed runs.
func (s *Service) Check(ctx context.Context, subjectID uint, src, tgt rowsource.Source, job Job) (*Outcome, error) {
	l := s.logger.With(zap.String("source_table", job.SourceTable), zap.String("target_table", job.TargetTable))

	if err := s.validate(ctx, src, tgt, job); err != nil {
		return nil, err
	}

	sourceRows, err := src.RowCount(ctx, job.SourceTable)
	if err != nil {
		return nil, err
	}
	if err := s.settings.CheckRowCount(reconcile.SideSource, sourceRows); err != nil {
		return nil, err
	}
	targetRows, err := tgt.RowCount(ctx, job.TargetTable)
	if err != nil {
		return nil, err
	}
	if err := s.settings.CheckRowCount(reconcile.SideTarget, targetRows); err != nil {
		return nil, err
	}

	settings := s.settings
	if job.StrictTypes != nil {
		settings.StrictTypes = *job.StrictTypes
	}
	cmp := settings.Comparator()

	run := reconcile.NewRun(reconcile.RunKindConsistency, subjectID)
	run.SetMeta(reconcile.MetaKeyMappings, job.Config.JoinMappings.Map())
	run.SetMeta(reconcile.MetaComparator, cmp.Name())
	run.SetMeta(reconcile.MetaSourceRows, sourceRows)
	run.SetMeta(reconcile.MetaTargetRows, targetRows)
	if err := run.Start(); err != nil {
		return nil, err
	}

	outcome := &Outcome{Run: run}
	result, runErr := s.check(ctx, src, tgt, job, cmp)
	if runErr == nil {
		outcome.Inconsistencies = result.Inconsistencies
		outcome.Counts = result.Counts
		outcome.MatchedRows = result.MatchedRows
		runErr = s.complete(ctx, run, result.Total(), outcome.Inconsistencies)
	}
	if runErr != nil {
		l.Error("Consistency check failed", zap.Error(runErr))
		_ = run.Fail(runErr)
		if err := s.persist(ctx, run, nil); err != nil {
			l.Error("Failed to persist failed consistency check", zap.Error(err))
		}
	}

	if s.archiver != nil && run.ID != 0 {
		object, err := s.archiver.Store(ctx, archive.NewConsistencyReport(run, outcome.Inconsistencies))
		if err != nil {
			l.Warn("Failed to export consistency report", zap.Error(err))
		} else {
			outcome.ArchiveObject = object
		}
	}

	if runErr != nil {
		return outcome, fmt.Errorf("consistency check of %s and %s failed: %w", job.SourceTable, job.TargetTable, runErr)
	}

	l.Info("Consistency check completed",
		zap.Uint("check_id", run.ID),
		zap.Int("inconsistencies", run.Total),
		zap.Int("matched_rows", result.MatchedRows),
		zap.Int("source_only_rows", result.SourceOnlyRows),
		zap.Int("target_only_rows", result.TargetOnlyRows))
	return outcome, nil
}

// complete persists the completed form of run and adopts it once stored. On
// error run is left running for the caller to fail.
func (s *Service) complete(ctx context.Context, run *reconcile.Run, total int, incs []reconcile.Inconsistency) error {
	final, err := run.Completed(total)
	if err != nil {
		return err
	}
	if err := s.persist(ctx, final, incs); err != nil {
		return err
	}
	*run = *final
	return nil
}

func (s *Service) persist(ctx context.Context, run *reconcile.Run, incs []reconcile.Inconsistency) error {
	if s.persister == nil {
		return nil
	}
	id, err := s.persister.SaveConsistency(ctx, run, incs)
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

// validate checks the config and that every projected column exists.
func (s *Service) validate(ctx context.Context, src, tgt rowsource.Source, job Job) error {
	if job.SourceTable == "" || job.TargetTable == "" {
		return reconcile.NewConfigurationError("table", "source and target tables are required")
	}
	if err := job.Config.Validate(); err != nil {
		return err
	}

	sourceCols, targetCols := job.Config.ProjectionColumns()
	if err := requireColumns(ctx, src, job.SourceTable, sourceCols, "source_field"); err != nil {
		return err
	}
	return requireColumns(ctx, tgt, job.TargetTable, targetCols, "target_field")
}

func requireColumns(ctx context.Context, src rowsource.Source, table string, want []string, field string) error {
	columns, err := src.FetchColumns(ctx, table)
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}

	var missing []string
	for _, col := range want {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return reconcile.NewConfigurationError(field, fmt.Sprintf("table %s has no column %s", table, strings.Join(missing, ", ")))
	}
	return nil
}

func (s *Service) check(ctx context.Context, src, tgt rowsource.Source, job Job, cmp reconcile.Comparator) (*reconcile.ConsistencyResult, error) {
	sourceCols, targetCols := job.Config.ProjectionColumns()
	var sourceRows, targetRows []reconcile.Row

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := src.FetchProjection(gctx, job.SourceTable, sourceCols)
		if err != nil {
			return fmt.Errorf("failed to fetch source rows: %w", err)
		}
		sourceRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := tgt.FetchProjection(gctx, job.TargetTable, targetCols)
		if err != nil {
			return fmt.Errorf("failed to fetch target rows: %w", err)
		}
		targetRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reconcile.CheckConsistency(sourceRows, targetRows, job.Config, cmp)
}
