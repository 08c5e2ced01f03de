package comparison

import (
	"context"
	"errors"
	"fmt"

	"table-reconciler/core/archive"
	"table-reconciler/core/reconcile"
	"table-reconciler/core/rowsource"
	"table-reconciler/core/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job describes one table comparison.
type Job struct {
	SourceTable    string
	TargetTable    string
	PrimaryKeys    []string
	KeyMappings    map[string]string
	IgnoredColumns []string
	// StrictTypes overrides the configured comparator when set.
	StrictTypes *bool
	// ScheduledTaskID is recorded in the run metadata when non-zero.
	ScheduledTaskID uint
}

// Overrides replace the stored project settings for a single run. Empty
// fields keep the project value.
type Overrides struct {
	SourceTable    string            `json:"source_table,omitempty"`
	TargetTable    string            `json:"target_table,omitempty"`
	PrimaryKeys    []string          `json:"primary_keys,omitempty"`
	KeyMappings    map[string]string `json:"key_mappings,omitempty"`
	IgnoredColumns []string          `json:"ignored_columns,omitempty"`
}

// JobFromProject builds the job of a project with o applied.
func JobFromProject(p *store.Project, o Overrides) Job {
	job := Job{
		SourceTable:    p.SourceTable,
		TargetTable:    p.TargetTable,
		PrimaryKeys:    p.PrimaryKeys.V,
		KeyMappings:    p.KeyMappings.V,
		IgnoredColumns: p.IgnoredColumns.V,
	}
	if o.SourceTable != "" {
		job.SourceTable = o.SourceTable
	}
	if o.TargetTable != "" {
		job.TargetTable = o.TargetTable
	}
	if len(o.PrimaryKeys) > 0 {
		job.PrimaryKeys = o.PrimaryKeys
	}
	if len(o.KeyMappings) > 0 {
		job.KeyMappings = o.KeyMappings
	}
	if len(o.IgnoredColumns) > 0 {
		job.IgnoredColumns = o.IgnoredColumns
	}
	return job
}

// Outcome is the result of a comparison run.
type Outcome struct {
	Run         *reconcile.Run
	Differences []reconcile.Difference
	Keys        reconcile.KeyResolution
	Counts      map[reconcile.ChangeType]int
	// ArchiveObject names the exported report, if one was written.
	ArchiveObject string
}

// Service runs comparisons.
type Service struct {
	store     *store.Store
	pool      *rowsource.Pool
	persister reconcile.RunPersister
	archiver  *archive.Archiver
	settings  reconcile.Settings
	logger    *zap.Logger
}

// NewService creates a comparison service. st and pool are only needed for
// project runs; a nil persister skips persistence.
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

// Store returns the metadata store of the service.
func (s *Service) Store() *store.Store {
	return s.store
}

// RunProject compares the tables of a stored project.
func (s *Service) RunProject(ctx context.Context, projectID uint, o Overrides) (*Outcome, error) {
	if s.store == nil || s.pool == nil {
		return nil, errors.New("project runs require a metadata store")
	}

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.RunProjectJob(ctx, project, JobFromProject(project, o))
}

// RunProjectJob runs job over the connections of a loaded project.
func (s *Service) RunProjectJob(ctx context.Context, project *store.Project, job Job) (*Outcome, error) {
	if s.pool == nil {
		return nil, errors.New("project runs require a connection pool")
	}
	src, tgt, release, err := s.projectSources(project)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.Compare(ctx, project.ID, src, tgt, job)
}

func (s *Service) projectSources(p *store.Project) (rowsource.Source, rowsource.Source, func(), error) {
	src, releaseSource, err := s.pool.Acquire(connectionName(p.SourceConnection), p.SourceConnection.Config.V)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to source: %w", err)
	}
	tgt, releaseTarget, err := s.pool.Acquire(connectionName(p.TargetConnection), p.TargetConnection.Config.V)
	if err != nil {
		releaseSource()
		return nil, nil, nil, fmt.Errorf("failed to connect to target: %w", err)
	}
	return src, tgt, func() {
		releaseSource()
		releaseTarget()
	}, nil
}

func connectionName(c store.Connection) string {
	return fmt.Sprintf("connection-%d", c.ID)
}

// Compare runs job against src and tgt. Configuration and key errors are
// returned before a run exists. Later failures mark the run failed, persist
// it and return the error together with the outcome.
func (s *Service) Compare(ctx context.Context, subjectID uint, src, tgt rowsource.Source, job Job) (*Outcome, error) {
	l := s.logger.With(zap.String("source_table", job.SourceTable), zap.String("target_table", job.TargetTable))

	keys, err := s.resolveKeys(ctx, src, tgt, job)
	if err != nil {
		return nil, err
	}
	if keys.Degraded() {
		l.Warn("Key columns were guessed", zap.String("strategy", string(keys.Strategy)), zap.Strings("columns", keys.Columns))
	}

	sourceRows, targetRows, err := s.countRows(ctx, src, tgt, job)
	if err != nil {
		return nil, err
	}

	settings := s.settings
	if job.StrictTypes != nil {
		settings.StrictTypes = *job.StrictTypes
	}
	cmp := settings.Comparator()

	run := reconcile.NewRun(reconcile.RunKindComparison, subjectID)
	run.SetMeta(reconcile.MetaPrimaryKeys, keys.Columns)
	run.SetMeta(reconcile.MetaKeyMappings, job.KeyMappings)
	run.SetMeta(reconcile.MetaKeyStrategy, string(keys.Strategy))
	if keys.Warning != nil {
		run.SetMeta(reconcile.MetaKeyWarning, keys.Warning.Error())
	}
	run.SetMeta(reconcile.MetaComparator, cmp.Name())
	run.SetMeta(reconcile.MetaSourceRows, sourceRows)
	run.SetMeta(reconcile.MetaTargetRows, targetRows)
	if job.ScheduledTaskID != 0 {
		run.SetMeta(reconcile.MetaScheduledTaskID, job.ScheduledTaskID)
	}
	if err := run.Start(); err != nil {
		return nil, err
	}

	outcome := &Outcome{Run: run, Keys: keys}
	result, runErr := s.diff(ctx, src, tgt, job, keys, cmp, settings.MaxRows)
	if runErr == nil {
		if settings.Enrich {
			enriched := reconcile.Enrich(result.Differences, result.TargetIndex)
			l.Debug("Enriched differences", zap.Int("enriched", enriched))
		}
		outcome.Differences = result.Differences
		outcome.Counts = result.Counts
		runErr = s.complete(ctx, run, result.Total(), outcome.Differences)
	}
	if runErr != nil {
		l.Error("Comparison failed", zap.Error(runErr))
		_ = run.Fail(runErr)
		if err := s.persist(ctx, run, nil); err != nil {
			l.Error("Failed to persist failed comparison", zap.Error(err))
		}
	}
	s.export(ctx, l, outcome)

	if runErr != nil {
		return outcome, fmt.Errorf("comparison of %s and %s failed: %w", job.SourceTable, job.TargetTable, runErr)
	}

	l.Info("Comparison completed",
		zap.Uint("comparison_id", run.ID),
		zap.Int("differences", run.Total),
		zap.Int("added", outcome.Counts[reconcile.ChangeAdded]),
		zap.Int("deleted", outcome.Counts[reconcile.ChangeDeleted]),
		zap.Int("modified", outcome.Counts[reconcile.ChangeModified]))
	return outcome, nil
}

func (s *Service) resolveKeys(ctx context.Context, src, tgt rowsource.Source, job Job) (reconcile.KeyResolution, error) {
	if job.SourceTable == "" || job.TargetTable == "" {
		return reconcile.KeyResolution{}, reconcile.NewConfigurationError("table", "source and target tables are required")
	}

	sourceColumns, err := src.FetchColumns(ctx, job.SourceTable)
	if err != nil {
		return reconcile.KeyResolution{}, err
	}

	var primaryKeys []string
	if len(job.PrimaryKeys) == 0 {
		if primaryKeys, err = src.FetchPrimaryKeys(ctx, job.SourceTable); err != nil {
			return reconcile.KeyResolution{}, err
		}
	}

	keys, err := reconcile.ResolveKeys(job.PrimaryKeys, primaryKeys, sourceColumns)
	if err != nil {
		return reconcile.KeyResolution{}, err
	}
	if err := reconcile.CheckSourceKeys(keys.Columns, sourceColumns); err != nil {
		return reconcile.KeyResolution{}, err
	}

	targetColumns, err := tgt.FetchColumns(ctx, job.TargetTable)
	if err != nil {
		return reconcile.KeyResolution{}, err
	}
	if _, err := reconcile.CheckTargetKeys(keys.Columns, job.KeyMappings, targetColumns); err != nil {
		return reconcile.KeyResolution{}, err
	}
	return keys, nil
}

func (s *Service) countRows(ctx context.Context, src, tgt rowsource.Source, job Job) (int64, int64, error) {
	sourceRows, err := src.RowCount(ctx, job.SourceTable)
	if err != nil {
		return 0, 0, err
	}
	if err := s.settings.CheckRowCount(reconcile.SideSource, sourceRows); err != nil {
		return 0, 0, err
	}
	targetRows, err := tgt.RowCount(ctx, job.TargetTable)
	if err != nil {
		return 0, 0, err
	}
	if err := s.settings.CheckRowCount(reconcile.SideTarget, targetRows); err != nil {
		return 0, 0, err
	}
	return sourceRows, targetRows, nil
}

func (s *Service) diff(ctx context.Context, src, tgt rowsource.Source, job Job, keys reconcile.KeyResolution, cmp reconcile.Comparator, maxRows int) (*reconcile.DiffResult, error) {
	var sourceRows, targetRows []reconcile.Row

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := src.FetchRows(gctx, job.SourceTable)
		if err != nil {
			return fmt.Errorf("failed to fetch source rows: %w", err)
		}
		sourceRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := tgt.FetchRows(gctx, job.TargetTable)
		if err != nil {
			return fmt.Errorf("failed to fetch target rows: %w", err)
		}
		targetRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reconcile.Diff(sourceRows, targetRows, reconcile.DiffOptions{
		KeyColumns:     keys.Columns,
		KeyMappings:    job.KeyMappings,
		IgnoredColumns: job.IgnoredColumns,
		Comparator:     cmp,
		MaxRows:        maxRows,
	})
}

// complete persists the completed form of run and adopts it once stored. On
// error run is left running for the caller to fail.
func (s *Service) complete(ctx context.Context, run *reconcile.Run, total int, diffs []reconcile.Difference) error {
	final, err := run.Completed(total)
	if err != nil {
		return err
	}
	if err := s.persist(ctx, final, diffs); err != nil {
		return err
	}
	*run = *final
	return nil
}

func (s *Service) persist(ctx context.Context, run *reconcile.Run, diffs []reconcile.Difference) error {
	if s.persister == nil {
		return nil
	}
	id, err := s.persister.SaveComparison(ctx, run, diffs)
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

func (s *Service) export(ctx context.Context, l *zap.Logger, outcome *Outcome) {
	if s.archiver == nil || outcome.Run.ID == 0 {
		return
	}
	object, err := s.archiver.Store(ctx, archive.NewComparisonReport(outcome.Run, outcome.Differences))
	if err != nil {
		l.Warn("Failed to export comparison report", zap.Error(err))
		return
	}
	outcome.ArchiveObject = object
}
