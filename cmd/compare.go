package cmd

import (
	"errors"
	"fmt"

	"table-reconciler/core/archive"
	"table-reconciler/core/database"
	"table-reconciler/core/jobfile"
	"table-reconciler/core/reconcile"
	"table-reconciler/core/rowsource"
	"table-reconciler/core/store"
	"table-reconciler/feature/comparison"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	compareProject uint
	compareFile    string
	comparePersist bool
	compareJSON    bool
	compareKeys    []string
	compareIgnore  []string
)

// compareCmd runs a table comparison from the command line.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a source table against a target table",
	Long: `Runs a table comparison either for a stored project or for a YAML job file.

Examples:
  # Compare a stored project and store the run
  compare --project 3

  # Override the key columns for this run
  compare --project 3 --keys tenant_id,id

  # Run a job file without a metadata database and print the report
  compare --file jobs/users.yaml --json

  # Run a job file and store the run in the metadata database
  compare --file jobs/users.yaml --persist`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().UintVar(&compareProject, "project", 0, "ID of the stored project to compare")
	compareCmd.Flags().StringVar(&compareFile, "file", "", "Path of a YAML job file")
	compareCmd.Flags().BoolVar(&comparePersist, "persist", false, "Store job file runs in the metadata database")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Print the report as JSON to stdout")
	compareCmd.Flags().StringSliceVar(&compareKeys, "keys", nil, "Key columns overriding the configured ones")
	compareCmd.Flags().StringSliceVar(&compareIgnore, "ignore", nil, "Columns excluded from comparison")
	compareCmd.MarkFlagsMutuallyExclusive("project", "file")

	RootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	if compareProject == 0 && compareFile == "" {
		return errors.New("either --project or --file is required")
	}
	ctx := cmd.Context()

	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	pool := rowsource.NewPool(rowsource.NewSchemaCache(cfg.Reconcile.SchemaCacheTTL()))
	defer pool.Close()

	var st *store.Store
	var persister reconcile.RunPersister
	if compareProject != 0 || comparePersist {
		db, s, err := openStore(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close(db)
		st = s
		persister = store.NewPersister(db)
	}

	svc := comparison.NewService(st, pool, persister, cfg.Reconcile, l)
	archiver, err := newArchiver(ctx, cfg.Storage, l)
	if err != nil {
		return err
	}
	if archiver != nil {
		svc.SetArchiver(archiver)
	}

	var outcome *comparison.Outcome
	if compareProject != 0 {
		outcome, err = svc.RunProject(ctx, compareProject, comparison.Overrides{
			PrimaryKeys:    compareKeys,
			IgnoredColumns: compareIgnore,
		})
	} else {
		outcome, err = compareJobFile(cmd, svc, pool)
	}
	if err != nil {
		return err
	}

	l.Info("Comparison report",
		zap.Uint("comparison_id", outcome.Run.ID),
		zap.String("key_strategy", string(outcome.Keys.Strategy)),
		zap.Strings("key_columns", outcome.Keys.Columns),
		zap.Int("differences", outcome.Run.Total),
		zap.Int("added", outcome.Counts[reconcile.ChangeAdded]),
		zap.Int("deleted", outcome.Counts[reconcile.ChangeDeleted]),
		zap.Int("modified", outcome.Counts[reconcile.ChangeModified]))

	if compareJSON {
		return printJSON(archive.NewComparisonReport(outcome.Run, outcome.Differences))
	}
	return nil
}

func compareJobFile(cmd *cobra.Command, svc *comparison.Service, pool *rowsource.Pool) (*comparison.Outcome, error) {
	f, err := jobfile.Load(compareFile)
	if err != nil {
		return nil, err
	}
	if f.Comparison == nil {
		return nil, fmt.Errorf("job file %s has no comparison section", compareFile)
	}

	src, releaseSource, err := pool.Acquire("source", f.Source.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source: %w", err)
	}
	defer releaseSource()
	tgt, releaseTarget, err := pool.Acquire("target", f.Target.Connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target: %w", err)
	}
	defer releaseTarget()

	job := comparison.Job{
		SourceTable:    f.Source.Table,
		TargetTable:    f.Target.Table,
		PrimaryKeys:    f.Comparison.PrimaryKeys,
		KeyMappings:    f.Comparison.KeyMappings,
		IgnoredColumns: f.Comparison.IgnoredColumns,
		StrictTypes:    f.StrictTypes,
	}
	if len(compareKeys) > 0 {
		job.PrimaryKeys = compareKeys
	}
	if len(compareIgnore) > 0 {
		job.IgnoredColumns = compareIgnore
	}
	return svc.Compare(cmd.Context(), 0, src, tgt, job)
}
