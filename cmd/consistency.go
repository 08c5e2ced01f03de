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
	"table-reconciler/feature/consistency"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	consistencyConfig  uint
	consistencyFile    string
	consistencyPersist bool
	consistencyJSON    bool
)

// consistencyCmd runs a consistency check from the command line.
var consistencyCmd = &cobra.Command{
	Use:   "consistency",
	Short: "Check that mapped fields agree across two tables",
	Long: `Joins a source and a target table on the join mappings and compares the
configured field pairs, for a stored consistency config or a YAML job file.

Examples:
  consistency --config 2
  consistency --file jobs/emails.yaml --json`,
	RunE: runConsistency,
}

func init() {
	consistencyCmd.Flags().UintVar(&consistencyConfig, "config", 0, "ID of the stored consistency config")
	consistencyCmd.Flags().StringVar(&consistencyFile, "file", "", "Path of a YAML job file")
	consistencyCmd.Flags().BoolVar(&consistencyPersist, "persist", false, "Store job file runs in the metadata database")
	consistencyCmd.Flags().BoolVar(&consistencyJSON, "json", false, "Print the report as JSON to stdout")
	consistencyCmd.MarkFlagsMutuallyExclusive("config", "file")

	RootCmd.AddCommand(consistencyCmd)
}

func runConsistency(cmd *cobra.Command, args []string) error {
	if consistencyConfig == 0 && consistencyFile == "" {
		return errors.New("either --config or --file is required")
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
	if consistencyConfig != 0 || consistencyPersist {
		db, s, err := openStore(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close(db)
		st = s
		persister = store.NewPersister(db)
	}

	svc := consistency.NewService(st, pool, persister, cfg.Reconcile, l)
	archiver, err := newArchiver(ctx, cfg.Storage, l)
	if err != nil {
		return err
	}
	if archiver != nil {
		svc.SetArchiver(archiver)
	}

	var outcome *consistency.Outcome
	if consistencyConfig != 0 {
		outcome, err = svc.RunConfig(ctx, consistencyConfig)
	} else {
		outcome, err = checkJobFile(cmd, svc, pool)
	}
	if err != nil {
		return err
	}

	l.Info("Consistency report",
		zap.Uint("check_id", outcome.Run.ID),
		zap.Int("inconsistencies", outcome.Run.Total),
		zap.Int("matched_rows", outcome.MatchedRows),
		zap.Int("value_mismatch", outcome.Counts[reconcile.InconsistencyValueMismatch]),
		zap.Int("missing_in_target", outcome.Counts[reconcile.InconsistencyMissingInTarget]),
		zap.Int("missing_in_source", outcome.Counts[reconcile.InconsistencyMissingInSource]))

	if consistencyJSON {
		return printJSON(archive.NewConsistencyReport(outcome.Run, outcome.Inconsistencies))
	}
	return nil
}

func checkJobFile(cmd *cobra.Command, svc *consistency.Service, pool *rowsource.Pool) (*consistency.Outcome, error) {
	f, err := jobfile.Load(consistencyFile)
	if err != nil {
		return nil, err
	}
	if f.Consistency == nil {
		return nil, fmt.Errorf("job file %s has no consistency section", consistencyFile)
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

	return svc.Check(cmd.Context(), 0, src, tgt, consistency.Job{
		SourceTable: f.Source.Table,
		TargetTable: f.Target.Table,
		Config:      f.Consistency.Config(),
		StrictTypes: f.StrictTypes,
	})
}
