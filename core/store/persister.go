package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"table-reconciler/core/reconcile"

	"gorm.io/gorm"
)

const defaultBatchSize = 500

// Persister implements reconcile.RunPersister. Each save runs in one
// transaction covering the run row, every child row and a count check, so
// readers never observe a run with a partial result set.
type Persister struct {
	db        *gorm.DB
	batchSize int
}

var _ reconcile.RunPersister = (*Persister)(nil)

// NewPersister creates a Persister over db.
func NewPersister(db *gorm.DB) *Persister {
	return &Persister{db: db, batchSize: defaultBatchSize}
}

// SaveComparison stores a terminal comparison run. Results are only stored
// for completed runs.
func (p *Persister) SaveComparison(ctx context.Context, run *reconcile.Run, diffs []reconcile.Difference) (uint, error) {
	if !run.IsTerminal() {
		return 0, reconcile.NewPersistenceError("comparison", fmt.Errorf("run is %s", run.Status))
	}
	if run.Status != reconcile.RunCompleted {
		diffs = nil
	}

	record := ComparisonRun{
		ProjectID:        optionalID(run.SubjectID),
		Status:           string(run.Status),
		TotalDifferences: run.Total,
		Metadata:         NewJSON(run.Metadata),
		StartedAt:        optionalTime(run.StartedAt),
		FinishedAt:       optionalTime(run.FinishedAt),
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if len(diffs) == 0 {
			return nil
		}

		rows := make([]ComparisonResult, len(diffs))
		for i, d := range diffs {
			rows[i] = ComparisonResult{
				ComparisonID: record.ID,
				RecordID:     d.RecordID,
				RecordKey:    d.RecordKey,
				FieldName:    d.FieldName,
				SourceValue:  d.SourceValue,
				TargetValue:  d.TargetValue,
				ChangeType:   string(d.ChangeType),
				TargetRecord: NewJSON(d.Enrichment),
			}
		}
		if err := tx.CreateInBatches(rows, p.batchSize).Error; err != nil {
			return err
		}
		return verifyCount(tx, &ComparisonResult{}, "comparison_id", record.ID, len(rows))
	})
	if err != nil {
		return 0, reconcile.NewPersistenceError("comparison", err)
	}

	run.ID = record.ID
	return record.ID, nil
}

// SaveConsistency stores a terminal consistency check run. Results are only
// stored for completed runs.
func (p *Persister) SaveConsistency(ctx context.Context, run *reconcile.Run, incs []reconcile.Inconsistency) (uint, error) {
	if !run.IsTerminal() {
		return 0, reconcile.NewPersistenceError("consistency check", fmt.Errorf("run is %s", run.Status))
	}
	if run.Status != reconcile.RunCompleted {
		incs = nil
	}

	record := ConsistencyCheck{
		ConfigID:             optionalID(run.SubjectID),
		Status:               string(run.Status),
		TotalInconsistencies: run.Total,
		Metadata:             NewJSON(run.Metadata),
		StartedAt:            optionalTime(run.StartedAt),
		FinishedAt:           optionalTime(run.FinishedAt),
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if len(incs) == 0 {
			return nil
		}

		rows := make([]ConsistencyResult, len(incs))
		for i, inc := range incs {
			rows[i] = ConsistencyResult{
				CheckID:           record.ID,
				JoinKeyValues:     NewJSON(inc.JoinKeyValues),
				FieldName:         inc.FieldName,
				SourceValue:       inc.SourceValue,
				TargetValue:       inc.TargetValue,
				InconsistencyType: string(inc.InconsistencyType),
			}
		}
		if err := tx.CreateInBatches(rows, p.batchSize).Error; err != nil {
			return err
		}
		return verifyCount(tx, &ConsistencyResult{}, "check_id", record.ID, len(rows))
	})
	if err != nil {
		return 0, reconcile.NewPersistenceError("consistency check", err)
	}

	run.ID = record.ID
	return record.ID, nil
}

// errCountMismatch marks a failed in-transaction verification.
var errCountMismatch = errors.New("stored result count does not match")

func verifyCount(tx *gorm.DB, model any, column string, parentID uint, want int) error {
	var got int64
	if err := tx.Model(model).Where(column+" = ?", parentID).Count(&got).Error; err != nil {
		return err
	}
	if got != int64(want) {
		return fmt.Errorf("%w: stored %d, expected %d", errCountMismatch, got, want)
	}
	return nil
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
