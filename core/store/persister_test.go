package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"table-reconciler/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func strPtr(s string) *string { return &s }

func completedRun(t *testing.T, kind reconcile.RunKind, subject uint, total int) *reconcile.Run {
	t.Helper()
	run := reconcile.NewRun(kind, subject)
	require.NoError(t, run.Start())
	run.SetMeta(reconcile.MetaKeyStrategy, "explicit")
	require.NoError(t, run.Complete(total))
	return run
}

func sampleDiffs() []reconcile.Difference {
	return []reconcile.Difference{
		{
			RecordID:    "1",
			RecordKey:   `["1"]`,
			FieldName:   "name",
			SourceValue: strPtr("Ann"),
			TargetValue: strPtr("Anne"),
			ChangeType:  reconcile.ChangeModified,
			Enrichment:  map[string]any{"user_id": "1", "name": "Anne"},
		},
		{
			RecordID:    "2",
			RecordKey:   `["2"]`,
			FieldName:   "name",
			TargetValue: strPtr("Bob"),
			ChangeType:  reconcile.ChangeDeleted,
		},
	}
}

func TestPersister_SaveComparison(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	persister := NewPersister(s.DB())

	run := completedRun(t, reconcile.RunKindComparison, 9, 2)
	id, err := persister.SaveComparison(ctx, run, sampleDiffs())
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, run.ID)

	stored, err := s.GetComparison(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "completed", stored.Status)
	assert.Equal(t, 2, stored.TotalDifferences)
	require.NotNil(t, stored.ProjectID)
	assert.Equal(t, uint(9), *stored.ProjectID)
	assert.Equal(t, "explicit", stored.Metadata.V[reconcile.MetaKeyStrategy])
	require.NotNil(t, stored.StartedAt)
	require.NotNil(t, stored.FinishedAt)

	require.Len(t, stored.Results, 2)
	assert.Equal(t, "modified", stored.Results[0].ChangeType)
	assert.Equal(t, "Anne", *stored.Results[0].TargetValue)
	assert.Equal(t, "Anne", stored.Results[0].TargetRecord.V["name"])
	assert.Nil(t, stored.Results[1].SourceValue)
	assert.Equal(t, "Bob", *stored.Results[1].TargetValue)
	assert.Nil(t, stored.Results[1].TargetRecord.V)
}

func TestPersister_SaveComparisonBatches(t *testing.T) {
	s := setupStore(t)
	persister := NewPersister(s.DB())
	persister.batchSize = 3

	diffs := make([]reconcile.Difference, 10)
	for i := range diffs {
		diffs[i] = reconcile.Difference{RecordID: "r", RecordKey: `["r"]`, FieldName: "f", ChangeType: reconcile.ChangeAdded}
	}

	run := completedRun(t, reconcile.RunKindComparison, 0, len(diffs))
	id, err := persister.SaveComparison(context.Background(), run, diffs)
	require.NoError(t, err)

	stored, err := s.GetComparison(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, stored.Results, 10)
	assert.Nil(t, stored.ProjectID)
}

func TestPersister_FailedRunStoresNoResults(t *testing.T) {
	s := setupStore(t)
	persister := NewPersister(s.DB())

	run := reconcile.NewRun(reconcile.RunKindComparison, 1)
	require.NoError(t, run.Start())
	require.NoError(t, run.Fail(errors.New("target unreachable")))

	id, err := persister.SaveComparison(context.Background(), run, sampleDiffs())
	require.NoError(t, err)

	stored, err := s.GetComparison(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "failed", stored.Status)
	assert.Equal(t, "target unreachable", stored.Metadata.V[reconcile.MetaError])
	assert.Empty(t, stored.Results)
}

func TestPersister_RejectsActiveRun(t *testing.T) {
	s := setupStore(t)
	persister := NewPersister(s.DB())

	run := reconcile.NewRun(reconcile.RunKindComparison, 1)
	require.NoError(t, run.Start())

	_, err := persister.SaveComparison(context.Background(), run, nil)
	assert.ErrorIs(t, err, reconcile.ErrPersistence)
	_, err = persister.SaveConsistency(context.Background(), run, nil)
	assert.ErrorIs(t, err, reconcile.ErrPersistence)
}

func TestPersister_SaveConsistency(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	persister := NewPersister(s.DB())

	incs := []reconcile.Inconsistency{
		{
			JoinKeyValues:     map[string]string{"id": "1"},
			FieldName:         "email",
			SourceValue:       strPtr("a@x.com"),
			TargetValue:       strPtr("b@x.com"),
			InconsistencyType: reconcile.InconsistencyValueMismatch,
		},
		{
			JoinKeyValues:     map[string]string{"id": "3"},
			FieldName:         "email",
			TargetValue:       strPtr("c@x.com"),
			InconsistencyType: reconcile.InconsistencyMissingInSource,
		},
	}

	run := completedRun(t, reconcile.RunKindConsistency, 4, len(incs))
	id, err := persister.SaveConsistency(ctx, run, incs)
	require.NoError(t, err)

	stored, err := s.GetConsistencyCheck(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TotalInconsistencies)
	require.NotNil(t, stored.ConfigID)
	assert.Equal(t, uint(4), *stored.ConfigID)
	require.Len(t, stored.Results, 2)
	assert.Equal(t, map[string]string{"id": "1"}, stored.Results[0].JoinKeyValues.V)
	assert.Equal(t, "missing_in_source", stored.Results[1].InconsistencyType)
	assert.Nil(t, stored.Results[1].SourceValue)
}

func TestPersister_RollsBackOnInsertFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	persister := NewPersister(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `comparisons`")).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `comparison_results`")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	run := completedRun(t, reconcile.RunKindComparison, 1, 2)
	_, err := persister.SaveComparison(context.Background(), run, sampleDiffs())

	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrPersistence)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersister_RollsBackOnCountMismatch(t *testing.T) {
	db, mock := setupMockDB(t)
	persister := NewPersister(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `data_consistency_checks`")).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `data_consistency_results`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `data_consistency_results`")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	incs := []reconcile.Inconsistency{{
		JoinKeyValues:     map[string]string{"id": "1"},
		FieldName:         "email",
		InconsistencyType: reconcile.InconsistencyMissingInTarget,
	}}
	run := completedRun(t, reconcile.RunKindConsistency, 3, 1)
	_, err := persister.SaveConsistency(context.Background(), run, incs)

	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrPersistence)
	assert.ErrorIs(t, err, errCountMismatch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersister_CommitsVerifiedRun(t *testing.T) {
	db, mock := setupMockDB(t)
	persister := NewPersister(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `comparisons`")).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `comparison_results`")).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `comparison_results`")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()

	run := completedRun(t, reconcile.RunKindComparison, 1, 2)
	id, err := persister.SaveComparison(context.Background(), run, sampleDiffs())

	require.NoError(t, err)
	assert.Equal(t, uint(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
