package mocks

import (
	"context"

	"table-reconciler/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// RunPersister is a testify mock of reconcile.RunPersister.
type RunPersister struct {
	mock.Mock
}

func (m *RunPersister) SaveComparison(ctx context.Context, run *reconcile.Run, diffs []reconcile.Difference) (uint, error) {
	args := m.Called(ctx, run, diffs)
	return args.Get(0).(uint), args.Error(1)
}

func (m *RunPersister) SaveConsistency(ctx context.Context, run *reconcile.Run, incs []reconcile.Inconsistency) (uint, error) {
	args := m.Called(ctx, run, incs)
	return args.Get(0).(uint), args.Error(1)
}
