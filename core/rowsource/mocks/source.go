package mocks

import (
	"context"

	"table-reconciler/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// Source is a testify mock of rowsource.Source.
type Source struct {
	mock.Mock
}

func (m *Source) FetchRows(ctx context.Context, table string) ([]reconcile.Row, error) {
	args := m.Called(ctx, table)
	rows, _ := args.Get(0).([]reconcile.Row)
	return rows, args.Error(1)
}

func (m *Source) FetchProjection(ctx context.Context, table string, columns []string) ([]reconcile.Row, error) {
	args := m.Called(ctx, table, columns)
	rows, _ := args.Get(0).([]reconcile.Row)
	return rows, args.Error(1)
}

func (m *Source) FetchColumns(ctx context.Context, table string) ([]string, error) {
	args := m.Called(ctx, table)
	cols, _ := args.Get(0).([]string)
	return cols, args.Error(1)
}

func (m *Source) FetchPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	args := m.Called(ctx, table)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

func (m *Source) RowCount(ctx context.Context, table string) (int64, error) {
	args := m.Called(ctx, table)
	return args.Get(0).(int64), args.Error(1)
}
