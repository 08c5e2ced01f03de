package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestGetTableColumns(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()

	err := db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, Name TEXT NOT NULL, description TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(ctx, db, "test_items")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	assert.Equal(t, ColumnInfo{Name: "id", Type: "integer", PrimaryKey: true, Position: 1}, columns[0])
	assert.Equal(t, ColumnInfo{Name: "Name", Type: "text", Position: 2}, columns[1])
	assert.Equal(t, ColumnInfo{Name: "description", Type: "text", Nullable: true, Position: 3}, columns[2])

	// A missing table has no columns
	cols, err := GetTableColumns(ctx, db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetPrimaryKeys(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, db.Exec("CREATE TABLE memberships (user_id INTEGER, tenant TEXT, role TEXT, PRIMARY KEY (tenant, user_id))").Error)
	require.NoError(t, db.Exec("CREATE TABLE events (payload TEXT)").Error)

	pks, err := GetPrimaryKeys(ctx, db, "memberships")
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant", "user_id"}, pks)

	pks, err = GetPrimaryKeys(ctx, db, "events")
	require.NoError(t, err)
	assert.Empty(t, pks)
}

func TestCountRows(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, db.Exec("CREATE TABLE events (payload TEXT)").Error)
	require.NoError(t, db.Exec("INSERT INTO events (payload) VALUES ('a'), ('b')").Error)

	count, err := CountRows(ctx, db, "events")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = CountRows(ctx, db, "missing")
	assert.Error(t, err)
}
