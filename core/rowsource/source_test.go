package rowsource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"table-reconciler/core/database"
	"table-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, score REAL, active INTEGER)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO users (id, name, score, active) VALUES (1, 'Ann', 9.5, 1), (2, 'Bob', NULL, 0)`).Error)
	return db
}

func TestSQLSource_FetchRows(t *testing.T) {
	src := NewSQLSource("crm", setupDB(t), nil)

	rows, err := src.FetchRows(context.Background(), "users")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"id", "name", "score", "active"}, rows[0].Columns())
	assert.Equal(t, reconcile.IntValue(1), rows[0].Value("id"))
	assert.Equal(t, reconcile.StringValue("Ann"), rows[0].Value("name"))
	assert.Equal(t, reconcile.FloatValue(9.5), rows[0].Value("score"))
	assert.True(t, rows[1].Value("score").IsNull())
}

func TestSQLSource_FetchProjection(t *testing.T) {
	src := NewSQLSource("crm", setupDB(t), nil)
	ctx := context.Background()

	rows, err := src.FetchProjection(ctx, "users", []string{"name", "id"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"name", "id"}, rows[0].Columns())

	_, err = src.FetchProjection(ctx, "users", []string{"email"})
	assert.Error(t, err)

	_, err = src.FetchProjection(ctx, "users", nil)
	assert.ErrorIs(t, err, reconcile.ErrConfiguration)
}

func TestSQLSource_Metadata(t *testing.T) {
	src := NewSQLSource("crm", setupDB(t), NewSchemaCache(time.Minute))
	ctx := context.Background()

	cols, err := src.FetchColumns(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "score", "active"}, cols)

	pks, err := src.FetchPrimaryKeys(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, pks)

	count, err := src.RowCount(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = src.FetchColumns(ctx, "missing")
	assert.ErrorIs(t, err, reconcile.ErrConfiguration)
}

func TestConvertCell(t *testing.T) {
	tests := []struct {
		name   string
		cell   any
		dbType string
		want   reconcile.Value
	}{
		{"MySQL int bytes", []byte("42"), "BIGINT", reconcile.IntValue(42)},
		{"MySQL unsigned overflow", []byte("18446744073709551615"), "UNSIGNED BIGINT", reconcile.StringValue("18446744073709551615")},
		{"MySQL decimal bytes", []byte("1.50"), "DECIMAL", reconcile.StringValue("1.50")},
		{"MySQL double bytes", []byte("1.50"), "DOUBLE", reconcile.FloatValue(1.5)},
		{"MySQL json bytes", []byte(`{"a":1}`), "JSON", reconcile.JSONValue(`{"a":1}`)},
		{"MySQL bit", []byte{1}, "BIT", reconcile.BoolValue(true)},
		{"Text bytes", []byte("hello"), "VARCHAR", reconcile.StringValue("hello")},
		{"Native int", int64(7), "INTEGER", reconcile.IntValue(7)},
		{"Null", nil, "TEXT", reconcile.NullValue()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertCell(tt.cell, tt.dbType))
		})
	}
}

func TestConvertCell_WideDecimals(t *testing.T) {
	a := convertCell([]byte("12345678901234567890.12"), "DECIMAL")
	b := convertCell([]byte("12345678901234567890.13"), "NUMERIC")

	assert.Equal(t, "12345678901234567890.12", a.String())
	assert.False(t, reconcile.LooseComparator{}.Equal(a, b))
	assert.False(t, reconcile.StrictComparator{}.Equal(a, b))
}

func TestSchemaCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Caches within TTL", func(t *testing.T) {
		cache := NewSchemaCache(time.Minute)
		var loads int32
		load := func(context.Context) (*TableSchema, error) {
			atomic.AddInt32(&loads, 1)
			return &TableSchema{PrimaryKeys: []string{"id"}}, nil
		}

		for i := 0; i < 3; i++ {
			s, err := cache.Get(ctx, "crm|users", load)
			require.NoError(t, err)
			assert.Equal(t, []string{"id"}, s.PrimaryKeys)
		}
		assert.Equal(t, int32(1), atomic.LoadInt32(&loads))

		cache.Invalidate("crm|users")
		_, err := cache.Get(ctx, "crm|users", load)
		require.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
	})

	t.Run("Reloads after expiry", func(t *testing.T) {
		cache := NewSchemaCache(time.Minute)
		now := time.Now()
		cache.now = func() time.Time { return now }

		var loads int32
		load := func(context.Context) (*TableSchema, error) {
			atomic.AddInt32(&loads, 1)
			return &TableSchema{}, nil
		}

		_, _ = cache.Get(ctx, "k", load)
		now = now.Add(2 * time.Minute)
		_, _ = cache.Get(ctx, "k", load)
		assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
	})

	t.Run("Collapses concurrent loads", func(t *testing.T) {
		cache := NewSchemaCache(time.Minute)
		var loads int32
		release := make(chan struct{})
		load := func(context.Context) (*TableSchema, error) {
			atomic.AddInt32(&loads, 1)
			<-release
			return &TableSchema{}, nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = cache.Get(ctx, "k", load)
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()
		assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	})

	t.Run("Does not cache errors", func(t *testing.T) {
		cache := NewSchemaCache(time.Minute)
		_, err := cache.Get(ctx, "k", func(context.Context) (*TableSchema, error) {
			return nil, errors.New("unreachable")
		})
		assert.Error(t, err)

		s, err := cache.Get(ctx, "k", func(context.Context) (*TableSchema, error) {
			return &TableSchema{PrimaryKeys: []string{"id"}}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"id"}, s.PrimaryKeys)
	})
}

func TestPool(t *testing.T) {
	var opened int
	pool := NewPool(NewSchemaCache(time.Minute))
	pool.connect = func(cfg database.Config) (*gorm.DB, error) {
		opened++
		return database.Connect(cfg)
	}
	t.Cleanup(func() { _ = pool.Close() })

	cfg := database.Config{Driver: database.DriverSQLite, Name: ":memory:"}
	a, releaseA, err := pool.Acquire("1", cfg)
	require.NoError(t, err)
	b, releaseB, err := pool.Acquire("1", cfg)
	require.NoError(t, err)
	assert.Same(t, a.db, b.db)
	assert.Equal(t, 1, opened)
	releaseB()
	releaseB()

	t.Run("Replaced connection stays open while in use", func(t *testing.T) {
		changed := cfg
		changed.TimeoutSeconds = 5
		c, releaseC, err := pool.Acquire("1", changed)
		require.NoError(t, err)
		defer releaseC()
		assert.Equal(t, 2, opened)
		assert.Equal(t, 1, pool.Len())
		assert.NotSame(t, a.db, c.db)

		sqlDB, err := a.db.DB()
		require.NoError(t, err)
		assert.NoError(t, sqlDB.Ping())

		releaseA()
		assert.Error(t, sqlDB.Ping())
		assert.Empty(t, pool.retired)
	})

	t.Run("Unused connection is closed when replaced", func(t *testing.T) {
		d, releaseD, err := pool.Acquire("2", cfg)
		require.NoError(t, err)
		releaseD()

		changed := cfg
		changed.TimeoutSeconds = 9
		_, releaseE, err := pool.Acquire("2", changed)
		require.NoError(t, err)
		defer releaseE()

		sqlDB, err := d.db.DB()
		require.NoError(t, err)
		assert.Error(t, sqlDB.Ping())
	})

	_, _, err = pool.Acquire("3", database.Config{Driver: "oracle"})
	assert.Error(t, err)

	assert.NoError(t, pool.Close())
	assert.Equal(t, 0, pool.Len())
}
