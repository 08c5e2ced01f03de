package rowsource

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"table-reconciler/core/database"
	"table-reconciler/core/reconcile"

	"gorm.io/gorm"
)

// Source reads rows and table metadata from one database.
type Source interface {
	// FetchRows returns every row of table.
	FetchRows(ctx context.Context, table string) ([]reconcile.Row, error)
	// FetchProjection returns every row of table restricted to columns.
	FetchProjection(ctx context.Context, table string, columns []string) ([]reconcile.Row, error)
	// FetchColumns returns the column names of table in ordinal order.
	FetchColumns(ctx context.Context, table string) ([]string, error)
	// FetchPrimaryKeys returns the declared primary key columns of table.
	FetchPrimaryKeys(ctx context.Context, table string) ([]string, error)
	// RowCount returns the number of rows in table.
	RowCount(ctx context.Context, table string) (int64, error)
}

// SQLSource is a Source backed by a gorm connection.
type SQLSource struct {
	name  string
	db    *gorm.DB
	cache *SchemaCache
}

// NewSQLSource creates a Source named name. Table metadata is cached in cache
// when it is non-nil.
func NewSQLSource(name string, db *gorm.DB, cache *SchemaCache) *SQLSource {
	return &SQLSource{name: name, db: db, cache: cache}
}

// Name returns the source name used in cache keys and logs.
func (s *SQLSource) Name() string { return s.name }

// FetchRows implements Source.
func (s *SQLSource) FetchRows(ctx context.Context, table string) ([]reconcile.Row, error) {
	return s.query(ctx, table, s.db.WithContext(ctx).Table(table))
}

// FetchProjection implements Source.
func (s *SQLSource) FetchProjection(ctx context.Context, table string, columns []string) ([]reconcile.Row, error) {
	if len(columns) == 0 {
		return nil, reconcile.NewConfigurationError("columns", "projection needs at least one column")
	}
	return s.query(ctx, table, s.db.WithContext(ctx).Table(table).Select(columns))
}

// FetchColumns implements Source. A table without columns is reported as a
// configuration error since it does not exist for practical purposes.
func (s *SQLSource) FetchColumns(ctx context.Context, table string) ([]string, error) {
	schema, err := s.schema(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(schema.Columns) == 0 {
		return nil, reconcile.NewConfigurationError("table", fmt.Sprintf("table %s not found in %s", table, s.name))
	}
	return schema.ColumnNames(), nil
}

// FetchPrimaryKeys implements Source.
func (s *SQLSource) FetchPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	schema, err := s.schema(ctx, table)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), schema.PrimaryKeys...), nil
}

// RowCount implements Source.
func (s *SQLSource) RowCount(ctx context.Context, table string) (int64, error) {
	return database.CountRows(ctx, s.db, table)
}

func (s *SQLSource) schema(ctx context.Context, table string) (*TableSchema, error) {
	load := func(ctx context.Context) (*TableSchema, error) {
		return LoadSchema(ctx, s.db, table)
	}
	if s.cache == nil {
		return load(ctx)
	}
	return s.cache.Get(ctx, s.name+"|"+table, load)
}

func (s *SQLSource) query(ctx context.Context, table string, tx *gorm.DB) ([]reconcile.Row, error) {
	rows, err := tx.Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s.%s: %w", s.name, table, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s.%s: %w", s.name, table, err)
	}
	return result, nil
}

func scanRows(rows *sql.Rows) ([]reconcile.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	dbTypes := make([]string, len(types))
	for i, ct := range types {
		dbTypes[i] = strings.ToUpper(ct.DatabaseTypeName())
	}

	var result []reconcile.Row
	raw := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		values := make([]reconcile.Value, len(columns))
		for i, cell := range raw {
			values[i] = convertCell(cell, dbTypes[i])
		}
		result = append(result, reconcile.NewRow(columns, values))
	}
	return result, rows.Err()
}

// convertCell turns a scanned cell into a Value. MySQL's text protocol
// returns every non-null cell as []byte, so the declared column type decides
// how bytes are read.
func convertCell(cell any, dbType string) reconcile.Value {
	b, ok := cell.([]byte)
	if !ok {
		return reconcile.FromAny(cell)
	}
	text := string(b)

	switch {
	case strings.Contains(dbType, "INT"):
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return reconcile.IntValue(i)
		}
		if u, err := strconv.ParseUint(text, 10, 64); err == nil {
			return reconcile.FromAny(u)
		}
	case dbType == "DECIMAL" || dbType == "NUMERIC":
		// Kept as text, float64 would merge distinct wide decimals
		return reconcile.StringValue(text)
	case dbType == "FLOAT" || dbType == "DOUBLE" || dbType == "REAL":
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return reconcile.FloatValue(f)
		}
	case dbType == "JSON":
		return reconcile.JSONValue(text)
	case dbType == "BIT" && len(b) == 1:
		return reconcile.BoolValue(b[0] != 0)
	}
	return reconcile.StringValue(text)
}
