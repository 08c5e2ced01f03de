package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	// Position is the 1-based ordinal position in the table.
	Position int
}

// GetTableColumns retrieves the columns of table in ordinal order. A table
// that does not exist yields no columns and no error.
func GetTableColumns(ctx context.Context, db *gorm.DB, table string) ([]ColumnInfo, error) {
	if db.Dialector.Name() == "sqlite" {
		cols, _, err := sqliteTableInfo(ctx, db, table)
		return cols, err
	}

	type mysqlColumn struct {
		ColumnName string `gorm:"column:COLUMN_NAME"`
		DataType   string `gorm:"column:DATA_TYPE"`
		IsNullable string `gorm:"column:IS_NULLABLE"`
		ColumnKey  string `gorm:"column:COLUMN_KEY"`
		Position   int    `gorm:"column:ORDINAL_POSITION"`
	}
	var rows []mysqlColumn
	err := db.WithContext(ctx).Raw(`
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_KEY, ORDINAL_POSITION
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`, table).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}

	columns := make([]ColumnInfo, 0, len(rows))
	for _, r := range rows {
		columns = append(columns, ColumnInfo{
			Name:       r.ColumnName,
			Type:       strings.ToLower(r.DataType),
			Nullable:   r.IsNullable == "YES",
			PrimaryKey: r.ColumnKey == "PRI",
			Position:   r.Position,
		})
	}
	return columns, nil
}

// GetPrimaryKeys returns the declared primary key columns of table in key
// order. Tables without a primary key yield an empty slice.
func GetPrimaryKeys(ctx context.Context, db *gorm.DB, table string) ([]string, error) {
	if db.Dialector.Name() == "sqlite" {
		_, pks, err := sqliteTableInfo(ctx, db, table)
		return pks, err
	}

	var keys []string
	err := db.WithContext(ctx).Raw(`
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION
	`, table).Scan(&keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get primary keys for table %s: %w", table, err)
	}
	return keys, nil
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, db *gorm.DB, table string) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count rows of table %s: %w", table, err)
	}
	return count, nil
}

func sqliteTableInfo(ctx context.Context, db *gorm.DB, table string) ([]ColumnInfo, []string, error) {
	type sqliteColumn struct {
		Cid     int
		Name    string
		Type    string
		Notnull int
		Pk      int
	}
	var rows []sqliteColumn
	err := db.WithContext(ctx).
		Raw(`SELECT cid, name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`, table).
		Scan(&rows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get columns for table %s: %w", table, err)
	}

	columns := make([]ColumnInfo, 0, len(rows))
	var pkCols []sqliteColumn
	for _, r := range rows {
		columns = append(columns, ColumnInfo{
			Name:       r.Name,
			Type:       strings.ToLower(r.Type),
			Nullable:   r.Notnull == 0 && r.Pk == 0,
			PrimaryKey: r.Pk > 0,
			Position:   r.Cid + 1,
		})
		if r.Pk > 0 {
			pkCols = append(pkCols, r)
		}
	}

	// pk holds the 1-based position within the primary key
	sort.Slice(pkCols, func(i, j int) bool { return pkCols[i].Pk < pkCols[j].Pk })
	pks := make([]string, 0, len(pkCols))
	for _, c := range pkCols {
		pks = append(pks, c.Name)
	}
	return columns, pks, nil
}
