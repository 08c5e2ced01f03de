// Package database handles database connections and schema inspection.
//
// Connect opens a GORM connection for MySQL, MariaDB or SQLite. SQLite uses
// the cgo-free modernc driver so in-memory databases work in tests without a
// C toolchain.
//
// # Schema Inspection
//
// GetTableColumns, GetPrimaryKeys and CountRows read table metadata from
// INFORMATION_SCHEMA on MySQL and from pragma_table_info on SQLite. Column
// names keep their original case since they are matched against row data.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	pks, err := database.GetPrimaryKeys(ctx, db, "users")
package database
