// Package rowsource reads table rows and metadata for the reconcile engine.
//
// SQLSource implements Source on top of a gorm connection. Cells are
// converted into reconcile.Value using the declared column type, so MySQL
// text-protocol bytes come back as integers, floats or JSON where the
// column says so.
//
// Table metadata (columns and primary keys) is cached per source and table in
// a SchemaCache with a TTL; concurrent misses on the same table share one
// load through singleflight.
//
// Pool keeps one connection per registered data source so repeated runs
// against the same database reuse its connection pool. Sources are acquired
// and released; a connection whose config changed is closed after its last
// release.
package rowsource
