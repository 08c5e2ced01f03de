// Package store persists connections, projects, consistency configs,
// scheduled tasks and the runs produced from them using GORM.
//
// Persister implements reconcile.RunPersister: a run and all of its result
// rows are written in a single transaction that also verifies the number of
// stored rows before committing.
//
// JSON columns use the generic JSON type, stored as JSON on MySQL and TEXT on
// SQLite.
package store
