// Package archive exports finished runs to object storage as JSON reports.
//
// Reports are written once per run, after the run and its findings were
// committed to the store, so an archived report never describes a run that
// readers of the store cannot see.
package archive
