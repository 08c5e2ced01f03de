// Package comparison compares a source table against a target table and
// records the differences.
//
// A comparison resolves the key columns, checks them against the target,
// bounds both row counts, fetches both tables concurrently, diffs them,
// optionally enriches the differences with the target rows, then persists
// and optionally exports the run. Failures after the run started are stored
// as failed runs.
//
// # HTTP Endpoints
//
//   - POST /projects/:id/comparisons : Runs a comparison of a project.
//   - GET /projects/:id/comparisons : Lists the latest runs of a project.
//   - GET /comparisons/:id : Returns a run with its differences.
package comparison
