// Package consistency checks that field pairs agree across two tables joined
// on mapped columns.
//
// Both tables are projected to the join and comparison columns and fetched
// concurrently. Rows present on one side only are reported per comparison
// field as missing_in_target or missing_in_source.
//
// # HTTP Endpoints
//
//   - POST /consistency/:id/checks : Runs a stored consistency config.
//   - GET /consistency/checks/:id : Returns a check with its inconsistencies.
package consistency
