// Package reconcile compares two tables held in memory.
//
// It provides the building blocks used by the comparison and consistency
// features:
//
//   - Value and Row, a closed value union and an ordered row of such values
//   - ResolveKeys and CheckTargetKeys, which choose and validate key columns
//   - Diff, which indexes both sides by key and reports added, deleted and
//     modified fields
//   - Enrich, which attaches the full target row to each difference
//   - CheckConsistency, which aligns two tables with independent keys on
//     explicit join fields and reports mismatches
//   - Run and RunPersister, the run lifecycle and its storage contract
//
// Values are compared through a Comparator. LooseComparator compares the
// canonical text of values, so an INTEGER 1 in one database equals a
// VARCHAR "1" in another. StrictComparator additionally requires equal kinds.
//
// # Usage Example
//
//	res, err := reconcile.ResolveKeys(nil, primaryKeys, sourceColumns)
//	if err != nil {
//	    return err
//	}
//	result, err := reconcile.Diff(sourceRows, targetRows, reconcile.DiffOptions{
//	    KeyColumns:  res.Columns,
//	    KeyMappings: map[string]string{"id": "user_id"},
//	})
//	if err != nil {
//	    return err
//	}
//	reconcile.Enrich(result.Differences, result.TargetIndex)
//
// Everything in this package is synchronous and holds no shared state.
package reconcile
