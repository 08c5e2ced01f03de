package reconcile

// Enrich attaches to every difference a JSON-safe snapshot of the target row
// with the same record key, taken from targetIndex. Differences whose key is
// not in the target, or cannot be decoded, keep a nil Enrichment. It returns
// the number of distinct records that were enriched.
func Enrich(diffs []Difference, targetIndex *Index) int {
	if targetIndex == nil {
		return 0
	}

	snapshots := make(map[string]map[string]any)
	enriched := 0
	for i := range diffs {
		recordKey := diffs[i].RecordKey
		snapshot, seen := snapshots[recordKey]
		if !seen {
			snapshot = lookupSnapshot(recordKey, targetIndex)
			snapshots[recordKey] = snapshot
			if snapshot != nil {
				enriched++
			}
		}
		diffs[i].Enrichment = snapshot
	}
	return enriched
}

func lookupSnapshot(recordKey string, targetIndex *Index) map[string]any {
	tokens, err := DecodeRecordKey(recordKey)
	if err != nil {
		return nil
	}
	row, ok := targetIndex.LookupTokens(tokens)
	if !ok {
		return nil
	}
	return row.Snapshot()
}
