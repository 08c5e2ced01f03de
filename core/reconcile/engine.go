package reconcile

import (
	"errors"
	"sort"
)

// DiffOptions controls a table comparison.
type DiffOptions struct {
	// KeyColumns are the source-space key columns, usually taken from a
	// KeyResolution. Required.
	KeyColumns []string

	// KeyMappings maps source column names to target column names for
	// columns whose names differ between the tables.
	KeyMappings map[string]string

	// IgnoredColumns are source-space columns excluded from field comparison.
	IgnoredColumns []string

	// Comparator decides value equality and row alignment.
	// Defaults to LooseComparator.
	Comparator Comparator

	// MaxRows rejects inputs with more rows per side. Zero disables the check.
	MaxRows int
}

// DiffResult holds the findings of Diff together with the indexes it built.
type DiffResult struct {
	// Differences in output order: added, then deleted, then modified.
	Differences []Difference

	// SourceIndex indexes the source rows by key.
	SourceIndex *Index

	// TargetIndex indexes the renamed target rows by key. It is the input of
	// Enrich.
	TargetIndex *Index

	// AddedRecords counts keys present only in the source.
	AddedRecords int

	// DeletedRecords counts keys present only in the target.
	DeletedRecords int

	// CommonRecords counts keys present on both sides.
	CommonRecords int

	// Counts holds the number of differences per change type.
	Counts map[ChangeType]int
}

// Total returns the number of differences.
func (r *DiffResult) Total() int {
	return len(r.Differences)
}

// Diff compares source rows against target rows. Target rows are renamed into
// the source column space first, both sides are indexed by the key columns,
// and every non-key field is compared per record.
func Diff(source, target []Row, opts DiffOptions) (*DiffResult, error) {
	if len(opts.KeyColumns) == 0 {
		return nil, NewConfigurationError("primary_keys", "at least one key column is required")
	}
	if err := checkRowLimit(SideSource, len(source), opts.MaxRows); err != nil {
		return nil, err
	}
	if err := checkRowLimit(SideTarget, len(target), opts.MaxRows); err != nil {
		return nil, err
	}

	cmp := opts.Comparator
	if cmp == nil {
		cmp = LooseComparator{}
	}

	// Key columns must exist under their mapped names before renaming, or an
	// unmapped column of the source name would silently take their place.
	if err := requireKeys(target, mapNames(opts.KeyColumns, opts.KeyMappings), SideTarget); err != nil {
		return nil, err
	}

	// Rename target columns into the source space
	reverse := reverseMappings(opts.KeyMappings)
	renamed := make([]Row, len(target))
	for i, row := range target {
		renamed[i] = row.Renamed(reverse)
	}

	sourceIndex, err := BuildIndex(source, opts.KeyColumns, cmp, SideSource)
	if err != nil {
		return nil, err
	}
	targetIndex, err := BuildIndex(renamed, opts.KeyColumns, cmp, SideTarget)
	if err != nil {
		var missing *MissingKeyColumnError
		if errors.As(err, &missing) {
			missing.Missing = mapNames(missing.Missing, opts.KeyMappings)
		}
		return nil, err
	}

	skip := make(map[string]bool, len(opts.KeyColumns)+len(opts.IgnoredColumns))
	for _, col := range opts.KeyColumns {
		skip[col] = true
	}
	for _, col := range opts.IgnoredColumns {
		skip[col] = true
	}

	result := &DiffResult{
		SourceIndex: sourceIndex,
		TargetIndex: targetIndex,
		Counts:      make(map[ChangeType]int, 3),
	}
	emit := func(recordKey string, key Key, field string, src, tgt *string, change ChangeType) {
		result.Differences = append(result.Differences, Difference{
			RecordID:    key.RecordID(),
			RecordKey:   recordKey,
			Key:         key,
			FieldName:   field,
			SourceValue: src,
			TargetValue: tgt,
			ChangeType:  change,
		})
		result.Counts[change]++
	}

	// Keys only in the source
	for _, recordKey := range sourceIndex.order {
		if targetIndex.Has(recordKey) {
			continue
		}
		result.AddedRecords++
		e := sourceIndex.entries[recordKey]
		for _, col := range e.row.columns {
			if skip[col] {
				continue
			}
			emit(recordKey, e.key, col, Stringify(e.row.values[col]), nil, ChangeAdded)
		}
	}

	// Keys only in the target
	for _, recordKey := range targetIndex.order {
		if sourceIndex.Has(recordKey) {
			continue
		}
		result.DeletedRecords++
		e := targetIndex.entries[recordKey]
		for _, col := range e.row.columns {
			if skip[col] {
				continue
			}
			emit(recordKey, e.key, col, nil, Stringify(e.row.values[col]), ChangeDeleted)
		}
	}

	// Keys on both sides
	for _, recordKey := range sourceIndex.order {
		t, ok := targetIndex.entries[recordKey]
		if !ok {
			continue
		}
		result.CommonRecords++
		s := sourceIndex.entries[recordKey]
		for _, col := range s.row.columns {
			if skip[col] {
				continue
			}
			sv := s.row.values[col]
			tv, present := t.row.values[col]
			if !present {
				// The target table lacks the column altogether.
				emit(recordKey, s.key, col, Stringify(sv), nil, ChangeAdded)
				continue
			}
			if !cmp.Equal(sv, tv) {
				emit(recordKey, s.key, col, Stringify(sv), Stringify(tv), ChangeModified)
			}
		}
	}

	return result, nil
}

// reverseMappings inverts source->target mappings. When several source
// columns map to the same target column the lexically first source wins.
func reverseMappings(mappings map[string]string) map[string]string {
	if len(mappings) == 0 {
		return nil
	}
	sources := make([]string, 0, len(mappings))
	for src := range mappings {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	reverse := make(map[string]string, len(mappings))
	for _, src := range sources {
		tgt := mappings[src]
		if tgt == "" || tgt == src {
			continue
		}
		if _, taken := reverse[tgt]; !taken {
			reverse[tgt] = src
		}
	}
	return reverse
}

func mapNames(names []string, mappings map[string]string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name
		if m, ok := mappings[name]; ok && m != "" {
			out[i] = m
		}
	}
	return out
}

func requireKeys(rows []Row, keyColumns []string, side string) error {
	for _, row := range rows {
		var missing []string
		for _, col := range keyColumns {
			if !row.Has(col) {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return &MissingKeyColumnError{Side: side, Missing: missing}
		}
	}
	return nil
}

func checkRowLimit(side string, rows, limit int) error {
	if limit > 0 && rows > limit {
		return &RowLimitError{Side: side, Rows: int64(rows), Limit: limit}
	}
	return nil
}
