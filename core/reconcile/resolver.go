package reconcile

// heuristicKeyNames are tried in order when neither explicit keys nor
// declared primary keys exist.
var heuristicKeyNames = []string{"id", "ID", "Id", "_id", "pk_id", "primary_key"}

// KeyStrategy records how the key columns of a run were chosen.
type KeyStrategy string

const (
	KeyStrategyExplicit   KeyStrategy = "explicit"
	KeyStrategyPrimaryKey KeyStrategy = "primary_key"
	KeyStrategyHeuristic  KeyStrategy = "heuristic"
	KeyStrategyAllColumns KeyStrategy = "all_columns"
)

// KeyResolution is the outcome of ResolveKeys.
type KeyResolution struct {
	// Columns are the source-space key columns, never empty.
	Columns []string

	Strategy KeyStrategy

	// Warning is set for the heuristic and all-columns strategies.
	Warning *DegradedKeyResolutionWarning
}

// Degraded reports whether the key columns were guessed.
func (r KeyResolution) Degraded() bool {
	return r.Warning != nil
}

// ResolveKeys chooses the key columns of the source table. Explicit keys win,
// then the primary keys declared by the database, then the first heuristic
// name present in sourceColumns, and finally every source column.
func ResolveKeys(explicit, primaryKeys, sourceColumns []string) (KeyResolution, error) {
	if cols := dedupe(explicit); len(cols) > 0 {
		return KeyResolution{Columns: cols, Strategy: KeyStrategyExplicit}, nil
	}

	if cols := dedupe(primaryKeys); len(cols) > 0 {
		return KeyResolution{Columns: cols, Strategy: KeyStrategyPrimaryKey}, nil
	}

	if len(sourceColumns) == 0 {
		return KeyResolution{}, NewConfigurationError("source_table", "table has no columns")
	}

	present := make(map[string]bool, len(sourceColumns))
	for _, col := range sourceColumns {
		present[col] = true
	}
	for _, name := range heuristicKeyNames {
		if present[name] {
			cols := []string{name}
			return KeyResolution{
				Columns:  cols,
				Strategy: KeyStrategyHeuristic,
				Warning:  &DegradedKeyResolutionWarning{Strategy: KeyStrategyHeuristic, Columns: cols},
			}, nil
		}
	}

	cols := dedupe(sourceColumns)
	return KeyResolution{
		Columns:  cols,
		Strategy: KeyStrategyAllColumns,
		Warning:  &DegradedKeyResolutionWarning{Strategy: KeyStrategyAllColumns, Columns: cols},
	}, nil
}

// CheckSourceKeys verifies the source has every key column.
func CheckSourceKeys(keys, sourceColumns []string) error {
	present := make(map[string]bool, len(sourceColumns))
	for _, col := range sourceColumns {
		present[col] = true
	}
	var missing []string
	for _, key := range keys {
		if !present[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &MissingKeyColumnError{Side: SideSource, Missing: missing}
	}
	return nil
}

// CheckTargetKeys maps every key through keyMappings (identity when no
// mapping exists) and verifies the target has each mapped column. It returns
// the target-space key names, or a *MissingKeyColumnError naming every
// missing column.
func CheckTargetKeys(keys []string, keyMappings map[string]string, targetColumns []string) ([]string, error) {
	present := make(map[string]bool, len(targetColumns))
	for _, col := range targetColumns {
		present[col] = true
	}

	mapped := make([]string, len(keys))
	var missing []string
	for i, key := range keys {
		name := key
		if m, ok := keyMappings[key]; ok && m != "" {
			name = m
		}
		mapped[i] = name
		if !present[name] {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, &MissingKeyColumnError{Side: SideTarget, Missing: missing}
	}
	return mapped, nil
}

func dedupe(cols []string) []string {
	seen := make(map[string]bool, len(cols))
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		if col == "" || seen[col] {
			continue
		}
		seen[col] = true
		out = append(out, col)
	}
	return out
}
