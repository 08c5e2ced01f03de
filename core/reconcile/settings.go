package reconcile

import "time"

// Settings holds the engine options loaded from configuration.
type Settings struct {
	// StrictTypes selects StrictComparator instead of LooseComparator.
	StrictTypes bool `mapstructure:"strict_types" default:"false"`
	// Enrich attaches target row snapshots to differences.
	Enrich bool `mapstructure:"enrich" default:"true"`
	// MaxRows bounds the rows loaded per side. Zero disables the bound.
	MaxRows int `mapstructure:"max_rows" default:"1000000"`
	// SchemaCacheTTLSeconds is how long table metadata stays cached.
	SchemaCacheTTLSeconds int `mapstructure:"schema_cache_ttl_seconds" default:"300"`
}

// Comparator returns the comparator selected by StrictTypes.
func (s Settings) Comparator() Comparator {
	return ComparatorFor(s.StrictTypes)
}

// SchemaCacheTTL returns SchemaCacheTTLSeconds as a duration.
func (s Settings) SchemaCacheTTL() time.Duration {
	if s.SchemaCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(s.SchemaCacheTTLSeconds) * time.Second
}

// CheckRowCount fails with *RowLimitError when rows exceeds MaxRows.
func (s Settings) CheckRowCount(side string, rows int64) error {
	if s.MaxRows > 0 && rows > int64(s.MaxRows) {
		return &RowLimitError{Side: side, Rows: rows, Limit: s.MaxRows}
	}
	return nil
}
