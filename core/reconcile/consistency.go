package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// missingJoinValue is reported for a join field absent on both sides.
const missingJoinValue = "N/A"

// FieldPair names one field in the source table and its counterpart in the
// target table.
type FieldPair struct {
	Source string `json:"source_field" yaml:"source_field"`
	Target string `json:"target_field" yaml:"target_field"`
}

// FieldMappings is an ordered list of source->target field pairs. Its JSON
// form is an object {"source": "target", ...} whose key order is kept; an
// array of FieldPair objects is accepted as well.
type FieldMappings []FieldPair

// UnmarshalJSON implements json.Unmarshaler.
func (m *FieldMappings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}

	if data[0] == '[' {
		var pairs []FieldPair
		if err := json.Unmarshal(data, &pairs); err != nil {
			return err
		}
		*m = pairs
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var out FieldMappings
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		source, ok := tok.(string)
		if !ok {
			return fmt.Errorf("field mappings: unexpected key %v", tok)
		}
		var target string
		if err := dec.Decode(&target); err != nil {
			return fmt.Errorf("field mappings: %s: %w", source, err)
		}
		out = append(out, FieldPair{Source: source, Target: target})
	}
	*m = out
	return nil
}

// MarshalJSON writes the ordered object form.
func (m FieldMappings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.Source)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Target)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Map returns the pairs as a source->target map.
func (m FieldMappings) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, p := range m {
		out[p.Source] = p.Target
	}
	return out
}

// ConsistencyConfig describes how two tables with independent keys are
// aligned and which fields are compared.
type ConsistencyConfig struct {
	// JoinMappings pairs the fields used to match rows. Their order is the
	// order of JoinKeyValues in reports.
	JoinMappings FieldMappings `json:"join_mappings" yaml:"join_mappings"`

	// ComparisonFields lists the field pairs whose values are compared.
	ComparisonFields []FieldPair `json:"comparison_fields" yaml:"comparison_fields"`
}

// Validate checks that at least one join mapping and one comparison pair
// exist and that no name is empty.
func (c ConsistencyConfig) Validate() error {
	if len(c.JoinMappings) == 0 {
		return NewConfigurationError("join_mappings", "at least one join mapping is required")
	}
	if len(c.ComparisonFields) == 0 {
		return NewConfigurationError("comparison_fields", "at least one comparison field is required")
	}
	for _, p := range c.JoinMappings {
		if p.Source == "" || p.Target == "" {
			return NewConfigurationError("join_mappings", "field names must not be empty")
		}
	}
	for _, p := range c.ComparisonFields {
		if p.Source == "" || p.Target == "" {
			return NewConfigurationError("comparison_fields", "field names must not be empty")
		}
	}
	return nil
}

// ProjectionColumns returns the columns to fetch from each table: join fields
// followed by comparison fields, without duplicates.
func (c ConsistencyConfig) ProjectionColumns() (source, target []string) {
	for _, p := range c.JoinMappings {
		source = append(source, p.Source)
		target = append(target, p.Target)
	}
	for _, p := range c.ComparisonFields {
		source = append(source, p.Source)
		target = append(target, p.Target)
	}
	return dedupe(source), dedupe(target)
}

// renameMap maps target field names to source field names.
func (c ConsistencyConfig) renameMap() map[string]string {
	out := make(map[string]string, len(c.JoinMappings)+len(c.ComparisonFields))
	add := func(p FieldPair) {
		if p.Target == p.Source {
			return
		}
		if _, taken := out[p.Target]; !taken {
			out[p.Target] = p.Source
		}
	}
	for _, p := range c.JoinMappings {
		add(p)
	}
	for _, p := range c.ComparisonFields {
		add(p)
	}
	return out
}

// ConsistencyResult holds the findings of CheckConsistency.
type ConsistencyResult struct {
	Inconsistencies []Inconsistency

	// MatchedRows counts joined row pairs.
	MatchedRows int

	// SourceOnlyRows counts source rows without a target partner.
	SourceOnlyRows int

	// TargetOnlyRows counts target rows without a source partner.
	TargetOnlyRows int

	// Counts holds the number of inconsistencies per type.
	Counts map[InconsistencyType]int
}

// Total returns the number of inconsistencies.
func (r *ConsistencyResult) Total() int {
	return len(r.Inconsistencies)
}

// CheckConsistency joins source and target rows on the configured join
// fields (a full outer equi-join, so duplicate keys multiply) and compares
// the configured field pairs of every joined row. Rows are expected to be
// projections holding the join and comparison fields; a row missing a join
// field fails with *MissingKeyColumnError.
func CheckConsistency(source, target []Row, cfg ConsistencyConfig, cmp Comparator) (*ConsistencyResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cmp == nil {
		cmp = LooseComparator{}
	}

	joinCols := make([]string, len(cfg.JoinMappings))
	for i, p := range cfg.JoinMappings {
		joinCols[i] = p.Source
	}

	// Rename the target into the source space
	rename := cfg.renameMap()
	renamed := make([]Row, len(target))
	for i, row := range target {
		renamed[i] = row.Renamed(rename)
	}

	// Group target rows by join key, keeping arrival order
	groups := make(map[string][]int, len(renamed))
	for i, row := range renamed {
		key, err := joinToken(row, joinCols, cmp, SideTarget)
		if err != nil {
			return nil, mapMissing(err, cfg.JoinMappings)
		}
		groups[key] = append(groups[key], i)
	}

	result := &ConsistencyResult{Counts: make(map[InconsistencyType]int, 3)}
	emit := func(inc Inconsistency) {
		result.Inconsistencies = append(result.Inconsistencies, inc)
		result.Counts[inc.InconsistencyType]++
	}

	matched := make([]bool, len(renamed))
	for _, src := range source {
		key, err := joinToken(src, joinCols, cmp, SideSource)
		if err != nil {
			return nil, err
		}

		partners := groups[key]
		if len(partners) == 0 {
			result.SourceOnlyRows++
			joinValues := joinKeyValues(joinCols, &src, nil)
			for _, p := range cfg.ComparisonFields {
				emit(Inconsistency{
					JoinKeyValues:     joinValues,
					FieldName:         p.Source,
					SourceValue:       Stringify(src.Value(p.Source)),
					InconsistencyType: InconsistencyMissingInTarget,
				})
			}
			continue
		}

		for _, idx := range partners {
			matched[idx] = true
			result.MatchedRows++
			tgt := renamed[idx]
			joinValues := joinKeyValues(joinCols, &src, &tgt)
			for _, p := range cfg.ComparisonFields {
				sv := src.Value(p.Source)
				tv := tgt.Value(p.Source)
				if cmp.Equal(sv, tv) {
					continue
				}
				emit(Inconsistency{
					JoinKeyValues:     joinValues,
					FieldName:         p.Source,
					SourceValue:       Stringify(sv),
					TargetValue:       Stringify(tv),
					InconsistencyType: InconsistencyValueMismatch,
				})
			}
		}
	}

	for i, tgt := range renamed {
		if matched[i] {
			continue
		}
		result.TargetOnlyRows++
		joinValues := joinKeyValues(joinCols, nil, &tgt)
		for _, p := range cfg.ComparisonFields {
			emit(Inconsistency{
				JoinKeyValues:     joinValues,
				FieldName:         p.Source,
				TargetValue:       Stringify(tgt.Value(p.Source)),
				InconsistencyType: InconsistencyMissingInSource,
			})
		}
	}

	return result, nil
}

func joinToken(row Row, cols []string, cmp Comparator, side string) (string, error) {
	tokens := make([]*string, len(cols))
	var missing []string
	for i, col := range cols {
		v, ok := row.Get(col)
		if !ok {
			missing = append(missing, col)
			continue
		}
		tokens[i] = cmp.Token(v)
	}
	if len(missing) > 0 {
		return "", &MissingKeyColumnError{Side: side, Missing: missing}
	}
	return encodeTokens(tokens), nil
}

// joinKeyValues reads each join field from the source row, falling back to
// the target row and then to "N/A".
func joinKeyValues(cols []string, src, tgt *Row) map[string]string {
	out := make(map[string]string, len(cols))
	for _, col := range cols {
		out[col] = missingJoinValue
		if src != nil {
			if s := Stringify(src.Value(col)); s != nil {
				out[col] = *s
				continue
			}
		}
		if tgt != nil {
			if s := Stringify(tgt.Value(col)); s != nil {
				out[col] = *s
			}
		}
	}
	return out
}

func mapMissing(err error, mappings FieldMappings) error {
	missing, ok := err.(*MissingKeyColumnError)
	if !ok {
		return err
	}
	missing.Missing = mapNames(missing.Missing, mappings.Map())
	return missing
}
