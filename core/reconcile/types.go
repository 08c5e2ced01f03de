package reconcile

// Sides of a comparison, used in error messages and run metadata.
const (
	SideSource = "source"
	SideTarget = "target"
)

// ChangeType classifies a Difference.
type ChangeType string

const (
	// ChangeAdded marks a field present in the source but not in the target,
	// either because the whole record is missing from the target or because
	// the target table lacks the column.
	ChangeAdded ChangeType = "added"
	// ChangeDeleted marks a field of a record that exists only in the target.
	ChangeDeleted ChangeType = "deleted"
	// ChangeModified marks a field whose values differ between both sides.
	ChangeModified ChangeType = "modified"
)

// InconsistencyType classifies an Inconsistency.
type InconsistencyType string

const (
	InconsistencyValueMismatch   InconsistencyType = "value_mismatch"
	InconsistencyMissingInTarget InconsistencyType = "missing_in_target"
	InconsistencyMissingInSource InconsistencyType = "missing_in_source"
)

// Difference is one field-level finding of a table comparison.
type Difference struct {
	// RecordID is the display form of the record key.
	RecordID string `json:"record_id"`

	// RecordKey is the unambiguous encoding of the record key, see EncodeRecordKey.
	RecordKey string `json:"record_key"`

	// Key holds the key values as read from the table.
	Key Key `json:"-"`

	// FieldName is a source-space column name. It is never a key column or
	// an ignored column.
	FieldName string `json:"field_name"`

	// SourceValue is nil when the source has no value.
	SourceValue *string `json:"source_value"`

	// TargetValue is nil when the target has no value.
	TargetValue *string `json:"target_value"`

	ChangeType ChangeType `json:"change_type"`

	// Enrichment is a snapshot of the full target row, set by Enrich when the
	// record exists in the target. Differences of the same record share it.
	Enrichment map[string]any `json:"target_record,omitempty"`
}

// Inconsistency is one field-level finding of a consistency check.
type Inconsistency struct {
	// JoinKeyValues maps each source join field to its value, taken from the
	// source side when available, else from the target, else "N/A".
	JoinKeyValues map[string]string `json:"join_key_values"`

	// FieldName is the source field of the comparison pair.
	FieldName string `json:"field_name"`

	SourceValue *string `json:"source_value"`

	TargetValue *string `json:"target_value"`

	InconsistencyType InconsistencyType `json:"inconsistency_type"`
}
