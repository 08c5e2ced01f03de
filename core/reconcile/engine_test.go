package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// row builds a Row from alternating column names and values.
func row(kv ...any) Row {
	cols := make([]string, 0, len(kv)/2)
	vals := make([]Value, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		cols = append(cols, kv[i].(string))
		vals = append(vals, FromAny(kv[i+1]))
	}
	return NewRow(cols, vals)
}

func strPtr(s string) *string { return &s }

func TestDiff_AddedAndDeleted(t *testing.T) {
	source := []Row{row("id", 1, "name", "Ann"), row("id", 2, "name", "Bob")}
	target := []Row{row("id", 1, "name", "Ann"), row("id", 3, "name", "Cid")}

	result, err := Diff(source, target, DiffOptions{KeyColumns: []string{"id"}})
	require.NoError(t, err)
	require.Len(t, result.Differences, 2)

	added := result.Differences[0]
	assert.Equal(t, ChangeAdded, added.ChangeType)
	assert.Equal(t, "2", added.RecordID)
	assert.Equal(t, "name", added.FieldName)
	assert.Equal(t, strPtr("Bob"), added.SourceValue)
	assert.Nil(t, added.TargetValue)

	deleted := result.Differences[1]
	assert.Equal(t, ChangeDeleted, deleted.ChangeType)
	assert.Equal(t, "3", deleted.RecordID)
	assert.Equal(t, "name", deleted.FieldName)
	assert.Nil(t, deleted.SourceValue)
	assert.Equal(t, strPtr("Cid"), deleted.TargetValue)

	assert.Equal(t, 0, result.Counts[ChangeModified])
	assert.Equal(t, 1, result.AddedRecords)
	assert.Equal(t, 1, result.DeletedRecords)
	assert.Equal(t, 1, result.CommonRecords)
}

func TestDiff_CaseSensitiveModification(t *testing.T) {
	source := []Row{row("id", 1, "email", "a@x.com")}
	target := []Row{row("id", 1, "email", "A@X.com")}

	result, err := Diff(source, target, DiffOptions{KeyColumns: []string{"id"}})
	require.NoError(t, err)
	require.Len(t, result.Differences, 1)

	d := result.Differences[0]
	assert.Equal(t, ChangeModified, d.ChangeType)
	assert.Equal(t, "email", d.FieldName)
	assert.Equal(t, strPtr("a@x.com"), d.SourceValue)
	assert.Equal(t, strPtr("A@X.com"), d.TargetValue)
}

func TestDiff_KeyMappings(t *testing.T) {
	source := []Row{row("id", 1, "name", "Ann")}

	t.Run("mapped key aligns rows", func(t *testing.T) {
		target := []Row{row("user_id", 1, "name", "Ann")}
		result, err := Diff(source, target, DiffOptions{
			KeyColumns:  []string{"id"},
			KeyMappings: map[string]string{"id": "user_id"},
		})
		require.NoError(t, err)
		assert.Empty(t, result.Differences)
		assert.Equal(t, 1, result.CommonRecords)
	})

	t.Run("missing mapped key fails before comparing", func(t *testing.T) {
		target := []Row{row("id", 1, "name", "Ann")}
		result, err := Diff(source, target, DiffOptions{
			KeyColumns:  []string{"id"},
			KeyMappings: map[string]string{"id": "user_id"},
		})
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, ErrMissingKeyColumn))

		var missing *MissingKeyColumnError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, []string{"user_id"}, missing.Missing)
		assert.Equal(t, SideTarget, missing.Side)
	})

	t.Run("target check before fetching rows", func(t *testing.T) {
		_, err := CheckTargetKeys([]string{"id"}, map[string]string{"id": "user_id"}, []string{"id", "name"})
		assert.True(t, errors.Is(err, ErrMissingKeyColumn))

		mapped, err := CheckTargetKeys([]string{"id"}, map[string]string{"id": "user_id"}, []string{"user_id", "name"})
		require.NoError(t, err)
		assert.Equal(t, []string{"user_id"}, mapped)
	})
}

func TestDiff_IgnoredColumns(t *testing.T) {
	source := []Row{
		row("id", 1, "name", "Ann", "updated_at", "2024-01-01"),
		row("id", 2, "name", "Bob", "updated_at", "2024-01-02"),
	}
	target := []Row{
		row("id", 1, "name", "Ann", "updated_at", "2025-06-01"),
		row("id", 3, "name", "Cid", "updated_at", "2025-06-03"),
	}

	result, err := Diff(source, target, DiffOptions{
		KeyColumns:     []string{"id"},
		IgnoredColumns: []string{"updated_at"},
	})
	require.NoError(t, err)

	for _, d := range result.Differences {
		assert.NotEqual(t, "updated_at", d.FieldName)
		assert.NotEqual(t, "id", d.FieldName)
	}
	assert.Len(t, result.Differences, 2)
}

func TestDiff_LooseAndStrictComparison(t *testing.T) {
	source := []Row{row("id", 1, "score", 10, "ratio", 1.0, "active", true)}
	target := []Row{row("id", "1", "score", "10", "ratio", 1, "active", "true")}

	t.Run("loose", func(t *testing.T) {
		result, err := Diff(source, target, DiffOptions{KeyColumns: []string{"id"}})
		require.NoError(t, err)
		assert.Empty(t, result.Differences)
	})

	t.Run("strict", func(t *testing.T) {
		result, err := Diff(source, target, DiffOptions{
			KeyColumns: []string{"id"},
			Comparator: StrictComparator{},
		})
		require.NoError(t, err)
		// Keys of different kinds do not align under strict comparison.
		assert.Equal(t, 1, result.AddedRecords)
		assert.Equal(t, 1, result.DeletedRecords)
		assert.Equal(t, 0, result.CommonRecords)
	})
}

func TestDiff_NullHandling(t *testing.T) {
	source := []Row{row("id", 1, "a", nil, "b", nil, "c", "x")}
	target := []Row{row("id", 1, "a", nil, "b", "y", "c", nil)}

	result, err := Diff(source, target, DiffOptions{KeyColumns: []string{"id"}})
	require.NoError(t, err)
	require.Len(t, result.Differences, 2)

	assert.Equal(t, "b", result.Differences[0].FieldName)
	assert.Nil(t, result.Differences[0].SourceValue)
	assert.Equal(t, strPtr("y"), result.Differences[0].TargetValue)

	assert.Equal(t, "c", result.Differences[1].FieldName)
	assert.Equal(t, strPtr("x"), result.Differences[1].SourceValue)
	assert.Nil(t, result.Differences[1].TargetValue)
}

func TestDiff_SchemaGapIsAdded(t *testing.T) {
	source := []Row{row("id", 1, "name", "Ann", "nickname", "A")}
	target := []Row{row("id", 1, "name", "Ann")}

	result, err := Diff(source, target, DiffOptions{KeyColumns: []string{"id"}})
	require.NoError(t, err)
	require.Len(t, result.Differences, 1)
	assert.Equal(t, ChangeAdded, result.Differences[0].ChangeType)
	assert.Equal(t, "nickname", result.Differences[0].FieldName)
	assert.Nil(t, result.Differences[0].TargetValue)
}

func TestDiff_CompositeKeys(t *testing.T) {
	source := []Row{
		row("tenant", "a|b", "id", "c", "v", 1),
		row("tenant", "a", "id", "b|c", "v", 2),
	}

	result, err := Diff(source, nil, DiffOptions{KeyColumns: []string{"tenant", "id"}})
	require.NoError(t, err)
	require.Len(t, result.Differences, 2)

	// Both render the same display id but stay distinct records.
	assert.Equal(t, "a|b|c", result.Differences[0].RecordID)
	assert.Equal(t, "a|b|c", result.Differences[1].RecordID)
	assert.NotEqual(t, result.Differences[0].RecordKey, result.Differences[1].RecordKey)
	assert.Equal(t, 2, result.SourceIndex.Len())
}

func TestDiff_DuplicateKeysLastWins(t *testing.T) {
	source := []Row{
		row("id", 1, "name", "old"),
		row("id", 2, "name", "Bob"),
		row("id", 1, "name", "new"),
	}
	target := []Row{row("id", 1, "name", "new"), row("id", 2, "name", "Bob")}

	result, err := Diff(source, target, DiffOptions{KeyColumns: []string{"id"}})
	require.NoError(t, err)
	assert.Empty(t, result.Differences)
	assert.Equal(t, []string{`["1"]`, `["2"]`}, result.SourceIndex.RecordKeys())
}

func TestDiff_EmptyInputs(t *testing.T) {
	result, err := Diff(nil, nil, DiffOptions{KeyColumns: []string{"id"}})
	require.NoError(t, err)
	assert.Empty(t, result.Differences)
	assert.Equal(t, 0, result.Total())
}

func TestDiff_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  []Row
		target  []Row
		opts    DiffOptions
		wantErr error
	}{
		{
			name:    "no key columns",
			opts:    DiffOptions{},
			wantErr: ErrConfiguration,
		},
		{
			name:    "row limit",
			source:  []Row{row("id", 1), row("id", 2)},
			opts:    DiffOptions{KeyColumns: []string{"id"}, MaxRows: 1},
			wantErr: ErrRowLimit,
		},
		{
			name:    "source row lacks key",
			source:  []Row{row("name", "Ann")},
			opts:    DiffOptions{KeyColumns: []string{"id"}},
			wantErr: ErrMissingKeyColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Diff(tt.source, tt.target, tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDiff_Properties(t *testing.T) {
	source := []Row{
		row("id", 1, "name", "Ann", "age", 30),
		row("id", 2, "name", "Bob", "age", 41),
		row("id", 4, "name", "Dan", "age", nil),
	}
	target := []Row{
		row("id", 1, "name", "Ann", "age", 31),
		row("id", 3, "name", "Cid", "age", 22),
		row("id", 4, "name", "Dan", "age", nil),
	}
	opts := DiffOptions{KeyColumns: []string{"id"}}

	t.Run("key partition is disjoint and complete", func(t *testing.T) {
		result, err := Diff(source, target, opts)
		require.NoError(t, err)

		union := map[string]bool{}
		for _, k := range result.SourceIndex.RecordKeys() {
			union[k] = true
		}
		for _, k := range result.TargetIndex.RecordKeys() {
			union[k] = true
		}
		assert.Equal(t, len(union), result.AddedRecords+result.DeletedRecords+result.CommonRecords)
	})

	t.Run("one difference per differing field", func(t *testing.T) {
		result, err := Diff(source, target, opts)
		require.NoError(t, err)

		var modified []Difference
		for _, d := range result.Differences {
			if d.ChangeType == ChangeModified {
				modified = append(modified, d)
			}
		}
		require.Len(t, modified, 1)
		assert.Equal(t, "1", modified[0].RecordID)
		assert.Equal(t, "age", modified[0].FieldName)
	})

	t.Run("identical inputs yield nothing", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			result, err := Diff(source, source, opts)
			require.NoError(t, err)
			assert.Empty(t, result.Differences)
			assert.Equal(t, 0, result.AddedRecords)
			assert.Equal(t, 0, result.DeletedRecords)
		}
	})

	t.Run("output grouped by change type", func(t *testing.T) {
		result, err := Diff(source, target, opts)
		require.NoError(t, err)

		rank := map[ChangeType]int{ChangeAdded: 0, ChangeDeleted: 1, ChangeModified: 2}
		for i := 1; i < len(result.Differences); i++ {
			assert.LessOrEqual(t, rank[result.Differences[i-1].ChangeType], rank[result.Differences[i].ChangeType])
		}
	})
}

func TestReverseMappings_Deterministic(t *testing.T) {
	reverse := reverseMappings(map[string]string{"b": "x", "a": "x", "id": "id"})
	assert.Equal(t, map[string]string{"x": "a"}, reverse)
}
