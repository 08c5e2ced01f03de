package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKeys(t *testing.T) {
	tests := []struct {
		name         string
		explicit     []string
		primaryKeys  []string
		columns      []string
		wantColumns  []string
		wantStrategy KeyStrategy
		wantDegraded bool
	}{
		{
			name:         "explicit wins",
			explicit:     []string{"code"},
			primaryKeys:  []string{"id"},
			columns:      []string{"id", "code"},
			wantColumns:  []string{"code"},
			wantStrategy: KeyStrategyExplicit,
		},
		{
			name:         "declared primary keys",
			primaryKeys:  []string{"tenant", "id"},
			columns:      []string{"tenant", "id", "name"},
			wantColumns:  []string{"tenant", "id"},
			wantStrategy: KeyStrategyPrimaryKey,
		},
		{
			name:         "blank explicit falls through",
			explicit:     []string{""},
			primaryKeys:  []string{"id"},
			columns:      []string{"id"},
			wantColumns:  []string{"id"},
			wantStrategy: KeyStrategyPrimaryKey,
		},
		{
			name:         "heuristic follows name priority",
			columns:      []string{"pk_id", "ID", "name"},
			wantColumns:  []string{"ID"},
			wantStrategy: KeyStrategyHeuristic,
			wantDegraded: true,
		},
		{
			name:         "all columns as last resort",
			columns:      []string{"a", "b"},
			wantColumns:  []string{"a", "b"},
			wantStrategy: KeyStrategyAllColumns,
			wantDegraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ResolveKeys(tt.explicit, tt.primaryKeys, tt.columns)
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumns, res.Columns)
			assert.Equal(t, tt.wantStrategy, res.Strategy)
			assert.Equal(t, tt.wantDegraded, res.Degraded())
			if tt.wantDegraded {
				assert.NotEmpty(t, res.Warning.Error())
			}
		})
	}
}

func TestResolveKeys_NoColumns(t *testing.T) {
	_, err := ResolveKeys(nil, nil, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestCheckTargetKeys_ReportsEveryMissingColumn(t *testing.T) {
	_, err := CheckTargetKeys(
		[]string{"tenant", "id", "name"},
		map[string]string{"id": "user_id"},
		[]string{"name"},
	)
	require.Error(t, err)

	missing, ok := err.(*MissingKeyColumnError)
	require.True(t, ok)
	assert.Equal(t, []string{"tenant", "user_id"}, missing.Missing)
	assert.Contains(t, err.Error(), "tenant, user_id")
}

func TestCheckSourceKeys(t *testing.T) {
	assert.NoError(t, CheckSourceKeys([]string{"id"}, []string{"id", "name"}))

	err := CheckSourceKeys([]string{"tenant", "id"}, []string{"id", "name"})
	assert.ErrorIs(t, err, ErrMissingKeyColumn)

	var missing *MissingKeyColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, SideSource, missing.Side)
	assert.Equal(t, []string{"tenant"}, missing.Missing)
}
