package jobfile

import (
	"os"
	"path/filepath"
	"testing"

	"table-reconciler/core/database"
	"table-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullJob = `
source:
  connection:
    driver: mysql
    host: legacy-db
    user: app
    password: ${JOBFILE_TEST_PASSWORD}
    name: crm
  table: users
target:
  connection:
    name: ./accounts.db
  table: accounts
strict_types: true
comparison:
  primary_keys: [id]
  key_mappings:
    id: user_id
  ignored_columns: [updated_at]
consistency:
  join_mappings:
    tenant: org
    id: user_id
  comparison_fields:
    - source_field: email
      target_field: mail
`

func TestParse(t *testing.T) {
	t.Setenv("JOBFILE_TEST_PASSWORD", "s3cret")

	f, err := Parse([]byte(fullJob))
	require.NoError(t, err)

	assert.Equal(t, database.Config{
		Driver:         database.DriverMySQL,
		Host:           "legacy-db",
		Port:           3306,
		User:           "app",
		Password:       "s3cret",
		Name:           "crm",
		TimeoutSeconds: 30,
	}, f.Source.Connection)
	assert.Equal(t, database.DriverSQLite, f.Target.Connection.Driver)
	assert.Empty(t, f.Target.Connection.Host)
	assert.Equal(t, "accounts", f.Target.Table)

	require.NotNil(t, f.StrictTypes)
	assert.True(t, *f.StrictTypes)

	require.NotNil(t, f.Comparison)
	assert.Equal(t, []string{"id"}, f.Comparison.PrimaryKeys)
	assert.Equal(t, map[string]string{"id": "user_id"}, f.Comparison.KeyMappings)
	assert.Equal(t, []string{"updated_at"}, f.Comparison.IgnoredColumns)

	require.NotNil(t, f.Consistency)
	cfg := f.Consistency.Config()
	// Mapping order is preserved.
	assert.Equal(t, reconcile.FieldMappings{
		{Source: "tenant", Target: "org"},
		{Source: "id", Target: "user_id"},
	}, cfg.JoinMappings)
	assert.Equal(t, []reconcile.FieldPair{{Source: "email", Target: "mail"}}, cfg.ComparisonFields)
}

func TestParse_JoinMappingsList(t *testing.T) {
	f, err := Parse([]byte(`
source: {table: a}
target: {table: b}
consistency:
  join_mappings:
    - {source_field: id, target_field: uid}
  comparison_fields:
    - {source_field: v, target_field: v}
`))
	require.NoError(t, err)
	assert.Nil(t, f.Comparison)
	assert.Equal(t, Mappings{{Source: "id", Target: "uid"}}, f.Consistency.JoinMappings)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "missing source table",
			yaml:    "target: {table: b}\ncomparison: {}",
			wantErr: reconcile.ErrConfiguration,
		},
		{
			name:    "missing target table",
			yaml:    "source: {table: a}\ncomparison: {}",
			wantErr: reconcile.ErrConfiguration,
		},
		{
			name:    "no job section",
			yaml:    "source: {table: a}\ntarget: {table: b}",
			wantErr: reconcile.ErrConfiguration,
		},
		{
			name:    "consistency without fields",
			yaml:    "source: {table: a}\ntarget: {table: b}\nconsistency: {join_mappings: {id: id}}",
			wantErr: reconcile.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("nested join mapping value", func(t *testing.T) {
		_, err := Parse([]byte("source: {table: a}\ntarget: {table: b}\nconsistency: {join_mappings: {id: [x]}}"))
		assert.Error(t, err)
	})
	t.Run("scalar join mappings", func(t *testing.T) {
		_, err := Parse([]byte("source: {table: a}\ntarget: {table: b}\nconsistency: {join_mappings: id}"))
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: {table: a}\ntarget: {table: b}\ncomparison: {primary_keys: [id]}\n"), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a", f.Source.Table)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load("")
	assert.Error(t, err)
}
