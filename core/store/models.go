package store

import (
	"time"

	"table-reconciler/core/database"
	"table-reconciler/core/reconcile"
)

// Connection is a registered database that projects read from.
type Connection struct {
	ID        uint                  `gorm:"primaryKey" json:"id"`
	Name      string                `gorm:"size:255;uniqueIndex" json:"name"`
	Config    JSON[database.Config] `gorm:"column:db_config" json:"-"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Project pairs a source and a target table for comparison.
type Project struct {
	ID                 uint                    `gorm:"primaryKey" json:"id"`
	Name               string                  `gorm:"size:255" json:"name"`
	SourceConnectionID uint                    `json:"source_connection_id"`
	SourceConnection   Connection              `gorm:"foreignKey:SourceConnectionID" json:"-"`
	TargetConnectionID uint                    `json:"target_connection_id"`
	TargetConnection   Connection              `gorm:"foreignKey:TargetConnectionID" json:"-"`
	SourceTable        string                  `gorm:"size:255" json:"source_table"`
	TargetTable        string                  `gorm:"size:255" json:"target_table"`
	PrimaryKeys        JSON[[]string]          `json:"primary_keys"`
	KeyMappings        JSON[map[string]string] `json:"key_mappings"`
	IgnoredColumns     JSON[[]string]          `json:"ignored_columns"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

// ComparisonRun is a stored comparison of a project.
type ComparisonRun struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	ProjectID        *uint                `gorm:"index" json:"project_id"`
	Status           string               `gorm:"size:32" json:"status"`
	TotalDifferences int                  `json:"total_differences"`
	Metadata         JSON[map[string]any] `gorm:"column:comparison_metadata" json:"metadata"`
	StartedAt        *time.Time           `json:"started_at"`
	FinishedAt       *time.Time           `json:"finished_at"`
	CreatedAt        time.Time            `json:"created_at"`
	Results          []ComparisonResult   `gorm:"foreignKey:ComparisonID" json:"results,omitempty"`
}

// TableName keeps the historical table name.
func (ComparisonRun) TableName() string { return "comparisons" }

// ComparisonResult is one stored Difference.
type ComparisonResult struct {
	ID           uint                 `gorm:"primaryKey" json:"id"`
	ComparisonID uint                 `gorm:"index" json:"comparison_id"`
	RecordID     string               `gorm:"size:512" json:"record_id"`
	RecordKey    string               `gorm:"type:text" json:"record_key"`
	FieldName    string               `gorm:"size:255" json:"field_name"`
	SourceValue  *string              `gorm:"type:text" json:"source_value"`
	TargetValue  *string              `gorm:"type:text" json:"target_value"`
	ChangeType   string               `gorm:"size:16" json:"change_type"`
	TargetRecord JSON[map[string]any] `gorm:"column:target_record_json" json:"target_record"`
}

// ConsistencyConfig is a stored consistency check definition.
type ConsistencyConfig struct {
	ID                 uint                          `gorm:"primaryKey" json:"id"`
	Name               string                        `gorm:"size:255" json:"name"`
	SourceConnectionID uint                          `json:"source_connection_id"`
	SourceConnection   Connection                    `gorm:"foreignKey:SourceConnectionID" json:"-"`
	TargetConnectionID uint                          `json:"target_connection_id"`
	TargetConnection   Connection                    `gorm:"foreignKey:TargetConnectionID" json:"-"`
	SourceTable        string                        `gorm:"size:255" json:"source_table"`
	TargetTable        string                        `gorm:"size:255" json:"target_table"`
	JoinMappings       JSON[reconcile.FieldMappings] `json:"join_mappings"`
	ComparisonFields   JSON[[]reconcile.FieldPair]   `json:"comparison_fields"`
	CreatedAt          time.Time                     `json:"created_at"`
	UpdatedAt          time.Time                     `json:"updated_at"`
}

// TableName keeps the historical table name.
func (ConsistencyConfig) TableName() string { return "data_consistency_configs" }

// Reconcile returns the engine form of the config.
func (c ConsistencyConfig) Reconcile() reconcile.ConsistencyConfig {
	return reconcile.ConsistencyConfig{
		JoinMappings:     c.JoinMappings.V,
		ComparisonFields: c.ComparisonFields.V,
	}
}

// ConsistencyCheck is a stored consistency check run.
type ConsistencyCheck struct {
	ID                   uint                 `gorm:"primaryKey" json:"id"`
	ConfigID             *uint                `gorm:"index" json:"config_id"`
	Status               string               `gorm:"size:32" json:"status"`
	TotalInconsistencies int                  `json:"total_inconsistencies"`
	Metadata             JSON[map[string]any] `gorm:"column:check_metadata" json:"metadata"`
	StartedAt            *time.Time           `json:"started_at"`
	FinishedAt           *time.Time           `json:"finished_at"`
	CreatedAt            time.Time            `json:"created_at"`
	Results              []ConsistencyResult  `gorm:"foreignKey:CheckID" json:"results,omitempty"`
}

// TableName keeps the historical table name.
func (ConsistencyCheck) TableName() string { return "data_consistency_checks" }

// ConsistencyResult is one stored Inconsistency.
type ConsistencyResult struct {
	ID                uint                    `gorm:"primaryKey" json:"id"`
	CheckID           uint                    `gorm:"index" json:"check_id"`
	JoinKeyValues     JSON[map[string]string] `json:"join_key_values"`
	FieldName         string                  `gorm:"size:255" json:"field_name"`
	SourceValue       *string                 `gorm:"type:text" json:"source_value"`
	TargetValue       *string                 `gorm:"type:text" json:"target_value"`
	InconsistencyType string                  `gorm:"size:32" json:"inconsistency_type"`
}

// TableName keeps the historical table name.
func (ConsistencyResult) TableName() string { return "data_consistency_results" }

// Schedule types of a ScheduledTask.
const (
	ScheduleTypePreset   = "preset"
	ScheduleTypeInterval = "interval"
	ScheduleTypeCron     = "cron"
)

// ScheduledTask runs a project comparison on a schedule. Enabled has no
// column default, so a task created with Enabled false is stored disabled.
type ScheduledTask struct {
	ID             uint                    `gorm:"primaryKey" json:"id"`
	Name           string                  `gorm:"size:255" json:"name"`
	ProjectID      uint                    `gorm:"index" json:"project_id"`
	Project        Project                 `json:"-"`
	ScheduleType   string                  `gorm:"size:16" json:"schedule_type"`
	ScheduleValue  string                  `gorm:"size:255" json:"schedule_value"`
	Enabled        bool                    `gorm:"not null" json:"enabled"`
	PrimaryKeys    JSON[[]string]          `json:"primary_keys"`
	KeyMappings    JSON[map[string]string] `json:"key_mappings"`
	TotalRuns      int                     `json:"total_runs"`
	SuccessfulRuns int                     `json:"successful_runs"`
	FailedRuns     int                     `json:"failed_runs"`
	LastRunAt      *time.Time              `json:"last_run_at"`
	LastRunStatus  string                  `gorm:"size:32" json:"last_run_status"`
	LastRunMessage string                  `gorm:"type:text" json:"last_run_message"`
	NextRunAt      *time.Time              `json:"next_run_at"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// Models lists every model for migration.
func Models() []any {
	return []any{
		&Connection{},
		&Project{},
		&ComparisonRun{},
		&ComparisonResult{},
		&ConsistencyConfig{},
		&ConsistencyCheck{},
		&ConsistencyResult{},
		&ScheduledTask{},
	}
}
