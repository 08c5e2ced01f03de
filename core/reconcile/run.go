package reconcile

import (
	"context"
	"maps"
	"time"
)

// RunKind distinguishes comparison runs from consistency check runs.
type RunKind string

const (
	RunKindComparison  RunKind = "comparison"
	RunKindConsistency RunKind = "consistency"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Metadata keys written by the services.
const (
	MetaError           = "error"
	MetaPrimaryKeys     = "primary_keys"
	MetaKeyMappings     = "key_mappings"
	MetaKeyStrategy     = "key_strategy"
	MetaKeyWarning      = "key_warning"
	MetaComparator      = "comparator"
	MetaSourceRows      = "total_source_rows"
	MetaTargetRows      = "total_target_rows"
	MetaScheduledTaskID = "scheduled_task_id"
)

// Run tracks one comparison or consistency check. A run leaves pending or
// running exactly once; after reaching completed or failed it does not change.
type Run struct {
	// ID is assigned by the RunPersister.
	ID uint

	Kind RunKind

	// SubjectID is the project (comparison) or consistency config the run
	// belongs to. Zero for ad-hoc runs.
	SubjectID uint

	Status RunStatus

	// Total is the number of differences or inconsistencies found.
	Total int

	Metadata map[string]any

	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRun creates a pending run.
func NewRun(kind RunKind, subjectID uint) *Run {
	return &Run{
		Kind:      kind,
		SubjectID: subjectID,
		Status:    RunPending,
		Metadata:  make(map[string]any),
	}
}

// SetMeta records a metadata entry. It has no effect on terminal runs.
func (r *Run) SetMeta(key string, value any) {
	if r.IsTerminal() {
		return
	}
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
}

// Start moves a pending run to running.
func (r *Run) Start() error {
	if r.Status != RunPending {
		return &TransitionError{From: r.Status, To: RunRunning}
	}
	r.Status = RunRunning
	r.StartedAt = time.Now()
	return nil
}

// Complete moves a running run to completed with the given total.
func (r *Run) Complete(total int) error {
	if r.Status != RunRunning {
		return &TransitionError{From: r.Status, To: RunCompleted}
	}
	r.Total = total
	r.Status = RunCompleted
	r.FinishedAt = time.Now()
	return nil
}

// Completed returns a completed copy of a running run, leaving r running.
// The copy is what gets persisted; r only adopts it once the save succeeded,
// so a failed save can still move r to failed.
func (r *Run) Completed(total int) (*Run, error) {
	if r.Status != RunRunning {
		return nil, &TransitionError{From: r.Status, To: RunCompleted}
	}
	c := *r
	c.Metadata = maps.Clone(r.Metadata)
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	c.Total = total
	c.Status = RunCompleted
	c.FinishedAt = time.Now()
	return &c, nil
}

// Fail moves a pending or running run to failed and records cause under
// the "error" metadata key.
func (r *Run) Fail(cause error) error {
	if r.IsTerminal() {
		return &TransitionError{From: r.Status, To: RunFailed}
	}
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	r.SetMeta(MetaError, msg)
	r.Status = RunFailed
	r.FinishedAt = time.Now()
	return nil
}

// IsTerminal reports whether the run is completed or failed.
func (r *Run) IsTerminal() bool {
	return r.Status == RunCompleted || r.Status == RunFailed
}

// RunPersister stores a terminal run together with its findings. A call
// either stores the run and every child record or stores nothing.
// Implementations return the stored run id and set run.ID.
type RunPersister interface {
	SaveComparison(ctx context.Context, run *Run, diffs []Difference) (uint, error)
	SaveConsistency(ctx context.Context, run *Run, incs []Inconsistency) (uint, error)
}
