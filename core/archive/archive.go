package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"table-reconciler/core/reconcile"
	"table-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
)

// Report is the exported form of a finished run.
type Report struct {
	Kind            reconcile.RunKind         `json:"kind"`
	RunID           uint                      `json:"run_id"`
	SubjectID       uint                      `json:"subject_id"`
	Status          reconcile.RunStatus       `json:"status"`
	Total           int                       `json:"total"`
	Metadata        map[string]any            `json:"metadata"`
	StartedAt       time.Time                 `json:"started_at"`
	FinishedAt      time.Time                 `json:"finished_at"`
	Differences     []reconcile.Difference    `json:"differences,omitempty"`
	Inconsistencies []reconcile.Inconsistency `json:"inconsistencies,omitempty"`
}

// NewComparisonReport builds a report for a comparison run.
func NewComparisonReport(run *reconcile.Run, diffs []reconcile.Difference) Report {
	r := fromRun(run)
	r.Differences = diffs
	return r
}

// NewConsistencyReport builds a report for a consistency run.
func NewConsistencyReport(run *reconcile.Run, incs []reconcile.Inconsistency) Report {
	r := fromRun(run)
	r.Inconsistencies = incs
	return r
}

func fromRun(run *reconcile.Run) Report {
	return Report{
		Kind:       run.Kind,
		RunID:      run.ID,
		SubjectID:  run.SubjectID,
		Status:     run.Status,
		Total:      run.Total,
		Metadata:   run.Metadata,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}

// Archiver stores run reports as JSON objects named
// <prefix>/<kind>/<run id>.json.
type Archiver struct {
	client storage.Client
	bucket string
	prefix string
}

// New creates an Archiver writing to bucket under prefix.
func New(client storage.Client, bucket, prefix string) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// ObjectName returns the object name of a report.
func (a *Archiver) ObjectName(kind reconcile.RunKind, runID uint) string {
	return path.Join(a.prefix, string(kind), fmt.Sprintf("%d.json", runID))
}

// Store uploads report and returns its object name.
func (a *Archiver) Store(ctx context.Context, report Report) (string, error) {
	if report.RunID == 0 {
		return "", fmt.Errorf("report has no run id")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	name := a.ObjectName(report.Kind, report.RunID)
	_, err = a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", name, err)
	}
	return name, nil
}

// Fetch downloads and decodes a stored report.
func (a *Archiver) Fetch(ctx context.Context, kind reconcile.RunKind, runID uint) (*Report, error) {
	name := a.ObjectName(kind, runID)
	obj, err := a.client.GetObject(ctx, a.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", name, err)
	}
	defer obj.Close()

	var report Report
	if err := json.NewDecoder(obj).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", name, err)
	}
	return &report, nil
}

// List returns the object names of all reports of kind, sorted.
func (a *Archiver) List(ctx context.Context, kind reconcile.RunKind) ([]string, error) {
	prefix := path.Join(a.prefix, string(kind)) + "/"
	var names []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, ".json") {
			names = append(names, obj.Key)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes a stored report.
func (a *Archiver) Remove(ctx context.Context, kind reconcile.RunKind, runID uint) error {
	name := a.ObjectName(kind, runID)
	if err := a.client.RemoveObject(ctx, a.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove report %s: %w", name, err)
	}
	return nil
}
