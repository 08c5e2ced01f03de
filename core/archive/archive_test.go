package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"table-reconciler/core/reconcile"
	"table-reconciler/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func completedRun(t *testing.T, id uint) *reconcile.Run {
	t.Helper()
	run := reconcile.NewRun(reconcile.RunKindComparison, 4)
	require.NoError(t, run.Start())
	require.NoError(t, run.Complete(1))
	run.ID = id
	return run
}

func TestArchiver_Store(t *testing.T) {
	ctx := context.Background()
	value := "Bob"
	diffs := []reconcile.Difference{{RecordID: "2", RecordKey: `["2"]`, FieldName: "name", SourceValue: &value, ChangeType: reconcile.ChangeAdded}}

	t.Run("Uploads JSON", func(t *testing.T) {
		client := new(mocks.Client)
		var uploaded string
		client.On("PutObject", ctx, "bucket", "reports/comparison/12.json", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				body, _ := io.ReadAll(args.Get(3).(io.Reader))
				uploaded = string(body)
			}).
			Return(minio.UploadInfo{}, nil)

		a := New(client, "bucket", "/reports/")
		name, err := a.Store(ctx, NewComparisonReport(completedRun(t, 12), diffs))
		require.NoError(t, err)
		assert.Equal(t, "reports/comparison/12.json", name)
		assert.Contains(t, uploaded, `"record_id":"2"`)
		assert.Contains(t, uploaded, `"status":"completed"`)
	})

	t.Run("Rejects unsaved run", func(t *testing.T) {
		a := New(new(mocks.Client), "bucket", "reports")
		_, err := a.Store(ctx, NewComparisonReport(completedRun(t, 0), diffs))
		assert.Error(t, err)
	})

	t.Run("Upload failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("quota"))

		a := New(client, "bucket", "reports")
		_, err := a.Store(ctx, NewComparisonReport(completedRun(t, 3), diffs))
		assert.ErrorContains(t, err, "quota")
	})
}

func TestArchiver_Fetch(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	body := `{"kind":"consistency","run_id":5,"status":"failed","total":0,"metadata":{"error":"boom"}}`
	client.On("GetObject", ctx, "bucket", "reports/consistency/5.json", minio.GetObjectOptions{}).
		Return(io.NopCloser(strings.NewReader(body)), nil)

	a := New(client, "bucket", "reports")
	report, err := a.Fetch(ctx, reconcile.RunKindConsistency, 5)
	require.NoError(t, err)
	assert.Equal(t, reconcile.RunFailed, report.Status)
	assert.Equal(t, "boom", report.Metadata["error"])
}

func TestArchiver_List(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)

	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "reports/comparison/2.json"}
	ch <- minio.ObjectInfo{Key: "reports/comparison/notes.txt"}
	ch <- minio.ObjectInfo{Key: "reports/comparison/1.json"}
	close(ch)
	client.On("ListObjects", ctx, "bucket", minio.ListObjectsOptions{Prefix: "reports/comparison/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	a := New(client, "bucket", "reports")
	names, err := a.List(ctx, reconcile.RunKindComparison)
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/comparison/1.json", "reports/comparison/2.json"}, names)
}

func TestArchiver_Remove(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.Client)
	client.On("RemoveObject", ctx, "bucket", "reports/comparison/9.json", minio.RemoveObjectOptions{}).Return(nil)

	a := New(client, "bucket", "reports")
	assert.NoError(t, a.Remove(ctx, reconcile.RunKindComparison, 9))
	client.AssertExpectations(t)
}
