package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMeili overrides only the calls the delete paths make.
type fakeMeili struct {
	meilisearch.ServiceManager
	index   *fakeIndex
	outcome *meilisearch.Task
}

func (f *fakeMeili) Index(string) meilisearch.IndexManager { return f.index }

func (f *fakeMeili) WaitForTaskWithContext(context.Context, int64, time.Duration) (*meilisearch.Task, error) {
	return f.outcome, nil
}

type fakeIndex struct {
	meilisearch.IndexManager
	enqueueErr error
}

func (i *fakeIndex) DeleteDocumentsWithContext(context.Context, []string, *meilisearch.DocumentOptions) (*meilisearch.TaskInfo, error) {
	if i.enqueueErr != nil {
		return nil, i.enqueueErr
	}
	return &meilisearch.TaskInfo{TaskUID: 1}, nil
}

func (i *fakeIndex) DeleteAllDocumentsWithContext(context.Context, *meilisearch.DocumentOptions) (*meilisearch.TaskInfo, error) {
	if i.enqueueErr != nil {
		return nil, i.enqueueErr
	}
	return &meilisearch.TaskInfo{TaskUID: 2}, nil
}

func failedTask(code, message string) *meilisearch.Task {
	task := &meilisearch.Task{Status: meilisearch.TaskStatusFailed}
	task.Error.Code = code
	task.Error.Message = message
	return task
}

func TestMeilisearchDriver_DeleteOnMissingIndex(t *testing.T) {
	tests := []struct {
		name    string
		index   *fakeIndex
		outcome *meilisearch.Task
		wantErr bool
	}{
		{
			name:    "task succeeded",
			index:   &fakeIndex{},
			outcome: &meilisearch.Task{Status: meilisearch.TaskStatusSucceeded},
		},
		{
			name:    "task failed with index_not_found",
			index:   &fakeIndex{},
			outcome: failedTask("index_not_found", "Index `org_x_content` not found."),
		},
		{
			name: "request rejected with index_not_found",
			index: func() *fakeIndex {
				apiErr := &meilisearch.Error{StatusCode: 404}
				apiErr.MeilisearchApiError.Code = "index_not_found"
				return &fakeIndex{enqueueErr: apiErr}
			}(),
		},
		{
			name:    "other task failure",
			index:   &fakeIndex{},
			outcome: failedTask("internal", "disk full"),
			wantErr: true,
		},
		{
			name:    "transport failure",
			index:   &fakeIndex{enqueueErr: errors.New("connection refused")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewMeilisearchDriver(&fakeMeili{index: tt.index, outcome: tt.outcome}, time.Second)

			delErr := d.DeleteDocuments(context.Background(), "org_x_content", []string{"id"})
			clearErr := d.DeleteAllDocuments(context.Background(), "org_x_content")

			if tt.wantErr {
				var driverErr *DriverError
				require.ErrorAs(t, delErr, &driverErr)
				assert.Equal(t, "DeleteDocuments", driverErr.Op)
				require.ErrorAs(t, clearErr, &driverErr)
				assert.Equal(t, "DeleteAllDocuments", driverErr.Op)
				return
			}
			assert.NoError(t, delErr)
			assert.NoError(t, clearErr)
		})
	}
}
