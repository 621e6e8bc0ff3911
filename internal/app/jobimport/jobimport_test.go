package jobimport_test

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/app/apptest"
	"github.com/joddb/shopfloor/internal/app/jobimport"
	"github.com/joddb/shopfloor/internal/model"
	storageio "github.com/joddb/shopfloor/internal/storage/io"
	"github.com/joddb/shopfloor/internal/storage/storagemock"
)

const jobYAML = `name: A340 harness
processes:
  - operation: Cut wires
    standard_time: 15m
  - operation: Inspect
    standard_time_seconds: 300
    type: quality
`

func TestService_Run(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	fs := fstest.MapFS{"job.yaml": &fstest.MapFile{Data: []byte(jobYAML)}}

	tests := map[string]struct {
		mock   func(m *storagemock.MockRepository)
		path   string
		expJob *model.Job
		expErr error
	}{
		"a new job should be stored with generated IDs": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetJobByName", mock.Anything, "A340 harness").Once().Return(nil, fmt.Errorf("job: %w", model.ErrNotFound))
				m.On("CreateJob", mock.Anything, mock.Anything).Once().Return(nil)
			},
			path: "job.yaml",
			expJob: &model.Job{
				ID: "id-1", Name: "A340 harness", CreatedAt: now,
				Processes: []model.Process{
					{ID: "id-2", JobID: "id-1", OperationName: "Cut wires", StandardTimeSeconds: 900, TaskType: model.TaskTypeTechnician, Order: 1},
					{ID: "id-3", JobID: "id-1", OperationName: "Inspect", StandardTimeSeconds: 300, TaskType: model.TaskTypeQuality, Order: 2},
				},
			},
		},
		"an existing job name should fail": {
			mock: func(m *storagemock.MockRepository) {
				m.On("GetJobByName", mock.Anything, "A340 harness").Once().Return(&model.Job{ID: "other"}, nil)
			},
			path:   "job.yaml",
			expErr: model.ErrAlreadyExists,
		},
		"a missing file should fail": {
			mock: func(m *storagemock.MockRepository) {},
			path: "missing.yaml",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := &storagemock.MockRepository{}
			test.mock(m)

			svc, err := jobimport.NewService(jobimport.ServiceConfig{
				Repository: m,
				Loader:     storageio.NewJobYAMLRepository(fs),
				IDGen:      apptest.SeqID("id"),
				TimeNow:    apptest.FixedTime(now),
			})
			require.NoError(err)

			got, err := svc.Run(context.Background(), jobimport.Request{Path: test.path})

			switch {
			case test.expJob != nil:
				require.NoError(err)
				assert.Equal(test.expJob, got)
			case test.expErr != nil:
				assert.ErrorIs(err, test.expErr)
			default:
				assert.Error(err)
			}

			m.AssertExpectations(t)
		})
	}
}
