package taskstart_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/app/apptest"
	"github.com/joddb/shopfloor/internal/app/taskstart"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

func TestService_Run(t *testing.T) {
	now := apptest.T0.Add(time.Hour)
	earlier := apptest.T0.Add(10 * time.Minute)

	tests := map[string]struct {
		setup   func(t *testing.T, f apptest.Fixture)
		req     taskstart.Request
		expIDs  []string
		expErr  error
		expKeep bool
	}{
		"a technician should start an available task": {
			req:    taskstart.Request{UserID: "tech", TaskIDs: []string{"task-1-1"}},
			expIDs: []string{"task-1-1"},
		},
		"a technician should start multiple tasks at once": {
			req:    taskstart.Request{UserID: "u-tech", TaskIDs: []string{"task-1-1", "task-2-1"}},
			expIDs: []string{"task-1-1", "task-2-1"},
		},
		"the same technician should restart a rejected task": {
			setup: func(t *testing.T, f apptest.Fixture) {
				tk := f.Tasks[0]
				end := earlier.Add(time.Minute)
				actual := 60
				tk.Status = model.TaskStatusRejected
				tk.TechnicianID = "u-tech"
				tk.StartTime, tk.EndTime, tk.ActualTimeSeconds = &earlier, &end, &actual
				f.SetTask(t, tk)
			},
			req:    taskstart.Request{UserID: "tech", TaskIDs: []string{"task-1-1"}},
			expIDs: []string{"task-1-1"},
		},
		"another technician can't restart a rejected task": {
			setup: func(t *testing.T, f apptest.Fixture) {
				tk := f.Tasks[0]
				tk.Status = model.TaskStatusRejected
				tk.TechnicianID = "u-tech"
				tk.StartTime = &earlier
				f.SetTask(t, tk)
			},
			req:     taskstart.Request{UserID: "tech2", TaskIDs: []string{"task-1-1"}},
			expErr:  model.ErrNotAllowed,
			expKeep: true,
		},
		"a task already in progress can't be started": {
			setup: func(t *testing.T, f apptest.Fixture) {
				tk := f.Tasks[0]
				tk.Status = model.TaskStatusInProgress
				tk.TechnicianID = "u-tech"
				tk.StartTime = &earlier
				f.SetTask(t, tk)
			},
			req:     taskstart.Request{UserID: "tech", TaskIDs: []string{"task-1-1"}},
			expErr:  model.ErrNotValid,
			expKeep: true,
		},
		"an invalid task should not start any of the tasks": {
			setup: func(t *testing.T, f apptest.Fixture) {
				tk := f.Tasks[2]
				tk.Status = model.TaskStatusPendingQA
				f.SetTask(t, tk)
			},
			req:     taskstart.Request{UserID: "tech", TaskIDs: []string{"task-1-1", "task-2-1"}},
			expErr:  model.ErrNotValid,
			expKeep: true,
		},
		"repeated tasks should fail": {
			req:     taskstart.Request{UserID: "tech", TaskIDs: []string{"task-1-1", "task-1-1"}},
			expErr:  model.ErrNotValid,
			expKeep: true,
		},
		"no tasks should fail": {
			req:    taskstart.Request{UserID: "tech"},
			expErr: model.ErrNotValid,
		},
		"non technicians can't start tasks": {
			req:     taskstart.Request{UserID: "qa", TaskIDs: []string{"task-1-1"}},
			expErr:  model.ErrNotAllowed,
			expKeep: true,
		},
		"missing tasks should fail": {
			req:    taskstart.Request{UserID: "tech", TaskIDs: []string{"task-x"}},
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			f := apptest.NewFixture(t)
			if test.setup != nil {
				test.setup(t, f)
			}
			before := f.Task(t, "task-1-1")

			svc, err := taskstart.NewService(taskstart.ServiceConfig{Repository: f.Repo, TimeNow: apptest.FixedTime(now)})
			require.NoError(err)

			got, err := svc.Run(context.Background(), test.req)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				if test.expKeep {
					assert.Equal(before, f.Task(t, "task-1-1"))
				}
				return
			}
			require.NoError(err)
			require.Len(got, len(test.expIDs))
			for i, id := range test.expIDs {
				assert.Equal(id, got[i].ID)

				stored := f.Task(t, id)
				assert.Equal(model.TaskStatusInProgress, stored.Status)
				assert.Equal("u-tech", stored.TechnicianID)
				require.NotNil(stored.StartTime)
				assert.Equal(now, *stored.StartTime)
				assert.Nil(stored.EndTime)
				assert.Nil(stored.ActualTimeSeconds)

				d, err := f.Repo.GetDevice(context.Background(), stored.DeviceID)
				require.NoError(err)
				assert.Equal(model.DeviceStatusInProgress, d.Status)
			}
		})
	}
}

// racingRepository runs race once right before the first transition is stored.
type racingRepository struct {
	storage.Repository
	race func()
}

func (r *racingRepository) ApplyTransition(ctx context.Context, tr model.TaskTransition) error {
	if r.race != nil {
		race := r.race
		r.race = nil
		race()
	}
	return r.Repository.ApplyTransition(ctx, tr)
}

func TestService_RunConcurrentStart(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	f := apptest.NewFixture(t)
	first, err := taskstart.NewService(taskstart.ServiceConfig{Repository: f.Repo, TimeNow: apptest.FixedTime(apptest.T0)})
	require.NoError(err)

	repo := &racingRepository{Repository: f.Repo, race: func() {
		_, err := first.Run(ctx, taskstart.Request{UserID: "tech2", TaskIDs: []string{"task-1-1"}})
		require.NoError(err)
	}}
	second, err := taskstart.NewService(taskstart.ServiceConfig{Repository: repo, TimeNow: apptest.FixedTime(apptest.T0.Add(time.Second))})
	require.NoError(err)

	_, err = second.Run(ctx, taskstart.Request{UserID: "tech", TaskIDs: []string{"task-1-1"}})
	assert.ErrorIs(err, model.ErrNotValid)

	stored := f.Task(t, "task-1-1")
	assert.Equal(model.TaskStatusInProgress, stored.Status)
	assert.Equal("u-tech2", stored.TechnicianID)
	require.NotNil(stored.StartTime)
	assert.Equal(apptest.T0, *stored.StartTime)
}
