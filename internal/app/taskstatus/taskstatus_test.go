package taskstatus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/app/apptest"
	"github.com/joddb/shopfloor/internal/app/taskstatus"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/tracker"
)

func TestService_Run(t *testing.T) {
	start := apptest.T0.Add(time.Hour)

	tests := map[string]struct {
		task        func(f apptest.Fixture) model.Task
		taskID      string
		expSnapshot tracker.Snapshot
		expProgress float64
		expErr      error
	}{
		"an in progress task should be tracked at the current time": {
			task: func(f apptest.Fixture) model.Task {
				tk := f.Tasks[0]
				tk.Status = model.TaskStatusInProgress
				tk.TechnicianID = "u-tech"
				tk.StartTime = &start
				return tk
			},
			taskID: "task-1-1",
			expSnapshot: tracker.Snapshot{
				Active: true, ElapsedSeconds: 500, StandardTimeSeconds: 600,
				Efficiency: 120, HasEfficiency: true, Classification: tracker.ClassificationOnTrack,
			},
			expProgress: 83.33,
		},
		"an available task should not be tracked": {
			taskID:      "task-1-1",
			expSnapshot: tracker.Snapshot{StandardTimeSeconds: 600},
		},
		"a missing task should fail": {
			taskID: "task-x",
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			f := apptest.NewFixture(t)
			if test.task != nil {
				f.SetTask(t, test.task(f))
			}

			now := start.Add(500 * time.Second)
			svc, err := taskstatus.NewService(taskstatus.ServiceConfig{Repository: f.Repo, TimeNow: apptest.FixedTime(now)})
			require.NoError(err)

			res, err := svc.Run(context.Background(), taskstatus.Request{TaskID: test.taskID})

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal("JO-1-0001", res.Device.SerialNumber)
			assert.Equal("JO-1", res.JobOrder.OrderCode)
			assert.Equal(now, res.At)
			assert.InDelta(test.expProgress, res.Snapshot.ProgressPercent, 0.01)
			res.Snapshot.ProgressPercent = 0
			assert.Equal(test.expSnapshot, res.Snapshot)
		})
	}
}
