package taskend_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/app/apptest"
	"github.com/joddb/shopfloor/internal/app/taskend"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

func TestService_Run(t *testing.T) {
	start := apptest.T0
	now := start.Add(500 * time.Second)

	inProgress := func(t *testing.T, f apptest.Fixture) {
		tk := f.Tasks[0]
		tk.Status = model.TaskStatusInProgress
		tk.TechnicianID = "u-tech"
		tk.StartTime = &start
		f.SetTask(t, tk)
	}

	tests := map[string]struct {
		setup  func(t *testing.T, f apptest.Fixture)
		req    taskend.Request
		expErr error
	}{
		"the assigned technician should end the task": {
			setup: inProgress,
			req:   taskend.Request{UserID: "tech", TaskID: "task-1-1", Notes: "all good"},
		},
		"another technician can't end the task": {
			setup:  inProgress,
			req:    taskend.Request{UserID: "tech2", TaskID: "task-1-1"},
			expErr: model.ErrNotAllowed,
		},
		"a task that is not in progress can't be ended": {
			req:    taskend.Request{UserID: "tech", TaskID: "task-1-1"},
			expErr: model.ErrNotValid,
		},
		"unknown users are not allowed": {
			setup:  inProgress,
			req:    taskend.Request{UserID: "ghost", TaskID: "task-1-1"},
			expErr: model.ErrNotAllowed,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			f := apptest.NewFixture(t)
			if test.setup != nil {
				test.setup(t, f)
			}

			svc, err := taskend.NewService(taskend.ServiceConfig{
				Repository: f.Repo,
				IDGen:      apptest.SeqID("id"),
				TimeNow:    apptest.FixedTime(now),
			})
			require.NoError(err)

			got, err := svc.Run(ctx, test.req)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				insps, err := f.Repo.ListInspections(ctx, storage.InspectionQuery{TaskID: "task-1-1"})
				require.NoError(err)
				assert.Empty(insps)
				return
			}
			require.NoError(err)

			stored := f.Task(t, "task-1-1")
			assert.Equal(*got, stored)
			assert.Equal(model.TaskStatusPendingQA, stored.Status)
			require.NotNil(stored.ActualTimeSeconds)
			assert.Equal(500, *stored.ActualTimeSeconds)
			require.NotNil(stored.EndTime)
			assert.Equal(now, *stored.EndTime)
			assert.Equal("all good", stored.Notes)

			d, err := f.Repo.GetDevice(ctx, "dev-1")
			require.NoError(err)
			assert.Equal(model.DeviceStatusCompleted, d.Status)

			insp, err := f.Repo.GetPendingInspection(ctx, "task-1-1", model.InspectionStageQuality)
			require.NoError(err)
			assert.Equal("Awaiting quality inspection", insp.Comments)
			assert.Equal("dev-1", insp.DeviceID)

			for user, typ := range map[string]model.NotificationType{
				"u-qa":     model.NotificationTaskReadyForInspection,
				"u-tester": model.NotificationTaskReadyForTesting,
				"u-sup":    model.NotificationTaskCompleted,
			} {
				ns, err := f.Repo.ListNotifications(ctx, user, true)
				require.NoError(err)
				require.Len(ns, 1, user)
				assert.Equal(typ, ns[0].Type)
				assert.Equal("task-1-1", ns[0].Payload["task_id"])
				assert.Equal("JO-1", ns[0].Payload["job_order_code"])
			}

			ns, err := f.Repo.ListNotifications(ctx, "u-tech", false)
			require.NoError(err)
			assert.Empty(ns)
		})
	}
}
