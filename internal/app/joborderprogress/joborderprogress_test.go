package joborderprogress_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/app/apptest"
	"github.com/joddb/shopfloor/internal/app/joborderprogress"
	"github.com/joddb/shopfloor/internal/model"
)

func TestService_Run(t *testing.T) {
	due := apptest.T0.AddDate(0, 0, 2)
	lowEfficiency := model.Alert{
		Type:         model.AlertTypeLowEfficiency,
		Message:      "Task task-2-1 (Technician: tech2) has low efficiency: 50.0%.",
		TaskID:       "task-2-1",
		TechnicianID: "u-tech2",
	}
	dueDateRisk := model.Alert{
		Type:       model.AlertTypeDueDateRisk,
		Message:    "Job Order JO-1 is due on 2025-03-12 but is only 50.0% complete.",
		JobOrderID: "jo-1",
		DueDate:    &due,
		Progress:   50,
	}

	tests := map[string]struct {
		req    joborderprogress.Request
		now    time.Time
		exp    model.JobOrderProgress
		expErr error
	}{
		"a job order close to its due date should have both alerts": {
			req: joborderprogress.Request{UserID: "sup", JobOrder: "JO-1"},
			now: apptest.T0,
			exp: model.JobOrderProgress{
				JobOrderID: "jo-1", ProgressPercent: 50, TotalCompleted: 1, TotalDevices: 2,
				Alerts: []model.Alert{lowEfficiency, dueDateRisk},
			},
		},
		"a job order should be found by ID": {
			req: joborderprogress.Request{UserID: "planner", JobOrder: "jo-1"},
			now: apptest.T0,
			exp: model.JobOrderProgress{
				JobOrderID: "jo-1", ProgressPercent: 50, TotalCompleted: 1, TotalDevices: 2,
				Alerts: []model.Alert{lowEfficiency, dueDateRisk},
			},
		},
		"a far due date should not alert": {
			req: joborderprogress.Request{UserID: "admin", JobOrder: "JO-1"},
			now: apptest.T0.AddDate(0, 0, -10),
			exp: model.JobOrderProgress{
				JobOrderID: "jo-1", ProgressPercent: 50, TotalCompleted: 1, TotalDevices: 2,
				Alerts: []model.Alert{lowEfficiency},
			},
		},
		"archived job orders should fail": {
			req:    joborderprogress.Request{UserID: "sup", JobOrder: "JO-OLD"},
			now:    apptest.T0,
			expErr: model.ErrNotValid,
		},
		"missing job orders should fail": {
			req:    joborderprogress.Request{UserID: "sup", JobOrder: "JO-X"},
			now:    apptest.T0,
			expErr: model.ErrNotFound,
		},
		"technicians can't see the progress": {
			req:    joborderprogress.Request{UserID: "tech", JobOrder: "JO-1"},
			now:    apptest.T0,
			expErr: model.ErrNotAllowed,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			f := apptest.NewFixture(t)
			f.EndTask(t, "task-1-1", "u-tech", apptest.T0, 500, model.TaskStatusPendingQA, model.DeviceStatusCompleted)
			f.EndTask(t, "task-2-1", "u-tech2", apptest.T0, 1200, model.TaskStatusPendingQA, "")
			require.NoError(f.Repo.CreateJobOrder(context.Background(), model.JobOrder{
				ID: "jo-old", OrderCode: "JO-OLD", Title: "Old batch", TotalDevices: 1,
				DueDate: apptest.T0, Status: model.JobOrderStatusArchived, CreatedAt: apptest.T0,
			}, nil, nil))

			svc, err := joborderprogress.NewService(joborderprogress.ServiceConfig{
				Repository: f.Repo,
				TimeNow:    apptest.FixedTime(test.now),
			})
			require.NoError(err)

			got, err := svc.Run(context.Background(), test.req)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal(test.exp, *got)
		})
	}
}
