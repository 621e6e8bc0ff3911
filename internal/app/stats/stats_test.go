package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/app/apptest"
	"github.com/joddb/shopfloor/internal/app/stats"
	"github.com/joddb/shopfloor/internal/model"
)

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		user   string
		exp    model.PlannerStatistics
		expErr error
	}{
		"planners should get the statistics": {
			user: "planner",
			exp: model.PlannerStatistics{
				ActiveJobOrders:       2,
				DueThisWeek:           1,
				AvgProductivity:       120,
				ActiveTechnicians:     2,
				TotalTechnicians:      4,
				TechnicianUtilization: 50,
				OverdueTasks:          1,
				PendingReviews:        1,
			},
		},
		"supervisors can't get the statistics": {
			user:   "sup",
			expErr: model.ErrNotAllowed,
		},
		"unknown users can't get the statistics": {
			user:   "ghost",
			expErr: model.ErrNotAllowed,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			f := apptest.NewFixture(t)

			started := apptest.T0.Add(time.Hour)
			tk := f.Tasks[0]
			tk.Status = model.TaskStatusInProgress
			tk.TechnicianID = "u-tech"
			tk.StartTime = &started
			f.SetTask(t, tk)
			f.EndTask(t, "task-2-1", "u-tech2", apptest.T0.Add(30*time.Minute), 500, model.TaskStatusPendingQA, "")

			old := model.JobOrder{
				ID: "jo-old", OrderCode: "JO-OLD", Title: "Late batch", TotalDevices: 1,
				DueDate: apptest.T0.AddDate(0, 0, -1), Status: model.JobOrderStatusAvailable, CreatedAt: apptest.T0,
			}
			dev := model.Device{ID: "dev-old", SerialNumber: model.DeviceSerial("JO-OLD", 1), Status: model.DeviceStatusPending, UpdatedAt: apptest.T0}
			task := model.Task{
				ID: "task-old", DeviceID: dev.ID, JobOrderID: old.ID, OperationName: "Crimp", StandardTimeSeconds: 600,
				TaskType: model.TaskTypeTechnician, Status: model.TaskStatusAvailable, CreatedAt: apptest.T0, UpdatedAt: apptest.T0,
			}
			require.NoError(f.Repo.CreateJobOrder(ctx, old, []model.Device{dev}, []model.Task{task}))

			svc, err := stats.NewService(stats.ServiceConfig{
				Repository: f.Repo,
				TimeNow:    apptest.FixedTime(apptest.T0.Add(3 * time.Hour)),
			})
			require.NoError(err)

			got, err := svc.Run(ctx, stats.Request{UserID: test.user})

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal(test.exp, *got)
		})
	}
}
