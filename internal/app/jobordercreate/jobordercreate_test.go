package jobordercreate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/app/apptest"
	"github.com/joddb/shopfloor/internal/app/jobordercreate"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

func TestService_Run(t *testing.T) {
	due := apptest.T0.AddDate(0, 0, 5)

	tests := map[string]struct {
		req        jobordercreate.Request
		expDevices []string
		expTasks   int
		expErr     error
	}{
		"a job order from a job should create devices and one task per process": {
			req: jobordercreate.Request{
				UserID: "planner", JobName: "harness", OrderCode: "JO-9", Title: "Batch", TotalDevices: 3, DueDate: due,
			},
			expDevices: []string{"JO-9-0001", "JO-9-0002", "JO-9-0003"},
			expTasks:   6,
		},
		"a job can be referenced by ID": {
			req: jobordercreate.Request{
				UserID: "admin", JobName: "job-1", OrderCode: "JO-9", Title: "Batch", TotalDevices: 1, DueDate: due,
			},
			expDevices: []string{"JO-9-0001"},
			expTasks:   2,
		},
		"a job order without job should have no devices": {
			req: jobordercreate.Request{
				UserID: "planner", OrderCode: "JO-9", Title: "Batch", TotalDevices: 3, DueDate: due,
			},
			expDevices: []string{},
			expTasks:   0,
		},
		"a repeated order code should fail": {
			req: jobordercreate.Request{
				UserID: "planner", JobName: "harness", OrderCode: "JO-1", Title: "Batch", TotalDevices: 1, DueDate: due,
			},
			expErr: model.ErrAlreadyExists,
		},
		"zero devices should fail": {
			req: jobordercreate.Request{
				UserID: "planner", JobName: "harness", OrderCode: "JO-9", Title: "Batch", DueDate: due,
			},
			expErr: model.ErrNotValid,
		},
		"a missing job should fail": {
			req: jobordercreate.Request{
				UserID: "planner", JobName: "nope", OrderCode: "JO-9", Title: "Batch", TotalDevices: 1, DueDate: due,
			},
			expErr: model.ErrNotFound,
		},
		"technicians can't create job orders": {
			req: jobordercreate.Request{
				UserID: "tech", JobName: "harness", OrderCode: "JO-9", Title: "Batch", TotalDevices: 1, DueDate: due,
			},
			expErr: model.ErrNotAllowed,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			f := apptest.NewFixture(t)
			svc, err := jobordercreate.NewService(jobordercreate.ServiceConfig{
				Repository: f.Repo,
				IDGen:      apptest.SeqID("id"),
				TimeNow:    apptest.FixedTime(apptest.T0),
			})
			require.NoError(err)

			res, err := svc.Run(ctx, test.req)

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)

			assert.Equal(model.JobOrderStatusAvailable, res.JobOrder.Status)
			assert.Equal("u-"+test.req.UserID, res.JobOrder.CreatedBy)

			devices, err := f.Repo.ListDevices(ctx, res.JobOrder.ID)
			require.NoError(err)
			serials := []string{}
			for _, d := range devices {
				serials = append(serials, d.SerialNumber)
				assert.Equal(model.DeviceStatusPending, d.Status)
			}
			assert.Equal(test.expDevices, serials)

			tasks, err := f.Repo.ListTasks(ctx, storage.TaskQuery{JobOrderID: res.JobOrder.ID})
			require.NoError(err)
			assert.Len(tasks, test.expTasks)
			for _, tk := range tasks {
				assert.Equal(model.TaskStatusAvailable, tk.Status)
				assert.NotEmpty(tk.ProcessID)
			}
		})
	}
}
