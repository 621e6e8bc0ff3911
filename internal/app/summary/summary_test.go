package summary_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/app/apptest"
	"github.com/joddb/shopfloor/internal/app/summary"
	"github.com/joddb/shopfloor/internal/model"
)

func TestService_Run(t *testing.T) {
	tests := map[string]struct {
		req summary.Request
		exp map[model.TaskStatus]int
	}{
		"all the tasks should be counted": {
			exp: map[model.TaskStatus]int{
				model.TaskStatusAvailable:          3,
				model.TaskStatusSupervisorApproved: 1,
			},
		},
		"a missing job order should count zero on every status": {
			req: summary.Request{JobOrderID: "jo-x"},
			exp: map[model.TaskStatus]int{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			f := apptest.NewFixture(t)
			f.EndTask(t, "task-1-1", "u-tech", apptest.T0, 600, model.TaskStatusSupervisorApproved, model.DeviceStatusCompleted)

			svc, err := summary.NewService(summary.ServiceConfig{Repository: f.Repo})
			require.NoError(err)

			got, err := svc.Run(context.Background(), test.req)
			require.NoError(err)

			assert.Len(got, len(model.TaskStatuses))
			for _, st := range model.TaskStatuses {
				assert.Equal(test.exp[st], got[st], st)
			}
		})
	}
}
