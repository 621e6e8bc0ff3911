package lib_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/pkg/lib"
)

const harnessYAML = `
name: harness
processes:
  - operation: Crimp
    standard_time: 10m
  - operation: Visual inspection
    standard_time: 5m
    type: quality
`

// newTestClient creates a client with a temp SQLite DB, the users and a job order
// with a single device.
func newTestClient(t *testing.T) (*lib.Client, lib.JobOrder) {
	t.Helper()
	ctx := context.Background()

	client, err := lib.New(ctx, lib.Config{DBPath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})

	for username, role := range map[string]lib.Role{
		"planner": lib.RolePlanning,
		"tech":    lib.RoleTechnician,
		"tech2":   lib.RoleTechnician,
		"qa":      lib.RoleQuality,
		"sup":     lib.RoleSupervisor,
	} {
		_, err := client.AddUser(ctx, lib.AddUserOpts{Username: username, Role: role})
		require.NoError(t, err)
	}

	_, err = client.ImportJob(ctx, fstest.MapFS{"jobs/harness.yaml": {Data: []byte(harnessYAML)}}, "jobs/harness.yaml")
	require.NoError(t, err)

	jo, err := client.CreateJobOrder(ctx, "planner", lib.CreateJobOrderOpts{
		Job:          "harness",
		OrderCode:    "JO-1",
		Title:        "Harness batch",
		TotalDevices: 1,
		DueDate:      time.Now().AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	return client, *jo
}

func technicianTask(t *testing.T, client *lib.Client) lib.Task {
	t.Helper()
	tasks, err := client.ListTasks(context.Background(), "tech", nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	return tasks[0]
}

func TestCreateJobOrder(t *testing.T) {
	tests := map[string]struct {
		user  string
		opts  lib.CreateJobOrderOpts
		expIs error
	}{
		"Creating a job order as a planner should work.": {
			user: "planner",
			opts: lib.CreateJobOrderOpts{Job: "harness", OrderCode: "JO-2", Title: "x", TotalDevices: 3, DueDate: time.Now()},
		},
		"Creating a job order with a used code should fail.": {
			user:  "planner",
			opts:  lib.CreateJobOrderOpts{Job: "harness", OrderCode: "JO-1", Title: "x", TotalDevices: 1, DueDate: time.Now()},
			expIs: lib.ErrAlreadyExists,
		},
		"Creating a job order from a missing job should fail.": {
			user:  "planner",
			opts:  lib.CreateJobOrderOpts{Job: "missing", OrderCode: "JO-3", Title: "x", TotalDevices: 1, DueDate: time.Now()},
			expIs: lib.ErrNotFound,
		},
		"Creating a job order as a technician should fail.": {
			user:  "tech",
			opts:  lib.CreateJobOrderOpts{Job: "harness", OrderCode: "JO-4", Title: "x", TotalDevices: 1, DueDate: time.Now()},
			expIs: lib.ErrNotAllowed,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t)

			jo, err := client.CreateJobOrder(context.Background(), test.user, test.opts)

			if test.expIs != nil {
				assert.True(t, errors.Is(err, test.expIs), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, jo.Devices, test.opts.TotalDevices)
			assert.Equal(t, "JO-2-0001", jo.Devices[0].SerialNumber)
		})
	}
}

func TestTaskWorkflow(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	client, jo := newTestClient(t)
	require.Len(jo.Devices, 1)

	task := technicianTask(t, client)
	assert.Equal("Crimp", task.OperationName)
	assert.Equal(10*time.Minute, task.StandardTime)

	// Only technicians start tasks.
	_, err := client.StartTasks(ctx, "qa", task.ID)
	assert.True(errors.Is(err, lib.ErrNotAllowed))

	started, err := client.StartTasks(ctx, "tech", task.ID)
	require.NoError(err)
	assert.Equal(lib.TaskStatusInProgress, started[0].Status)

	tr, err := client.TaskTracking(ctx, task.ID)
	require.NoError(err)
	assert.True(tr.Active)
	assert.Equal(10*time.Minute, tr.StandardTime)

	// Only the assigned technician ends it.
	_, err = client.EndTask(ctx, "tech2", task.ID, "")
	assert.True(errors.Is(err, lib.ErrNotAllowed))

	ended, err := client.EndTask(ctx, "tech", task.ID, "done")
	require.NoError(err)
	assert.Equal(lib.TaskStatusPendingQA, ended.Status)
	require.NotNil(ended.ActualTime)
	assert.Equal("done", ended.Notes)

	// Ending it again is not a valid transition.
	_, err = client.EndTask(ctx, "tech", task.ID, "")
	assert.True(errors.Is(err, lib.ErrNotValid))

	rejected, err := client.Review(ctx, "qa", lib.ReviewOpts{TaskID: task.ID, Decision: lib.DecisionRejected, Comments: "loose pin"})
	require.NoError(err)
	assert.Equal(lib.TaskStatusRejected, rejected.Status)

	// Another technician can't pick up the rejected work.
	_, err = client.StartTasks(ctx, "tech2", task.ID)
	assert.True(errors.Is(err, lib.ErrNotAllowed))

	restarted, err := client.StartTasks(ctx, "tech", task.ID)
	require.NoError(err)
	assert.Equal(lib.TaskStatusInProgress, restarted[0].Status)
}

func TestTaskTrackingMissingTask(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.TaskTracking(context.Background(), "missing")
	assert.True(t, errors.Is(err, lib.ErrNotFound))

	_, err = client.WatchTask(context.Background(), "missing", time.Second)
	assert.True(t, errors.Is(err, lib.ErrNotFound))
}

func TestWatchTask(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	client, _ := newTestClient(t)
	task := technicianTask(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := client.WatchTask(ctx, task.ID, 50*time.Millisecond)
	require.NoError(err)

	// The first reading is the inert one of an available task.
	select {
	case tr := <-ch:
		assert.Equal(task.ID, tr.TaskID)
		assert.False(tr.Active)
	case <-time.After(5 * time.Second):
		t.Fatal("no tracking reading received")
	}

	_, err = client.StartTasks(context.Background(), "tech", task.ID)
	require.NoError(err)

	// The poll notices the start and the tracker becomes active.
	deadline := time.After(5 * time.Second)
	for active := false; !active; {
		select {
		case tr := <-ch:
			active = tr.Active
		case <-deadline:
			t.Fatal("the watch never became active")
		}
	}

	cancel()
	for range ch {
	}
}

func TestTechnicianMetrics(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	_, err := client.TechnicianMetrics(ctx, "tech", "tech", time.Time{})
	assert.True(t, errors.Is(err, lib.ErrNotAllowed))

	m, err := client.TechnicianMetrics(ctx, "sup", "tech", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, m.TasksCompleted)
}
