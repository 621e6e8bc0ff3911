// Package apptest has the shared fixtures of the app service tests.
package apptest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage/memory"
)

// T0 is the fixture creation time.
var T0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

// Users of the fixture by username, the ID is "u-<username>".
var Users = map[string]model.Role{
	"tech":    model.RoleTechnician,
	"tech2":   model.RoleTechnician,
	"qa":      model.RoleQuality,
	"tester":  model.RoleTester,
	"sup":     model.RoleSupervisor,
	"planner": model.RolePlanning,
	"admin":   model.RoleAdmin,
}

// Fixture is a seeded repository: the Users, a job order "JO-1" due in 2 days with 2 devices
// and one "Crimp" (600s) and one "Inspect" (300s, quality) task per device.
type Fixture struct {
	Repo     *memory.Repository
	JobOrder model.JobOrder
	Devices  []model.Device
	// Tasks are ordered by device and process: task-1-1, task-1-2, task-2-1, task-2-2.
	Tasks []model.Task
}

// NewFixture returns a seeded memory repository.
func NewFixture(t *testing.T) Fixture {
	t.Helper()
	ctx := context.Background()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	for username, role := range Users {
		require.NoError(t, repo.CreateUser(ctx, model.User{
			ID: "u-" + username, Username: username, FullName: "User " + username, Role: role, Active: true, CreatedAt: T0,
		}))
	}

	job := model.Job{ID: "job-1", Name: "harness", CreatedAt: T0, Processes: []model.Process{
		{ID: "p-1", OperationName: "Crimp", StandardTimeSeconds: 600, TaskType: model.TaskTypeTechnician, Order: 1},
		{ID: "p-2", OperationName: "Inspect", StandardTimeSeconds: 300, TaskType: model.TaskTypeQuality, Order: 2},
	}}
	require.NoError(t, repo.CreateJob(ctx, job))

	f := Fixture{Repo: repo}
	f.JobOrder = model.JobOrder{
		ID: "jo-1", JobID: job.ID, OrderCode: "JO-1", Title: "Harness batch", TotalDevices: 2,
		DueDate: T0.AddDate(0, 0, 2), CreatedBy: "u-planner", Status: model.JobOrderStatusAvailable, CreatedAt: T0,
	}
	for i := 1; i <= 2; i++ {
		d := model.Device{
			ID: fmt.Sprintf("dev-%d", i), JobOrderID: f.JobOrder.ID, SerialNumber: model.DeviceSerial("JO-1", i),
			Status: model.DeviceStatusPending, UpdatedAt: T0,
		}
		f.Devices = append(f.Devices, d)
		for j, p := range job.Processes {
			f.Tasks = append(f.Tasks, model.Task{
				ID: fmt.Sprintf("task-%d-%d", i, j+1), ProcessID: p.ID, DeviceID: d.ID, JobOrderID: f.JobOrder.ID,
				OperationName: p.OperationName, StandardTimeSeconds: p.StandardTimeSeconds, TaskType: p.TaskType,
				Status: model.TaskStatusAvailable, CreatedAt: T0.Add(time.Duration(len(f.Tasks)) * time.Second), UpdatedAt: T0,
			})
		}
	}
	require.NoError(t, repo.CreateJobOrder(ctx, f.JobOrder, f.Devices, f.Tasks))

	return f
}

// SetTask overwrites a task of the fixture.
func (f Fixture) SetTask(t *testing.T, task model.Task) {
	t.Helper()
	require.NoError(t, f.Repo.ApplyTransition(context.Background(), model.TaskTransition{Task: task}))
}

// Task returns the stored task.
func (f Fixture) Task(t *testing.T, id string) model.Task {
	t.Helper()
	task, err := f.Repo.GetTask(context.Background(), id)
	require.NoError(t, err)
	return *task
}

// SeqID returns an ID generator that returns prefix-1, prefix-2...
func SeqID(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// FixedTime returns a clock function that always returns t.
func FixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// EndTask leaves a task worked by technicianID from start for actualSeconds at status,
// and sets the device status when deviceStatus is not empty.
func (f Fixture) EndTask(t *testing.T, id, technicianID string, start time.Time, actualSeconds int, status model.TaskStatus, deviceStatus model.DeviceStatus) {
	t.Helper()
	task := f.Task(t, id)
	end := start.Add(time.Duration(actualSeconds) * time.Second)
	task.TechnicianID = technicianID
	task.Status = status
	task.StartTime = &start
	task.EndTime = &end
	task.ActualTimeSeconds = &actualSeconds
	task.UpdatedAt = end
	require.NoError(t, f.Repo.ApplyTransition(context.Background(), model.TaskTransition{Task: task, DeviceStatus: deviceStatus}))
}
