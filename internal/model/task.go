package model

import (
	"fmt"
	"math"
	"time"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	TaskStatusAvailable          TaskStatus = "available"
	TaskStatusInProgress         TaskStatus = "in_progress"
	TaskStatusDone               TaskStatus = "done"
	TaskStatusPendingQA          TaskStatus = "pending_qa"
	TaskStatusQAApproved         TaskStatus = "qa_approved"
	TaskStatusPendingTester      TaskStatus = "pending_tester"
	TaskStatusTesterApproved     TaskStatus = "tester_approved"
	TaskStatusPendingSupervisor  TaskStatus = "pending_supervisor"
	TaskStatusSupervisorApproved TaskStatus = "supervisor_approved"
	TaskStatusRejected           TaskStatus = "rejected"
	TaskStatusCompleted          TaskStatus = "completed"
)

// TaskStatuses is the closed set of task statuses in workflow order.
var TaskStatuses = []TaskStatus{
	TaskStatusAvailable,
	TaskStatusInProgress,
	TaskStatusDone,
	TaskStatusPendingQA,
	TaskStatusQAApproved,
	TaskStatusPendingTester,
	TaskStatusTesterApproved,
	TaskStatusPendingSupervisor,
	TaskStatusSupervisorApproved,
	TaskStatusRejected,
	TaskStatusCompleted,
}

// Valid returns true if the status is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	for _, st := range TaskStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// TaskType is the kind of work a task (or process) represents.
type TaskType string

const (
	TaskTypeTechnician TaskType = "technician"
	TaskTypeQuality    TaskType = "quality"
	TaskTypeTester     TaskType = "tester"
)

// Valid returns true if the type is known.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeTechnician, TaskTypeQuality, TaskTypeTester:
		return true
	}
	return false
}

// Task is a unit of work performed by a technician on a device.
type Task struct {
	ID                  string
	ProcessID           string
	DeviceID            string
	JobOrderID          string
	TechnicianID        string
	OperationName       string
	StandardTimeSeconds int
	TaskType            TaskType
	Status              TaskStatus
	StartTime           *time.Time
	EndTime             *time.Time
	ActualTimeSeconds   *int
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Validate validates the task.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if t.DeviceID == "" {
		return fmt.Errorf("device id is required: %w", ErrNotValid)
	}
	if t.JobOrderID == "" {
		return fmt.Errorf("job order id is required: %w", ErrNotValid)
	}
	if t.OperationName == "" {
		return fmt.Errorf("operation name is required: %w", ErrNotValid)
	}
	if t.StandardTimeSeconds < 1 {
		return fmt.Errorf("standard time must be at least 1 second: %w", ErrNotValid)
	}
	if !t.TaskType.Valid() {
		return fmt.Errorf("unknown task type %q: %w", t.TaskType, ErrNotValid)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("unknown task status %q: %w", t.Status, ErrNotValid)
	}
	return nil
}

// Efficiency returns the finished task efficiency percentage (standard / actual * 100)
// rounded to 2 decimals. The second value is false when the task has no actual time.
func (t Task) Efficiency() (float64, bool) {
	if t.ActualTimeSeconds == nil || *t.ActualTimeSeconds <= 0 {
		return 0, false
	}
	eff := float64(t.StandardTimeSeconds) / float64(*t.ActualTimeSeconds) * 100
	return math.Round(eff*100) / 100, true
}

// Finished returns true when the technician already ended the task.
func (t Task) Finished() bool {
	return t.EndTime != nil && t.ActualTimeSeconds != nil
}

// TaskTransition groups all the changes that a single workflow step applies,
// they must be stored atomically.
type TaskTransition struct {
	// FromStatus, when set, is the status the stored task must still have.
	FromStatus    TaskStatus
	Task          Task
	DeviceStatus  DeviceStatus
	Inspections   []Inspection
	Notifications []Notification
}
