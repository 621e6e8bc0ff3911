package lib

import (
	"time"

	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/tracker"
)

// Role is the role of a shop floor user.
type Role string

const (
	RoleTechnician Role = "technician"
	RoleQuality    Role = "quality"
	RoleTester     Role = "tester"
	RoleSupervisor Role = "supervisor"
	RolePlanning   Role = "planning"
	RoleAdmin      Role = "admin"
)

// TaskStatus is the workflow state of a task.
//
// The typical lifecycle is:
//
//	available -> in_progress -> pending_qa -> pending_tester -> tester_approved -> pending_supervisor -> completed
//
// Any review can reject the task, the same technician restarts it.
type TaskStatus string

const (
	TaskStatusAvailable         TaskStatus = "available"
	TaskStatusInProgress        TaskStatus = "in_progress"
	TaskStatusPendingQA         TaskStatus = "pending_qa"
	TaskStatusPendingTester     TaskStatus = "pending_tester"
	TaskStatusTesterApproved    TaskStatus = "tester_approved"
	TaskStatusPendingSupervisor TaskStatus = "pending_supervisor"
	TaskStatusRejected          TaskStatus = "rejected"
	TaskStatusCompleted         TaskStatus = "completed"
)

// Stage is a review stage.
type Stage string

const (
	StageQuality    Stage = "quality"
	StageTester     Stage = "tester"
	StageSupervisor Stage = "supervisor"
)

// Decision is the outcome of a review.
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)

// Classification is the efficiency band of a task.
type Classification string

const (
	ClassificationOnTrack    Classification = "on-track"
	ClassificationCaution    Classification = "caution"
	ClassificationOverBudget Classification = "over-budget"
)

// User is a shop floor user.
type User struct {
	ID        string
	Username  string
	FullName  string
	Role      Role
	Active    bool
	CreatedAt time.Time
}

// AddUserOpts are the options to register a user.
type AddUserOpts struct {
	Username string
	FullName string
	Role     Role
}

// Process is a step of a job template.
type Process struct {
	Order         int
	OperationName string
	StandardTime  time.Duration
	TaskType      string
}

// Job is a job template.
type Job struct {
	ID          string
	Name        string
	Description string
	Processes   []Process
}

// Device is a unit being built in a job order.
type Device struct {
	ID           string
	SerialNumber string
	Status       string
}

// JobOrder is a batch of devices built from a job template.
type JobOrder struct {
	ID           string
	OrderCode    string
	Title        string
	TotalDevices int
	DueDate      time.Time
	Status       string
	Devices      []Device
}

// CreateJobOrderOpts are the options to create a job order.
type CreateJobOrderOpts struct {
	// Job is the job template name or ID. Without a job the order has no devices.
	Job          string
	OrderCode    string
	Title        string
	Description  string
	TotalDevices int
	DueDate      time.Time
}

// Task is a unit of work on a device.
type Task struct {
	ID            string
	OperationName string
	DeviceID      string
	JobOrderID    string
	TechnicianID  string
	Status        TaskStatus
	StandardTime  time.Duration
	StartTime     *time.Time
	EndTime       *time.Time
	// ActualTime is set once the task ended.
	ActualTime *time.Duration
	Notes      string
}

// ListTasksOpts are the options to list tasks.
type ListTasksOpts struct {
	Statuses   []TaskStatus
	JobOrderID string
}

// ReviewOpts are the options of a task review.
type ReviewOpts struct {
	TaskID string
	// Stage is only required for admins, reviewers review at their role stage.
	Stage    Stage
	Decision Decision
	Comments string
}

// Tracking is the live tracking reading of a task.
type Tracking struct {
	TaskID string
	// Active is true while the task is in progress.
	Active          bool
	Elapsed         time.Duration
	StandardTime    time.Duration
	ProgressPercent float64
	// Efficiency is only meaningful when HasEfficiency is set.
	Efficiency     float64
	HasEfficiency  bool
	Classification Classification
	At             time.Time
}

// TechnicianMetrics are the daily metrics of a technician.
type TechnicianMetrics struct {
	TechnicianID      string
	Date              time.Time
	Productivity      float64
	AverageEfficiency float64
	Utilization       float64
	TasksCompleted    int
}

func seconds(s int) time.Duration { return time.Duration(s) * time.Second }

func fromInternalUser(u model.User) User {
	return User{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: Role(u.Role), Active: u.Active, CreatedAt: u.CreatedAt}
}

func fromInternalJob(j model.Job) Job {
	job := Job{ID: j.ID, Name: j.Name, Description: j.Description}
	for _, p := range j.Processes {
		job.Processes = append(job.Processes, Process{
			Order:         p.Order,
			OperationName: p.OperationName,
			StandardTime:  seconds(p.StandardTimeSeconds),
			TaskType:      string(p.TaskType),
		})
	}
	return job
}

func fromInternalJobOrder(o model.JobOrder, devices []model.Device) JobOrder {
	jo := JobOrder{
		ID:           o.ID,
		OrderCode:    o.OrderCode,
		Title:        o.Title,
		TotalDevices: o.TotalDevices,
		DueDate:      o.DueDate,
		Status:       string(o.Status),
	}
	for _, d := range devices {
		jo.Devices = append(jo.Devices, Device{ID: d.ID, SerialNumber: d.SerialNumber, Status: string(d.Status)})
	}
	return jo
}

func fromInternalTask(t model.Task) Task {
	task := Task{
		ID:            t.ID,
		OperationName: t.OperationName,
		DeviceID:      t.DeviceID,
		JobOrderID:    t.JobOrderID,
		TechnicianID:  t.TechnicianID,
		Status:        TaskStatus(t.Status),
		StandardTime:  seconds(t.StandardTimeSeconds),
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		Notes:         t.Notes,
	}
	if t.ActualTimeSeconds != nil {
		d := seconds(*t.ActualTimeSeconds)
		task.ActualTime = &d
	}
	return task
}

func fromInternalTaskList(ts []model.Task) []Task {
	out := make([]Task, 0, len(ts))
	for _, t := range ts {
		out = append(out, fromInternalTask(t))
	}
	return out
}

func fromSnapshot(taskID string, s tracker.Snapshot, at time.Time) Tracking {
	return Tracking{
		TaskID:          taskID,
		Active:          s.Active,
		Elapsed:         s.Elapsed(),
		StandardTime:    seconds(s.StandardTimeSeconds),
		ProgressPercent: s.ProgressPercent,
		Efficiency:      s.Efficiency,
		HasEfficiency:   s.HasEfficiency,
		Classification:  Classification(s.Classification),
		At:              at,
	}
}

func toInternalStatuses(sts []TaskStatus) []model.TaskStatus {
	if len(sts) == 0 {
		return nil
	}
	out := make([]model.TaskStatus, 0, len(sts))
	for _, st := range sts {
		out = append(out, model.TaskStatus(st))
	}
	return out
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case isInternalError(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case isInternalError(err, model.ErrAlreadyExists):
		return joinErrors(err, ErrAlreadyExists)
	case isInternalError(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	case isInternalError(err, model.ErrNotAllowed):
		return joinErrors(err, ErrNotAllowed)
	default:
		return err
	}
}

func isInternalError(err, target error) bool {
	for {
		if err == target {
			return true
		}
		unwrapped := unwrapSingle(err)
		if unwrapped == nil {
			return false
		}
		err = unwrapped
	}
}

func unwrapSingle(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
