package storage

import (
	"context"

	"github.com/joddb/shopfloor/internal/model"
)

// UserRepository is the interface for user persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, u model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

// JobRepository is the interface for job templates, job orders and devices persistence.
type JobRepository interface {
	// CreateJob stores a job template with its processes.
	CreateJob(ctx context.Context, j model.Job) error
	GetJob(ctx context.Context, id string) (*model.Job, error)
	GetJobByName(ctx context.Context, name string) (*model.Job, error)
	ListJobs(ctx context.Context) ([]model.Job, error)

	// CreateJobOrder stores a job order with all its devices and tasks atomically.
	CreateJobOrder(ctx context.Context, o model.JobOrder, devices []model.Device, tasks []model.Task) error
	GetJobOrder(ctx context.Context, id string) (*model.JobOrder, error)
	GetJobOrderByCode(ctx context.Context, code string) (*model.JobOrder, error)
	ListJobOrders(ctx context.Context) ([]model.JobOrder, error)

	GetDevice(ctx context.Context, id string) (*model.Device, error)
	ListDevices(ctx context.Context, jobOrderID string) ([]model.Device, error)
}

// TaskQuery filters tasks, zero values don't filter.
type TaskQuery struct {
	Statuses     []model.TaskStatus
	TechnicianID string
	JobOrderID   string
	TaskType     model.TaskType
}

// TaskRepository is the interface for task persistence.
type TaskRepository interface {
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context, q TaskQuery) ([]model.Task, error)
	// ApplyTransition stores the task, the device status, the inspections and the
	// notifications of a workflow step atomically.
	ApplyTransition(ctx context.Context, tr model.TaskTransition) error
}

// InspectionQuery filters inspections, zero values don't filter.
type InspectionQuery struct {
	TaskID   string
	Stage    model.InspectionStage
	Decision model.Decision
}

// InspectionRepository is the interface for inspection persistence.
type InspectionRepository interface {
	ListInspections(ctx context.Context, q InspectionQuery) ([]model.Inspection, error)
	// GetPendingInspection returns the latest pending inspection of a task at a stage.
	GetPendingInspection(ctx context.Context, taskID string, stage model.InspectionStage) (*model.Inspection, error)
}

// NotificationRepository is the interface for notification persistence.
type NotificationRepository interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// Repository groups all the repositories.
//
//go:generate mockery --name Repository --structname MockRepository --output storagemock --outpkg storagemock --filename storage.go
type Repository interface {
	UserRepository
	JobRepository
	TaskRepository
	InspectionRepository
	NotificationRepository
}

// MatchTask returns true if the task satisfies the query.
func (q TaskQuery) MatchTask(t model.Task) bool {
	if q.TechnicianID != "" && t.TechnicianID != q.TechnicianID {
		return false
	}
	if q.JobOrderID != "" && t.JobOrderID != q.JobOrderID {
		return false
	}
	if q.TaskType != "" && t.TaskType != q.TaskType {
		return false
	}
	if len(q.Statuses) == 0 {
		return true
	}
	for _, st := range q.Statuses {
		if t.Status == st {
			return true
		}
	}
	return false
}

// MatchInspection returns true if the inspection satisfies the query.
func (q InspectionQuery) MatchInspection(i model.Inspection) bool {
	if q.TaskID != "" && i.TaskID != q.TaskID {
		return false
	}
	if q.Stage != "" && i.Stage != q.Stage {
		return false
	}
	if q.Decision != "" && i.Decision != q.Decision {
		return false
	}
	return true
}
