package model

import (
	"fmt"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

// Job is a predefined job template (e.g. "A340 harness assembly"), the parent of a set of processes.
type Job struct {
	ID          string
	Name        string
	Description string
	Processes   []Process
	CreatedAt   time.Time
}

// Process is a step of a job template, every job order device gets one task per process.
type Process struct {
	ID                  string
	JobID               string
	OperationName       string
	StandardTimeSeconds int
	TaskType            TaskType
	Order               int
}

// Validate validates the job and its processes.
func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if j.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}

	orders := map[int]bool{}
	for _, p := range j.Processes {
		if p.OperationName == "" {
			return fmt.Errorf("process operation name is required: %w", ErrNotValid)
		}
		if p.StandardTimeSeconds < 1 {
			return fmt.Errorf("process %q standard time must be at least 1 second: %w", p.OperationName, ErrNotValid)
		}
		if !p.TaskType.Valid() {
			return fmt.Errorf("process %q has unknown task type %q: %w", p.OperationName, p.TaskType, ErrNotValid)
		}
		if orders[p.Order] {
			return fmt.Errorf("process order %d is repeated: %w", p.Order, ErrNotValid)
		}
		orders[p.Order] = true
	}

	return nil
}

// JobOrderStatus represents the status of a job order.
type JobOrderStatus string

const (
	JobOrderStatusAvailable  JobOrderStatus = "available"
	JobOrderStatusInProgress JobOrderStatus = "in_progress"
	JobOrderStatusDone       JobOrderStatus = "done"
	JobOrderStatusRejected   JobOrderStatus = "rejected"
	JobOrderStatusArchived   JobOrderStatus = "archived"
)

// JobOrder is a batch of devices to be assembled following a job template.
type JobOrder struct {
	ID           string
	JobID        string
	OrderCode    string
	Title        string
	Description  string
	TotalDevices int
	DueDate      time.Time
	CreatedBy    string
	Status       JobOrderStatus
	CreatedAt    time.Time
}

// Validate validates the job order.
func (o *JobOrder) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if o.OrderCode == "" {
		return fmt.Errorf("order code is required: %w", ErrNotValid)
	}
	if o.Title == "" {
		return fmt.Errorf("title is required: %w", ErrNotValid)
	}
	if o.TotalDevices < 1 {
		return fmt.Errorf("total devices must be at least 1: %w", ErrNotValid)
	}
	if o.DueDate.IsZero() {
		return fmt.Errorf("due date is required: %w", ErrNotValid)
	}
	return nil
}

// DeviceStatus represents the status of a device.
type DeviceStatus string

const (
	DeviceStatusPending    DeviceStatus = "pending"
	DeviceStatusInProgress DeviceStatus = "in_progress"
	DeviceStatusCompleted  DeviceStatus = "completed"
	DeviceStatusRejected   DeviceStatus = "rejected"
)

// Device is a single unit inside a job order identified by its serial number.
type Device struct {
	ID           string
	JobOrderID   string
	SerialNumber string
	Status       DeviceStatus
	UpdatedAt    time.Time
}

// DeviceSerial returns the serial number of the n device (1 based) of a job order.
func DeviceSerial(orderCode string, n int) string {
	return fmt.Sprintf("%s-%04d", orderCode, n)
}

// ParseStandardTime parses a human standard time (e.g. "1h30m", "45s") into whole seconds.
func ParseStandardTime(s string) (int, error) {
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", err, ErrNotValid)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("standard time %q must be whole seconds: %w", s, ErrNotValid)
	}
	return int(d / time.Second), nil
}
