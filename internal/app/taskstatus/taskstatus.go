package taskstatus

import (
	"context"
	"fmt"
	"time"

	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
	"github.com/joddb/shopfloor/internal/tracker"
)

// ServiceConfig is the configuration for the task status service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
	TimeNow    func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Service retrieves a task with its live tracking values.
type Service struct {
	repo    storage.Repository
	logger  log.Logger
	timeNow func() time.Time
}

// NewService creates a new task status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger, timeNow: cfg.TimeNow}, nil
}

// Request represents the task status request parameters.
type Request struct {
	TaskID string
}

// Result is a task with the context to show it.
type Result struct {
	Task     model.Task
	Device   model.Device
	JobOrder model.JobOrder
	Snapshot tracker.Snapshot
	// At is the time the snapshot was computed at.
	At time.Time
}

// Run retrieves the task and computes its tracker snapshot at the current time.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	task, err := s.repo.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	device, err := s.repo.GetDevice(ctx, task.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("could not get device: %w", err)
	}

	order, err := s.repo.GetJobOrder(ctx, task.JobOrderID)
	if err != nil {
		return nil, fmt.Errorf("could not get job order: %w", err)
	}

	now := s.timeNow()
	return &Result{
		Task:     *task,
		Device:   *device,
		JobOrder: *order,
		Snapshot: tracker.Compute(tracker.InputFromTask(*task), now),
		At:       now,
	}, nil
}
