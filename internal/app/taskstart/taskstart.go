package taskstart

import (
	"context"
	"fmt"
	"time"

	"github.com/joddb/shopfloor/internal/access"
	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
	"github.com/joddb/shopfloor/internal/workflow"
)

// ServiceConfig is the configuration for the task start service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskStart"})
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Service starts tasks.
type Service struct {
	repo    storage.Repository
	logger  log.Logger
	timeNow func() time.Time
}

// NewService creates a new task start service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger, timeNow: cfg.TimeNow}, nil
}

// Request represents the task start request parameters.
type Request struct {
	// UserID is the technician (ID or username) starting the tasks.
	UserID  string
	TaskIDs []string
}

// Run assigns the tasks to the technician and starts their clock. All the tasks are
// checked before starting any of them. Rejected tasks can only be restarted by the
// technician that worked on them.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Task, error) {
	if len(req.TaskIDs) == 0 {
		return nil, fmt.Errorf("at least one task is required: %w", model.ErrNotValid)
	}

	user, err := access.Require(ctx, s.repo, req.UserID, model.RoleTechnician)
	if err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(req.TaskIDs))
	seen := map[string]bool{}
	for _, id := range req.TaskIDs {
		if seen[id] {
			return nil, fmt.Errorf("task %s is repeated: %w", id, model.ErrNotValid)
		}
		seen[id] = true

		t, err := s.repo.GetTask(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("could not get task: %w", err)
		}
		if t.Status == model.TaskStatusRejected && t.TechnicianID != user.ID {
			return nil, fmt.Errorf("task %s was rejected on another technician's work: %w", id, model.ErrNotAllowed)
		}
		if _, err := workflow.Next(t.Status, workflow.EventStart); err != nil {
			return nil, fmt.Errorf("task %s can't be started: %w", id, err)
		}
		tasks = append(tasks, *t)
	}

	now := s.timeNow().UTC()
	started := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		status, err := workflow.Next(t.Status, workflow.EventStart)
		if err != nil {
			return started, fmt.Errorf("task %s can't be started: %w", t.ID, err)
		}

		from := t.Status
		start := now
		t.TechnicianID = user.ID
		t.Status = status
		t.StartTime = &start
		t.EndTime = nil
		t.ActualTimeSeconds = nil
		t.UpdatedAt = now

		err = s.repo.ApplyTransition(ctx, model.TaskTransition{FromStatus: from, Task: t, DeviceStatus: model.DeviceStatusInProgress})
		if err != nil {
			return started, fmt.Errorf("could not start task %s: %w", t.ID, err)
		}

		s.logger.Infof("Task %s (%s) started by %s", t.ID, t.OperationName, user.Username)
		started = append(started, t)
	}

	return started, nil
}
