package summary

import (
	"context"
	"fmt"

	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/metrics"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// ServiceConfig is the configuration for the task summary service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	return nil
}

// Service counts tasks per status.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new task summary service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// Request represents the task summary request parameters.
type Request struct {
	// JobOrderID optionally limits the summary to a job order.
	JobOrderID string
}

// Run returns the number of tasks on every status, statuses without tasks are zero.
func (s *Service) Run(ctx context.Context, req Request) (model.TaskSummary, error) {
	tasks, err := s.repo.ListTasks(ctx, storage.TaskQuery{JobOrderID: req.JobOrderID})
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	return metrics.Summary(tasks), nil
}
