package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/joddb/shopfloor/internal/access"
	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/metrics"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// ServiceConfig is the configuration for the planner statistics service.
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

// Service computes the planning dashboard statistics.
type Service struct {
	repo    storage.Repository
	logger  log.Logger
	timeNow func() time.Time
}

// NewService creates a new planner statistics service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger, timeNow: cfg.TimeNow}, nil
}

// Request represents the planner statistics request parameters.
type Request struct {
	// UserID is the acting user (ID or username), must be a planner or an admin.
	UserID string
}

// Run computes today's planner statistics.
func (s *Service) Run(ctx context.Context, req Request) (*model.PlannerStatistics, error) {
	if _, err := access.Require(ctx, s.repo, req.UserID, access.Planning...); err != nil {
		return nil, err
	}

	orders, err := s.repo.ListJobOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list job orders: %w", err)
	}
	tasks, err := s.repo.ListTasks(ctx, storage.TaskQuery{})
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}

	st := metrics.Planner(metrics.PlannerRequest{JobOrders: orders, Tasks: tasks, Users: users, Now: s.timeNow()})
	return &st, nil
}
