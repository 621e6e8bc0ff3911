package joborderprogress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joddb/shopfloor/internal/access"
	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/metrics"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// ServiceConfig is the configuration for the job order progress service.
type ServiceConfig struct {
	Repository storage.Repository
	Thresholds metrics.Thresholds
	Logger     log.Logger
	TimeNow    func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	c.Thresholds = c.Thresholds.Defaults()
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Service computes the progress and alerts of a job order.
type Service struct {
	repo       storage.Repository
	thresholds metrics.Thresholds
	logger     log.Logger
	timeNow    func() time.Time
}

// NewService creates a new job order progress service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:       cfg.Repository,
		thresholds: cfg.Thresholds,
		logger:     cfg.Logger,
		timeNow:    cfg.TimeNow,
	}, nil
}

// Request represents the job order progress request parameters.
type Request struct {
	// UserID is the acting user (ID or username), must be a supervisor, a planner or an admin.
	UserID string
	// JobOrder is the job order ID or order code.
	JobOrder string
}

// Run computes the device progress and the active alerts of a job order.
// Archived job orders are not valid.
func (s *Service) Run(ctx context.Context, req Request) (*model.JobOrderProgress, error) {
	if _, err := access.Require(ctx, s.repo, req.UserID, access.Supervision...); err != nil {
		return nil, err
	}

	order, err := s.repo.GetJobOrderByCode(ctx, req.JobOrder)
	if errors.Is(err, model.ErrNotFound) {
		order, err = s.repo.GetJobOrder(ctx, req.JobOrder)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get job order: %w", err)
	}
	if order.Status == model.JobOrderStatusArchived {
		return nil, fmt.Errorf("job order %s is archived: %w", order.OrderCode, model.ErrNotValid)
	}

	devices, err := s.repo.ListDevices(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("could not list devices: %w", err)
	}
	tasks, err := s.repo.ListTasks(ctx, storage.TaskQuery{JobOrderID: order.ID})
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}
	usernames := make(map[string]string, len(users))
	for _, u := range users {
		usernames[u.ID] = u.Username
	}

	p := metrics.Progress(order.ID, devices)
	p.Alerts = metrics.Alerts(metrics.AlertsRequest{
		JobOrder:  *order,
		Progress:  p,
		Tasks:     tasks,
		Usernames: usernames,
		Now:       s.timeNow(),
	}, s.thresholds)

	return &p, nil
}
