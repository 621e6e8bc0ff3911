package techmetrics

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

// ServiceConfig is the configuration for the technician metrics service.
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

// Service computes the daily metrics of a technician.
type Service struct {
	repo       storage.Repository
	thresholds metrics.Thresholds
	logger     log.Logger
	timeNow    func() time.Time
}

// NewService creates a new technician metrics service.
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

// Request represents the technician metrics request parameters.
type Request struct {
	// UserID is the acting user (ID or username), must be a supervisor, a planner or an admin.
	UserID string
	// TechnicianID is the technician (ID or username) to compute.
	TechnicianID string
	// Date is the day to compute, today when zero.
	Date time.Time
}

// Run computes the technician metrics of a day.
func (s *Service) Run(ctx context.Context, req Request) (*model.TechnicianMetrics, error) {
	if _, err := access.Require(ctx, s.repo, req.UserID, access.Supervision...); err != nil {
		return nil, err
	}

	tech, err := s.repo.GetUserByUsername(ctx, req.TechnicianID)
	if errors.Is(err, model.ErrNotFound) {
		tech, err = s.repo.GetUser(ctx, req.TechnicianID)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get technician: %w", err)
	}
	if tech.Role != model.RoleTechnician {
		return nil, fmt.Errorf("user %s is not a technician: %w", tech.Username, model.ErrNotValid)
	}

	date := req.Date
	if date.IsZero() {
		date = s.timeNow()
	}

	tasks, err := s.repo.ListTasks(ctx, storage.TaskQuery{TechnicianID: tech.ID})
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	m := metrics.Technician(tech.ID, date, tasks, s.thresholds)
	s.logger.Debugf("technician %s completed %d tasks on %s", tech.Username, m.TasksCompleted, m.Date.Format(time.DateOnly))
	return &m, nil
}
