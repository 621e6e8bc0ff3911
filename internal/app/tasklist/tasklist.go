package tasklist

import (
	"context"
	"fmt"
	"slices"

	"github.com/joddb/shopfloor/internal/access"
	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// ServiceConfig is the configuration for the task list service.
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

// Service lists the tasks a user can work on.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new task list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// Request represents the task list request parameters.
type Request struct {
	// UserID is the acting user (ID or username), the role decides the visible tasks.
	UserID string
	// StatusFilter optionally limits the result to these statuses.
	StatusFilter []model.TaskStatus
	// JobOrderID optionally limits the result to a job order.
	JobOrderID string
}

// Run lists the tasks visible to the user.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Task, error) {
	user, err := access.Resolve(ctx, s.repo, req.UserID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListTasks(ctx, storage.TaskQuery{Statuses: req.StatusFilter, JobOrderID: req.JobOrderID})
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	filtered := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if Visible(*user, t) {
			filtered = append(filtered, t)
		}
	}

	s.logger.Debugf("found %d tasks visible to %s", len(filtered), user.Username)
	return filtered, nil
}

// Visible returns true if the user's role lets it see the task:
// technicians see the available technician tasks and their own in progress or rejected ones,
// every reviewer sees the tasks waiting for its stage, planners and admins see everything.
func Visible(u model.User, t model.Task) bool {
	switch u.Role {
	case model.RoleTechnician:
		if t.Status == model.TaskStatusAvailable && t.TaskType == model.TaskTypeTechnician {
			return true
		}
		return t.TechnicianID == u.ID && slices.Contains([]model.TaskStatus{model.TaskStatusInProgress, model.TaskStatusRejected}, t.Status)
	case model.RoleQuality:
		return t.Status == model.TaskStatusPendingQA
	case model.RoleTester:
		return t.Status == model.TaskStatusPendingTester
	case model.RoleSupervisor:
		return t.Status == model.TaskStatusTesterApproved || t.Status == model.TaskStatusPendingSupervisor
	case model.RolePlanning, model.RoleAdmin:
		return true
	}
	return false
}
