package userlist

import (
	"context"
	"fmt"

	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// ServiceConfig is the configuration for the user list service.
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

// Service lists users.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new user list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// Request represents the user list request parameters.
type Request struct {
	// RoleFilter is an optional filter to only show users with this role.
	RoleFilter *model.Role
}

// Run lists the users, optionally filtered by role.
func (s *Service) Run(ctx context.Context, req Request) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}

	if req.RoleFilter != nil {
		filtered := make([]model.User, 0, len(users))
		for _, u := range users {
			if u.Role == *req.RoleFilter {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	s.logger.Debugf("found %d users", len(users))
	return users, nil
}
