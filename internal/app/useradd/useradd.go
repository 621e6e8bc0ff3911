package useradd

import (
	"context"
	"fmt"
	"time"

	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// ServiceConfig is the configuration for the user add service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
	IDGen      func() string
	TimeNow    func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.UserAdd"})
	if c.IDGen == nil {
		c.IDGen = model.NewID
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Service registers shop-floor users.
type Service struct {
	repo    storage.Repository
	logger  log.Logger
	idGen   func() string
	timeNow func() time.Time
}

// NewService creates a new user add service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:    cfg.Repository,
		logger:  cfg.Logger,
		idGen:   cfg.IDGen,
		timeNow: cfg.TimeNow,
	}, nil
}

// Request represents the user add request parameters.
type Request struct {
	Username string
	FullName string
	Role     model.Role
}

// Run creates an active user, usernames are unique.
func (s *Service) Run(ctx context.Context, req Request) (*model.User, error) {
	u := model.User{
		ID:        s.idGen(),
		Username:  req.Username,
		FullName:  req.FullName,
		Role:      req.Role,
		Active:    true,
		CreatedAt: s.timeNow().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	s.logger.Infof("User %q created with role %s", u.Username, u.Role)
	return &u, nil
}
