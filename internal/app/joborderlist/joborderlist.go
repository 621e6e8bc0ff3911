package joborderlist

import (
	"context"
	"fmt"

	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// ServiceConfig is the configuration for the job order list service.
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

// Service lists job orders.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new job order list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// Request represents the job order list request parameters.
type Request struct {
	// IncludeArchived also returns archived job orders.
	IncludeArchived bool
}

// Run lists the job orders by due date.
func (s *Service) Run(ctx context.Context, req Request) ([]model.JobOrder, error) {
	orders, err := s.repo.ListJobOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list job orders: %w", err)
	}

	if !req.IncludeArchived {
		filtered := make([]model.JobOrder, 0, len(orders))
		for _, o := range orders {
			if o.Status != model.JobOrderStatusArchived {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	s.logger.Debugf("found %d job orders", len(orders))
	return orders, nil
}
