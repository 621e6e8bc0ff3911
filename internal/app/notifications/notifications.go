package notifications

import (
	"context"
	"fmt"

	"github.com/joddb/shopfloor/internal/access"
	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// ServiceConfig is the configuration for the notifications service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Notifications"})
	return nil
}

// Service reads the user notifications.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new notifications service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// ListRequest represents the notification list request parameters.
type ListRequest struct {
	// UserID is the acting user (ID or username).
	UserID     string
	UnreadOnly bool
}

// List returns the notifications of the acting user, newest first.
func (s *Service) List(ctx context.Context, req ListRequest) ([]model.Notification, error) {
	user, err := access.Resolve(ctx, s.repo, req.UserID)
	if err != nil {
		return nil, err
	}

	ns, err := s.repo.ListNotifications(ctx, user.ID, req.UnreadOnly)
	if err != nil {
		return nil, fmt.Errorf("could not list notifications: %w", err)
	}

	return ns, nil
}

// MarkReadRequest represents the mark read request parameters.
type MarkReadRequest struct {
	// UserID is the acting user (ID or username), must own the notification.
	UserID         string
	NotificationID string
}

// MarkRead marks one of the acting user notifications as read.
func (s *Service) MarkRead(ctx context.Context, req MarkReadRequest) error {
	user, err := access.Resolve(ctx, s.repo, req.UserID)
	if err != nil {
		return err
	}

	ns, err := s.repo.ListNotifications(ctx, user.ID, false)
	if err != nil {
		return fmt.Errorf("could not list notifications: %w", err)
	}

	owned := false
	for _, n := range ns {
		if n.ID == req.NotificationID {
			owned = true
			break
		}
	}
	if !owned {
		return fmt.Errorf("notification %s: %w", req.NotificationID, model.ErrNotFound)
	}

	if err := s.repo.MarkNotificationRead(ctx, req.NotificationID); err != nil {
		return fmt.Errorf("could not mark notification as read: %w", err)
	}

	s.logger.Debugf("notification %s read by %s", req.NotificationID, user.Username)
	return nil
}
