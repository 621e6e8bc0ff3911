// Package notify builds the workflow notifications.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// Builder creates notifications with generated IDs and creation time.
type Builder struct {
	Users storage.UserRepository
	IDGen func() string
	Now   time.Time
}

// ToUser returns a notification for a single user.
func (b Builder) ToUser(userID string, typ model.NotificationType, msg string, payload map[string]string) model.Notification {
	return model.Notification{
		ID:        b.IDGen(),
		UserID:    userID,
		Type:      typ,
		Message:   msg,
		Payload:   payload,
		CreatedAt: b.Now,
	}
}

// ToRole returns one notification for every active user with the role.
func (b Builder) ToRole(ctx context.Context, role model.Role, typ model.NotificationType, msg string, payload map[string]string) ([]model.Notification, error) {
	users, err := b.Users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
	}

	ns := []model.Notification{}
	for _, u := range users {
		if u.Role != role || !u.Active {
			continue
		}
		ns = append(ns, b.ToUser(u.ID, typ, msg, payload))
	}

	return ns, nil
}

// Truncate cuts a free text comment for a notification message.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
