// Package access resolves the acting user of an operation and checks its role.
package access

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// Role groups used by the operations.
var (
	Supervision = []model.Role{model.RoleSupervisor, model.RolePlanning, model.RoleAdmin}
	Planning    = []model.Role{model.RolePlanning, model.RoleAdmin}
)

// Resolve returns the active user identified by an ID or a username.
func Resolve(ctx context.Context, users storage.UserRepository, idOrUsername string) (*model.User, error) {
	if idOrUsername == "" {
		return nil, fmt.Errorf("acting user is required: %w", model.ErrNotAllowed)
	}

	u, err := users.GetUserByUsername(ctx, idOrUsername)
	if errors.Is(err, model.ErrNotFound) {
		u, err = users.GetUser(ctx, idOrUsername)
	}
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("unknown user %q: %w", idOrUsername, model.ErrNotAllowed)
		}
		return nil, fmt.Errorf("could not get user: %w", err)
	}

	if !u.Active {
		return nil, fmt.Errorf("user %q is not active: %w", u.Username, model.ErrNotAllowed)
	}

	return u, nil
}

// Require resolves the acting user and checks it has one of the roles.
func Require(ctx context.Context, users storage.UserRepository, idOrUsername string, roles ...model.Role) (*model.User, error) {
	u, err := Resolve(ctx, users, idOrUsername)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(roles, u.Role) {
		return nil, fmt.Errorf("role %q can't do this operation: %w", u.Role, model.ErrNotAllowed)
	}

	return u, nil
}
