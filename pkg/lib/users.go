package lib

import (
	"context"
	"fmt"

	"github.com/joddb/shopfloor/internal/app/useradd"
	"github.com/joddb/shopfloor/internal/model"
)

// AddUser registers a shop floor user.
//
// Returns [ErrAlreadyExists] if the username is taken, or [ErrNotValid] on an unknown role.
func (c *Client) AddUser(ctx context.Context, opts AddUserOpts) (*User, error) {
	svc, err := useradd.NewService(useradd.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	u, err := svc.Run(ctx, useradd.Request{
		Username: opts.Username,
		FullName: opts.FullName,
		Role:     model.Role(opts.Role),
	})
	if err != nil {
		return nil, mapError(err)
	}

	res := fromInternalUser(*u)
	return &res, nil
}
