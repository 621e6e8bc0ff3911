package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/joddb/shopfloor/internal/model"
)

const userColumns = `id, username, full_name, role, active, created_at`

// CreateUser creates a new user.
func (r *Repository) CreateUser(ctx context.Context, u model.User) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.FullName, u.Role, boolToInt(u.Active), u.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("user %s: %w", u.Username, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert user: %w", err)
	}

	r.logger.Debugf("Created user in repository: %s", u.ID)
	return nil
}

// GetUser retrieves a user by ID.
func (r *Repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	return &u, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with username %s: %w", username, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by username.
func (r *Repository) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

func scanUser(s scanner) (model.User, error) {
	var u model.User
	var active int
	var createdAt int64
	if err := s.Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &active, &createdAt); err != nil {
		return model.User{}, err
	}
	u.Active = active == 1
	u.CreatedAt = timeFromUnix(createdAt)
	return u, nil
}
