package model

import (
	"fmt"
	"time"
)

// Role is the shop-floor role of a user.
type Role string

const (
	RoleTechnician Role = "technician"
	RoleQuality    Role = "quality"
	RoleSupervisor Role = "supervisor"
	RolePlanning   Role = "planning"
	RoleAdmin      Role = "admin"
	RoleTester     Role = "tester"
)

// Valid returns true if the role is known.
func (r Role) Valid() bool {
	switch r {
	case RoleTechnician, RoleQuality, RoleSupervisor, RolePlanning, RoleAdmin, RoleTester:
		return true
	}
	return false
}

// User is a shop-floor user.
type User struct {
	ID        string
	Username  string
	FullName  string
	Role      Role
	Active    bool
	CreatedAt time.Time
}

// DisplayName returns the full name if present, otherwise the username.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Validate validates the user.
func (u *User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if u.Username == "" {
		return fmt.Errorf("username is required: %w", ErrNotValid)
	}
	if !u.Role.Valid() {
		return fmt.Errorf("unknown role %q: %w", u.Role, ErrNotValid)
	}
	return nil
}
