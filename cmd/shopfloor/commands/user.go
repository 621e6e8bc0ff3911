package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/joddb/shopfloor/internal/app/useradd"
	"github.com/joddb/shopfloor/internal/app/userlist"
	"github.com/joddb/shopfloor/internal/model"
)

var roles = []string{
	string(model.RoleTechnician),
	string(model.RoleQuality),
	string(model.RoleTester),
	string(model.RoleSupervisor),
	string(model.RolePlanning),
	string(model.RoleAdmin),
}

type UserAddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	username string
	fullName string
	role     string
	format   string
}

// NewUserAddCommand returns the user add command.
func NewUserAddCommand(rootCmd *RootCommand, userCmd *kingpin.CmdClause) *UserAddCommand {
	c := &UserAddCommand{rootCmd: rootCmd}

	c.Cmd = userCmd.Command("add", "Register a shop floor user.")
	c.Cmd.Arg("username", "Unique username.").Required().StringVar(&c.username)
	c.Cmd.Flag("role", "User role.").Short('r').Required().EnumVar(&c.role, roles...)
	c.Cmd.Flag("full-name", "User full name.").StringVar(&c.fullName)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c UserAddCommand) Name() string { return c.Cmd.FullCommand() }

func (c UserAddCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := useradd.NewService(useradd.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	u, err := svc.Run(ctx, useradd.Request{
		Username: c.username,
		FullName: c.fullName,
		Role:     model.Role(c.role),
	})
	if err != nil {
		return fmt.Errorf("could not add user: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintUsers([]model.User{*u}); err != nil {
		return fmt.Errorf("could not print user: %w", err)
	}

	return nil
}

type UserListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	role   string
	format string
}

// NewUserListCommand returns the user list command.
func NewUserListCommand(rootCmd *RootCommand, userCmd *kingpin.CmdClause) *UserListCommand {
	c := &UserListCommand{rootCmd: rootCmd}

	c.Cmd = userCmd.Command("list", "List the shop floor users.")
	c.Cmd.Flag("role", "Filter by role ("+strings.Join(roles, ", ")+").").StringVar(&c.role)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c UserListCommand) Name() string { return c.Cmd.FullCommand() }

func (c UserListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	var roleFilter *model.Role
	if c.role != "" {
		r := model.Role(strings.ToLower(c.role))
		if !r.Valid() {
			return fmt.Errorf("invalid role filter: %s (must be: %s)", c.role, strings.Join(roles, ", "))
		}
		roleFilter = &r
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := userlist.NewService(userlist.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	users, err := svc.Run(ctx, userlist.Request{RoleFilter: roleFilter})
	if err != nil {
		return fmt.Errorf("could not list users: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintUsers(users); err != nil {
		return fmt.Errorf("could not print users: %w", err)
	}

	return nil
}
