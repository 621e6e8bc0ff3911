package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/joddb/shopfloor/internal/app/notifications"
	"github.com/joddb/shopfloor/internal/printer"
	"github.com/joddb/shopfloor/internal/storage/sqlite"
)

func newNotificationService(rootCmd *RootCommand, repo *sqlite.Repository) (*notifications.Service, error) {
	svc, err := notifications.NewService(notifications.ServiceConfig{
		Repository: repo,
		Logger:     rootCmd.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}
	return svc, nil
}

type NotificationListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	unread bool
	format string
}

// NewNotificationListCommand returns the notification list command.
func NewNotificationListCommand(rootCmd *RootCommand, notificationCmd *kingpin.CmdClause) *NotificationListCommand {
	c := &NotificationListCommand{rootCmd: rootCmd}

	c.Cmd = notificationCmd.Command("list", "List the notifications of the acting user.")
	c.Cmd.Flag("unread", "Only unread notifications.").BoolVar(&c.unread)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c NotificationListCommand) Name() string { return c.Cmd.FullCommand() }

func (c NotificationListCommand) Run(ctx context.Context) error {
	user, err := c.rootCmd.requireUser()
	if err != nil {
		return err
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := newNotificationService(c.rootCmd, repo)
	if err != nil {
		return err
	}

	ns, err := svc.List(ctx, notifications.ListRequest{UserID: user, UnreadOnly: c.unread})
	if err != nil {
		return fmt.Errorf("could not list notifications: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintNotifications(ns); err != nil {
		return fmt.Errorf("could not print notifications: %w", err)
	}

	return nil
}

type NotificationReadCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	notificationID string
}

// NewNotificationReadCommand returns the notification read command.
func NewNotificationReadCommand(rootCmd *RootCommand, notificationCmd *kingpin.CmdClause) *NotificationReadCommand {
	c := &NotificationReadCommand{rootCmd: rootCmd}

	c.Cmd = notificationCmd.Command("read", "Mark a notification as read.")
	c.Cmd.Arg("notification-id", "Notification ID.").Required().StringVar(&c.notificationID)

	return c
}

func (c NotificationReadCommand) Name() string { return c.Cmd.FullCommand() }

func (c NotificationReadCommand) Run(ctx context.Context) error {
	user, err := c.rootCmd.requireUser()
	if err != nil {
		return err
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := newNotificationService(c.rootCmd, repo)
	if err != nil {
		return err
	}

	err = svc.MarkRead(ctx, notifications.MarkReadRequest{UserID: user, NotificationID: c.notificationID})
	if err != nil {
		return fmt.Errorf("could not mark notification as read: %w", err)
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage("Notification marked as read"); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}
