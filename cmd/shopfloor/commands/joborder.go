package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/joddb/shopfloor/internal/app/jobordercreate"
	"github.com/joddb/shopfloor/internal/app/joborderlist"
)

type JobOrderCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	orderCode    string
	job          string
	title        string
	description  string
	totalDevices int
	dueDate      string
	format       string
}

// NewJobOrderCreateCommand returns the job order create command.
func NewJobOrderCreateCommand(rootCmd *RootCommand, jobOrderCmd *kingpin.CmdClause) *JobOrderCreateCommand {
	c := &JobOrderCreateCommand{rootCmd: rootCmd}

	c.Cmd = jobOrderCmd.Command("create", "Create a job order, its devices and their tasks.")
	c.Cmd.Arg("order-code", "Unique job order code.").Required().StringVar(&c.orderCode)
	c.Cmd.Flag("job", "Job template name or ID, without it the order has no devices.").StringVar(&c.job)
	c.Cmd.Flag("title", "Job order title.").Required().StringVar(&c.title)
	c.Cmd.Flag("description", "Job order description.").StringVar(&c.description)
	c.Cmd.Flag("devices", "Number of devices to build.").Default("1").IntVar(&c.totalDevices)
	c.Cmd.Flag("due", "Due date (YYYY-MM-DD).").Required().StringVar(&c.dueDate)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c JobOrderCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c JobOrderCreateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	user, err := c.rootCmd.requireUser()
	if err != nil {
		return err
	}
	due, err := time.Parse(time.DateOnly, c.dueDate)
	if err != nil {
		return fmt.Errorf("invalid due date %q, must be YYYY-MM-DD", c.dueDate)
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := jobordercreate.NewService(jobordercreate.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, jobordercreate.Request{
		UserID:       user,
		JobName:      c.job,
		OrderCode:    c.orderCode,
		Title:        c.title,
		Description:  c.description,
		TotalDevices: c.totalDevices,
		DueDate:      due,
	})
	if err != nil {
		return fmt.Errorf("could not create job order: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintJobOrder(res.JobOrder, res.Devices); err != nil {
		return fmt.Errorf("could not print job order: %w", err)
	}

	return nil
}

type JobOrderListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	archived bool
	format   string
}

// NewJobOrderListCommand returns the job order list command.
func NewJobOrderListCommand(rootCmd *RootCommand, jobOrderCmd *kingpin.CmdClause) *JobOrderListCommand {
	c := &JobOrderListCommand{rootCmd: rootCmd}

	c.Cmd = jobOrderCmd.Command("list", "List the job orders.")
	c.Cmd.Flag("archived", "Include archived job orders.").BoolVar(&c.archived)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c JobOrderListCommand) Name() string { return c.Cmd.FullCommand() }

func (c JobOrderListCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := joborderlist.NewService(joborderlist.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	orders, err := svc.Run(ctx, joborderlist.Request{IncludeArchived: c.archived})
	if err != nil {
		return fmt.Errorf("could not list job orders: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintJobOrders(orders); err != nil {
		return fmt.Errorf("could not print job orders: %w", err)
	}

	return nil
}
