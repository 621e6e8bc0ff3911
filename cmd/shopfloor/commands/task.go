package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/joddb/shopfloor/internal/app/summary"
	"github.com/joddb/shopfloor/internal/app/taskend"
	"github.com/joddb/shopfloor/internal/app/tasklist"
	"github.com/joddb/shopfloor/internal/app/taskstart"
	"github.com/joddb/shopfloor/internal/app/taskstatus"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/printer"
)

type TaskListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	status     string
	jobOrderID string
	format     string
}

// NewTaskListCommand returns the task list command.
func NewTaskListCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskListCommand {
	c := &TaskListCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("list", "List the tasks visible to the acting user.")
	c.Cmd.Flag("status", "Filter by status, comma separated (e.g. available,in_progress).").StringVar(&c.status)
	c.Cmd.Flag("job-order", "Filter by job order ID.").StringVar(&c.jobOrderID)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskListCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskListCommand) Run(ctx context.Context) error {
	user, err := c.rootCmd.requireUser()
	if err != nil {
		return err
	}
	statuses, err := parseStatuses(c.status)
	if err != nil {
		return err
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := tasklist.NewService(tasklist.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	tasks, err := svc.Run(ctx, tasklist.Request{
		UserID:       user,
		StatusFilter: statuses,
		JobOrderID:   c.jobOrderID,
	})
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintTasks(tasks, time.Now()); err != nil {
		return fmt.Errorf("could not print tasks: %w", err)
	}

	return nil
}

type TaskStatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	format string
}

// NewTaskStatusCommand returns the task status command.
func NewTaskStatusCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskStatusCommand {
	c := &TaskStatusCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("status", "Show a task with its elapsed time, progress and efficiency.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskStatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskStatusCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := taskstatus.NewService(taskstatus.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, taskstatus.Request{TaskID: c.taskID})
	if err != nil {
		return fmt.Errorf("could not get task status: %w", err)
	}

	err = c.rootCmd.printer(c.format).PrintTaskStatus(printer.TaskDetail{
		Task:     res.Task,
		Device:   res.Device,
		JobOrder: res.JobOrder,
		Snapshot: res.Snapshot,
		At:       res.At,
	})
	if err != nil {
		return fmt.Errorf("could not print task status: %w", err)
	}

	return nil
}

type TaskStartCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskIDs []string
}

// NewTaskStartCommand returns the task start command.
func NewTaskStartCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskStartCommand {
	c := &TaskStartCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("start", "Start one or more tasks, all of them start or none does.")
	c.Cmd.Arg("task-ids", "Task IDs.").Required().StringsVar(&c.taskIDs)

	return c
}

func (c TaskStartCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskStartCommand) Run(ctx context.Context) error {
	user, err := c.rootCmd.requireUser()
	if err != nil {
		return err
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := taskstart.NewService(taskstart.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	tasks, err := svc.Run(ctx, taskstart.Request{UserID: user, TaskIDs: c.taskIDs})
	if err != nil {
		return fmt.Errorf("could not start tasks: %w", err)
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintMessage(fmt.Sprintf("Started tasks: %s", strings.Join(ids, ", "))); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}

type TaskEndCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	notes  string
	format string
}

// NewTaskEndCommand returns the task end command.
func NewTaskEndCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskEndCommand {
	c := &TaskEndCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("end", "End a task in progress and send it to quality inspection.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("notes", "Technician notes.").StringVar(&c.notes)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskEndCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskEndCommand) Run(ctx context.Context) error {
	user, err := c.rootCmd.requireUser()
	if err != nil {
		return err
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := taskend.NewService(taskend.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	t, err := svc.Run(ctx, taskend.Request{UserID: user, TaskID: c.taskID, Notes: c.notes})
	if err != nil {
		return fmt.Errorf("could not end task: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintTasks([]model.Task{*t}, time.Now()); err != nil {
		return fmt.Errorf("could not print task: %w", err)
	}

	return nil
}

type TaskSummaryCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	jobOrderID string
	format     string
}

// NewTaskSummaryCommand returns the task summary command.
func NewTaskSummaryCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskSummaryCommand {
	c := &TaskSummaryCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("summary", "Count the tasks by status.")
	c.Cmd.Flag("job-order", "Only count the tasks of a job order ID.").StringVar(&c.jobOrderID)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskSummaryCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskSummaryCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := summary.NewService(summary.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	sum, err := svc.Run(ctx, summary.Request{JobOrderID: c.jobOrderID})
	if err != nil {
		return fmt.Errorf("could not summarize tasks: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintSummary(sum); err != nil {
		return fmt.Errorf("could not print summary: %w", err)
	}

	return nil
}
