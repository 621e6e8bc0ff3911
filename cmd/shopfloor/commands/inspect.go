package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/joddb/shopfloor/internal/app/inspectionlist"
	"github.com/joddb/shopfloor/internal/app/review"
	"github.com/joddb/shopfloor/internal/model"
)

var (
	stages = []string{
		string(model.InspectionStageQuality),
		string(model.InspectionStageTester),
		string(model.InspectionStageSupervisor),
	}
	decisions = []string{
		string(model.DecisionAccepted),
		string(model.DecisionRejected),
	}
)

type InspectCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID   string
	decision string
	stage    string
	comments string
	format   string
}

// NewInspectCommand returns the inspect command.
func NewInspectCommand(rootCmd *RootCommand, app *kingpin.Application) *InspectCommand {
	c := &InspectCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("inspect", "Accept or reject a task waiting for review.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("decision", "Review decision.").Required().EnumVar(&c.decision, decisions...)
	c.Cmd.Flag("stage", "Review stage, required for admins (quality, tester, supervisor).").EnumVar(&c.stage, stages...)
	c.Cmd.Flag("comments", "Review comments, shown to the technician on rejections.").Short('m').StringVar(&c.comments)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c InspectCommand) Name() string { return c.Cmd.FullCommand() }

func (c InspectCommand) Run(ctx context.Context) error {
	user, err := c.rootCmd.requireUser()
	if err != nil {
		return err
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := review.NewService(review.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, review.Request{
		UserID:   user,
		TaskID:   c.taskID,
		Stage:    model.InspectionStage(c.stage),
		Decision: model.Decision(c.decision),
		Comments: c.comments,
	})
	if err != nil {
		return fmt.Errorf("could not review task: %w", err)
	}

	p := c.rootCmd.printer(c.format)
	if c.format == formatJSON {
		return p.PrintInspections([]model.Inspection{res.Inspection})
	}
	msg := fmt.Sprintf("Task %s %s at %s stage, now %s", res.Task.ID, res.Inspection.Decision, res.Inspection.Stage, res.Task.Status)
	if err := p.PrintMessage(msg); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}

type InspectionListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID   string
	stage    string
	decision string
	format   string
}

// NewInspectionListCommand returns the inspection list command.
func NewInspectionListCommand(rootCmd *RootCommand, inspectionCmd *kingpin.CmdClause) *InspectionListCommand {
	c := &InspectionListCommand{rootCmd: rootCmd}

	c.Cmd = inspectionCmd.Command("list", "List the inspections of the acting user stage.")
	c.Cmd.Flag("task", "Filter by task ID.").StringVar(&c.taskID)
	c.Cmd.Flag("stage", "Filter by stage (quality, tester, supervisor).").EnumVar(&c.stage, stages...)
	c.Cmd.Flag("decision", "Filter by decision (pending, accepted, rejected).").EnumVar(&c.decision, append([]string{string(model.DecisionPending)}, decisions...)...)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c InspectionListCommand) Name() string { return c.Cmd.FullCommand() }

func (c InspectionListCommand) Run(ctx context.Context) error {
	user, err := c.rootCmd.requireUser()
	if err != nil {
		return err
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := inspectionlist.NewService(inspectionlist.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	insps, err := svc.Run(ctx, inspectionlist.Request{
		UserID:   user,
		TaskID:   c.taskID,
		Stage:    model.InspectionStage(c.stage),
		Decision: model.Decision(c.decision),
	})
	if err != nil {
		return fmt.Errorf("could not list inspections: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintInspections(insps); err != nil {
		return fmt.Errorf("could not print inspections: %w", err)
	}

	return nil
}
