package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/joddb/shopfloor/internal/app/joborderprogress"
	"github.com/joddb/shopfloor/internal/app/stats"
	"github.com/joddb/shopfloor/internal/app/techmetrics"
)

type MetricsTechnicianCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	technician string
	date       string
	format     string
}

// NewMetricsTechnicianCommand returns the technician metrics command.
func NewMetricsTechnicianCommand(rootCmd *RootCommand, metricsCmd *kingpin.CmdClause) *MetricsTechnicianCommand {
	c := &MetricsTechnicianCommand{rootCmd: rootCmd}

	c.Cmd = metricsCmd.Command("technician", "Productivity, utilization and efficiency of a technician on a day.")
	c.Cmd.Arg("technician", "Technician username or ID.").Required().StringVar(&c.technician)
	c.Cmd.Flag("date", "Day (YYYY-MM-DD), defaults to today.").StringVar(&c.date)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c MetricsTechnicianCommand) Name() string { return c.Cmd.FullCommand() }

func (c MetricsTechnicianCommand) Run(ctx context.Context) error {
	user, err := c.rootCmd.requireUser()
	if err != nil {
		return err
	}
	date, err := parseDate(c.date)
	if err != nil {
		return err
	}
	th, err := c.rootCmd.Thresholds()
	if err != nil {
		return err
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := techmetrics.NewService(techmetrics.ServiceConfig{
		Repository: repo,
		Thresholds: th,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	m, err := svc.Run(ctx, techmetrics.Request{UserID: user, TechnicianID: c.technician, Date: date})
	if err != nil {
		return fmt.Errorf("could not compute technician metrics: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintTechnicianMetrics(*m); err != nil {
		return fmt.Errorf("could not print metrics: %w", err)
	}

	return nil
}

type MetricsJobOrderCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	jobOrder string
	format   string
}

// NewMetricsJobOrderCommand returns the job order progress command.
func NewMetricsJobOrderCommand(rootCmd *RootCommand, metricsCmd *kingpin.CmdClause) *MetricsJobOrderCommand {
	c := &MetricsJobOrderCommand{rootCmd: rootCmd}

	c.Cmd = metricsCmd.Command("joborder", "Device progress and alerts of a job order.")
	c.Cmd.Arg("job-order", "Job order code or ID.").Required().StringVar(&c.jobOrder)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c MetricsJobOrderCommand) Name() string { return c.Cmd.FullCommand() }

func (c MetricsJobOrderCommand) Run(ctx context.Context) error {
	user, err := c.rootCmd.requireUser()
	if err != nil {
		return err
	}
	th, err := c.rootCmd.Thresholds()
	if err != nil {
		return err
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := joborderprogress.NewService(joborderprogress.ServiceConfig{
		Repository: repo,
		Thresholds: th,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	p, err := svc.Run(ctx, joborderprogress.Request{UserID: user, JobOrder: c.jobOrder})
	if err != nil {
		return fmt.Errorf("could not compute job order progress: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintJobOrderProgress(*p); err != nil {
		return fmt.Errorf("could not print progress: %w", err)
	}

	return nil
}

type MetricsStatsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewMetricsStatsCommand returns the planner statistics command.
func NewMetricsStatsCommand(rootCmd *RootCommand, metricsCmd *kingpin.CmdClause) *MetricsStatsCommand {
	c := &MetricsStatsCommand{rootCmd: rootCmd}

	c.Cmd = metricsCmd.Command("stats", "Planning dashboard statistics.")
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c MetricsStatsCommand) Name() string { return c.Cmd.FullCommand() }

func (c MetricsStatsCommand) Run(ctx context.Context) error {
	user, err := c.rootCmd.requireUser()
	if err != nil {
		return err
	}

	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, err := stats.NewService(stats.ServiceConfig{
		Repository: repo,
		Logger:     c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	st, err := svc.Run(ctx, stats.Request{UserID: user})
	if err != nil {
		return fmt.Errorf("could not compute statistics: %w", err)
	}

	if err := c.rootCmd.printer(c.format).PrintPlannerStatistics(*st); err != nil {
		return fmt.Errorf("could not print statistics: %w", err)
	}

	return nil
}
