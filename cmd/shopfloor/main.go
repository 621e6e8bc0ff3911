package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/joddb/shopfloor/cmd/shopfloor/commands"
	"github.com/joddb/shopfloor/internal/log"
	loglogrus "github.com/joddb/shopfloor/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("shopfloor", "Shop floor task tracker with live efficiency tracking.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	userCmd := app.Command("user", "Manage users.")
	userAddCmd := commands.NewUserAddCommand(rootCmd, userCmd)
	userListCmd := commands.NewUserListCommand(rootCmd, userCmd)

	jobCmd := app.Command("job", "Manage job templates.")
	jobImportCmd := commands.NewJobImportCommand(rootCmd, jobCmd)

	jobOrderCmd := app.Command("joborder", "Manage job orders.")
	jobOrderCreateCmd := commands.NewJobOrderCreateCommand(rootCmd, jobOrderCmd)
	jobOrderListCmd := commands.NewJobOrderListCommand(rootCmd, jobOrderCmd)

	taskCmd := app.Command("task", "Work on tasks.")
	taskListCmd := commands.NewTaskListCommand(rootCmd, taskCmd)
	taskStatusCmd := commands.NewTaskStatusCommand(rootCmd, taskCmd)
	taskStartCmd := commands.NewTaskStartCommand(rootCmd, taskCmd)
	taskEndCmd := commands.NewTaskEndCommand(rootCmd, taskCmd)
	taskWatchCmd := commands.NewTaskWatchCommand(rootCmd, taskCmd)
	taskSummaryCmd := commands.NewTaskSummaryCommand(rootCmd, taskCmd)

	inspectCmd := commands.NewInspectCommand(rootCmd, app)
	inspectionCmd := app.Command("inspection", "Review inspections.")
	inspectionListCmd := commands.NewInspectionListCommand(rootCmd, inspectionCmd)

	metricsCmd := app.Command("metrics", "Productivity metrics.")
	metricsTechnicianCmd := commands.NewMetricsTechnicianCommand(rootCmd, metricsCmd)
	metricsJobOrderCmd := commands.NewMetricsJobOrderCommand(rootCmd, metricsCmd)
	metricsStatsCmd := commands.NewMetricsStatsCommand(rootCmd, metricsCmd)

	notificationCmd := app.Command("notification", "Manage notifications.")
	notificationListCmd := commands.NewNotificationListCommand(rootCmd, notificationCmd)
	notificationReadCmd := commands.NewNotificationReadCommand(rootCmd, notificationCmd)

	serveCmd := commands.NewServeCommand(rootCmd, app)

	cmds := map[string]commands.Command{}
	for _, c := range []commands.Command{
		userAddCmd, userListCmd,
		jobImportCmd,
		jobOrderCreateCmd, jobOrderListCmd,
		taskListCmd, taskStatusCmd, taskStartCmd, taskEndCmd, taskWatchCmd, taskSummaryCmd,
		inspectCmd, inspectionListCmd,
		metricsTechnicianCmd, metricsJobOrderCmd, metricsStatsCmd,
		notificationListCmd, notificationReadCmd,
		serveCmd,
	} {
		cmds[c.Name()] = c
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Commands that print tables/JSON or own the terminal run without logs unless --debug.
	printerCommands := map[string]bool{
		"user list":          true,
		"joborder list":      true,
		"task list":          true,
		"task status":        true,
		"task summary":       true,
		"task watch":         true,
		"inspection list":    true,
		"metrics technician": true,
		"metrics joborder":   true,
		"metrics stats":      true,
		"notification list":  true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(*rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // Stdout is for the printers.
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
