package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/xhit/go-str2duration/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/metrics"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/printer"
	"github.com/joddb/shopfloor/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DBPath     string
	// User is the acting user (username or ID).
	User string

	// Metric thresholds.
	AvailableTime          string
	EfficiencyAlertPercent float64
	DueDateWindow          string
	ProgressAlertPercent   float64

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDBPath := filepath.Join(homedir.HomeDir(), ".shopfloor", "shopfloor.db")
	app.Flag("db-path", "Path to the SQLite database file.").Default(defaultDBPath).StringVar(&c.DBPath)
	app.Flag("user", "Acting user (username or ID).").Short('u').StringVar(&c.User)

	app.Flag("available-time", "Working time of a technician per day (e.g. 8h).").Default("8h").StringVar(&c.AvailableTime)
	app.Flag("efficiency-alert", "Efficiency percentage under which a finished task raises an alert.").Default("70").Float64Var(&c.EfficiencyAlertPercent)
	app.Flag("due-date-window", "How close a due date has to be to raise a progress alert (e.g. 3d).").Default("3d").StringVar(&c.DueDateWindow)
	app.Flag("progress-alert", "Progress percentage under which a close due date raises an alert.").Default("80").Float64Var(&c.ProgressAlertPercent)

	return c
}

// Thresholds returns the metric thresholds set by the flags.
func (r RootCommand) Thresholds() (metrics.Thresholds, error) {
	avail, err := str2duration.ParseDuration(r.AvailableTime)
	if err != nil {
		return metrics.Thresholds{}, fmt.Errorf("invalid available time %q: %w", r.AvailableTime, err)
	}
	if avail < time.Second {
		return metrics.Thresholds{}, fmt.Errorf("available time must be at least 1s")
	}
	window, err := str2duration.ParseDuration(r.DueDateWindow)
	if err != nil {
		return metrics.Thresholds{}, fmt.Errorf("invalid due date window %q: %w", r.DueDateWindow, err)
	}

	return metrics.Thresholds{
		AvailableTimeSeconds:   int(avail / time.Second),
		EfficiencyAlertPercent: r.EfficiencyAlertPercent,
		DueDateWindow:          window,
		ProgressAlertPercent:   r.ProgressAlertPercent,
	}.Defaults(), nil
}

// openRepository opens the SQLite database, the caller closes it.
func (r RootCommand) openRepository(ctx context.Context) (*sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: r.DBPath,
		Logger: r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}
	return repo, nil
}

func (r RootCommand) printer(format string) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(r.Stdout)
	}
	return printer.NewTablePrinter(r.Stdout)
}

func (r RootCommand) requireUser() (string, error) {
	if r.User == "" {
		return "", fmt.Errorf("an acting user is required (--user or SHOPFLOOR_USER): %w", model.ErrNotAllowed)
	}
	return r.User, nil
}

func addFormatFlag(cmd *kingpin.CmdClause, format *string) {
	cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(format, formatTable, formatJSON)
}

// parseStatuses parses a comma separated task status list.
func parseStatuses(s string) ([]model.TaskStatus, error) {
	var statuses []model.TaskStatus
	for _, raw := range strings.Split(s, ",") {
		raw = strings.ToLower(strings.TrimSpace(raw))
		if raw == "" {
			continue
		}
		st := model.TaskStatus(raw)
		if !st.Valid() {
			return nil, fmt.Errorf("invalid task status %q: %w", raw, model.ErrNotValid)
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// parseDate parses a YYYY-MM-DD date in the local timezone, empty returns the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, must be YYYY-MM-DD: %w", s, model.ErrNotValid)
	}
	return t, nil
}
