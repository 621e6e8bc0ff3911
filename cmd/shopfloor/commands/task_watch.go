package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joddb/shopfloor/internal/tui"
)

type TaskWatchCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID   string
	plain    bool
	interval time.Duration
}

// NewTaskWatchCommand returns the task watch command.
func NewTaskWatchCommand(rootCmd *RootCommand, taskCmd *kingpin.CmdClause) *TaskWatchCommand {
	c := &TaskWatchCommand{rootCmd: rootCmd}

	c.Cmd = taskCmd.Command("watch", "Watch the live elapsed time, progress and efficiency of a task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("plain", "Print one line per second instead of the interactive view.").BoolVar(&c.plain)
	c.Cmd.Flag("interval", "How often the task is reloaded from the database.").Default("2s").DurationVar(&c.interval)

	return c
}

func (c TaskWatchCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskWatchCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	w, err := tui.NewWatcher(tui.WatcherConfig{
		Tasks:        repo,
		TaskID:       c.taskID,
		PollInterval: c.interval,
		Logger:       c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}

	if c.plain {
		return w.RunPlain(ctx, c.rootCmd.Stdout)
	}

	return tui.Run(ctx, w, tea.WithInput(c.rootCmd.Stdin), tea.WithOutput(c.rootCmd.Stdout))
}
