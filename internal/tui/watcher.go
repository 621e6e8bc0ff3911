// Package tui has the live terminal views of the tasks.
package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/printer"
	"github.com/joddb/shopfloor/internal/tracker"
)

// TaskGetter gets the current state of a task.
type TaskGetter interface {
	GetTask(ctx context.Context, id string) (*model.Task, error)
}

// WatcherConfig is the configuration of the task watcher.
type WatcherConfig struct {
	Tasks  TaskGetter
	TaskID string
	// PollInterval is how often the task is reloaded to catch status or start time changes.
	PollInterval time.Duration
	Clock        tracker.Clock
	Logger       log.Logger
}

func (c *WatcherConfig) defaults() error {
	if c.Tasks == nil {
		return fmt.Errorf("task getter is required")
	}
	if c.TaskID == "" {
		return fmt.Errorf("task id is required")
	}
	if c.PollInterval == 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Clock == nil {
		c.Clock = tracker.RealClock
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "tui.Watcher"})
	return nil
}

// Watcher keeps a tracker pointed at the latest state of a task.
type Watcher struct {
	tasks   TaskGetter
	taskID  string
	poll    time.Duration
	clock   tracker.Clock
	logger  log.Logger
	tracker *tracker.Tracker
	updates chan tracker.Snapshot
}

// NewWatcher returns a new task watcher.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	w := &Watcher{
		tasks:   cfg.Tasks,
		taskID:  cfg.TaskID,
		poll:    cfg.PollInterval,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		updates: make(chan tracker.Snapshot, 1),
	}

	tr, err := tracker.New(tracker.Config{Clock: cfg.Clock, OnUpdate: w.publish, Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create tracker: %w", err)
	}
	w.tracker = tr

	return w, nil
}

// publish keeps only the latest snapshot, the tracker never blocks on a slow reader.
func (w *Watcher) publish(s tracker.Snapshot) {
	select {
	case w.updates <- s:
		return
	default:
	}

	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- s:
	default:
	}
}

// Updates returns the snapshots channel.
func (w *Watcher) Updates() <-chan tracker.Snapshot { return w.updates }

// Refresh reloads the task and re-targets the tracker when its inputs changed.
func (w *Watcher) Refresh(ctx context.Context) (*model.Task, error) {
	t, err := w.tasks.GetTask(ctx, w.taskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	w.tracker.Track(ctx, tracker.InputFromTask(*t))
	return t, nil
}

// Stop releases the tracker.
func (w *Watcher) Stop() { w.tracker.Stop() }

// RunPlain writes one line per snapshot until the context is done.
func (w *Watcher) RunPlain(ctx context.Context, out io.Writer) error {
	defer w.Stop()

	task, err := w.Refresh(ctx)
	if err != nil {
		return err
	}

	poll := w.clock.NewTicker(w.poll)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-w.updates:
			if _, err := fmt.Fprintln(out, PlainLine(*task, s, w.clock.Now())); err != nil {
				return fmt.Errorf("could not write: %w", err)
			}
		case <-poll.C():
			t, err := w.Refresh(ctx)
			if err != nil {
				w.logger.Warningf("Could not refresh task: %s", err)
				continue
			}
			task = t
		}
	}
}

// PlainLine renders a snapshot of a task as a single line.
func PlainLine(t model.Task, s tracker.Snapshot, at time.Time) string {
	eff := "-"
	switch {
	case s.StandardTimeSeconds <= 0:
		eff = tracker.NotAvailable
	case s.HasEfficiency:
		eff = fmt.Sprintf("%.0f%% (%s)", s.Efficiency, s.Classification)
	}

	return fmt.Sprintf("[%s] %s %s | %s | elapsed %s | standard %s | efficiency %s | progress %.0f%%",
		at.UTC().Format(time.TimeOnly),
		t.ID,
		t.OperationName,
		printer.StatusBadge(t.Status).Label,
		tracker.FormatClock(s.ElapsedSeconds),
		tracker.FormatStandardTime(s.StandardTimeSeconds),
		eff,
		s.ProgressPercent,
	)
}
