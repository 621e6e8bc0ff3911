package lib

import (
	"context"
	"fmt"
	"time"

	"github.com/joddb/shopfloor/internal/app/review"
	"github.com/joddb/shopfloor/internal/app/taskend"
	"github.com/joddb/shopfloor/internal/app/tasklist"
	"github.com/joddb/shopfloor/internal/app/taskstart"
	"github.com/joddb/shopfloor/internal/app/taskstatus"
	"github.com/joddb/shopfloor/internal/app/techmetrics"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/tui"
)

// ListTasks returns the tasks visible to the acting user. opts can be nil.
func (c *Client) ListTasks(ctx context.Context, user string, opts *ListTasksOpts) ([]Task, error) {
	svc, err := tasklist.NewService(tasklist.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	req := tasklist.Request{UserID: user}
	if opts != nil {
		req.StatusFilter = toInternalStatuses(opts.Statuses)
		req.JobOrderID = opts.JobOrderID
	}

	tasks, err := svc.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalTaskList(tasks), nil
}

// StartTasks starts the tasks for the acting technician, all of them start or none does.
//
// Returns [ErrNotValid] if a task can't be started, or [ErrNotAllowed] if the user
// is not a technician or the task was rejected on another technician's work.
func (c *Client) StartTasks(ctx context.Context, user string, taskIDs ...string) ([]Task, error) {
	svc, err := taskstart.NewService(taskstart.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	tasks, err := svc.Run(ctx, taskstart.Request{UserID: user, TaskIDs: taskIDs})
	if err != nil {
		return nil, mapError(err)
	}

	return fromInternalTaskList(tasks), nil
}

// EndTask ends a task in progress of the acting technician and sends it to quality inspection.
func (c *Client) EndTask(ctx context.Context, user, taskID, notes string) (*Task, error) {
	svc, err := taskend.NewService(taskend.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	t, err := svc.Run(ctx, taskend.Request{UserID: user, TaskID: taskID, Notes: notes})
	if err != nil {
		return nil, mapError(err)
	}

	res := fromInternalTask(*t)
	return &res, nil
}

// Review accepts or rejects a task waiting at the acting user review stage and
// returns the task with its new status.
func (c *Client) Review(ctx context.Context, user string, opts ReviewOpts) (*Task, error) {
	svc, err := review.NewService(review.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, review.Request{
		UserID:   user,
		TaskID:   opts.TaskID,
		Stage:    model.InspectionStage(opts.Stage),
		Decision: model.Decision(opts.Decision),
		Comments: opts.Comments,
	})
	if err != nil {
		return nil, mapError(err)
	}

	t := fromInternalTask(res.Task)
	return &t, nil
}

// TaskTracking returns the current tracking reading of a task. Ended tasks report
// their actual time.
func (c *Client) TaskTracking(ctx context.Context, taskID string) (*Tracking, error) {
	svc, err := taskstatus.NewService(taskstatus.ServiceConfig{
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, taskstatus.Request{TaskID: taskID})
	if err != nil {
		return nil, mapError(err)
	}

	tr := fromSnapshot(res.Task.ID, res.Snapshot, res.At)
	return &tr, nil
}

// WatchTask streams the live tracking readings of a task, one per second while it is
// in progress. The task is reloaded every interval (2s when zero) so status changes
// made by others are followed. The channel is closed when the context is done.
//
// Returns [ErrNotFound] if the task does not exist.
func (c *Client) WatchTask(ctx context.Context, taskID string, interval time.Duration) (<-chan Tracking, error) {
	w, err := tui.NewWatcher(tui.WatcherConfig{
		Tasks:        c.repo,
		TaskID:       taskID,
		PollInterval: interval,
		Logger:       c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create watcher: %w", err)
	}

	if _, err := w.Refresh(ctx); err != nil {
		w.Stop()
		return nil, mapError(err)
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}

	out := make(chan Tracking)
	go func() {
		defer close(out)
		defer w.Stop()

		poll := time.NewTicker(interval)
		defer poll.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case s := <-w.Updates():
				select {
				case out <- fromSnapshot(taskID, s, time.Now()):
				case <-ctx.Done():
					return
				}
			case <-poll.C:
				if _, err := w.Refresh(ctx); err != nil {
					c.logger.Warningf("Could not refresh task %s: %s", taskID, err)
				}
			}
		}
	}()

	return out, nil
}

// TechnicianMetrics returns the metrics of a technician on the day of date (today when zero).
// The acting user must be a supervisor, a planner or an admin.
func (c *Client) TechnicianMetrics(ctx context.Context, user, technician string, date time.Time) (*TechnicianMetrics, error) {
	svc, err := techmetrics.NewService(techmetrics.ServiceConfig{
		Repository: c.repo,
		Thresholds: c.thresholds,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	m, err := svc.Run(ctx, techmetrics.Request{UserID: user, TechnicianID: technician, Date: date})
	if err != nil {
		return nil, mapError(err)
	}

	return &TechnicianMetrics{
		TechnicianID:      m.TechnicianID,
		Date:              m.Date,
		Productivity:      m.Productivity,
		AverageEfficiency: m.AverageEfficiency,
		Utilization:       m.Utilization,
		TasksCompleted:    m.TasksCompleted,
	}, nil
}
