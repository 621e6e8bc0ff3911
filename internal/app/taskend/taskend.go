package taskend

import (
	"context"
	"fmt"
	"time"

	"github.com/joddb/shopfloor/internal/access"
	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/notify"
	"github.com/joddb/shopfloor/internal/storage"
	"github.com/joddb/shopfloor/internal/tracker"
	"github.com/joddb/shopfloor/internal/workflow"
)

// ServiceConfig is the configuration for the task end service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
	IDGen      func() string
	TimeNow    func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskEnd"})
	if c.IDGen == nil {
		c.IDGen = model.NewID
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Service ends tasks and sends them to quality inspection.
type Service struct {
	repo    storage.Repository
	logger  log.Logger
	idGen   func() string
	timeNow func() time.Time
}

// NewService creates a new task end service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:    cfg.Repository,
		logger:  cfg.Logger,
		idGen:   cfg.IDGen,
		timeNow: cfg.TimeNow,
	}, nil
}

// Request represents the task end request parameters.
type Request struct {
	// UserID is the technician (ID or username) ending the task, must be the assigned one.
	UserID string
	TaskID string
	Notes  string
}

// Run stops the task clock, stores the actual time and moves the task to quality inspection.
// The device is marked completed, a pending quality inspection is created and the quality,
// tester and supervisor users are notified.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	user, err := access.Resolve(ctx, s.repo, req.UserID)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	status, err := workflow.Next(t.Status, workflow.EventEnd)
	if err != nil {
		return nil, fmt.Errorf("task can't be ended: %w", err)
	}
	if t.TechnicianID != user.ID {
		return nil, fmt.Errorf("%s is not the assigned technician of the task: %w", user.Username, model.ErrNotAllowed)
	}
	if t.StartTime == nil {
		return nil, fmt.Errorf("task has no start time: %w", model.ErrNotValid)
	}

	device, err := s.repo.GetDevice(ctx, t.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("could not get device: %w", err)
	}
	order, err := s.repo.GetJobOrder(ctx, t.JobOrderID)
	if err != nil {
		return nil, fmt.Errorf("could not get job order: %w", err)
	}

	from := t.Status
	now := s.timeNow().UTC()
	actual := int(tracker.ElapsedSeconds(*t.StartTime, now))
	t.EndTime = &now
	t.ActualTimeSeconds = &actual
	t.Status = status
	t.UpdatedAt = now
	if req.Notes != "" {
		t.Notes = req.Notes
	}

	insp := model.Inspection{
		ID:        s.idGen(),
		TaskID:    t.ID,
		DeviceID:  t.DeviceID,
		Stage:     model.InspectionStageQuality,
		Decision:  model.DecisionPending,
		Comments:  "Awaiting quality inspection",
		CreatedAt: now,
	}

	b := notify.Builder{Users: s.repo, IDGen: s.idGen, Now: now}
	payload := func(extra ...string) map[string]string {
		p := map[string]string{
			"task_id":        t.ID,
			"job_order_code": order.OrderCode,
			"inspection_id":  insp.ID,
		}
		for i := 0; i+1 < len(extra); i += 2 {
			p[extra[i]] = extra[i+1]
		}
		return p
	}

	var notifications []model.Notification
	for _, n := range []struct {
		role    model.Role
		typ     model.NotificationType
		msg     string
		payload map[string]string
	}{
		{
			role:    model.RoleQuality,
			typ:     model.NotificationTaskReadyForInspection,
			msg:     fmt.Sprintf("Task %s on device %s is ready for quality inspection.", t.ID, device.SerialNumber),
			payload: payload("device_serial", device.SerialNumber),
		},
		{
			role:    model.RoleTester,
			typ:     model.NotificationTaskReadyForTesting,
			msg:     fmt.Sprintf("Task %s on device %s is ready for testing verification.", t.ID, device.SerialNumber),
			payload: payload("device_serial", device.SerialNumber),
		},
		{
			role:    model.RoleSupervisor,
			typ:     model.NotificationTaskCompleted,
			msg:     fmt.Sprintf("Task %s completed by %s. Device: %s", t.ID, user.DisplayName(), device.SerialNumber),
			payload: payload("technician_id", user.ID),
		},
	} {
		ns, err := b.ToRole(ctx, n.role, n.typ, n.msg, n.payload)
		if err != nil {
			return nil, fmt.Errorf("could not notify %s users: %w", n.role, err)
		}
		notifications = append(notifications, ns...)
	}

	err = s.repo.ApplyTransition(ctx, model.TaskTransition{
		FromStatus:    from,
		Task:          *t,
		DeviceStatus:  model.DeviceStatusCompleted,
		Inspections:   []model.Inspection{insp},
		Notifications: notifications,
	})
	if err != nil {
		return nil, fmt.Errorf("could not end task: %w", err)
	}

	if eff, ok := t.Efficiency(); ok {
		s.logger.Infof("Task %s ended by %s in %ds (efficiency %.2f%%)", t.ID, user.Username, actual, eff)
	} else {
		s.logger.Infof("Task %s ended by %s in %ds", t.ID, user.Username, actual)
	}

	return t, nil
}
