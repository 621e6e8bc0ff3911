package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joddb/shopfloor/internal/access"
	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/notify"
	"github.com/joddb/shopfloor/internal/storage"
	"github.com/joddb/shopfloor/internal/workflow"
)

// ServiceConfig is the configuration for the review service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Review"})
	if c.IDGen == nil {
		c.IDGen = model.NewID
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Service records inspection decisions and moves the tasks through the review stages.
type Service struct {
	repo    storage.Repository
	logger  log.Logger
	idGen   func() string
	timeNow func() time.Time
}

// NewService creates a new review service.
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

// Request represents the review request parameters.
type Request struct {
	// UserID is the reviewer (ID or username).
	UserID string
	TaskID string
	// Stage is optional for quality, tester and supervisor users, their role decides it.
	Stage    model.InspectionStage
	Decision model.Decision
	Comments string
}

// Result is the reviewed task and the stored inspection.
type Result struct {
	Task       model.Task
	Inspection model.Inspection
}

var stageRoles = map[model.InspectionStage]model.Role{
	model.InspectionStageQuality:    model.RoleQuality,
	model.InspectionStageTester:     model.RoleTester,
	model.InspectionStageSupervisor: model.RoleSupervisor,
}

// Run records the decision on the pending inspection of the stage (creating it when missing)
// and applies the workflow:
//   - quality accept: the task waits for the tester.
//   - tester accept: the task waits for the supervisor.
//   - supervisor accept: the task is approved and the device completed.
//   - any reject: task and device are rejected and the technician notified.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	user, err := access.Resolve(ctx, s.repo, req.UserID)
	if err != nil {
		return nil, err
	}

	stage := req.Stage
	if stage == "" {
		stage, err = stageForRole(user.Role)
		if err != nil {
			return nil, err
		}
	}
	role, ok := stageRoles[stage]
	if !ok {
		return nil, fmt.Errorf("unknown stage %q: %w", stage, model.ErrNotValid)
	}
	if user.Role != role && user.Role != model.RoleAdmin {
		return nil, fmt.Errorf("role %q can't review the %s stage: %w", user.Role, stage, model.ErrNotAllowed)
	}

	ev, err := workflow.DecisionEvent(stage, req.Decision)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	status, err := workflow.Next(t.Status, ev)
	if err != nil {
		return nil, fmt.Errorf("task can't be reviewed: %w", err)
	}

	device, err := s.repo.GetDevice(ctx, t.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("could not get device: %w", err)
	}
	order, err := s.repo.GetJobOrder(ctx, t.JobOrderID)
	if err != nil {
		return nil, fmt.Errorf("could not get job order: %w", err)
	}

	now := s.timeNow().UTC()
	insp, err := s.repo.GetPendingInspection(ctx, t.ID, stage)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("could not get pending inspection: %w", err)
		}
		insp = &model.Inspection{ID: s.idGen(), TaskID: t.ID, DeviceID: t.DeviceID, Stage: stage, CreatedAt: now}
	}
	insp.InspectorID = user.ID
	insp.Decision = req.Decision
	insp.Comments = req.Comments

	from := t.Status
	t.Status = status
	t.UpdatedAt = now

	tr := model.TaskTransition{FromStatus: from, Task: *t, Inspections: []model.Inspection{*insp}}
	b := notify.Builder{Users: s.repo, IDGen: s.idGen, Now: now}
	payload := map[string]string{"task_id": t.ID, "job_order_code": order.OrderCode, "device_serial": device.SerialNumber}

	var (
		ns   []model.Notification
		nerr error
	)
	switch {
	case req.Decision == model.DecisionRejected:
		tr.DeviceStatus = model.DeviceStatusRejected
		if t.TechnicianID != "" {
			msg := fmt.Sprintf("Task %s was rejected %s: %s", t.ID, rejectedBy(stage), notify.Truncate(req.Comments, 50))
			ns = append(ns, b.ToUser(t.TechnicianID, model.NotificationTaskRejected, msg,
				map[string]string{"task_id": t.ID, "job_order_code": order.OrderCode, "inspection_id": insp.ID}))
		}
	case stage == model.InspectionStageQuality:
		tr.Inspections = append(tr.Inspections, s.pendingInspection(*t, model.InspectionStageTester, now))
		ns, nerr = b.ToRole(ctx, model.RoleTester, model.NotificationTaskReadyForTesting,
			fmt.Sprintf("Task %s passed QA inspection and is ready for final testing.", t.ID), payload)
	case stage == model.InspectionStageTester:
		tr.Inspections = append(tr.Inspections, s.pendingInspection(*t, model.InspectionStageSupervisor, now))
		ns, nerr = b.ToRole(ctx, model.RoleSupervisor, model.NotificationTaskReadyForSupervision,
			fmt.Sprintf("Task %s passed tester inspection and is ready for your final review.", t.ID), payload)
	case stage == model.InspectionStageSupervisor:
		tr.DeviceStatus = model.DeviceStatusCompleted
		if t.TechnicianID != "" {
			ns = append(ns, b.ToUser(t.TechnicianID, model.NotificationTaskCompleted,
				fmt.Sprintf("Task %s completed successfully after supervisor review.", t.ID),
				map[string]string{"task_id": t.ID, "job_order_code": order.OrderCode}))
		}
		var testers []model.Notification
		testers, nerr = b.ToRole(ctx, model.RoleTester, model.NotificationTaskCompleted,
			fmt.Sprintf("Task %s completed after supervisor review.", t.ID), payload)
		ns = append(ns, testers...)
	}
	if nerr != nil {
		return nil, fmt.Errorf("could not build notifications: %w", nerr)
	}
	tr.Notifications = ns

	if err := s.repo.ApplyTransition(ctx, tr); err != nil {
		return nil, fmt.Errorf("could not store review: %w", err)
	}

	s.logger.Infof("Task %s %s at %s stage by %s", t.ID, req.Decision, stage, user.Username)
	return &Result{Task: tr.Task, Inspection: *insp}, nil
}

// pendingInspection opens the inspection of the next review stage.
func (s *Service) pendingInspection(t model.Task, stage model.InspectionStage, now time.Time) model.Inspection {
	return model.Inspection{
		ID:        s.idGen(),
		TaskID:    t.ID,
		DeviceID:  t.DeviceID,
		Stage:     stage,
		Decision:  model.DecisionPending,
		CreatedAt: now,
	}
}

func stageForRole(r model.Role) (model.InspectionStage, error) {
	for stage, role := range stageRoles {
		if role == r {
			return stage, nil
		}
	}
	return "", fmt.Errorf("stage is required for role %q: %w", r, model.ErrNotValid)
}

func rejectedBy(stage model.InspectionStage) string {
	switch stage {
	case model.InspectionStageQuality:
		return "by QA Inspector"
	case model.InspectionStageTester:
		return "during tester inspection"
	default:
		return "during supervisor review"
	}
}
