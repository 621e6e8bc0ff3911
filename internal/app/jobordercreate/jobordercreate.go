package jobordercreate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joddb/shopfloor/internal/access"
	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// ServiceConfig is the configuration for the job order create service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.JobOrderCreate"})
	if c.IDGen == nil {
		c.IDGen = model.NewID
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Service creates job orders and expands them into devices and tasks.
type Service struct {
	repo    storage.Repository
	logger  log.Logger
	idGen   func() string
	timeNow func() time.Time
}

// NewService creates a new job order create service.
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

// Request represents the job order create request parameters.
type Request struct {
	// UserID is the acting user (ID or username), must be a planner or an admin.
	UserID string
	// JobName is the job template (name or ID). Without a job the order has no devices.
	JobName      string
	OrderCode    string
	Title        string
	Description  string
	TotalDevices int
	DueDate      time.Time
}

// Result is the created job order with its generated devices and tasks.
type Result struct {
	JobOrder model.JobOrder
	Devices  []model.Device
	Tasks    []model.Task
}

// Run creates the job order. When it has a job, every device gets a serial number
// "<order code>-NNNN" and one available task per job process.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	user, err := access.Require(ctx, s.repo, req.UserID, access.Planning...)
	if err != nil {
		return nil, err
	}

	var job *model.Job
	if req.JobName != "" {
		job, err = s.repo.GetJobByName(ctx, req.JobName)
		if errors.Is(err, model.ErrNotFound) {
			job, err = s.repo.GetJob(ctx, req.JobName)
		}
		if err != nil {
			return nil, fmt.Errorf("could not get job %q: %w", req.JobName, err)
		}
	}

	now := s.timeNow().UTC()
	o := model.JobOrder{
		ID:           s.idGen(),
		OrderCode:    req.OrderCode,
		Title:        req.Title,
		Description:  req.Description,
		TotalDevices: req.TotalDevices,
		DueDate:      req.DueDate,
		CreatedBy:    user.ID,
		Status:       model.JobOrderStatusAvailable,
		CreatedAt:    now,
	}
	if job != nil {
		o.JobID = job.ID
	}
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job order: %w", err)
	}

	res := &Result{JobOrder: o, Devices: []model.Device{}, Tasks: []model.Task{}}
	if job != nil && len(job.Processes) > 0 {
		for i := 1; i <= o.TotalDevices; i++ {
			d := model.Device{
				ID:           s.idGen(),
				JobOrderID:   o.ID,
				SerialNumber: model.DeviceSerial(o.OrderCode, i),
				Status:       model.DeviceStatusPending,
				UpdatedAt:    now,
			}
			res.Devices = append(res.Devices, d)

			for _, p := range job.Processes {
				res.Tasks = append(res.Tasks, model.Task{
					ID:                  s.idGen(),
					ProcessID:           p.ID,
					DeviceID:            d.ID,
					JobOrderID:          o.ID,
					OperationName:       p.OperationName,
					StandardTimeSeconds: p.StandardTimeSeconds,
					TaskType:            p.TaskType,
					Status:              model.TaskStatusAvailable,
					CreatedAt:           now,
					UpdatedAt:           now,
				})
			}
		}
	}

	if err := s.repo.CreateJobOrder(ctx, o, res.Devices, res.Tasks); err != nil {
		return nil, fmt.Errorf("could not create job order: %w", err)
	}

	s.logger.Infof("Job order %s created with %d devices and %d tasks", o.OrderCode, len(res.Devices), len(res.Tasks))
	return res, nil
}
