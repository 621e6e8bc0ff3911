package jobimport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// JobLoader loads job templates.
type JobLoader interface {
	GetJob(ctx context.Context, path string) (model.Job, error)
}

// ServiceConfig is the configuration for the job import service.
type ServiceConfig struct {
	Repository storage.Repository
	Loader     JobLoader
	Logger     log.Logger
	IDGen      func() string
	TimeNow    func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Loader == nil {
		return fmt.Errorf("loader is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.JobImport"})
	if c.IDGen == nil {
		c.IDGen = model.NewID
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Service imports job templates from files.
type Service struct {
	repo    storage.Repository
	loader  JobLoader
	logger  log.Logger
	idGen   func() string
	timeNow func() time.Time
}

// NewService creates a new job import service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:    cfg.Repository,
		loader:  cfg.Loader,
		logger:  cfg.Logger,
		idGen:   cfg.IDGen,
		timeNow: cfg.TimeNow,
	}, nil
}

// Request represents the job import request parameters.
type Request struct {
	Path string
}

// Run loads the job template and stores it with its processes.
func (s *Service) Run(ctx context.Context, req Request) (*model.Job, error) {
	j, err := s.loader.GetJob(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("could not load job template %q: %w", req.Path, err)
	}

	_, err = s.repo.GetJobByName(ctx, j.Name)
	if err == nil {
		return nil, fmt.Errorf("job %q: %w", j.Name, model.ErrAlreadyExists)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("could not check job name uniqueness: %w", err)
	}

	j.ID = s.idGen()
	j.CreatedAt = s.timeNow().UTC()
	for i := range j.Processes {
		j.Processes[i].ID = s.idGen()
		j.Processes[i].JobID = j.ID
	}

	if err := s.repo.CreateJob(ctx, j); err != nil {
		return nil, fmt.Errorf("could not store job: %w", err)
	}

	s.logger.Infof("Job %q imported with %d processes", j.Name, len(j.Processes))
	return &j, nil
}
