package inspectionlist

import (
	"context"
	"fmt"

	"github.com/joddb/shopfloor/internal/access"
	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// ServiceConfig is the configuration for the inspection list service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	return nil
}

// Service lists inspections.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new inspection list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{repo: cfg.Repository, logger: cfg.Logger}, nil
}

// Request represents the inspection list request parameters.
type Request struct {
	// UserID is the acting user (ID or username).
	UserID   string
	TaskID   string
	Stage    model.InspectionStage
	Decision model.Decision
}

var roleStages = map[model.Role]model.InspectionStage{
	model.RoleQuality:    model.InspectionStageQuality,
	model.RoleTester:     model.InspectionStageTester,
	model.RoleSupervisor: model.InspectionStageSupervisor,
}

// Run lists the inspections, newest first. Reviewers only see their own stage,
// technicians can't list inspections.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Inspection, error) {
	user, err := access.Resolve(ctx, s.repo, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleTechnician {
		return nil, fmt.Errorf("technicians can't list inspections: %w", model.ErrNotAllowed)
	}

	q := storage.InspectionQuery{TaskID: req.TaskID, Stage: req.Stage, Decision: req.Decision}
	if stage, ok := roleStages[user.Role]; ok {
		if q.Stage != "" && q.Stage != stage {
			return nil, fmt.Errorf("role %q can't list %s inspections: %w", user.Role, q.Stage, model.ErrNotAllowed)
		}
		q.Stage = stage
	}

	insps, err := s.repo.ListInspections(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("could not list inspections: %w", err)
	}

	s.logger.Debugf("found %d inspections", len(insps))
	return insps, nil
}
