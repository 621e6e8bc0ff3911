package model

import (
	"fmt"
	"time"
)

// InspectionStage is the review stage of the task workflow.
type InspectionStage string

const (
	InspectionStageQuality    InspectionStage = "quality"
	InspectionStageTester     InspectionStage = "tester"
	InspectionStageSupervisor InspectionStage = "supervisor"
)

// Valid returns true if the stage is known.
func (s InspectionStage) Valid() bool {
	switch s {
	case InspectionStageQuality, InspectionStageTester, InspectionStageSupervisor:
		return true
	}
	return false
}

// Decision is the outcome of an inspection.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)

// Inspection is the review of a finished task at one of the workflow stages.
type Inspection struct {
	ID          string
	TaskID      string
	DeviceID    string
	Stage       InspectionStage
	InspectorID string
	Decision    Decision
	Comments    string
	CreatedAt   time.Time
}

// Validate validates the inspection.
func (i *Inspection) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if i.TaskID == "" {
		return fmt.Errorf("task id is required: %w", ErrNotValid)
	}
	if !i.Stage.Valid() {
		return fmt.Errorf("unknown stage %q: %w", i.Stage, ErrNotValid)
	}
	switch i.Decision {
	case DecisionPending, DecisionAccepted, DecisionRejected:
	default:
		return fmt.Errorf("unknown decision %q: %w", i.Decision, ErrNotValid)
	}
	return nil
}
