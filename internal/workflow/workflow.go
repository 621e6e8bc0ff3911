package workflow

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/joddb/shopfloor/internal/model"
)

// Event is a workflow action applied to a task.
type Event string

const (
	EventStart            Event = "start"
	EventEnd              Event = "end"
	EventQAAccept         Event = "qa_accept"
	EventQAReject         Event = "qa_reject"
	EventTesterAccept     Event = "tester_accept"
	EventTesterReject     Event = "tester_reject"
	EventSupervisorAccept Event = "supervisor_accept"
	EventSupervisorReject Event = "supervisor_reject"
)

// DecisionEvent returns the event of an inspection decision at a stage.
func DecisionEvent(stage model.InspectionStage, decision model.Decision) (Event, error) {
	accepted := decision == model.DecisionAccepted
	if !accepted && decision != model.DecisionRejected {
		return "", fmt.Errorf("decision %q is not final: %w", decision, model.ErrNotValid)
	}

	switch stage {
	case model.InspectionStageQuality:
		if accepted {
			return EventQAAccept, nil
		}
		return EventQAReject, nil
	case model.InspectionStageTester:
		if accepted {
			return EventTesterAccept, nil
		}
		return EventTesterReject, nil
	case model.InspectionStageSupervisor:
		if accepted {
			return EventSupervisorAccept, nil
		}
		return EventSupervisorReject, nil
	}

	return "", fmt.Errorf("unknown stage %q: %w", stage, model.ErrNotValid)
}

type taskContext struct {
	TaskID string
}

// Machine is the workflow state machine of a single task.
type Machine struct {
	interpreter *statekit.Interpreter[taskContext]
}

// NewMachine returns a task workflow machine positioned at the current task status.
func NewMachine(taskID string, current model.TaskStatus) (*Machine, error) {
	if !current.Valid() {
		return nil, fmt.Errorf("unknown task status %q: %w", current, model.ErrNotValid)
	}

	builder := statekit.NewMachine[taskContext]("task-workflow").
		WithInitial(statekit.StateID(current)).
		WithContext(taskContext{TaskID: taskID})

	builder.State(statekit.StateID(model.TaskStatusAvailable)).
		On(statekit.EventType(EventStart)).Target(statekit.StateID(model.TaskStatusInProgress)).
		Done()

	builder.State(statekit.StateID(model.TaskStatusInProgress)).
		On(statekit.EventType(EventEnd)).Target(statekit.StateID(model.TaskStatusPendingQA)).
		Done()

	builder.State(statekit.StateID(model.TaskStatusPendingQA)).
		On(statekit.EventType(EventQAAccept)).Target(statekit.StateID(model.TaskStatusPendingTester)).
		On(statekit.EventType(EventQAReject)).Target(statekit.StateID(model.TaskStatusRejected)).
		Done()

	builder.State(statekit.StateID(model.TaskStatusPendingTester)).
		On(statekit.EventType(EventTesterAccept)).Target(statekit.StateID(model.TaskStatusPendingSupervisor)).
		On(statekit.EventType(EventTesterReject)).Target(statekit.StateID(model.TaskStatusRejected)).
		Done()

	for _, st := range []model.TaskStatus{model.TaskStatusTesterApproved, model.TaskStatusPendingSupervisor} {
		builder.State(statekit.StateID(st)).
			On(statekit.EventType(EventSupervisorAccept)).Target(statekit.StateID(model.TaskStatusSupervisorApproved)).
			On(statekit.EventType(EventSupervisorReject)).Target(statekit.StateID(model.TaskStatusRejected)).
			Done()
	}

	// Rejected work goes back to the technician to be reworked.
	builder.State(statekit.StateID(model.TaskStatusRejected)).
		On(statekit.EventType(EventStart)).Target(statekit.StateID(model.TaskStatusInProgress)).
		Done()

	// States kept for compatibility with records from older workflows, they have no exits.
	for _, st := range []model.TaskStatus{
		model.TaskStatusDone,
		model.TaskStatusQAApproved,
		model.TaskStatusSupervisorApproved,
		model.TaskStatusCompleted,
	} {
		builder.State(statekit.StateID(st)).Done()
	}

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build task workflow: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Machine{interpreter: interpreter}, nil
}

// Current returns the current task status.
func (m *Machine) Current() model.TaskStatus {
	return model.TaskStatus(m.interpreter.State().Value)
}

// Fire applies an event and returns the new status.
func (m *Machine) Fire(ev Event) (model.TaskStatus, error) {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(ev)})
	after := m.Current()

	// statekit ignores events without a transition, so an unchanged state means the event was not allowed.
	if before == after {
		return before, fmt.Errorf("%q is not allowed while the task is %q: %w", ev, before, model.ErrNotValid)
	}

	return after, nil
}

// Next returns the status reached by applying ev to a task in the current status.
func Next(current model.TaskStatus, ev Event) (model.TaskStatus, error) {
	m, err := NewMachine("", current)
	if err != nil {
		return current, err
	}
	return m.Fire(ev)
}
