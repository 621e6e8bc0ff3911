package workflow_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/workflow"
)

func TestNext(t *testing.T) {
	tests := map[string]struct {
		current   model.TaskStatus
		event     workflow.Event
		expStatus model.TaskStatus
		expErr    bool
	}{
		"Starting an available task should put it in progress.": {
			current:   model.TaskStatusAvailable,
			event:     workflow.EventStart,
			expStatus: model.TaskStatusInProgress,
		},
		"Starting a rejected task should put it in progress again.": {
			current:   model.TaskStatusRejected,
			event:     workflow.EventStart,
			expStatus: model.TaskStatusInProgress,
		},
		"Starting an in progress task should fail.": {
			current: model.TaskStatusInProgress,
			event:   workflow.EventStart,
			expErr:  true,
		},
		"Ending an in progress task should wait for QA.": {
			current:   model.TaskStatusInProgress,
			event:     workflow.EventEnd,
			expStatus: model.TaskStatusPendingQA,
		},
		"Ending an available task should fail.": {
			current: model.TaskStatusAvailable,
			event:   workflow.EventEnd,
			expErr:  true,
		},
		"QA accept should move to the tester.": {
			current:   model.TaskStatusPendingQA,
			event:     workflow.EventQAAccept,
			expStatus: model.TaskStatusPendingTester,
		},
		"QA reject should reject the task.": {
			current:   model.TaskStatusPendingQA,
			event:     workflow.EventQAReject,
			expStatus: model.TaskStatusRejected,
		},
		"Tester accept should move to the supervisor.": {
			current:   model.TaskStatusPendingTester,
			event:     workflow.EventTesterAccept,
			expStatus: model.TaskStatusPendingSupervisor,
		},
		"Tester reject should reject the task.": {
			current:   model.TaskStatusPendingTester,
			event:     workflow.EventTesterReject,
			expStatus: model.TaskStatusRejected,
		},
		"Supervisor accept should approve the task.": {
			current:   model.TaskStatusPendingSupervisor,
			event:     workflow.EventSupervisorAccept,
			expStatus: model.TaskStatusSupervisorApproved,
		},
		"Supervisor accept of a tester approved task should approve the task.": {
			current:   model.TaskStatusTesterApproved,
			event:     workflow.EventSupervisorAccept,
			expStatus: model.TaskStatusSupervisorApproved,
		},
		"Supervisor reject should reject the task.": {
			current:   model.TaskStatusPendingSupervisor,
			event:     workflow.EventSupervisorReject,
			expStatus: model.TaskStatusRejected,
		},
		"A QA decision out of the QA stage should fail.": {
			current: model.TaskStatusPendingTester,
			event:   workflow.EventQAAccept,
			expErr:  true,
		},
		"Completed tasks have no transitions.": {
			current: model.TaskStatusCompleted,
			event:   workflow.EventStart,
			expErr:  true,
		},
		"Unknown statuses should fail.": {
			current: model.TaskStatus("lost"),
			event:   workflow.EventStart,
			expErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			got, err := workflow.Next(test.current, test.event)

			if test.expErr {
				assert.Error(err)
				assert.True(errors.Is(err, model.ErrNotValid))
			} else if assert.NoError(err) {
				assert.Equal(test.expStatus, got)
			}
		})
	}
}

func TestMachineFullWorkflow(t *testing.T) {
	require := require.New(t)

	m, err := workflow.NewMachine("task-1", model.TaskStatusAvailable)
	require.NoError(err)

	for _, ev := range []workflow.Event{
		workflow.EventStart,
		workflow.EventEnd,
		workflow.EventQAAccept,
		workflow.EventTesterAccept,
		workflow.EventSupervisorAccept,
	} {
		_, err := m.Fire(ev)
		require.NoError(err)
	}

	require.Equal(model.TaskStatusSupervisorApproved, m.Current())
}

func TestDecisionEvent(t *testing.T) {
	tests := map[string]struct {
		stage    model.InspectionStage
		decision model.Decision
		expEvent workflow.Event
		expErr   bool
	}{
		"Quality accepted.":    {stage: model.InspectionStageQuality, decision: model.DecisionAccepted, expEvent: workflow.EventQAAccept},
		"Quality rejected.":    {stage: model.InspectionStageQuality, decision: model.DecisionRejected, expEvent: workflow.EventQAReject},
		"Tester accepted.":     {stage: model.InspectionStageTester, decision: model.DecisionAccepted, expEvent: workflow.EventTesterAccept},
		"Tester rejected.":     {stage: model.InspectionStageTester, decision: model.DecisionRejected, expEvent: workflow.EventTesterReject},
		"Supervisor accepted.": {stage: model.InspectionStageSupervisor, decision: model.DecisionAccepted, expEvent: workflow.EventSupervisorAccept},
		"Supervisor rejected.": {stage: model.InspectionStageSupervisor, decision: model.DecisionRejected, expEvent: workflow.EventSupervisorReject},
		"Pending is not a decision.": {
			stage:    model.InspectionStageQuality,
			decision: model.DecisionPending,
			expErr:   true,
		},
		"Unknown stage.": {
			stage:    model.InspectionStage("paint"),
			decision: model.DecisionAccepted,
			expErr:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ev, err := workflow.DecisionEvent(test.stage, test.decision)
			if test.expErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expEvent, ev)
		})
	}
}
