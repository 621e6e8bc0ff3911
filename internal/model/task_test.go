package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/joddb/shopfloor/internal/model"
)

func validTask() model.Task {
	return model.Task{
		ID:                  "t1",
		DeviceID:            "d1",
		JobOrderID:          "jo1",
		OperationName:       "Crimp",
		StandardTimeSeconds: 600,
		TaskType:            model.TaskTypeTechnician,
		Status:              model.TaskStatusAvailable,
	}
}

func TestTaskValidate(t *testing.T) {
	tests := map[string]struct {
		task   func() model.Task
		expErr bool
	}{
		"A valid task should not fail": {
			task: validTask,
		},

		"Missing device should fail": {
			task:   func() model.Task { t := validTask(); t.DeviceID = ""; return t },
			expErr: true,
		},

		"Missing operation should fail": {
			task:   func() model.Task { t := validTask(); t.OperationName = ""; return t },
			expErr: true,
		},

		"Zero standard time should fail": {
			task:   func() model.Task { t := validTask(); t.StandardTimeSeconds = 0; return t },
			expErr: true,
		},

		"Unknown type should fail": {
			task:   func() model.Task { t := validTask(); t.TaskType = "welder"; return t },
			expErr: true,
		},

		"Unknown status should fail": {
			task:   func() model.Task { t := validTask(); t.Status = "paused"; return t },
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			task := test.task()
			err := task.Validate()

			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTaskEfficiency(t *testing.T) {
	intp := func(i int) *int { return &i }

	tests := map[string]struct {
		actual *int
		exp    float64
		expOK  bool
	}{
		"Faster than the standard is over 100.": {actual: intp(480), exp: 125, expOK: true},
		"Slower than the standard is rounded.":  {actual: intp(700), exp: 85.71, expOK: true},
		"No actual time has no efficiency.":     {},
		"Zero actual time has no efficiency.":   {actual: intp(0)},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			task := validTask()
			task.ActualTimeSeconds = test.actual

			got, ok := task.Efficiency()

			assert.Equal(t, test.expOK, ok)
			assert.Equal(t, test.exp, got)
		})
	}
}

func TestTaskFinished(t *testing.T) {
	now := time.Now()
	actual := 10

	task := validTask()
	assert.False(t, task.Finished())

	task.EndTime = &now
	assert.False(t, task.Finished())

	task.ActualTimeSeconds = &actual
	assert.True(t, task.Finished())
}
