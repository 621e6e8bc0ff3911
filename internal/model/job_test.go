package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/joddb/shopfloor/internal/model"
)

func TestJobValidate(t *testing.T) {
	tests := map[string]struct {
		job    model.Job
		expErr bool
	}{
		"A valid job should not fail": {
			job: model.Job{ID: "j1", Name: "harness", Processes: []model.Process{
				{OperationName: "Crimp", StandardTimeSeconds: 60, TaskType: model.TaskTypeTechnician, Order: 1},
				{OperationName: "Inspect", StandardTimeSeconds: 30, TaskType: model.TaskTypeQuality, Order: 2},
			}},
		},

		"A job without processes is valid": {
			job: model.Job{ID: "j1", Name: "harness"},
		},

		"Missing name should fail": {
			job:    model.Job{ID: "j1"},
			expErr: true,
		},

		"Repeated process order should fail": {
			job: model.Job{ID: "j1", Name: "harness", Processes: []model.Process{
				{OperationName: "Crimp", StandardTimeSeconds: 60, TaskType: model.TaskTypeTechnician, Order: 1},
				{OperationName: "Inspect", StandardTimeSeconds: 30, TaskType: model.TaskTypeQuality, Order: 1},
			}},
			expErr: true,
		},

		"Zero standard time should fail": {
			job: model.Job{ID: "j1", Name: "harness", Processes: []model.Process{
				{OperationName: "Crimp", TaskType: model.TaskTypeTechnician, Order: 1},
			}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.job.Validate()

			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJobOrderValidate(t *testing.T) {
	valid := func() model.JobOrder {
		return model.JobOrder{ID: "jo1", OrderCode: "JO-1", Title: "Batch", TotalDevices: 1, DueDate: time.Now()}
	}

	tests := map[string]struct {
		order  func() model.JobOrder
		expErr bool
	}{
		"A valid job order should not fail": {order: valid},
		"Missing code should fail": {
			order:  func() model.JobOrder { o := valid(); o.OrderCode = ""; return o },
			expErr: true,
		},
		"Zero devices should fail": {
			order:  func() model.JobOrder { o := valid(); o.TotalDevices = 0; return o },
			expErr: true,
		},
		"Missing due date should fail": {
			order:  func() model.JobOrder { o := valid(); o.DueDate = time.Time{}; return o },
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			o := test.order()
			err := o.Validate()

			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDeviceSerial(t *testing.T) {
	assert.Equal(t, "JO-7-0001", model.DeviceSerial("JO-7", 1))
	assert.Equal(t, "JO-7-0120", model.DeviceSerial("JO-7", 120))
}

func TestParseStandardTime(t *testing.T) {
	tests := map[string]struct {
		in     string
		exp    int
		expErr bool
	}{
		"Seconds":                  {in: "45s", exp: 45},
		"Hours and minutes":        {in: "1h30m", exp: 5400},
		"Days":                     {in: "1d", exp: 86400},
		"Fractions of second fail": {in: "1500ms", expErr: true},
		"Garbage fails":            {in: "soon", expErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := model.ParseStandardTime(test.in)

			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.exp, got)
		})
	}
}
