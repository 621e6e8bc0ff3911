package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joddb/shopfloor/internal/metrics"
	"github.com/joddb/shopfloor/internal/model"
)

func TestParseStatuses(t *testing.T) {
	tests := map[string]struct {
		raw    string
		exp    []model.TaskStatus
		expErr bool
	}{
		"Empty should return no filter": {
			raw: "",
		},
		"A list should be parsed ignoring spaces and case": {
			raw: " Available, in_progress ,,",
			exp: []model.TaskStatus{model.TaskStatusAvailable, model.TaskStatusInProgress},
		},
		"An unknown status should fail": {
			raw:    "available,flying",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseStatuses(test.raw)

			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.exp, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := map[string]struct {
		raw    string
		exp    time.Time
		expErr bool
	}{
		"Empty should return the zero time": {
			raw: "",
		},
		"A date should be parsed at local midnight": {
			raw: "2025-03-10",
			exp: time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local),
		},
		"A non date should fail": {
			raw:    "10/03/2025",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseDate(test.raw)

			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}
			require.NoError(t, err)
			assert.True(t, test.exp.Equal(got))
		})
	}
}

func TestRootCommandThresholds(t *testing.T) {
	tests := map[string]struct {
		root   RootCommand
		exp    metrics.Thresholds
		expErr bool
	}{
		"Flag values should be converted": {
			root: RootCommand{AvailableTime: "7h30m", EfficiencyAlertPercent: 60, DueDateWindow: "2d", ProgressAlertPercent: 90},
			exp: metrics.Thresholds{
				AvailableTimeSeconds:   27000,
				EfficiencyAlertPercent: 60,
				DueDateWindow:          48 * time.Hour,
				ProgressAlertPercent:   90,
			},
		},
		"Unset percentages should use the defaults": {
			root: RootCommand{AvailableTime: "8h", DueDateWindow: "3d"},
			exp:  metrics.DefaultThresholds,
		},
		"An invalid available time should fail": {
			root:   RootCommand{AvailableTime: "a day", DueDateWindow: "3d"},
			expErr: true,
		},
		"A sub second available time should fail": {
			root:   RootCommand{AvailableTime: "10ms", DueDateWindow: "3d"},
			expErr: true,
		},
		"An invalid due date window should fail": {
			root:   RootCommand{AvailableTime: "8h", DueDateWindow: "soon"},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := test.root.Thresholds()

			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.exp, got)
		})
	}
}
