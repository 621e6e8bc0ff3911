package printer

import "github.com/joddb/shopfloor/internal/model"

// Badge is the display descriptor of a task status.
type Badge struct {
	Label string
	// Color is an ANSI 256 color code.
	Color string
}

var unknownBadge = Badge{Label: "Unknown", Color: "245"}

var badges = map[model.TaskStatus]Badge{
	model.TaskStatusAvailable:          {Label: "Available", Color: "39"},
	model.TaskStatusInProgress:         {Label: "In Progress", Color: "214"},
	model.TaskStatusDone:               {Label: "Done", Color: "42"},
	model.TaskStatusPendingQA:          {Label: "Pending QA", Color: "141"},
	model.TaskStatusQAApproved:         {Label: "QA Approved", Color: "42"},
	model.TaskStatusPendingTester:      {Label: "Pending Tester", Color: "141"},
	model.TaskStatusTesterApproved:     {Label: "Tester Approved", Color: "42"},
	model.TaskStatusPendingSupervisor:  {Label: "Pending Supervisor", Color: "141"},
	model.TaskStatusSupervisorApproved: {Label: "Supervisor Approved", Color: "34"},
	model.TaskStatusRejected:           {Label: "Rejected", Color: "196"},
	model.TaskStatusCompleted:          {Label: "Completed", Color: "34"},
}

// StatusBadge returns the badge of a status, unrecognized statuses get the "Unknown" badge.
func StatusBadge(s model.TaskStatus) Badge {
	if b, ok := badges[s]; ok {
		return b
	}
	return unknownBadge
}
