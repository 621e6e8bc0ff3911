package printer

import (
	"time"

	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/tracker"
)

// Printer knows how to print shop-floor information in different formats.
type Printer interface {
	PrintUsers(users []model.User) error
	PrintJob(job model.Job) error
	PrintJobOrder(order model.JobOrder, devices []model.Device) error
	PrintJobOrders(orders []model.JobOrder) error
	// PrintTasks prints the tasks with their tracking values at now.
	PrintTasks(tasks []model.Task, now time.Time) error
	PrintTaskStatus(detail TaskDetail) error
	PrintInspections(insps []model.Inspection) error
	PrintNotifications(ns []model.Notification) error
	PrintSummary(summary model.TaskSummary) error
	PrintTechnicianMetrics(m model.TechnicianMetrics) error
	PrintJobOrderProgress(p model.JobOrderProgress) error
	PrintPlannerStatistics(st model.PlannerStatistics) error
	PrintMessage(msg string) error
}

// TaskDetail is a task with the context needed to show it.
type TaskDetail struct {
	Task     model.Task
	Device   model.Device
	JobOrder model.JobOrder
	Snapshot tracker.Snapshot
	At       time.Time
}
