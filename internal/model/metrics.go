package model

import "time"

// TechnicianMetrics are the daily performance metrics of a technician.
type TechnicianMetrics struct {
	TechnicianID      string
	Date              time.Time
	Productivity      float64
	AverageEfficiency float64
	Utilization       float64
	TasksCompleted    int
}

// JobOrderProgress is the device completion state of a job order.
type JobOrderProgress struct {
	JobOrderID      string
	ProgressPercent float64
	TotalCompleted  int
	TotalRejected   int
	TotalDevices    int
	Alerts          []Alert
}

// AlertType is the kind of metric alert.
type AlertType string

const (
	AlertTypeLowEfficiency AlertType = "low_efficiency"
	AlertTypeDueDateRisk   AlertType = "due_date_risk"
)

// Alert is an active warning on a job order.
type Alert struct {
	Type         AlertType
	Message      string
	TaskID       string
	TechnicianID string
	JobOrderID   string
	DueDate      *time.Time
	Progress     float64
}

// PlannerStatistics are the planning dashboard statistics.
type PlannerStatistics struct {
	ActiveJobOrders       int
	DueThisWeek           int
	AvgProductivity       float64
	ActiveTechnicians     int
	TotalTechnicians      int
	TechnicianUtilization float64
	OverdueTasks          int
	PendingReviews        int
}

// TaskSummary is the number of tasks on each status.
type TaskSummary map[TaskStatus]int
