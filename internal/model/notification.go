package model

import "time"

// NotificationType is the kind of notification sent to a user.
type NotificationType string

const (
	NotificationTaskRejected            NotificationType = "task_rejected"
	NotificationTaskAccepted            NotificationType = "task_accepted"
	NotificationApproachingDeadline     NotificationType = "approaching_deadline"
	NotificationQualityIssue            NotificationType = "quality_issue"
	NotificationEfficiencyAlert         NotificationType = "efficiency_alert"
	NotificationTaskReadyForInspection  NotificationType = "task_ready_for_inspection"
	NotificationTaskReadyForTesting     NotificationType = "task_ready_for_testing"
	NotificationTaskReadyForSupervision NotificationType = "task_ready_for_supervisor_review"
	NotificationTaskCompleted           NotificationType = "task_completed"
)

// Notification is a message for a user about the workflow.
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Message   string
	Payload   map[string]string
	Read      bool
	CreatedAt time.Time
}
