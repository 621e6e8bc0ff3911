// Package metrics has the shop-floor performance calculations. All the functions are pure,
// the callers load the data and pass the current time.
package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/joddb/shopfloor/internal/model"
)

// Thresholds are the metric tunables.
type Thresholds struct {
	// AvailableTimeSeconds is the working time of a technician in a day.
	AvailableTimeSeconds int
	// EfficiencyAlertPercent is the efficiency under which a finished task raises an alert.
	EfficiencyAlertPercent float64
	// DueDateWindow is how close a due date has to be to check the job order progress.
	DueDateWindow time.Duration
	// ProgressAlertPercent is the progress under which a close due date raises an alert.
	ProgressAlertPercent float64
}

// DefaultThresholds are the thresholds used when none are configured.
var DefaultThresholds = Thresholds{
	AvailableTimeSeconds:   28800,
	EfficiencyAlertPercent: 70,
	DueDateWindow:          3 * 24 * time.Hour,
	ProgressAlertPercent:   80,
}

// Defaults fills the unset thresholds with the defaults.
func (t Thresholds) Defaults() Thresholds {
	if t.AvailableTimeSeconds <= 0 {
		t.AvailableTimeSeconds = DefaultThresholds.AvailableTimeSeconds
	}
	if t.EfficiencyAlertPercent <= 0 {
		t.EfficiencyAlertPercent = DefaultThresholds.EfficiencyAlertPercent
	}
	if t.DueDateWindow <= 0 {
		t.DueDateWindow = DefaultThresholds.DueDateWindow
	}
	if t.ProgressAlertPercent <= 0 {
		t.ProgressAlertPercent = DefaultThresholds.ProgressAlertPercent
	}
	return t
}

// FinishedTask returns true when the technician ended the task and it has a usable actual time.
func FinishedTask(t model.Task) bool {
	if !t.Finished() || *t.ActualTimeSeconds <= 0 {
		return false
	}
	switch t.Status {
	case model.TaskStatusAvailable, model.TaskStatusInProgress:
		return false
	}
	return true
}

// Technician computes the daily metrics of a technician. Only the tasks of the technician
// finished on the day of date (in date's location) count.
func Technician(technicianID string, date time.Time, tasks []model.Task, th Thresholds) model.TechnicianMetrics {
	th = th.Defaults()
	m := model.TechnicianMetrics{TechnicianID: technicianID, Date: startOfDay(date)}

	var totalStd, totalActual int
	var effSum float64
	for _, t := range tasks {
		if t.TechnicianID != technicianID || !FinishedTask(t) || !sameDay(*t.EndTime, date) {
			continue
		}
		totalStd += t.StandardTimeSeconds
		totalActual += *t.ActualTimeSeconds
		effSum += float64(t.StandardTimeSeconds) / float64(*t.ActualTimeSeconds) * 100
		m.TasksCompleted++
	}
	if m.TasksCompleted == 0 {
		return m
	}

	avail := float64(th.AvailableTimeSeconds)
	m.Productivity = Round2(float64(totalStd) / avail * 100)
	m.Utilization = Round2(float64(totalActual) / avail * 100)
	m.AverageEfficiency = Round2(effSum / float64(m.TasksCompleted))
	return m
}

// Progress computes the device completion progress of a job order.
func Progress(jobOrderID string, devices []model.Device) model.JobOrderProgress {
	p := model.JobOrderProgress{JobOrderID: jobOrderID, Alerts: []model.Alert{}}
	for _, d := range devices {
		if d.JobOrderID != jobOrderID {
			continue
		}
		p.TotalDevices++
		switch d.Status {
		case model.DeviceStatusCompleted:
			p.TotalCompleted++
		case model.DeviceStatusRejected:
			p.TotalRejected++
		}
	}
	if p.TotalDevices > 0 {
		p.ProgressPercent = Round2(float64(p.TotalCompleted) / float64(p.TotalDevices) * 100)
	}
	return p
}

// AlertsRequest is the input of Alerts.
type AlertsRequest struct {
	JobOrder model.JobOrder
	Progress model.JobOrderProgress
	Tasks    []model.Task
	// TechnicianID limits the efficiency alert to one technician and disables the due date alert.
	TechnicianID string
	// Usernames resolves technician IDs for the alert messages.
	Usernames map[string]string
	Now       time.Time
}

// Alerts returns the active alerts of a job order: at most one low efficiency alert (the first
// finished task under the threshold) and the due date risk alert.
func Alerts(req AlertsRequest, th Thresholds) []model.Alert {
	th = th.Defaults()
	alerts := []model.Alert{}

	for _, t := range req.Tasks {
		if t.JobOrderID != req.JobOrder.ID || !FinishedTask(t) {
			continue
		}
		if req.TechnicianID != "" && t.TechnicianID != req.TechnicianID {
			continue
		}
		eff := float64(t.StandardTimeSeconds) / float64(*t.ActualTimeSeconds) * 100
		if eff >= th.EfficiencyAlertPercent {
			continue
		}
		name := req.Usernames[t.TechnicianID]
		if name == "" {
			name = t.TechnicianID
		}
		alerts = append(alerts, model.Alert{
			Type:         model.AlertTypeLowEfficiency,
			Message:      fmt.Sprintf("Task %s (Technician: %s) has low efficiency: %.1f%%.", t.ID, name, eff),
			TaskID:       t.ID,
			TechnicianID: t.TechnicianID,
		})
		break
	}

	if req.TechnicianID != "" {
		return alerts
	}

	o := req.JobOrder
	limit := startOfDay(req.Now).Add(th.DueDateWindow)
	if o.Status != model.JobOrderStatusDone && !o.DueDate.IsZero() && !startOfDay(o.DueDate.In(req.Now.Location())).After(limit) {
		if req.Progress.ProgressPercent < th.ProgressAlertPercent {
			due := o.DueDate
			alerts = append(alerts, model.Alert{
				Type: model.AlertTypeDueDateRisk,
				Message: fmt.Sprintf("Job Order %s is due on %s but is only %.1f%% complete.",
					o.OrderCode, o.DueDate.Format(time.DateOnly), req.Progress.ProgressPercent),
				JobOrderID: o.ID,
				DueDate:    &due,
				Progress:   req.Progress.ProgressPercent,
			})
		}
	}

	return alerts
}

// PlannerRequest is the input of Planner.
type PlannerRequest struct {
	JobOrders []model.JobOrder
	Tasks     []model.Task
	Users     []model.User
	Now       time.Time
}

// Planner computes the planning dashboard statistics for the day of now.
func Planner(req PlannerRequest) model.PlannerStatistics {
	var st model.PlannerStatistics
	today := startOfDay(req.Now)
	weekEnd := today.AddDate(0, 0, 7)

	dueDays := map[string]time.Time{}
	for _, o := range req.JobOrders {
		due := startOfDay(o.DueDate.In(req.Now.Location()))
		dueDays[o.ID] = due
		if !activeJobOrder(o) {
			continue
		}
		st.ActiveJobOrders++
		if !due.Before(today) && !due.After(weekEnd) {
			st.DueThisWeek++
		}
	}

	var totalStd, totalActual int
	working := map[string]bool{}
	for _, t := range req.Tasks {
		if t.EndTime != nil && sameDay(*t.EndTime, req.Now) && t.ActualTimeSeconds != nil && t.StandardTimeSeconds > 0 {
			totalStd += t.StandardTimeSeconds
			totalActual += *t.ActualTimeSeconds
		}
		if t.StartTime != nil && sameDay(*t.StartTime, req.Now) && t.TechnicianID != "" {
			working[t.TechnicianID] = true
		}
		switch t.Status {
		case model.TaskStatusAvailable, model.TaskStatusInProgress:
			if due, ok := dueDays[t.JobOrderID]; ok && due.Before(today) {
				st.OverdueTasks++
			}
		case model.TaskStatusPendingQA, model.TaskStatusPendingTester, model.TaskStatusTesterApproved, model.TaskStatusPendingSupervisor:
			st.PendingReviews++
		}
	}
	if totalActual > 0 {
		st.AvgProductivity = Round2(float64(totalStd) / float64(totalActual) * 100)
	}
	st.ActiveTechnicians = len(working)

	for _, u := range req.Users {
		if !u.Active {
			continue
		}
		switch u.Role {
		case model.RoleTechnician, model.RoleQuality, model.RoleTester:
			st.TotalTechnicians++
		}
	}
	if st.TotalTechnicians > 0 {
		st.TechnicianUtilization = Round2(float64(st.ActiveTechnicians) / float64(st.TotalTechnicians) * 100)
	}

	return st
}

// Summary counts the tasks on each status, every known status is present.
func Summary(tasks []model.Task) model.TaskSummary {
	s := model.TaskSummary{}
	for _, st := range model.TaskStatuses {
		s[st] = 0
	}
	for _, t := range tasks {
		s[t.Status]++
	}
	return s
}

// Round2 rounds to 2 decimals.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func activeJobOrder(o model.JobOrder) bool {
	return o.Status == model.JobOrderStatusAvailable || o.Status == model.JobOrderStatusInProgress
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, day time.Time) bool {
	ay, am, ad := a.In(day.Location()).Date()
	dy, dm, dd := day.Date()
	return ay == dy && am == dm && ad == dd
}
