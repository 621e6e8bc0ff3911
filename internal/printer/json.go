package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/tracker"
)

// JSONPrinter prints shop-floor information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// UserOutput is the JSON representation of a user.
type UserOutput struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ProcessOutput is the JSON representation of a job process.
type ProcessOutput struct {
	ID                  string `json:"id"`
	Order               int    `json:"order"`
	OperationName       string `json:"operation_name"`
	StandardTimeSeconds int    `json:"standard_time_seconds"`
	TaskType            string `json:"task_type"`
}

// JobOutput is the JSON representation of a job template.
type JobOutput struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Processes   []ProcessOutput `json:"processes"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DeviceOutput is the JSON representation of a device.
type DeviceOutput struct {
	ID           string `json:"id"`
	SerialNumber string `json:"serial_number"`
	Status       string `json:"status"`
}

// JobOrderOutput is the JSON representation of a job order.
type JobOrderOutput struct {
	ID           string         `json:"id"`
	JobID        string         `json:"job_id,omitempty"`
	OrderCode    string         `json:"order_code"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	TotalDevices int            `json:"total_devices"`
	DueDate      string         `json:"due_date"`
	Status       string         `json:"status"`
	CreatedBy    string         `json:"created_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Devices      []DeviceOutput `json:"devices,omitempty"`
}

// TaskOutput is the JSON representation of a task with its tracking values.
type TaskOutput struct {
	ID                  string     `json:"id"`
	OperationName       string     `json:"operation_name"`
	DeviceID            string     `json:"device_id"`
	JobOrderID          string     `json:"job_order_id"`
	TechnicianID        string     `json:"technician_id,omitempty"`
	TaskType            string     `json:"task_type"`
	Status              string     `json:"status"`
	StatusLabel         string     `json:"status_label"`
	StandardTimeSeconds int        `json:"standard_time_seconds"`
	StartTime           *time.Time `json:"start_time"`
	EndTime             *time.Time `json:"end_time"`
	ActualTimeSeconds   *int       `json:"actual_time_seconds"`
	Notes               string     `json:"notes,omitempty"`
	ElapsedSeconds      int64      `json:"elapsed_seconds"`
	Elapsed             string     `json:"elapsed"`
	ProgressPercent     float64    `json:"progress_percent"`
	Efficiency          *float64   `json:"efficiency"`
	Classification      string     `json:"classification,omitempty"`
}

// TaskDetailOutput is the JSON representation of a task detail.
type TaskDetailOutput struct {
	TaskOutput
	DeviceSerial  string    `json:"device_serial"`
	JobOrderCode  string    `json:"job_order_code"`
	JobOrderTitle string    `json:"job_order_title"`
	At            time.Time `json:"at"`
}

// InspectionOutput is the JSON representation of an inspection.
type InspectionOutput struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	DeviceID    string    `json:"device_id"`
	Stage       string    `json:"stage"`
	InspectorID string    `json:"inspector_id,omitempty"`
	Decision    string    `json:"decision"`
	Comments    string    `json:"comments,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationOutput is the JSON representation of a notification.
type NotificationOutput struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	Payload   map[string]string `json:"payload"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

// TechnicianMetricsOutput is the JSON representation of the technician metrics.
type TechnicianMetricsOutput struct {
	TechnicianID      string  `json:"technician_id"`
	Date              string  `json:"date"`
	Productivity      float64 `json:"productivity"`
	AverageEfficiency float64 `json:"average_efficiency"`
	Utilization       float64 `json:"utilization"`
	TasksCompleted    int     `json:"tasks_completed"`
}

// AlertOutput is the JSON representation of a metric alert.
type AlertOutput struct {
	Type         string  `json:"type"`
	Message      string  `json:"message"`
	TaskID       string  `json:"task_id,omitempty"`
	TechnicianID string  `json:"technician_id,omitempty"`
	JobOrderID   string  `json:"job_order_id,omitempty"`
	DueDate      string  `json:"due_date,omitempty"`
	Progress     float64 `json:"progress,omitempty"`
}

// JobOrderProgressOutput is the JSON representation of a job order progress.
type JobOrderProgressOutput struct {
	JobOrderID      string        `json:"job_order_id"`
	ProgressPercent float64       `json:"progress_percent"`
	TotalCompleted  int           `json:"total_completed"`
	TotalRejected   int           `json:"total_rejected"`
	TotalDevices    int           `json:"total_devices"`
	Alerts          []AlertOutput `json:"alerts"`
}

// PlannerStatisticsOutput is the JSON representation of the planner statistics.
type PlannerStatisticsOutput struct {
	ActiveJobOrders       int     `json:"active_job_orders"`
	DueThisWeek           int     `json:"due_this_week"`
	AvgProductivity       float64 `json:"avg_productivity"`
	ActiveTechnicians     int     `json:"active_technicians"`
	TotalTechnicians      int     `json:"total_technicians"`
	TechnicianUtilization float64 `json:"technician_utilization"`
	OverdueTasks          int     `json:"overdue_tasks"`
	PendingReviews        int     `json:"pending_reviews"`
}

type messageOutput struct {
	Message string `json:"message"`
}

// NewUserOutput returns the JSON representation of a user.
func NewUserOutput(u model.User) UserOutput {
	return UserOutput{ID: u.ID, Username: u.Username, FullName: u.FullName, Role: string(u.Role), Active: u.Active, CreatedAt: u.CreatedAt.UTC()}
}

// NewJobOutput returns the JSON representation of a job.
func NewJobOutput(j model.Job) JobOutput {
	out := JobOutput{ID: j.ID, Name: j.Name, Description: j.Description, Processes: []ProcessOutput{}, CreatedAt: j.CreatedAt.UTC()}
	for _, p := range j.Processes {
		out.Processes = append(out.Processes, ProcessOutput{
			ID:                  p.ID,
			Order:               p.Order,
			OperationName:       p.OperationName,
			StandardTimeSeconds: p.StandardTimeSeconds,
			TaskType:            string(p.TaskType),
		})
	}
	return out
}

// NewJobOrderOutput returns the JSON representation of a job order and its devices.
func NewJobOrderOutput(o model.JobOrder, devices []model.Device) JobOrderOutput {
	out := JobOrderOutput{
		ID:           o.ID,
		JobID:        o.JobID,
		OrderCode:    o.OrderCode,
		Title:        o.Title,
		Description:  o.Description,
		TotalDevices: o.TotalDevices,
		DueDate:      FormatDate(o.DueDate),
		Status:       string(o.Status),
		CreatedBy:    o.CreatedBy,
		CreatedAt:    o.CreatedAt.UTC(),
	}
	for _, d := range devices {
		out.Devices = append(out.Devices, DeviceOutput{ID: d.ID, SerialNumber: d.SerialNumber, Status: string(d.Status)})
	}
	return out
}

// NewTaskOutput returns the JSON representation of a task with its tracking values at now.
func NewTaskOutput(t model.Task, now time.Time) TaskOutput {
	s := tracker.TaskSnapshot(t, now)
	out := TaskOutput{
		ID:                  t.ID,
		OperationName:       t.OperationName,
		DeviceID:            t.DeviceID,
		JobOrderID:          t.JobOrderID,
		TechnicianID:        t.TechnicianID,
		TaskType:            string(t.TaskType),
		Status:              string(t.Status),
		StatusLabel:         StatusBadge(t.Status).Label,
		StandardTimeSeconds: t.StandardTimeSeconds,
		StartTime:           utcPtr(t.StartTime),
		EndTime:             utcPtr(t.EndTime),
		ActualTimeSeconds:   t.ActualTimeSeconds,
		Notes:               t.Notes,
		ElapsedSeconds:      s.ElapsedSeconds,
		Elapsed:             tracker.FormatClock(s.ElapsedSeconds),
		ProgressPercent:     s.ProgressPercent,
		Classification:      string(s.Classification),
	}
	if s.HasEfficiency {
		eff := s.Efficiency
		out.Efficiency = &eff
	}
	return out
}

// NewTaskDetailOutput returns the JSON representation of a task detail.
func NewTaskDetailOutput(d TaskDetail) TaskDetailOutput {
	return TaskDetailOutput{
		TaskOutput:    NewTaskOutput(d.Task, d.At),
		DeviceSerial:  d.Device.SerialNumber,
		JobOrderCode:  d.JobOrder.OrderCode,
		JobOrderTitle: d.JobOrder.Title,
		At:            d.At.UTC(),
	}
}

// NewInspectionOutput returns the JSON representation of an inspection.
func NewInspectionOutput(i model.Inspection) InspectionOutput {
	return InspectionOutput{
		ID:          i.ID,
		TaskID:      i.TaskID,
		DeviceID:    i.DeviceID,
		Stage:       string(i.Stage),
		InspectorID: i.InspectorID,
		Decision:    string(i.Decision),
		Comments:    i.Comments,
		CreatedAt:   i.CreatedAt.UTC(),
	}
}

// NewNotificationOutput returns the JSON representation of a notification.
func NewNotificationOutput(n model.Notification) NotificationOutput {
	payload := n.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	return NotificationOutput{ID: n.ID, Type: string(n.Type), Message: n.Message, Payload: payload, Read: n.Read, CreatedAt: n.CreatedAt.UTC()}
}

// NewTechnicianMetricsOutput returns the JSON representation of the technician metrics.
func NewTechnicianMetricsOutput(m model.TechnicianMetrics) TechnicianMetricsOutput {
	return TechnicianMetricsOutput{
		TechnicianID:      m.TechnicianID,
		Date:              FormatDate(m.Date),
		Productivity:      m.Productivity,
		AverageEfficiency: m.AverageEfficiency,
		Utilization:       m.Utilization,
		TasksCompleted:    m.TasksCompleted,
	}
}

// NewJobOrderProgressOutput returns the JSON representation of a job order progress.
func NewJobOrderProgressOutput(p model.JobOrderProgress) JobOrderProgressOutput {
	out := JobOrderProgressOutput{
		JobOrderID:      p.JobOrderID,
		ProgressPercent: p.ProgressPercent,
		TotalCompleted:  p.TotalCompleted,
		TotalRejected:   p.TotalRejected,
		TotalDevices:    p.TotalDevices,
		Alerts:          []AlertOutput{},
	}
	for _, a := range p.Alerts {
		ao := AlertOutput{
			Type:         string(a.Type),
			Message:      a.Message,
			TaskID:       a.TaskID,
			TechnicianID: a.TechnicianID,
			JobOrderID:   a.JobOrderID,
			Progress:     a.Progress,
		}
		if a.DueDate != nil {
			ao.DueDate = FormatDate(*a.DueDate)
		}
		out.Alerts = append(out.Alerts, ao)
	}
	return out
}

// NewPlannerStatisticsOutput returns the JSON representation of the planner statistics.
func NewPlannerStatisticsOutput(st model.PlannerStatistics) PlannerStatisticsOutput {
	return PlannerStatisticsOutput(st)
}

// PrintUsers prints users in JSON format.
func (j *JSONPrinter) PrintUsers(users []model.User) error {
	return j.encode(mapAll(users, NewUserOutput))
}

// PrintJob prints a job template in JSON format.
func (j *JSONPrinter) PrintJob(job model.Job) error {
	return j.encode(NewJobOutput(job))
}

// PrintJobOrder prints a job order with its devices in JSON format.
func (j *JSONPrinter) PrintJobOrder(order model.JobOrder, devices []model.Device) error {
	return j.encode(NewJobOrderOutput(order, devices))
}

// PrintJobOrders prints job orders in JSON format.
func (j *JSONPrinter) PrintJobOrders(orders []model.JobOrder) error {
	return j.encode(mapAll(orders, func(o model.JobOrder) JobOrderOutput { return NewJobOrderOutput(o, nil) }))
}

// PrintTasks prints tasks with their tracking values at now in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []model.Task, now time.Time) error {
	return j.encode(mapAll(tasks, func(t model.Task) TaskOutput { return NewTaskOutput(t, now) }))
}

// PrintTaskStatus prints a task detail in JSON format.
func (j *JSONPrinter) PrintTaskStatus(d TaskDetail) error {
	return j.encode(NewTaskDetailOutput(d))
}

// PrintInspections prints inspections in JSON format.
func (j *JSONPrinter) PrintInspections(insps []model.Inspection) error {
	return j.encode(mapAll(insps, NewInspectionOutput))
}

// PrintNotifications prints notifications in JSON format.
func (j *JSONPrinter) PrintNotifications(ns []model.Notification) error {
	return j.encode(mapAll(ns, NewNotificationOutput))
}

// PrintSummary prints the task count of every status in JSON format.
func (j *JSONPrinter) PrintSummary(summary model.TaskSummary) error {
	out := make(map[string]int, len(summary))
	for st, n := range summary {
		out[string(st)] = n
	}
	return j.encode(out)
}

// PrintTechnicianMetrics prints the technician metrics in JSON format.
func (j *JSONPrinter) PrintTechnicianMetrics(m model.TechnicianMetrics) error {
	return j.encode(NewTechnicianMetricsOutput(m))
}

// PrintJobOrderProgress prints the job order progress in JSON format.
func (j *JSONPrinter) PrintJobOrderProgress(p model.JobOrderProgress) error {
	return j.encode(NewJobOrderProgressOutput(p))
}

// PrintPlannerStatistics prints the planner statistics in JSON format.
func (j *JSONPrinter) PrintPlannerStatistics(st model.PlannerStatistics) error {
	return j.encode(NewPlannerStatisticsOutput(st))
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mapAll[T, O any](in []T, f func(T) O) []O {
	out := make([]O, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
