package printer

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/tracker"
)

// TablePrinter prints shop-floor information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

func (t *TablePrinter) tabwriter() *tabwriter.Writer {
	return tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
}

// PrintUsers prints users in a table format.
func (t *TablePrinter) PrintUsers(users []model.User) error {
	if len(users) == 0 {
		return nil
	}

	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "USERNAME\tNAME\tROLE\tACTIVE\tID")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.Username, u.DisplayName(), u.Role, yesNo(u.Active), u.ID)
	}

	return nil
}

// PrintJob prints a job template with its processes.
func (t *TablePrinter) PrintJob(job model.Job) error {
	fmt.Fprintf(t.writer, "Name:         %s\n", job.Name)
	fmt.Fprintf(t.writer, "ID:           %s\n", job.ID)
	if job.Description != "" {
		fmt.Fprintf(t.writer, "Description:  %s\n", job.Description)
	}
	fmt.Fprintf(t.writer, "Created:      %s\n", FormatTimestamp(job.CreatedAt))

	if len(job.Processes) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "#\tOPERATION\tTYPE\tSTANDARD")
	for _, p := range job.Processes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.Order, p.OperationName, p.TaskType, tracker.FormatStandardTime(p.StandardTimeSeconds))
	}

	return nil
}

// PrintJobOrder prints a job order with its devices.
func (t *TablePrinter) PrintJobOrder(order model.JobOrder, devices []model.Device) error {
	fmt.Fprintf(t.writer, "Order:        %s\n", order.OrderCode)
	fmt.Fprintf(t.writer, "ID:           %s\n", order.ID)
	fmt.Fprintf(t.writer, "Title:        %s\n", order.Title)
	fmt.Fprintf(t.writer, "Status:       %s\n", order.Status)
	fmt.Fprintf(t.writer, "Due:          %s\n", FormatDate(order.DueDate))
	fmt.Fprintf(t.writer, "Devices:      %d\n", order.TotalDevices)

	if len(devices) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "SERIAL\tSTATUS\tID")
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.SerialNumber, d.Status, d.ID)
	}

	return nil
}

// PrintJobOrders prints job orders in a table format.
func (t *TablePrinter) PrintJobOrders(orders []model.JobOrder) error {
	if len(orders) == 0 {
		return nil
	}

	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ORDER\tTITLE\tSTATUS\tDEVICES\tDUE\tCREATED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", o.OrderCode, o.Title, o.Status, o.TotalDevices, FormatDate(o.DueDate), TimeAgo(o.CreatedAt))
	}

	return nil
}

// PrintTasks prints tasks with their elapsed time and efficiency at now.
func (t *TablePrinter) PrintTasks(tasks []model.Task, now time.Time) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tOPERATION\tTYPE\tSTATUS\tTECHNICIAN\tSTANDARD\tELAPSED\tEFFICIENCY")
	for _, task := range tasks {
		s := tracker.TaskSnapshot(task, now)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			task.OperationName,
			task.TaskType,
			StatusBadge(task.Status).Label,
			dash(task.TechnicianID),
			tracker.FormatStandardTime(task.StandardTimeSeconds),
			elapsed(s),
			efficiency(s),
		)
	}

	return nil
}

// PrintTaskStatus prints the detail of a task.
func (t *TablePrinter) PrintTaskStatus(d TaskDetail) error {
	task := d.Task
	fmt.Fprintf(t.writer, "Task:         %s\n", task.ID)
	fmt.Fprintf(t.writer, "Operation:    %s\n", task.OperationName)
	fmt.Fprintf(t.writer, "Type:         %s\n", task.TaskType)
	fmt.Fprintf(t.writer, "Status:       %s\n", StatusBadge(task.Status).Label)
	fmt.Fprintf(t.writer, "Job order:    %s (%s)\n", d.JobOrder.OrderCode, d.JobOrder.Title)
	fmt.Fprintf(t.writer, "Device:       %s\n", d.Device.SerialNumber)
	fmt.Fprintf(t.writer, "Technician:   %s\n", dash(task.TechnicianID))
	fmt.Fprintf(t.writer, "Standard:     %s\n", tracker.FormatStandardTime(task.StandardTimeSeconds))
	fmt.Fprintf(t.writer, "Started:      %s\n", FormatOptionalTimestamp(task.StartTime))
	fmt.Fprintf(t.writer, "Ended:        %s\n", FormatOptionalTimestamp(task.EndTime))

	switch {
	case d.Snapshot.Active:
		fmt.Fprintf(t.writer, "Elapsed:      %s\n", tracker.FormatClock(d.Snapshot.ElapsedSeconds))
		fmt.Fprintf(t.writer, "Progress:     %.0f%%\n", d.Snapshot.ProgressPercent)
		fmt.Fprintf(t.writer, "Efficiency:   %s\n", efficiency(d.Snapshot))
	case task.ActualTimeSeconds != nil:
		fmt.Fprintf(t.writer, "Actual:       %s\n", tracker.FormatClock(int64(*task.ActualTimeSeconds)))
		if eff, ok := task.Efficiency(); ok {
			fmt.Fprintf(t.writer, "Efficiency:   %.2f%%\n", eff)
		}
	}

	if task.Notes != "" {
		fmt.Fprintf(t.writer, "Notes:        %s\n", task.Notes)
	}

	return nil
}

// PrintInspections prints inspections in a table format.
func (t *TablePrinter) PrintInspections(insps []model.Inspection) error {
	if len(insps) == 0 {
		return nil
	}

	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTASK\tSTAGE\tDECISION\tINSPECTOR\tCOMMENTS\tCREATED")
	for _, i := range insps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", i.ID, i.TaskID, i.Stage, i.Decision, dash(i.InspectorID), dash(i.Comments), TimeAgo(i.CreatedAt))
	}

	return nil
}

// PrintNotifications prints notifications in a table format.
func (t *TablePrinter) PrintNotifications(ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTYPE\tREAD\tMESSAGE\tCREATED")
	for _, n := range ns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, n.Type, yesNo(n.Read), n.Message, TimeAgo(n.CreatedAt))
	}

	return nil
}

// PrintSummary prints the task count of every status.
func (t *TablePrinter) PrintSummary(summary model.TaskSummary) error {
	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "STATUS\tTASKS")
	for _, st := range summaryStatuses(summary) {
		fmt.Fprintf(tw, "%s\t%d\n", StatusBadge(st).Label, summary[st])
	}

	return nil
}

// PrintTechnicianMetrics prints the daily metrics of a technician.
func (t *TablePrinter) PrintTechnicianMetrics(m model.TechnicianMetrics) error {
	fmt.Fprintf(t.writer, "Technician:          %s\n", m.TechnicianID)
	fmt.Fprintf(t.writer, "Date:                %s\n", FormatDate(m.Date))
	fmt.Fprintf(t.writer, "Tasks completed:     %d\n", m.TasksCompleted)
	fmt.Fprintf(t.writer, "Productivity:        %.2f%%\n", m.Productivity)
	fmt.Fprintf(t.writer, "Average efficiency:  %.2f%%\n", m.AverageEfficiency)
	fmt.Fprintf(t.writer, "Utilization:         %.2f%%\n", m.Utilization)
	return nil
}

// PrintJobOrderProgress prints the progress of a job order and its alerts.
func (t *TablePrinter) PrintJobOrderProgress(p model.JobOrderProgress) error {
	fmt.Fprintf(t.writer, "Job order:    %s\n", p.JobOrderID)
	fmt.Fprintf(t.writer, "Progress:     %.2f%%\n", p.ProgressPercent)
	fmt.Fprintf(t.writer, "Completed:    %d/%d\n", p.TotalCompleted, p.TotalDevices)
	fmt.Fprintf(t.writer, "Rejected:     %d\n", p.TotalRejected)

	if len(p.Alerts) == 0 {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := t.tabwriter()
	defer tw.Flush()

	fmt.Fprintln(tw, "ALERT\tMESSAGE")
	for _, a := range p.Alerts {
		fmt.Fprintf(tw, "%s\t%s\n", a.Type, a.Message)
	}

	return nil
}

// PrintPlannerStatistics prints the planning dashboard statistics.
func (t *TablePrinter) PrintPlannerStatistics(st model.PlannerStatistics) error {
	fmt.Fprintf(t.writer, "Active job orders:       %d\n", st.ActiveJobOrders)
	fmt.Fprintf(t.writer, "Due this week:           %d\n", st.DueThisWeek)
	fmt.Fprintf(t.writer, "Average productivity:    %.2f%%\n", st.AvgProductivity)
	fmt.Fprintf(t.writer, "Active technicians:      %d/%d\n", st.ActiveTechnicians, st.TotalTechnicians)
	fmt.Fprintf(t.writer, "Technician utilization:  %.2f%%\n", st.TechnicianUtilization)
	fmt.Fprintf(t.writer, "Overdue tasks:           %d\n", st.OverdueTasks)
	fmt.Fprintf(t.writer, "Pending reviews:         %d\n", st.PendingReviews)
	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

// summaryStatuses returns the known statuses in workflow order followed by any unknown one.
func summaryStatuses(summary model.TaskSummary) []model.TaskStatus {
	sts := append([]model.TaskStatus{}, model.TaskStatuses...)
	var unknown []model.TaskStatus
	for st := range summary {
		if !st.Valid() {
			unknown = append(unknown, st)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(sts, unknown...)
}

func elapsed(s tracker.Snapshot) string {
	if !s.Active && s.ElapsedSeconds == 0 {
		return "-"
	}
	return tracker.FormatClock(s.ElapsedSeconds)
}

func efficiency(s tracker.Snapshot) string {
	if s.StandardTimeSeconds <= 0 {
		return tracker.NotAvailable
	}
	if !s.HasEfficiency {
		return "-"
	}
	return fmt.Sprintf("%.0f%% (%s)", s.Efficiency, s.Classification)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
