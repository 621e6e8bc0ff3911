package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joddb/shopfloor/internal/app/inspectionlist"
	"github.com/joddb/shopfloor/internal/app/jobordercreate"
	"github.com/joddb/shopfloor/internal/app/joborderlist"
	"github.com/joddb/shopfloor/internal/app/joborderprogress"
	"github.com/joddb/shopfloor/internal/app/notifications"
	"github.com/joddb/shopfloor/internal/app/review"
	"github.com/joddb/shopfloor/internal/app/stats"
	"github.com/joddb/shopfloor/internal/app/summary"
	"github.com/joddb/shopfloor/internal/app/taskend"
	"github.com/joddb/shopfloor/internal/app/tasklist"
	"github.com/joddb/shopfloor/internal/app/taskstart"
	"github.com/joddb/shopfloor/internal/app/taskstatus"
	"github.com/joddb/shopfloor/internal/app/techmetrics"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/printer"
)

type endTaskBody struct {
	Notes string `json:"notes"`
}

type inspectionBody struct {
	TaskID   string `json:"task_id" binding:"required"`
	Stage    string `json:"stage"`
	Decision string `json:"decision" binding:"required"`
	Comments string `json:"comments"`
}

type jobOrderBody struct {
	Job          string `json:"job"`
	OrderCode    string `json:"order_code" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	TotalDevices int    `json:"total_devices"`
	DueDate      string `json:"due_date" binding:"required"`
}

// statusFor maps the domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, model.ErrNotValid):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotAllowed):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Errorf("Request %s %s failed: %s", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(code, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

func ok(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{
		"success": true,
		"data":    data,
	})
}

func actingUser(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(UserHeader))
}

func (s *Server) handleListTasks(c *gin.Context) {
	var statuses []model.TaskStatus
	for _, raw := range c.QueryArray("status") {
		for _, st := range strings.Split(raw, ",") {
			if st = strings.TrimSpace(st); st != "" {
				statuses = append(statuses, model.TaskStatus(st))
			}
		}
	}

	tasks, err := s.taskList.Run(c.Request.Context(), tasklist.Request{
		UserID:       actingUser(c),
		StatusFilter: statuses,
		JobOrderID:   c.Query("job_order_id"),
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	now := s.timeNow()
	out := make([]printer.TaskOutput, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, printer.NewTaskOutput(t, now))
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) handleTaskSummary(c *gin.Context) {
	sum, err := s.summary.Run(c.Request.Context(), summary.Request{JobOrderID: c.Query("job_order_id")})
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make(map[string]int, len(sum))
	for st, n := range sum {
		out[string(st)] = n
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) handleGetTask(c *gin.Context) {
	res, err := s.taskStatus.Run(c.Request.Context(), taskstatus.Request{TaskID: c.Param("id")})
	if err != nil {
		s.fail(c, err)
		return
	}

	ok(c, http.StatusOK, printer.NewTaskDetailOutput(printer.TaskDetail{
		Task:     res.Task,
		Device:   res.Device,
		JobOrder: res.JobOrder,
		Snapshot: res.Snapshot,
		At:       res.At,
	}))
}

func (s *Server) handleStartTask(c *gin.Context) {
	tasks, err := s.taskStart.Run(c.Request.Context(), taskstart.Request{
		UserID:  actingUser(c),
		TaskIDs: []string{c.Param("id")},
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	ok(c, http.StatusOK, printer.NewTaskOutput(tasks[0], s.timeNow()))
}

func (s *Server) handleEndTask(c *gin.Context) {
	var body endTaskBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	t, err := s.taskEnd.Run(c.Request.Context(), taskend.Request{
		UserID: actingUser(c),
		TaskID: c.Param("id"),
		Notes:  body.Notes,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	ok(c, http.StatusOK, printer.NewTaskOutput(*t, s.timeNow()))
}

func (s *Server) handleListInspections(c *gin.Context) {
	insps, err := s.inspectionList.Run(c.Request.Context(), inspectionlist.Request{
		UserID:   actingUser(c),
		TaskID:   c.Query("task_id"),
		Stage:    model.InspectionStage(c.Query("stage")),
		Decision: model.Decision(c.Query("decision")),
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]printer.InspectionOutput, 0, len(insps))
	for _, i := range insps {
		out = append(out, printer.NewInspectionOutput(i))
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) handleCreateInspection(c *gin.Context) {
	var body inspectionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := s.review.Run(c.Request.Context(), review.Request{
		UserID:   actingUser(c),
		TaskID:   body.TaskID,
		Stage:    model.InspectionStage(body.Stage),
		Decision: model.Decision(body.Decision),
		Comments: body.Comments,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"inspection": printer.NewInspectionOutput(res.Inspection),
		"task":       printer.NewTaskOutput(res.Task, s.timeNow()),
	})
}

func (s *Server) handleListJobOrders(c *gin.Context) {
	archived, _ := strconv.ParseBool(c.DefaultQuery("archived", "false"))
	orders, err := s.jobOrderList.Run(c.Request.Context(), joborderlist.Request{IncludeArchived: archived})
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]printer.JobOrderOutput, 0, len(orders))
	for _, o := range orders {
		out = append(out, printer.NewJobOrderOutput(o, nil))
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) handleCreateJobOrder(c *gin.Context) {
	var body jobOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err.Error())
		return
	}
	due, err := time.Parse(time.DateOnly, body.DueDate)
	if err != nil {
		badRequest(c, "due_date must be YYYY-MM-DD")
		return
	}

	res, err := s.jobOrderCreate.Run(c.Request.Context(), jobordercreate.Request{
		UserID:       actingUser(c),
		JobName:      body.Job,
		OrderCode:    body.OrderCode,
		Title:        body.Title,
		Description:  body.Description,
		TotalDevices: body.TotalDevices,
		DueDate:      due,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	ok(c, http.StatusCreated, printer.NewJobOrderOutput(res.JobOrder, res.Devices))
}

func (s *Server) handleTechnicianMetrics(c *gin.Context) {
	var date time.Time
	if raw := c.Query("date"); raw != "" {
		d, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
		if err != nil {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}

	m, err := s.techMetrics.Run(c.Request.Context(), techmetrics.Request{
		UserID:       actingUser(c),
		TechnicianID: c.Param("id"),
		Date:         date,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	ok(c, http.StatusOK, printer.NewTechnicianMetricsOutput(*m))
}

func (s *Server) handleJobOrderProgress(c *gin.Context) {
	p, err := s.jobOrderProgress.Run(c.Request.Context(), joborderprogress.Request{
		UserID:   actingUser(c),
		JobOrder: c.Param("id"),
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	ok(c, http.StatusOK, printer.NewJobOrderProgressOutput(*p))
}

func (s *Server) handlePlannerStatistics(c *gin.Context) {
	st, err := s.stats.Run(c.Request.Context(), stats.Request{UserID: actingUser(c)})
	if err != nil {
		s.fail(c, err)
		return
	}

	ok(c, http.StatusOK, printer.NewPlannerStatisticsOutput(*st))
}

func (s *Server) handleListNotifications(c *gin.Context) {
	unread, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	ns, err := s.notifications.List(c.Request.Context(), notifications.ListRequest{
		UserID:     actingUser(c),
		UnreadOnly: unread,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]printer.NotificationOutput, 0, len(ns))
	for _, n := range ns {
		out = append(out, printer.NewNotificationOutput(n))
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) handleReadNotification(c *gin.Context) {
	err := s.notifications.MarkRead(c.Request.Context(), notifications.MarkReadRequest{
		UserID:         actingUser(c),
		NotificationID: c.Param("id"),
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification marked as read",
	})
}
