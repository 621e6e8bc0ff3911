// Package api serves the shop-floor REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
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
	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/metrics"
	"github.com/joddb/shopfloor/internal/storage"
)

// UserHeader is the header that names the acting user (ID or username).
const UserHeader = "X-Shopfloor-User"

// ServerConfig is the configuration of the API server.
type ServerConfig struct {
	Repository storage.Repository
	Thresholds metrics.Thresholds
	Logger     log.Logger
	IDGen      func() string
	TimeNow    func() time.Time
}

func (c *ServerConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "api.Server"})
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	return nil
}

// Server is the REST API server.
type Server struct {
	router  *gin.Engine
	logger  log.Logger
	timeNow func() time.Time

	taskList         *tasklist.Service
	taskStatus       *taskstatus.Service
	taskStart        *taskstart.Service
	taskEnd          *taskend.Service
	summary          *summary.Service
	review           *review.Service
	inspectionList   *inspectionlist.Service
	techMetrics      *techmetrics.Service
	jobOrderProgress *joborderprogress.Service
	jobOrderList     *joborderlist.Service
	jobOrderCreate   *jobordercreate.Service
	stats            *stats.Service
	notifications    *notifications.Service
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Server{logger: cfg.Logger, timeNow: cfg.TimeNow}
	if err := s.initServices(cfg); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/tasks", s.handleListTasks)
		v1.GET("/tasks/summary", s.handleTaskSummary)
		v1.GET("/tasks/:id", s.handleGetTask)
		v1.PATCH("/tasks/:id/start", s.handleStartTask)
		v1.PATCH("/tasks/:id/end", s.handleEndTask)

		v1.GET("/inspections", s.handleListInspections)
		v1.POST("/inspections", s.handleCreateInspection)

		v1.GET("/job-orders", s.handleListJobOrders)
		v1.POST("/job-orders", s.handleCreateJobOrder)

		v1.GET("/metrics/technician/:id", s.handleTechnicianMetrics)
		v1.GET("/metrics/job-order/:id", s.handleJobOrderProgress)
		v1.GET("/planner/statistics", s.handlePlannerStatistics)

		v1.GET("/notifications", s.handleListNotifications)
		v1.POST("/notifications/:id/read", s.handleReadNotification)
	}
	s.router = router

	return s, nil
}

func (s *Server) initServices(cfg ServerConfig) error {
	var err error
	repo, logger := cfg.Repository, cfg.Logger

	if s.taskList, err = tasklist.NewService(tasklist.ServiceConfig{Repository: repo, Logger: logger}); err != nil {
		return fmt.Errorf("could not create task list service: %w", err)
	}
	if s.taskStatus, err = taskstatus.NewService(taskstatus.ServiceConfig{Repository: repo, Logger: logger, TimeNow: cfg.TimeNow}); err != nil {
		return fmt.Errorf("could not create task status service: %w", err)
	}
	if s.taskStart, err = taskstart.NewService(taskstart.ServiceConfig{Repository: repo, Logger: logger, TimeNow: cfg.TimeNow}); err != nil {
		return fmt.Errorf("could not create task start service: %w", err)
	}
	if s.taskEnd, err = taskend.NewService(taskend.ServiceConfig{Repository: repo, Logger: logger, IDGen: cfg.IDGen, TimeNow: cfg.TimeNow}); err != nil {
		return fmt.Errorf("could not create task end service: %w", err)
	}
	if s.summary, err = summary.NewService(summary.ServiceConfig{Repository: repo, Logger: logger}); err != nil {
		return fmt.Errorf("could not create summary service: %w", err)
	}
	if s.review, err = review.NewService(review.ServiceConfig{Repository: repo, Logger: logger, IDGen: cfg.IDGen, TimeNow: cfg.TimeNow}); err != nil {
		return fmt.Errorf("could not create review service: %w", err)
	}
	if s.inspectionList, err = inspectionlist.NewService(inspectionlist.ServiceConfig{Repository: repo, Logger: logger}); err != nil {
		return fmt.Errorf("could not create inspection list service: %w", err)
	}
	if s.techMetrics, err = techmetrics.NewService(techmetrics.ServiceConfig{Repository: repo, Thresholds: cfg.Thresholds, Logger: logger, TimeNow: cfg.TimeNow}); err != nil {
		return fmt.Errorf("could not create technician metrics service: %w", err)
	}
	if s.jobOrderProgress, err = joborderprogress.NewService(joborderprogress.ServiceConfig{Repository: repo, Thresholds: cfg.Thresholds, Logger: logger, TimeNow: cfg.TimeNow}); err != nil {
		return fmt.Errorf("could not create job order progress service: %w", err)
	}
	if s.jobOrderList, err = joborderlist.NewService(joborderlist.ServiceConfig{Repository: repo, Logger: logger}); err != nil {
		return fmt.Errorf("could not create job order list service: %w", err)
	}
	if s.jobOrderCreate, err = jobordercreate.NewService(jobordercreate.ServiceConfig{Repository: repo, Logger: logger, IDGen: cfg.IDGen, TimeNow: cfg.TimeNow}); err != nil {
		return fmt.Errorf("could not create job order create service: %w", err)
	}
	if s.stats, err = stats.NewService(stats.ServiceConfig{Repository: repo, Logger: logger, TimeNow: cfg.TimeNow}); err != nil {
		return fmt.Errorf("could not create stats service: %w", err)
	}
	if s.notifications, err = notifications.NewService(notifications.ServiceConfig{Repository: repo, Logger: logger}); err != nil {
		return fmt.Errorf("could not create notifications service: %w", err)
	}

	return nil
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves the API on addr until the context is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Infof("API listening on %s", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not shutdown api server: %w", err)
	}
	s.logger.Infof("API stopped")
	return nil
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.timeNow()
		c.Next()
		s.logger.WithValues(log.Kv{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
			"user":   c.GetHeader(UserHeader),
		}).Debugf("Handled request in %s", s.timeNow().Sub(start))
	}
}
