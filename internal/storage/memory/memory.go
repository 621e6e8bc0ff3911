package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/joddb/shopfloor/internal/log"
	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	users         map[string]model.User
	jobs          map[string]model.Job
	jobOrders     map[string]model.JobOrder
	devices       map[string]model.Device
	tasks         map[string]model.Task
	inspections   map[string]model.Inspection
	notifications map[string]model.Notification
	mu            sync.RWMutex
	logger        log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		users:         map[string]model.User{},
		jobs:          map[string]model.Job{},
		jobOrders:     map[string]model.JobOrder{},
		devices:       map[string]model.Device{},
		tasks:         map[string]model.Task{},
		inspections:   map[string]model.Inspection{},
		notifications: map[string]model.Notification{},
		logger:        cfg.Logger,
	}, nil
}

// CreateUser creates a new user.
func (r *Repository) CreateUser(ctx context.Context, u model.User) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; ok {
		return fmt.Errorf("user with id %s: %w", u.ID, model.ErrAlreadyExists)
	}
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return fmt.Errorf("user %s: %w", u.Username, model.ErrAlreadyExists)
		}
	}

	r.users[u.ID] = u
	r.logger.Debugf("Created user in repository: %s", u.ID)
	return nil
}

// GetUser retrieves a user by ID.
func (r *Repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, model.ErrNotFound)
	}
	return &u, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with username %s: %w", username, model.ErrNotFound)
}

// ListUsers returns all users ordered by username.
func (r *Repository) ListUsers(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// CreateJob stores a job template with its processes.
func (r *Repository) CreateJob(ctx context.Context, j model.Job) error {
	if err := j.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[j.ID]; ok {
		return fmt.Errorf("job with id %s: %w", j.ID, model.ErrAlreadyExists)
	}
	for _, existing := range r.jobs {
		if existing.Name == j.Name {
			return fmt.Errorf("job %s: %w", j.Name, model.ErrAlreadyExists)
		}
	}

	j.Processes = append([]model.Process{}, j.Processes...)
	for i := range j.Processes {
		j.Processes[i].JobID = j.ID
	}
	sort.Slice(j.Processes, func(a, b int) bool { return j.Processes[a].Order < j.Processes[b].Order })

	r.jobs[j.ID] = j
	r.logger.Debugf("Created job in repository: %s (%d processes)", j.ID, len(j.Processes))
	return nil
}

// GetJob retrieves a job template by ID.
func (r *Repository) GetJob(ctx context.Context, id string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	j = cloneJob(j)
	return &j, nil
}

// GetJobByName retrieves a job template by name.
func (r *Repository) GetJobByName(ctx context.Context, name string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, j := range r.jobs {
		if j.Name == name {
			j = cloneJob(j)
			return &j, nil
		}
	}
	return nil, fmt.Errorf("job %s: %w", name, model.ErrNotFound)
}

// ListJobs returns all job templates ordered by name.
func (r *Repository) ListJobs(ctx context.Context) ([]model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]model.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, cloneJob(j))
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}

// CreateJobOrder stores a job order with all its devices and tasks, nothing is stored on error.
func (r *Repository) CreateJobOrder(ctx context.Context, o model.JobOrder, devices []model.Device, tasks []model.Task) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid job order: %w", err)
	}
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobOrders[o.ID]; ok {
		return fmt.Errorf("job order with id %s: %w", o.ID, model.ErrAlreadyExists)
	}
	for _, existing := range r.jobOrders {
		if existing.OrderCode == o.OrderCode {
			return fmt.Errorf("job order %s: %w", o.OrderCode, model.ErrAlreadyExists)
		}
	}
	serials := map[string]bool{}
	for _, d := range r.devices {
		serials[d.SerialNumber] = true
	}
	for _, d := range devices {
		if _, ok := r.devices[d.ID]; ok || serials[d.SerialNumber] {
			return fmt.Errorf("device %s: %w", d.SerialNumber, model.ErrAlreadyExists)
		}
		serials[d.SerialNumber] = true
	}
	for _, t := range tasks {
		if _, ok := r.tasks[t.ID]; ok {
			return fmt.Errorf("task %s: %w", t.ID, model.ErrAlreadyExists)
		}
	}

	r.jobOrders[o.ID] = o
	for _, d := range devices {
		d.JobOrderID = o.ID
		r.devices[d.ID] = d
	}
	for _, t := range tasks {
		r.tasks[t.ID] = cloneTask(t)
	}

	r.logger.Debugf("Created job order in repository: %s (%d devices, %d tasks)", o.ID, len(devices), len(tasks))
	return nil
}

// GetJobOrder retrieves a job order by ID.
func (r *Repository) GetJobOrder(ctx context.Context, id string) (*model.JobOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.jobOrders[id]
	if !ok {
		return nil, fmt.Errorf("job order %s: %w", id, model.ErrNotFound)
	}
	return &o, nil
}

// GetJobOrderByCode retrieves a job order by its order code.
func (r *Repository) GetJobOrderByCode(ctx context.Context, code string) (*model.JobOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.jobOrders {
		if o.OrderCode == code {
			return &o, nil
		}
	}
	return nil, fmt.Errorf("job order %s: %w", code, model.ErrNotFound)
}

// ListJobOrders returns all job orders ordered by due date.
func (r *Repository) ListJobOrders(ctx context.Context) ([]model.JobOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]model.JobOrder, 0, len(r.jobOrders))
	for _, o := range r.jobOrders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].DueDate.Equal(orders[j].DueDate) {
			return orders[i].DueDate.Before(orders[j].DueDate)
		}
		return orders[i].OrderCode < orders[j].OrderCode
	})
	return orders, nil
}

// GetDevice retrieves a device by ID.
func (r *Repository) GetDevice(ctx context.Context, id string) (*model.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[id]
	if !ok {
		return nil, fmt.Errorf("device %s: %w", id, model.ErrNotFound)
	}
	return &d, nil
}

// ListDevices returns the devices of a job order ordered by serial number.
func (r *Repository) ListDevices(ctx context.Context, jobOrderID string) ([]model.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := []model.Device{}
	for _, d := range r.devices {
		if d.JobOrderID == jobOrderID {
			devices = append(devices, d)
		}
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].SerialNumber < devices[j].SerialNumber })
	return devices, nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	t = cloneTask(t)
	return &t, nil
}

// ListTasks returns the tasks matching the query ordered by creation time.
func (r *Repository) ListTasks(ctx context.Context, q storage.TaskQuery) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := []model.Task{}
	for _, t := range r.tasks {
		if q.MatchTask(t) {
			tasks = append(tasks, cloneTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

// ApplyTransition stores all the changes of a workflow step, nothing is stored on error.
func (r *Repository) ApplyTransition(ctx context.Context, tr model.TaskTransition) error {
	if err := tr.Task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	for _, insp := range tr.Inspections {
		if err := insp.Validate(); err != nil {
			return fmt.Errorf("invalid inspection: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.tasks[tr.Task.ID]
	if !ok {
		return fmt.Errorf("task %s: %w", tr.Task.ID, model.ErrNotFound)
	}
	if tr.FromStatus != "" && current.Status != tr.FromStatus {
		return fmt.Errorf("task %s is %s, expected %s: %w", tr.Task.ID, current.Status, tr.FromStatus, model.ErrNotValid)
	}
	for _, n := range tr.Notifications {
		if _, ok := r.notifications[n.ID]; ok {
			return fmt.Errorf("notification %s: %w", n.ID, model.ErrAlreadyExists)
		}
	}

	r.tasks[tr.Task.ID] = cloneTask(tr.Task)

	if d, ok := r.devices[tr.Task.DeviceID]; ok && tr.DeviceStatus != "" {
		d.Status = tr.DeviceStatus
		d.UpdatedAt = tr.Task.UpdatedAt
		r.devices[d.ID] = d
	}

	for _, insp := range tr.Inspections {
		if existing, ok := r.inspections[insp.ID]; ok {
			existing.InspectorID = insp.InspectorID
			existing.Decision = insp.Decision
			existing.Comments = insp.Comments
			insp = existing
		}
		r.inspections[insp.ID] = insp
	}

	for _, n := range tr.Notifications {
		n.Payload = maps.Clone(n.Payload)
		if n.Payload == nil {
			n.Payload = map[string]string{}
		}
		r.notifications[n.ID] = n
	}

	r.logger.Debugf("Applied task transition in repository: %s -> %s", tr.Task.ID, tr.Task.Status)
	return nil
}

// ListInspections returns the inspections matching the query, newest first.
func (r *Repository) ListInspections(ctx context.Context, q storage.InspectionQuery) ([]model.Inspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	insps := []model.Inspection{}
	for _, i := range r.inspections {
		if q.MatchInspection(i) {
			insps = append(insps, i)
		}
	}
	sortInspections(insps)
	return insps, nil
}

// GetPendingInspection returns the latest pending inspection of a task at a stage.
func (r *Repository) GetPendingInspection(ctx context.Context, taskID string, stage model.InspectionStage) (*model.Inspection, error) {
	insps, _ := r.ListInspections(ctx, storage.InspectionQuery{TaskID: taskID, Stage: stage, Decision: model.DecisionPending})
	if len(insps) == 0 {
		return nil, fmt.Errorf("pending %s inspection for task %s: %w", stage, taskID, model.ErrNotFound)
	}
	return &insps[0], nil
}

// ListNotifications returns the notifications of a user, newest first.
func (r *Repository) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ns := []model.Notification{}
	for _, n := range r.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		n.Payload = maps.Clone(n.Payload)
		ns = append(ns, n)
	}
	sort.Slice(ns, func(i, j int) bool {
		if !ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].CreatedAt.After(ns[j].CreatedAt)
		}
		return ns[i].ID > ns[j].ID
	})
	return ns, nil
}

// MarkNotificationRead marks a notification as read.
func (r *Repository) MarkNotificationRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return fmt.Errorf("notification %s: %w", id, model.ErrNotFound)
	}
	n.Read = true
	r.notifications[id] = n
	return nil
}

func sortInspections(insps []model.Inspection) {
	sort.Slice(insps, func(i, j int) bool {
		if !insps[i].CreatedAt.Equal(insps[j].CreatedAt) {
			return insps[i].CreatedAt.After(insps[j].CreatedAt)
		}
		return insps[i].ID > insps[j].ID
	})
}

func cloneJob(j model.Job) model.Job {
	j.Processes = append([]model.Process{}, j.Processes...)
	return j
}

func cloneTask(t model.Task) model.Task {
	if t.StartTime != nil {
		st := *t.StartTime
		t.StartTime = &st
	}
	if t.EndTime != nil {
		et := *t.EndTime
		t.EndTime = &et
	}
	if t.ActualTimeSeconds != nil {
		a := *t.ActualTimeSeconds
		t.ActualTimeSeconds = &a
	}
	return t
}

var _ storage.Repository = &Repository{}
