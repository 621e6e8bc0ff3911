package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/joddb/shopfloor/internal/model"
)

// CreateJob stores a job template and its processes.
func (r *Repository) CreateJob(ctx context.Context, j model.Job) error {
	if err := j.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO jobs (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		j.ID, j.Name, j.Description, j.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("job %s: %w", j.Name, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert job: %w", err)
	}

	for _, p := range j.Processes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO processes (id, job_id, operation_name, standard_time_seconds, task_type, step_order)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, j.ID, p.OperationName, p.StandardTimeSeconds, p.TaskType, p.Order,
		)
		if err != nil {
			return fmt.Errorf("could not insert process %q: %w", p.OperationName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Created job in repository: %s (%d processes)", j.ID, len(j.Processes))
	return nil
}

// GetJob retrieves a job template with its processes by ID.
func (r *Repository) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return r.getJob(ctx, `WHERE id = ?`, id)
}

// GetJobByName retrieves a job template with its processes by name.
func (r *Repository) GetJobByName(ctx context.Context, name string) (*model.Job, error) {
	return r.getJob(ctx, `WHERE name = ?`, name)
}

func (r *Repository) getJob(ctx context.Context, where string, arg string) (*model.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, description, created_at FROM jobs `+where, arg)
	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", arg, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query job: %w", err)
	}

	j.Processes, err = r.listProcesses(ctx, j.ID)
	if err != nil {
		return nil, err
	}

	return &j, nil
}

// ListJobs returns all job templates (with their processes) ordered by name.
func (r *Repository) ListJobs(ctx context.Context) ([]model.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM jobs ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	rows.Close()

	for i := range jobs {
		jobs[i].Processes, err = r.listProcesses(ctx, jobs[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return jobs, nil
}

func (r *Repository) listProcesses(ctx context.Context, jobID string) ([]model.Process, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job_id, operation_name, standard_time_seconds, task_type, step_order
		FROM processes WHERE job_id = ? ORDER BY step_order ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("could not query processes: %w", err)
	}
	defer rows.Close()

	ps := []model.Process{}
	for rows.Next() {
		var p model.Process
		if err := rows.Scan(&p.ID, &p.JobID, &p.OperationName, &p.StandardTimeSeconds, &p.TaskType, &p.Order); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		ps = append(ps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ps, nil
}

func scanJob(s scanner) (model.Job, error) {
	var j model.Job
	var createdAt int64
	if err := s.Scan(&j.ID, &j.Name, &j.Description, &createdAt); err != nil {
		return model.Job{}, err
	}
	j.CreatedAt = timeFromUnix(createdAt)
	return j, nil
}

const jobOrderColumns = `id, job_id, order_code, title, description, total_devices, due_date, created_by, status, created_at`

// CreateJobOrder stores a job order with all its devices and tasks in a single transaction.
func (r *Repository) CreateJobOrder(ctx context.Context, o model.JobOrder, devices []model.Device, tasks []model.Task) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid job order: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO job_orders (`+jobOrderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, nullString(o.JobID), o.OrderCode, o.Title, o.Description, o.TotalDevices,
		o.DueDate.Unix(), nullString(o.CreatedBy), o.Status, o.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("job order %s: %w", o.OrderCode, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert job order: %w", err)
	}

	for _, d := range devices {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO devices (id, job_order_id, serial_number, status, updated_at) VALUES (?, ?, ?, ?, ?)`,
			d.ID, o.ID, d.SerialNumber, d.Status, d.UpdatedAt.Unix(),
		)
		if err != nil {
			if isUniqueErr(err) {
				return fmt.Errorf("device %s: %w", d.SerialNumber, model.ErrAlreadyExists)
			}
			return fmt.Errorf("could not insert device: %w", err)
		}
	}

	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("invalid task: %w", err)
		}
		if err := insertTask(ctx, tx, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Created job order in repository: %s (%d devices, %d tasks)", o.ID, len(devices), len(tasks))
	return nil
}

// GetJobOrder retrieves a job order by ID.
func (r *Repository) GetJobOrder(ctx context.Context, id string) (*model.JobOrder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobOrderColumns+` FROM job_orders WHERE id = ?`, id)
	o, err := scanJobOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job order %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query job order: %w", err)
	}
	return &o, nil
}

// GetJobOrderByCode retrieves a job order by its order code.
func (r *Repository) GetJobOrderByCode(ctx context.Context, code string) (*model.JobOrder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobOrderColumns+` FROM job_orders WHERE order_code = ?`, code)
	o, err := scanJobOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job order %s: %w", code, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query job order: %w", err)
	}
	return &o, nil
}

// ListJobOrders returns all job orders ordered by due date.
func (r *Repository) ListJobOrders(ctx context.Context) ([]model.JobOrder, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobOrderColumns+` FROM job_orders ORDER BY due_date ASC, order_code ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not query job orders: %w", err)
	}
	defer rows.Close()

	orders := []model.JobOrder{}
	for rows.Next() {
		o, err := scanJobOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return orders, nil
}

func scanJobOrder(s scanner) (model.JobOrder, error) {
	var o model.JobOrder
	var jobID, createdBy sql.NullString
	var dueDate, createdAt int64
	err := s.Scan(&o.ID, &jobID, &o.OrderCode, &o.Title, &o.Description, &o.TotalDevices,
		&dueDate, &createdBy, &o.Status, &createdAt)
	if err != nil {
		return model.JobOrder{}, err
	}
	o.JobID = jobID.String
	o.CreatedBy = createdBy.String
	o.DueDate = timeFromUnix(dueDate)
	o.CreatedAt = timeFromUnix(createdAt)
	return o, nil
}

// GetDevice retrieves a device by ID.
func (r *Repository) GetDevice(ctx context.Context, id string) (*model.Device, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, job_order_id, serial_number, status, updated_at FROM devices WHERE id = ?`, id)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("device %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query device: %w", err)
	}
	return &d, nil
}

// ListDevices returns the devices of a job order ordered by serial number.
func (r *Repository) ListDevices(ctx context.Context, jobOrderID string) ([]model.Device, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job_order_id, serial_number, status, updated_at FROM devices
		WHERE job_order_id = ? ORDER BY serial_number ASC`, jobOrderID)
	if err != nil {
		return nil, fmt.Errorf("could not query devices: %w", err)
	}
	defer rows.Close()

	devices := []model.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return devices, nil
}

func scanDevice(s scanner) (model.Device, error) {
	var d model.Device
	var updatedAt int64
	if err := s.Scan(&d.ID, &d.JobOrderID, &d.SerialNumber, &d.Status, &updatedAt); err != nil {
		return model.Device{}, err
	}
	d.UpdatedAt = timeFromUnix(updatedAt)
	return d, nil
}
