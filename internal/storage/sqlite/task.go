package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/joddb/shopfloor/internal/model"
	"github.com/joddb/shopfloor/internal/storage"
)

const taskColumns = `id, process_id, device_id, job_order_id, technician_id, operation_name,
	standard_time_seconds, task_type, status, start_time, end_time, actual_time_seconds,
	notes, created_at, updated_at`

func insertTask(ctx context.Context, e execer, t model.Task) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, nullString(t.ProcessID), t.DeviceID, t.JobOrderID, nullString(t.TechnicianID), t.OperationName,
		t.StandardTimeSeconds, t.TaskType, t.Status, nullTime(t.StartTime), nullTime(t.EndTime),
		nullInt(t.ActualTimeSeconds), t.Notes, t.CreatedAt.Unix(), t.UpdatedAt.Unix(),
	)
	if err != nil {
		if isUniqueErr(err) {
			return fmt.Errorf("task %s: %w", t.ID, model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return &t, nil
}

// ListTasks returns the tasks matching the query ordered by creation time.
func (r *Repository) ListTasks(ctx context.Context, q storage.TaskQuery) ([]model.Task, error) {
	where := []string{}
	args := []any{}
	if q.TechnicianID != "" {
		where = append(where, "technician_id = ?")
		args = append(args, q.TechnicianID)
	}
	if q.JobOrderID != "" {
		where = append(where, "job_order_id = ?")
		args = append(args, q.JobOrderID)
	}
	if q.TaskType != "" {
		where = append(where, "task_type = ?")
		args = append(args, q.TaskType)
	}
	if len(q.Statuses) > 0 {
		marks := make([]string, 0, len(q.Statuses))
		for _, st := range q.Statuses {
			marks = append(marks, "?")
			args = append(args, st)
		}
		where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

// ApplyTransition stores all the changes of a workflow step in a single transaction.
func (r *Repository) ApplyTransition(ctx context.Context, tr model.TaskTransition) error {
	t := tr.Task
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE tasks SET technician_id = ?, status = ?, start_time = ?, end_time = ?,
		actual_time_seconds = ?, notes = ?, updated_at = ? WHERE id = ? AND (? = '' OR status = ?)`,
		nullString(t.TechnicianID), t.Status, nullTime(t.StartTime), nullTime(t.EndTime),
		nullInt(t.ActualTimeSeconds), t.Notes, t.UpdatedAt.Unix(), t.ID, tr.FromStatus, tr.FromStatus,
	)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}
	ok, err := mustAffect(res)
	if err != nil {
		return err
	}
	if !ok {
		var current model.TaskStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM tasks WHERE id = ?`, t.ID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("task %s: %w", t.ID, model.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("could not get task status: %w", err)
		}
		return fmt.Errorf("task %s is %s, expected %s: %w", t.ID, current, tr.FromStatus, model.ErrNotValid)
	}

	if tr.DeviceStatus != "" {
		_, err := tx.ExecContext(ctx, `UPDATE devices SET status = ?, updated_at = ? WHERE id = ?`,
			tr.DeviceStatus, t.UpdatedAt.Unix(), t.DeviceID)
		if err != nil {
			return fmt.Errorf("could not update device: %w", err)
		}
	}

	for _, insp := range tr.Inspections {
		if err := upsertInspection(ctx, tx, insp); err != nil {
			return err
		}
	}

	for _, n := range tr.Notifications {
		if err := insertNotification(ctx, tx, n); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	r.logger.Debugf("Applied task transition in repository: %s -> %s", t.ID, t.Status)
	return nil
}

func scanTask(s scanner) (model.Task, error) {
	var (
		t                       model.Task
		processID, technicianID sql.NullString
		startTime, endTime      sql.NullInt64
		actual                  sql.NullInt64
		createdAt, updatedAt    int64
	)
	err := s.Scan(&t.ID, &processID, &t.DeviceID, &t.JobOrderID, &technicianID, &t.OperationName,
		&t.StandardTimeSeconds, &t.TaskType, &t.Status, &startTime, &endTime, &actual,
		&t.Notes, &createdAt, &updatedAt)
	if err != nil {
		return model.Task{}, err
	}
	t.ProcessID = processID.String
	t.TechnicianID = technicianID.String
	t.StartTime = timePtr(startTime)
	t.EndTime = timePtr(endTime)
	t.ActualTimeSeconds = intPtr(actual)
	t.CreatedAt = timeFromUnix(createdAt)
	t.UpdatedAt = timeFromUnix(updatedAt)
	return t, nil
}

var _ storage.Repository = &Repository{}
