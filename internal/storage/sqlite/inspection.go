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

const inspectionColumns = `id, task_id, device_id, stage, inspector_id, decision, comments, created_at`

// upsertInspection creates the inspection or, when a pending one with the same ID exists, stores its decision.
func upsertInspection(ctx context.Context, e execer, i model.Inspection) error {
	if err := i.Validate(); err != nil {
		return fmt.Errorf("invalid inspection: %w", err)
	}

	_, err := e.ExecContext(ctx,
		`INSERT INTO inspections (`+inspectionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			inspector_id = excluded.inspector_id,
			decision = excluded.decision,
			comments = excluded.comments`,
		i.ID, i.TaskID, i.DeviceID, i.Stage, nullString(i.InspectorID), i.Decision, i.Comments, i.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not store inspection: %w", err)
	}
	return nil
}

// ListInspections returns the inspections matching the query, newest first.
func (r *Repository) ListInspections(ctx context.Context, q storage.InspectionQuery) ([]model.Inspection, error) {
	where := []string{}
	args := []any{}
	if q.TaskID != "" {
		where = append(where, "task_id = ?")
		args = append(args, q.TaskID)
	}
	if q.Stage != "" {
		where = append(where, "stage = ?")
		args = append(args, q.Stage)
	}
	if q.Decision != "" {
		where = append(where, "decision = ?")
		args = append(args, q.Decision)
	}

	query := `SELECT ` + inspectionColumns + ` FROM inspections`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query inspections: %w", err)
	}
	defer rows.Close()

	insps := []model.Inspection{}
	for rows.Next() {
		i, err := scanInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		insps = append(insps, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return insps, nil
}

// GetPendingInspection returns the latest pending inspection of a task at a stage.
func (r *Repository) GetPendingInspection(ctx context.Context, taskID string, stage model.InspectionStage) (*model.Inspection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inspectionColumns+` FROM inspections
		WHERE task_id = ? AND stage = ? AND decision = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		taskID, stage, model.DecisionPending)
	i, err := scanInspection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pending %s inspection for task %s: %w", stage, taskID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query inspection: %w", err)
	}
	return &i, nil
}

func scanInspection(s scanner) (model.Inspection, error) {
	var i model.Inspection
	var inspectorID sql.NullString
	var createdAt int64
	err := s.Scan(&i.ID, &i.TaskID, &i.DeviceID, &i.Stage, &inspectorID, &i.Decision, &i.Comments, &createdAt)
	if err != nil {
		return model.Inspection{}, err
	}
	i.InspectorID = inspectorID.String
	i.CreatedAt = timeFromUnix(createdAt)
	return i, nil
}
