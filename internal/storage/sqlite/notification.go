package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joddb/shopfloor/internal/model"
)

func insertNotification(ctx context.Context, e execer, n model.Notification) error {
	payload := n.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal notification payload: %w", err)
	}

	_, err = e.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, message, payload, read, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Type, n.Message, string(raw), boolToInt(n.Read), n.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the notifications of a user, newest first.
func (r *Repository) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT id, user_id, type, message, payload, read, created_at FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("could not query notifications: %w", err)
	}
	defer rows.Close()

	ns := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		var payload string
		var read int
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &payload, &read, &createdAt); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &n.Payload); err != nil {
			return nil, fmt.Errorf("could not unmarshal notification payload: %w", err)
		}
		n.Read = read == 1
		n.CreatedAt = timeFromUnix(createdAt)
		ns = append(ns, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ns, nil
}

// MarkNotificationRead marks a notification as read.
func (r *Repository) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not update notification: %w", err)
	}
	ok, err := mustAffect(res)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notification %s: %w", id, model.ErrNotFound)
	}
	return nil
}
