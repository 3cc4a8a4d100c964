package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/misterclayt0n/podium/internal/models"
)

const (
	KindCompleted           = "completed"
	KindDeadlineApproaching = "deadline_approaching"
)

// Notification is an event that was recorded, and therefore delivered, once.
type Notification struct {
	Key        string
	InstanceID string
	Kind       string
	Title      string
	Payload    string
	CreatedAt  time.Time
}

// eventKey identifies an event across passes. A deadline reminder is keyed by
// the deadline date so moving the deadline announces it again.
func eventKey(ev models.AchievementEvent) (key, kind, title string) {
	switch e := ev.(type) {
	case models.CompletedEvent:
		return fmt.Sprintf("%s:%s", KindCompleted, e.InstanceID), KindCompleted, e.Title
	case models.DeadlineApproachingEvent:
		return fmt.Sprintf("deadline:%s:%s", e.InstanceID, e.DeadlineAt.UTC().Format("2006-01-02")), KindDeadlineApproaching, e.Title
	}
	panic(fmt.Sprintf("unhandled achievement event %T", ev))
}

// recordEvents stores events that were not seen before and returns exactly those.
func recordEvents(ctx context.Context, q querier, events []models.AchievementEvent, now time.Time) ([]models.AchievementEvent, error) {
	var delivered []models.AchievementEvent
	for _, ev := range events {
		key, kind, title := eventKey(ev)
		payload, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("Failed to marshal event: %w", err)
		}

		res, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO notifications (key, instance_id, kind, title, payload, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			key, ev.Instance(), kind, title, string(payload), formatTime(now),
		)
		if err != nil {
			return nil, fmt.Errorf("Failed to record event %s: %w", key, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n > 0 {
			delivered = append(delivered, ev)
		}
	}
	return delivered, nil
}

// ListNotifications returns the most recent notifications, newest first.
func (s *Storage) ListNotifications(ctx context.Context, limit int) ([]Notification, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT key, instance_id, kind, title, payload, created_at
		FROM notifications
		ORDER BY created_at DESC, key ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("Failed to load notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var createdAt string
		if err := rows.Scan(&n.Key, &n.InstanceID, &n.Kind, &n.Title, &n.Payload, &createdAt); err != nil {
			return nil, err
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
