package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/utils"
)

// Weekdays are stored as a comma separated list of time.Weekday numbers.
func encodeDays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func decodeDays(s string) ([]time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

// UpsertSchedule saves the schedule of a workout. The stored next run is kept
// unless the schedule carries one.
func (s *Storage) UpsertSchedule(ctx context.Context, sched models.WorkoutSchedule) error {
	if err := sched.Validate(); err != nil {
		return err
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO workout_schedules (workout_id, days, notify_hour, notify_minute, enabled, next_run_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(workout_id) DO UPDATE SET
				days = excluded.days,
				notify_hour = excluded.notify_hour,
				notify_minute = excluded.notify_minute,
				enabled = excluded.enabled,
				next_run_at = COALESCE(excluded.next_run_at, workout_schedules.next_run_at)`,
		sched.WorkoutID,
		encodeDays(sched.Days),
		sched.NotifyHour,
		sched.NotifyMinute,
		utils.BoolToInt(sched.Enabled),
		nullTime(sched.NextRunAt),
	)
	if err != nil {
		return fmt.Errorf("Failed to save schedule %s: %w", sched.WorkoutID, err)
	}
	return nil
}

func (s *Storage) GetSchedule(ctx context.Context, workoutID string) (*models.WorkoutSchedule, error) {
	schedules, err := querySchedules(ctx, s.DB, `WHERE workout_id = ?`, workoutID)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, fmt.Errorf("schedule %s: %w", workoutID, ErrNotFound)
	}
	return &schedules[0], nil
}

func (s *Storage) ListSchedules(ctx context.Context) ([]models.WorkoutSchedule, error) {
	return listSchedules(ctx, s.DB)
}

func listSchedules(ctx context.Context, q querier) ([]models.WorkoutSchedule, error) {
	return querySchedules(ctx, q, "")
}

func querySchedules(ctx context.Context, q querier, where string, args ...any) ([]models.WorkoutSchedule, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT workout_id, days, notify_hour, notify_minute, enabled, next_run_at FROM workout_schedules `+where+` ORDER BY workout_id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("Failed to load schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.WorkoutSchedule
	for rows.Next() {
		var sched models.WorkoutSchedule
		var days string
		var enabled int
		var nextRun sql.NullString
		if err := rows.Scan(&sched.WorkoutID, &days, &sched.NotifyHour, &sched.NotifyMinute, &enabled, &nextRun); err != nil {
			return nil, err
		}
		sched.Enabled = enabled != 0
		if sched.Days, err = decodeDays(days); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", sched.WorkoutID, err)
		}
		if sched.NextRunAt, err = parseNullTime(nextRun); err != nil {
			return nil, err
		}
		schedules = append(schedules, sched)
	}
	return schedules, rows.Err()
}

// SetNextRun stores when the reminder of workoutID fires next; nil clears it.
func (s *Storage) SetNextRun(ctx context.Context, workoutID string, next *time.Time) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE workout_schedules SET next_run_at = ? WHERE workout_id = ?`,
		nullTime(next), workoutID,
	)
	if err != nil {
		return fmt.Errorf("Failed to update next run of %s: %w", workoutID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("schedule %s: %w", workoutID, ErrNotFound)
	}
	return nil
}

// DisableSchedule turns the reminder off and clears its next run.
func (s *Storage) DisableSchedule(ctx context.Context, workoutID string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE workout_schedules SET enabled = 0, next_run_at = NULL WHERE workout_id = ?`,
		workoutID,
	)
	if err != nil {
		return fmt.Errorf("Failed to disable schedule %s: %w", workoutID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("schedule %s: %w", workoutID, ErrNotFound)
	}
	return nil
}
