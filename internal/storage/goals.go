package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/misterclayt0n/podium/internal/models"
)

func (s *Storage) CreateGoal(ctx context.Context, g models.UserGoal) (*models.UserGoal, error) {
	if err := achievement.ValidateGoal(g); err != nil {
		return nil, err
	}
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO user_goals
		(id, kind, exercise_name, target_value, secondary_value, window_days, deadline_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID,
		string(g.Kind),
		g.ExerciseName,
		g.TargetValue,
		nullFloat(g.SecondaryValue),
		nullInt(g.WindowDays),
		nullTime(g.DeadlineAt),
		formatTime(g.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("Failed to create goal: %w", err)
	}
	return &g, nil
}

func (s *Storage) ListGoals(ctx context.Context) ([]models.UserGoal, error) {
	return listGoals(ctx, s.DB)
}

func listGoals(ctx context.Context, q querier) ([]models.UserGoal, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, kind, exercise_name, target_value, secondary_value, window_days, deadline_at, created_at
		FROM user_goals
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("Failed to load goals: %w", err)
	}
	defer rows.Close()

	var goals []models.UserGoal
	for rows.Next() {
		var g models.UserGoal
		var kind, createdAt string
		var exercise, deadline sql.NullString
		var secondary sql.NullFloat64
		var window sql.NullInt64
		if err := rows.Scan(&g.ID, &kind, &exercise, &g.TargetValue, &secondary, &window, &deadline, &createdAt); err != nil {
			return nil, err
		}
		g.Kind = models.UserGoalKind(kind)
		g.ExerciseName = exercise.String
		g.SecondaryValue = floatPtr(secondary)
		g.WindowDays = intPtr(window)
		if g.DeadlineAt, err = parseNullTime(deadline); err != nil {
			return nil, err
		}
		if g.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// DeleteGoal removes the goal together with its tracking instances and their
// notifications.
func (s *Storage) DeleteGoal(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM user_goals WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("Failed to delete goal: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("goal %s: %w", id, ErrNotFound)
		}

		defID := achievement.GoalDefinitionID(id)
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM notifications WHERE instance_id IN (SELECT id FROM achievement_instances WHERE definition_id = ?)`,
			defID); err != nil {
			return fmt.Errorf("Failed to delete goal notifications: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM achievement_instances WHERE definition_id = ?`, defID); err != nil {
			return fmt.Errorf("Failed to delete goal instances: %w", err)
		}
		return nil
	})
}
