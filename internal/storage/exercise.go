package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/misterclayt0n/podium/internal/models"
)

// CreateExercise inserts ex, or updates the category of the exercise with the same name.
func (s *Storage) CreateExercise(ctx context.Context, ex models.Exercise) (*models.Exercise, error) {
	var out *models.Exercise
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = ensureExercise(ctx, tx, ex)
		return err
	})
	return out, err
}

// ensureExercise resolves ex by name (case insensitive), creating it when missing.
// A non-empty category on ex replaces the stored one.
func ensureExercise(ctx context.Context, q querier, ex models.Exercise) (*models.Exercise, error) {
	ex.Name = strings.TrimSpace(ex.Name)
	if ex.Name == "" {
		return nil, fmt.Errorf("exercise name is required")
	}

	existing, err := getExerciseByName(ctx, q, ex.Name)
	switch {
	case err == nil:
		if ex.Category != "" && !strings.EqualFold(ex.Category, existing.Category) {
			if _, err := q.ExecContext(ctx, `UPDATE exercises SET category = ? WHERE id = ?`, ex.Category, existing.ID); err != nil {
				return nil, fmt.Errorf("Failed to update exercise %s: %w", existing.Name, err)
			}
			existing.Category = ex.Category
		}
		return existing, nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO exercises (id, name, category, created_at) VALUES (?, ?, ?, ?)`,
		ex.ID, ex.Name, ex.Category, formatTime(ex.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("Failed to create exercise %s: %w", ex.Name, err)
	}
	return &ex, nil
}

func (s *Storage) GetExerciseByName(ctx context.Context, name string) (*models.Exercise, error) {
	return getExerciseByName(ctx, s.DB, strings.TrimSpace(name))
}

func getExerciseByName(ctx context.Context, q querier, name string) (*models.Exercise, error) {
	var ex models.Exercise
	var category sql.NullString
	var createdAt string

	err := q.QueryRowContext(ctx,
		`SELECT id, name, category, created_at FROM exercises WHERE name = ? COLLATE NOCASE`,
		name,
	).Scan(&ex.ID, &ex.Name, &category, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("exercise %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	ex.Category = category.String
	if ex.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &ex, nil
}

func (s *Storage) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, category, created_at FROM exercises ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("Failed to list exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise
	for rows.Next() {
		var ex models.Exercise
		var category sql.NullString
		var createdAt string
		if err := rows.Scan(&ex.ID, &ex.Name, &category, &createdAt); err != nil {
			return nil, err
		}
		ex.Category = category.String
		if ex.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}
