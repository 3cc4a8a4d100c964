package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/utils"
)

func (s *Storage) AddBodyWeight(ctx context.Context, entry models.BodyWeightEntry) (*models.BodyWeightEntry, error) {
	unit, err := utils.ValidateUnit(entry.Unit)
	if err != nil {
		return nil, err
	}
	if entry.Weight <= 0 {
		return nil, fmt.Errorf("body weight must be positive")
	}
	entry.Unit = unit
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.MeasuredAt.IsZero() {
		entry.MeasuredAt = time.Now().UTC()
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO body_weights (id, measured_at, weight, unit) VALUES (?, ?, ?, ?)`,
		entry.ID, formatTime(entry.MeasuredAt), entry.Weight, entry.Unit,
	)
	if err != nil {
		return nil, fmt.Errorf("Failed to save body weight: %w", err)
	}
	return &entry, nil
}

// ListBodyWeights returns every weigh-in, oldest first.
func (s *Storage) ListBodyWeights(ctx context.Context) ([]models.BodyWeightEntry, error) {
	return listBodyWeights(ctx, s.DB)
}

func listBodyWeights(ctx context.Context, q querier) ([]models.BodyWeightEntry, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, measured_at, weight, unit FROM body_weights ORDER BY measured_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("Failed to load body weights: %w", err)
	}
	defer rows.Close()

	var entries []models.BodyWeightEntry
	for rows.Next() {
		var e models.BodyWeightEntry
		var measuredAt string
		if err := rows.Scan(&e.ID, &measuredAt, &e.Weight, &e.Unit); err != nil {
			return nil, err
		}
		if e.MeasuredAt, err = parseTime(measuredAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
