package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/utils"
)

func encodeMetadata(m *models.AchievementMetadata) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("Failed to marshal metadata: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeMetadata(ns sql.NullString) (*models.AchievementMetadata, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var m models.AchievementMetadata
	if err := json.Unmarshal([]byte(ns.String), &m); err != nil {
		return nil, fmt.Errorf("Failed to unmarshal metadata: %w", err)
	}
	return &m, nil
}

// ReplaceCatalog makes defs the full set of stored definitions. Instances of
// removed definitions stay; the engine carries them through untouched.
func (s *Storage) ReplaceCatalog(ctx context.Context, defs []models.AchievementDefinition) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		keep := make([]any, 0, len(defs))
		for _, def := range defs {
			if err := upsertDefinition(ctx, tx, def); err != nil {
				return err
			}
			keep = append(keep, def.ID)
		}

		query := `DELETE FROM achievement_definitions`
		if len(keep) > 0 {
			query += ` WHERE id NOT IN (?` + strings.Repeat(", ?", len(keep)-1) + `)`
		}
		if _, err := tx.ExecContext(ctx, query, keep...); err != nil {
			return fmt.Errorf("Failed to prune definitions: %w", err)
		}
		return nil
	})
}

func upsertDefinition(ctx context.Context, q querier, def models.AchievementDefinition) error {
	meta, err := encodeMetadata(def.Metadata)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO achievement_definitions
			(id, title, description, type, metric, target_value, window_days, repeatable, tier, icon_key, sort_order, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				type = excluded.type,
				metric = excluded.metric,
				target_value = excluded.target_value,
				window_days = excluded.window_days,
				repeatable = excluded.repeatable,
				tier = excluded.tier,
				icon_key = excluded.icon_key,
				sort_order = excluded.sort_order,
				metadata = excluded.metadata`,
		def.ID,
		def.Title,
		def.Description,
		string(def.Type),
		string(def.Metric),
		def.TargetValue,
		nullInt(def.WindowDays),
		utils.BoolToInt(def.Repeatable),
		string(def.Tier),
		def.IconKey,
		def.SortOrder,
		meta,
	)
	if err != nil {
		return fmt.Errorf("Failed to save definition %s: %w", def.ID, err)
	}
	return nil
}

func (s *Storage) ListDefinitions(ctx context.Context) ([]models.AchievementDefinition, error) {
	return listDefinitions(ctx, s.DB)
}

func listDefinitions(ctx context.Context, q querier) ([]models.AchievementDefinition, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, title, description, type, metric, target_value, window_days, repeatable, tier, icon_key, sort_order, metadata
		FROM achievement_definitions
		ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("Failed to load definitions: %w", err)
	}
	defer rows.Close()

	var defs []models.AchievementDefinition
	for rows.Next() {
		var def models.AchievementDefinition
		var description, icon, meta sql.NullString
		var kind, metric, tier string
		var window sql.NullInt64
		var repeatable int
		if err := rows.Scan(&def.ID, &def.Title, &description, &kind, &metric, &def.TargetValue,
			&window, &repeatable, &tier, &icon, &def.SortOrder, &meta); err != nil {
			return nil, err
		}
		def.Description = description.String
		def.Type = models.AchievementType(kind)
		// Stored metrics are not re-validated here: an unknown one must fail the pass.
		def.Metric = models.MetricType(metric)
		def.WindowDays = intPtr(window)
		def.Repeatable = repeatable != 0
		def.Tier = models.Tier(tier)
		def.IconKey = icon.String
		if def.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (s *Storage) ListInstances(ctx context.Context) ([]models.AchievementInstance, error) {
	return listInstances(ctx, s.DB)
}

func listInstances(ctx context.Context, q querier) ([]models.AchievementInstance, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, definition_id, created_at, status, progress_current, progress_target,
			progress_percent, progress_unit, completed_at, user_notes, metadata
		FROM achievement_instances
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("Failed to load instances: %w", err)
	}
	defer rows.Close()

	var instances []models.AchievementInstance
	for rows.Next() {
		var inst models.AchievementInstance
		var createdAt, status string
		var unit, completedAt, notes, meta sql.NullString
		if err := rows.Scan(&inst.ID, &inst.DefinitionID, &createdAt, &status,
			&inst.Progress.Current, &inst.Progress.Target, &inst.Progress.Percent,
			&unit, &completedAt, &notes, &meta); err != nil {
			return nil, err
		}
		inst.Status = models.AchievementStatus(status)
		inst.Progress.Unit = unit.String
		inst.UserNotes = notes.String
		if inst.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if inst.CompletedAt, err = parseNullTime(completedAt); err != nil {
			return nil, err
		}
		if inst.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

// upsertInstance writes the engine owned fields of inst. User notes are only
// written on insert; SetInstanceNotes owns them afterwards.
func upsertInstance(ctx context.Context, q querier, inst models.AchievementInstance) error {
	meta, err := encodeMetadata(inst.Metadata)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO achievement_instances
			(id, definition_id, created_at, status, progress_current, progress_target,
			progress_percent, progress_unit, completed_at, user_notes, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				status = excluded.status,
				progress_current = excluded.progress_current,
				progress_target = excluded.progress_target,
				progress_percent = excluded.progress_percent,
				progress_unit = excluded.progress_unit,
				completed_at = COALESCE(achievement_instances.completed_at, excluded.completed_at),
				metadata = excluded.metadata`,
		inst.ID,
		inst.DefinitionID,
		formatTime(inst.CreatedAt),
		string(inst.Status),
		inst.Progress.Current,
		inst.Progress.Target,
		inst.Progress.Percent,
		inst.Progress.Unit,
		nullTime(inst.CompletedAt),
		inst.UserNotes,
		meta,
	)
	if err != nil {
		return fmt.Errorf("Failed to save instance %s: %w", inst.ID, err)
	}
	return nil
}

func (s *Storage) SetInstanceNotes(ctx context.Context, instanceID, notes string) error {
	res, err := s.DB.ExecContext(ctx, `UPDATE achievement_instances SET user_notes = ? WHERE id = ?`, notes, instanceID)
	if err != nil {
		return fmt.Errorf("Failed to update notes: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("instance %s: %w", instanceID, ErrNotFound)
	}
	return nil
}
