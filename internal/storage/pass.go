package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/misterclayt0n/podium/internal/models"
)

// LoadSnapshot reads everything a recompute pass needs in one transaction, so
// the pass never sees a half written session.
func (s *Storage) LoadSnapshot(ctx context.Context, asOf time.Time) (achievement.Snapshot, error) {
	snap := achievement.Snapshot{AsOf: asOf}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if snap.History, err = loadHistory(ctx, tx, asOf); err != nil {
			return err
		}
		if snap.Definitions, err = listDefinitions(ctx, tx); err != nil {
			return err
		}
		if snap.Goals, err = listGoals(ctx, tx); err != nil {
			return err
		}
		snap.Instances, err = listInstances(ctx, tx)
		return err
	})
	return snap, err
}

// ApplyPass writes a pass result atomically and returns the events that had
// not been delivered by an earlier pass.
func (s *Storage) ApplyPass(ctx context.Context, instances []models.AchievementInstance, events []models.AchievementEvent, now time.Time) ([]models.AchievementEvent, error) {
	var delivered []models.AchievementEvent
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, inst := range instances {
			if err := upsertInstance(ctx, tx, inst); err != nil {
				return err
			}
		}
		var err error
		delivered, err = recordEvents(ctx, tx, events, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return delivered, nil
}
