package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/misterclayt0n/podium/internal/utils"
)

// SaveSession persists a finished session with its exercises and sets.
// Exercises are matched by name and created on first use.
func (s *Storage) SaveSession(ctx context.Context, session models.TrainingSession) error {
	if session.EndTime == nil {
		return fmt.Errorf("session %s has not ended", session.ID)
	}
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO training_sessions (id, workout_id, start_time, end_time, notes)
			VALUES (?, ?, ?, ?, ?)`,
			session.ID,
			session.WorkoutID,
			formatTime(session.StartTime),
			formatTime(*session.EndTime),
			session.Notes,
		)
		if err != nil {
			return fmt.Errorf("Failed to create training session: %w", err)
		}

		for pos, se := range session.Exercises {
			ex, err := ensureExercise(ctx, tx, se.Exercise)
			if err != nil {
				return err
			}

			sessionExID := se.ID
			if sessionExID == "" {
				sessionExID = uuid.New().String()
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO training_session_exercises
				(id, training_session_id, exercise_id, position, notes)
				VALUES (?, ?, ?, ?, ?)`,
				sessionExID, session.ID, ex.ID, pos, se.Notes,
			)
			if err != nil {
				return fmt.Errorf("Failed to create session exercise: %w", err)
			}

			for _, set := range se.Sets {
				if err := insertSet(ctx, tx, sessionExID, set); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func insertSet(ctx context.Context, q querier, sessionExID string, set models.ExerciseSet) error {
	if set.ID == "" {
		set.ID = uuid.New().String()
	}
	unit, ok := utils.NormalizeUnit(set.Unit)
	if !ok {
		// Unknown units are kept verbatim; aggregation treats them as zero.
		unit = set.Unit
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO exercise_sets
		(id, session_exercise_id, weight, reps, unit, rpe, duration_seconds, distance_meters, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		set.ID,
		sessionExID,
		set.Weight,
		set.Reps,
		unit,
		nullFloat(set.RPE),
		nullInt(set.DurationSeconds),
		nullFloat(set.DistanceMeters),
		formatTime(set.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("Failed to save set: %w", err)
	}
	return nil
}

// GetSessionByID returns a session with its exercises and sets.
func (s *Storage) GetSessionByID(ctx context.Context, id string) (*models.TrainingSession, error) {
	sessions, err := loadSessions(ctx, s.DB, `WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return &sessions[0], nil
}

// ListSessions returns the most recent finished sessions, newest first.
func (s *Storage) ListSessions(ctx context.Context, limit int) ([]models.TrainingSession, error) {
	sessions, err := loadSessions(ctx, s.DB, `WHERE end_time IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM training_sessions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("Failed to delete session: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		// Foreign keys are not enforced on every connection, so children go explicitly.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM exercise_sets WHERE session_exercise_id IN
			(SELECT id FROM training_session_exercises WHERE training_session_id = ?)`, id); err != nil {
			return fmt.Errorf("Failed to delete sets: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM training_session_exercises WHERE training_session_id = ?`, id); err != nil {
			return fmt.Errorf("Failed to delete session exercises: %w", err)
		}
		return nil
	})
}

// loadSessions reads the sessions matching where (oldest first) together with
// their exercises and sets.
func loadSessions(ctx context.Context, q querier, where string, args ...any) ([]models.TrainingSession, error) {
	sessions, err := querySessions(ctx, q, where, args...)
	if err != nil || len(sessions) == 0 {
		return sessions, err
	}

	index := make(map[string]int, len(sessions))
	for i, session := range sessions {
		index[session.ID] = i
	}

	type position struct{ session, exercise int }
	exercises := make(map[string]position)
	err = eachSessionExercise(ctx, q, func(sessionID string, se models.SessionExercise) {
		i, ok := index[sessionID]
		if !ok {
			return
		}
		sessions[i].Exercises = append(sessions[i].Exercises, se)
		exercises[se.ID] = position{session: i, exercise: len(sessions[i].Exercises) - 1}
	})
	if err != nil {
		return nil, err
	}

	err = eachSet(ctx, q, func(sessionExID string, set models.ExerciseSet) {
		p, ok := exercises[sessionExID]
		if !ok {
			return
		}
		se := &sessions[p.session].Exercises[p.exercise]
		se.Sets = append(se.Sets, set)
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func querySessions(ctx context.Context, q querier, where string, args ...any) ([]models.TrainingSession, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, workout_id, start_time, end_time, notes FROM training_sessions `+where+` ORDER BY start_time ASC, id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("Failed to load sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.TrainingSession
	for rows.Next() {
		var ts models.TrainingSession
		var workoutID, endTime, notes sql.NullString
		var startTime string
		if err := rows.Scan(&ts.ID, &workoutID, &startTime, &endTime, &notes); err != nil {
			return nil, err
		}
		ts.WorkoutID = workoutID.String
		ts.Notes = notes.String
		if ts.StartTime, err = parseTime(startTime); err != nil {
			return nil, err
		}
		if ts.EndTime, err = parseNullTime(endTime); err != nil {
			return nil, err
		}
		sessions = append(sessions, ts)
	}
	return sessions, rows.Err()
}

func eachSessionExercise(ctx context.Context, q querier, fn func(sessionID string, se models.SessionExercise)) error {
	rows, err := q.QueryContext(ctx, `
		SELECT tse.id, tse.training_session_id, tse.notes, e.id, e.name, e.category, e.created_at
		FROM training_session_exercises tse
		JOIN exercises e ON e.id = tse.exercise_id
		ORDER BY tse.training_session_id, tse.position`)
	if err != nil {
		return fmt.Errorf("Failed to load session exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var se models.SessionExercise
		var sessionID, createdAt string
		var notes, category sql.NullString
		if err := rows.Scan(&se.ID, &sessionID, &notes, &se.Exercise.ID, &se.Exercise.Name, &category, &createdAt); err != nil {
			return err
		}
		se.Notes = notes.String
		se.Exercise.Category = category.String
		if se.Exercise.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		fn(sessionID, se)
	}
	return rows.Err()
}

func eachSet(ctx context.Context, q querier, fn func(sessionExID string, set models.ExerciseSet)) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, session_exercise_id, weight, reps, unit, rpe, duration_seconds, distance_meters, timestamp
		FROM exercise_sets
		ORDER BY timestamp ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("Failed to load sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var set models.ExerciseSet
		var sessionExID, timestamp string
		var unit sql.NullString
		var rpe, distance sql.NullFloat64
		var duration sql.NullInt64
		if err := rows.Scan(&set.ID, &sessionExID, &set.Weight, &set.Reps, &unit, &rpe, &duration, &distance, &timestamp); err != nil {
			return err
		}
		set.Unit = unit.String
		set.RPE = floatPtr(rpe)
		set.DurationSeconds = intPtr(duration)
		set.DistanceMeters = floatPtr(distance)
		if set.Timestamp, err = parseTime(timestamp); err != nil {
			return err
		}
		fn(sessionExID, set)
	}
	return rows.Err()
}

// LoadHistory reads everything the achievement engine evaluates, up to asOf.
func (s *Storage) LoadHistory(ctx context.Context, asOf time.Time) (models.History, error) {
	return loadHistory(ctx, s.DB, asOf)
}

func loadHistory(ctx context.Context, q querier, asOf time.Time) (models.History, error) {
	var h models.History
	var err error

	h.Sessions, err = loadSessions(ctx, q, `WHERE end_time IS NOT NULL AND start_time <= ?`, formatTime(asOf))
	if err != nil {
		return h, err
	}
	if h.BodyWeights, err = listBodyWeights(ctx, q); err != nil {
		return h, err
	}
	if h.Schedules, err = listSchedules(ctx, q); err != nil {
		return h, err
	}
	return h, nil
}
