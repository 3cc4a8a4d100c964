package models

import "time"

type TrainingSession struct {
	ID        string            `json:"id" toml:"id"`
	WorkoutID string            `json:"workout_id" toml:"workout_id"` // Links the session to a WorkoutSchedule.
	StartTime time.Time         `json:"start_time" toml:"start_time"`
	EndTime   *time.Time        `json:"end_time,omitempty" toml:"end_time,omitempty"`
	Exercises []SessionExercise `json:"exercises" toml:"exercises"`
	Notes     string            `json:"notes" toml:"notes"`
}

// Completed reports whether the session was ended and saved.
func (s TrainingSession) Completed() bool {
	return s.EndTime != nil
}

// Duration is zero for sessions that are still running.
func (s TrainingSession) Duration() time.Duration {
	if s.EndTime == nil || s.EndTime.Before(s.StartTime) {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

type BodyWeightEntry struct {
	ID         string    `json:"id"`
	MeasuredAt time.Time `json:"measured_at"`
	Weight     float64   `json:"weight"`
	Unit       string    `json:"unit"`
}

// History is the read-only snapshot the achievement engine evaluates.
type History struct {
	Sessions    []TrainingSession `json:"sessions"`
	BodyWeights []BodyWeightEntry `json:"body_weights"`
	Schedules   []WorkoutSchedule `json:"schedules"`
}

// SessionState is the in-progress session persisted to a TOML file between commands.
type SessionState struct {
	SessionID string            `toml:"session_id"`
	WorkoutID string            `toml:"workout_id"`
	StartTime time.Time         `toml:"start_time"`
	Exercises []SessionExercise `toml:"exercises"`
	Notes     string            `toml:"notes"`
}

// ToSession converts the state into a finished session ending at end.
func (s *SessionState) ToSession(end time.Time) TrainingSession {
	return TrainingSession{
		ID:        s.SessionID,
		WorkoutID: s.WorkoutID,
		StartTime: s.StartTime,
		EndTime:   &end,
		Exercises: s.Exercises,
		Notes:     s.Notes,
	}
}
