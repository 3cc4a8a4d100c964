package models

import "time"

const (
	UnitKilograms = "kg"
	UnitPounds    = "lb"
)

type Exercise struct {
	ID        string    `json:"id" toml:"id"`
	Name      string    `json:"name" toml:"name"`
	Category  string    `json:"category" toml:"category"` // Primary muscle group or modality (e.g. "chest", "cardio").
	CreatedAt time.Time `json:"created_at" toml:"created_at"`
}

type SessionExercise struct {
	ID       string        `json:"id" toml:"id"`
	Exercise Exercise      `json:"exercise" toml:"exercise"`
	Sets     []ExerciseSet `json:"sets" toml:"sets"`
	Notes    string        `json:"notes" toml:"notes"`
}

// ExerciseSet is a single logged set. Every measurement besides reps is optional,
// and a missing value counts as zero wherever it is aggregated.
type ExerciseSet struct {
	ID              string    `json:"id" toml:"id"`
	Weight          float64   `json:"weight" toml:"weight"`
	Reps            int       `json:"reps" toml:"reps"`
	Unit            string    `json:"unit" toml:"unit"`
	RPE             *float64  `json:"rpe,omitempty" toml:"rpe,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty" toml:"duration_seconds,omitempty"`
	DistanceMeters  *float64  `json:"distance_meters,omitempty" toml:"distance_meters,omitempty"`
	Timestamp       time.Time `json:"timestamp" toml:"timestamp"`
}

// Qualifies reports whether the set carries any work at all.
func (s ExerciseSet) Qualifies() bool {
	if s.Reps > 0 {
		return true
	}
	if s.DurationSeconds != nil && *s.DurationSeconds > 0 {
		return true
	}
	return s.DistanceMeters != nil && *s.DistanceMeters > 0
}
