package achievement

import (
	"fmt"
	"testing"
	"time"

	"github.com/misterclayt0n/podium/internal/models"
	"github.com/stretchr/testify/require"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

type setSpec struct {
	exercise string
	category string
	weight   float64
	reps     int
	unit     string
}

// session builds a completed one hour session starting at start.
func session(id string, start time.Time, sets ...setSpec) models.TrainingSession {
	end := start.Add(time.Hour)
	s := models.TrainingSession{ID: id, StartTime: start, EndTime: &end}
	for i, spec := range sets {
		s.Exercises = append(s.Exercises, models.SessionExercise{
			ID:       fmt.Sprintf("%s-ex-%d", id, i),
			Exercise: models.Exercise{Name: spec.exercise, Category: spec.category},
			Sets: []models.ExerciseSet{{
				ID:        fmt.Sprintf("%s-set-%d", id, i),
				Weight:    spec.weight,
				Reps:      spec.reps,
				Unit:      spec.unit,
				Timestamp: start,
			}},
		})
	}
	return s
}

// dailySessions creates n sessions on consecutive days starting at first.
func dailySessions(first time.Time, n int) []models.TrainingSession {
	var out []models.TrainingSession
	for i := 0; i < n; i++ {
		start := first.AddDate(0, 0, i)
		out = append(out, session(fmt.Sprintf("s%d", i), start, setSpec{exercise: "Squat", category: "legs", weight: 100, reps: 5, unit: "kg"}))
	}
	return out
}

// sequentialIDs returns a deterministic id generator.
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
