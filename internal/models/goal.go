package models

import (
	"fmt"
	"strings"
	"time"
)

type UserGoalKind string

const (
	GoalOneRM           UserGoalKind = "one_rm"
	GoalMaxWeight       UserGoalKind = "max_weight"
	GoalReps            UserGoalKind = "reps"
	GoalVolume          UserGoalKind = "volume"
	GoalFrequency       UserGoalKind = "frequency"
	GoalStreak          UserGoalKind = "streak"
	GoalBodyWeightRatio UserGoalKind = "bodyweight_ratio"
)

var UserGoalKinds = []UserGoalKind{
	GoalOneRM,
	GoalMaxWeight,
	GoalReps,
	GoalVolume,
	GoalFrequency,
	GoalStreak,
	GoalBodyWeightRatio,
}

func ParseUserGoalKind(s string) (UserGoalKind, error) {
	candidate := UserGoalKind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range UserGoalKinds {
		if k == candidate {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown goal kind %q", s)
}

// NeedsExercise reports whether the goal kind measures a single exercise.
func (k UserGoalKind) NeedsExercise() bool {
	switch k {
	case GoalFrequency, GoalStreak:
		return false
	}
	return true
}

// UserGoal is authored by the user and never lives in the catalog.
type UserGoal struct {
	ID             string       `json:"id"`
	Kind           UserGoalKind `json:"kind"`
	ExerciseName   string       `json:"exercise_name,omitempty"`
	TargetValue    float64      `json:"target_value"`
	SecondaryValue *float64     `json:"secondary_value,omitempty"`
	WindowDays     *int         `json:"window_days,omitempty"`
	DeadlineAt     *time.Time   `json:"deadline_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}
