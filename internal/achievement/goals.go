package achievement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/misterclayt0n/podium/internal/models"
)

const (
	goalDefinitionPrefix   = "goal:"
	defaultFrequencyWindow = 7
)

var ErrUnknownGoalKind = errors.New("unknown goal kind")

var goalMetrics = map[models.UserGoalKind]models.MetricType{
	models.GoalOneRM:           models.MetricOneRMTarget,
	models.GoalMaxWeight:       models.MetricMaxWeight,
	models.GoalReps:            models.MetricMaxReps,
	models.GoalVolume:          models.MetricTotalVolume,
	models.GoalFrequency:       models.MetricWorkoutsPerWeek,
	models.GoalStreak:          models.MetricCurrentStreak,
	models.GoalBodyWeightRatio: models.MetricBodyWeightRelation,
}

// GoalDefinitionID is the synthetic definition id instances of a goal point to.
func GoalDefinitionID(goalID string) string {
	return goalDefinitionPrefix + goalID
}

// IsGoalDefinition reports whether a definition id belongs to a user goal.
func IsGoalDefinition(definitionID string) bool {
	return strings.HasPrefix(definitionID, goalDefinitionPrefix)
}

// GoalDefinition builds the ephemeral definition a user goal is evaluated as.
func GoalDefinition(g models.UserGoal) (models.AchievementDefinition, error) {
	metric, ok := goalMetrics[g.Kind]
	if !ok {
		return models.AchievementDefinition{}, fmt.Errorf("goal %s: %w %q", g.ID, ErrUnknownGoalKind, g.Kind)
	}

	window := g.WindowDays
	if g.Kind == models.GoalFrequency && window == nil {
		days := defaultFrequencyWindow
		window = &days
	}
	if g.Kind == models.GoalStreak || g.Kind == models.GoalBodyWeightRatio {
		window = nil
	}

	return models.AchievementDefinition{
		ID:          GoalDefinitionID(g.ID),
		Title:       GoalTitle(g),
		Type:        models.TypeGoal,
		Metric:      metric,
		TargetValue: g.TargetValue,
		WindowDays:  window,
		Metadata: &models.AchievementMetadata{
			ExerciseName:    g.ExerciseName,
			DeadlineAt:      g.DeadlineAt,
			SecondaryTarget: g.SecondaryValue,
		},
	}, nil
}

// GoalTitle renders a short human readable name for a goal.
func GoalTitle(g models.UserGoal) string {
	switch g.Kind {
	case models.GoalOneRM:
		return fmt.Sprintf("%s 1RM %g", g.ExerciseName, g.TargetValue)
	case models.GoalMaxWeight:
		return fmt.Sprintf("%s %g top set", g.ExerciseName, g.TargetValue)
	case models.GoalReps:
		if g.SecondaryValue != nil {
			return fmt.Sprintf("%s %g reps @ %g", g.ExerciseName, g.TargetValue, *g.SecondaryValue)
		}
		return fmt.Sprintf("%s %g reps", g.ExerciseName, g.TargetValue)
	case models.GoalVolume:
		return fmt.Sprintf("%s %g volume", g.ExerciseName, g.TargetValue)
	case models.GoalFrequency:
		return fmt.Sprintf("%g workouts", g.TargetValue)
	case models.GoalStreak:
		return fmt.Sprintf("%g day streak", g.TargetValue)
	case models.GoalBodyWeightRatio:
		return fmt.Sprintf("%s %gx bodyweight", g.ExerciseName, g.TargetValue)
	}
	return string(g.Kind)
}

// ValidateGoal checks a goal before it is stored.
func ValidateGoal(g models.UserGoal) error {
	if _, ok := goalMetrics[g.Kind]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownGoalKind, g.Kind)
	}
	if g.TargetValue <= 0 {
		return fmt.Errorf("goal target must be positive")
	}
	if g.Kind.NeedsExercise() && strings.TrimSpace(g.ExerciseName) == "" {
		return fmt.Errorf("%s goals need an exercise", g.Kind)
	}
	if g.WindowDays != nil && *g.WindowDays <= 0 {
		return fmt.Errorf("goal window must be at least one day")
	}
	return nil
}
