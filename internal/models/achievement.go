package models

import (
	"fmt"
	"strings"
	"time"
)

type AchievementType string

const (
	TypeConsistency AchievementType = "consistency"
	TypeStrength    AchievementType = "strength"
	TypeVolume      AchievementType = "volume"
	TypeHabit       AchievementType = "habit"
	TypeExploration AchievementType = "exploration"
	TypeGoal        AchievementType = "goal"
)

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// MetricType is the closed set of things a definition can measure.
type MetricType string

const (
	MetricWorkoutsPerWeek    MetricType = "WORKOUTS_PER_WEEK"
	MetricWorkoutsPerMonth   MetricType = "WORKOUTS_PER_MONTH"
	MetricTotalWorkouts      MetricType = "TOTAL_WORKOUTS"
	MetricTotalSets          MetricType = "TOTAL_SETS"
	MetricTotalDuration      MetricType = "TOTAL_DURATION"
	MetricStreakActiveDays   MetricType = "STREAK_ACTIVE_DAYS"
	MetricCurrentStreak      MetricType = "CURRENT_STREAK"
	MetricTotalVolume        MetricType = "TOTAL_VOLUME"
	MetricMaxWeight          MetricType = "MAX_WEIGHT"
	MetricMaxReps            MetricType = "MAX_REPS"
	MetricOneRMTarget        MetricType = "ONE_RM_TARGET"
	MetricBodyWeightRelation MetricType = "BODY_WEIGHT_RELATION"
	MetricEarlyBird          MetricType = "EARLY_BIRD"
	MetricScheduleAdherence  MetricType = "SCHEDULE_ADHERENCE"
	MetricVarietyBalance     MetricType = "VARIETY_BALANCE"
	MetricHeatmapDays        MetricType = "HEATMAP_DAYS"
)

// MetricTypes lists every declared metric, in display order.
var MetricTypes = []MetricType{
	MetricWorkoutsPerWeek,
	MetricWorkoutsPerMonth,
	MetricTotalWorkouts,
	MetricTotalSets,
	MetricTotalDuration,
	MetricStreakActiveDays,
	MetricCurrentStreak,
	MetricTotalVolume,
	MetricMaxWeight,
	MetricMaxReps,
	MetricOneRMTarget,
	MetricBodyWeightRelation,
	MetricEarlyBird,
	MetricScheduleAdherence,
	MetricVarietyBalance,
	MetricHeatmapDays,
}

// ParseMetricType accepts the upper snake case name, case insensitive.
func ParseMetricType(s string) (MetricType, error) {
	candidate := MetricType(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range MetricTypes {
		if m == candidate {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric type %q", s)
}

// Monotonic metrics can only grow as history grows, when evaluated without a window.
func (m MetricType) Monotonic() bool {
	switch m {
	case MetricTotalWorkouts, MetricTotalSets, MetricTotalDuration, MetricTotalVolume,
		MetricStreakActiveDays, MetricMaxWeight, MetricMaxReps, MetricOneRMTarget,
		MetricEarlyBird, MetricVarietyBalance, MetricHeatmapDays:
		return true
	}
	return false
}

type AchievementStatus string

const (
	StatusLocked     AchievementStatus = "LOCKED"
	StatusInProgress AchievementStatus = "IN_PROGRESS"
	StatusCompleted  AchievementStatus = "COMPLETED"
)

func (s AchievementStatus) IsTerminal() bool {
	return s == StatusCompleted
}

// AchievementMetadata carries the optional per-definition or per-instance parameters.
type AchievementMetadata struct {
	ExerciseName    string     `json:"exercise_name,omitempty" toml:"exercise_name,omitempty"`
	DeadlineAt      *time.Time `json:"deadline_at,omitempty" toml:"deadline_at,omitempty"`
	SecondaryTarget *float64   `json:"secondary_target,omitempty" toml:"secondary_target,omitempty"`
	WindowDays      *int       `json:"window_days,omitempty" toml:"window_days,omitempty"`
	WorkoutID       string     `json:"workout_id,omitempty" toml:"workout_id,omitempty"`
}

// Merge returns m with every unset field taken from base. Either side may be nil.
func (m *AchievementMetadata) Merge(base *AchievementMetadata) *AchievementMetadata {
	if m == nil && base == nil {
		return nil
	}
	var out AchievementMetadata
	if base != nil {
		out = *base
	}
	if m == nil {
		return &out
	}
	if m.ExerciseName != "" {
		out.ExerciseName = m.ExerciseName
	}
	if m.DeadlineAt != nil {
		out.DeadlineAt = m.DeadlineAt
	}
	if m.SecondaryTarget != nil {
		out.SecondaryTarget = m.SecondaryTarget
	}
	if m.WindowDays != nil {
		out.WindowDays = m.WindowDays
	}
	if m.WorkoutID != "" {
		out.WorkoutID = m.WorkoutID
	}
	return &out
}

type AchievementDefinition struct {
	ID          string               `json:"id" toml:"id"`
	Title       string               `json:"title" toml:"title"`
	Description string               `json:"description" toml:"description"`
	Type        AchievementType      `json:"type" toml:"type"`
	Metric      MetricType           `json:"metric" toml:"metric"`
	TargetValue float64              `json:"target_value" toml:"target"`
	WindowDays  *int                 `json:"window_days,omitempty" toml:"window_days,omitempty"`
	Repeatable  bool                 `json:"repeatable" toml:"repeatable"`
	Tier        Tier                 `json:"tier" toml:"tier"`
	IconKey     string               `json:"icon_key" toml:"icon"`
	SortOrder   int                  `json:"sort_order" toml:"sort_order"`
	Metadata    *AchievementMetadata `json:"metadata,omitempty" toml:"metadata,omitempty"`
}

// Progress is recomputed wholesale on every pass.
type Progress struct {
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
	Percent float64 `json:"percent"`
	Unit    string  `json:"unit"`
}

func (p Progress) IsComplete() bool {
	return p.Target > 0 && p.Percent >= 1.0
}

type AchievementInstance struct {
	ID           string               `json:"id"`
	DefinitionID string               `json:"definition_id"`
	CreatedAt    time.Time            `json:"created_at"`
	Status       AchievementStatus    `json:"status"`
	Progress     Progress             `json:"progress"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
	UserNotes    string               `json:"user_notes,omitempty"`
	Metadata     *AchievementMetadata `json:"metadata,omitempty"`
}
