package achievement

import (
	"context"
	"testing"
	"time"

	"github.com/misterclayt0n/podium/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func definition(id string, metric models.MetricType, target float64, sortOrder int) models.AchievementDefinition {
	return models.AchievementDefinition{
		ID:          id,
		Title:       id,
		Type:        models.TypeConsistency,
		Metric:      metric,
		TargetValue: target,
		Tier:        models.TierBronze,
		SortOrder:   sortOrder,
	}
}

func basicCatalog() []models.AchievementDefinition {
	bench := definition("bench-100", models.MetricMaxWeight, 100, 3)
	bench.Metadata = &models.AchievementMetadata{ExerciseName: "Bench Press"}
	return []models.AchievementDefinition{
		definition("streak-3", models.MetricStreakActiveDays, 3, 4),
		bench,
		definition("workouts-5", models.MetricTotalWorkouts, 5, 2),
		definition("first-workout", models.MetricTotalWorkouts, 1, 1),
	}
}

func byDefinition(instances []models.AchievementInstance) map[string]models.AchievementInstance {
	out := make(map[string]models.AchievementInstance, len(instances))
	for _, inst := range instances {
		out[inst.DefinitionID] = inst
	}
	return out
}

func completedEvents(events []models.AchievementEvent) []models.CompletedEvent {
	var out []models.CompletedEvent
	for _, ev := range events {
		if c, ok := ev.(models.CompletedEvent); ok {
			out = append(out, c)
		}
	}
	return out
}

func TestRecomputeFirstPass(t *testing.T) {
	engine := NewEngine(WithIDGenerator(sequentialIDs("inst")))
	snap := Snapshot{
		AsOf:        ts(t, "2024-05-10T12:00:00Z"),
		History:     models.History{Sessions: dailySessions(ts(t, "2024-05-01T18:00:00Z"), 4)},
		Definitions: basicCatalog(),
	}

	res, err := engine.Recompute(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, res.Instances, 4)
	assert.Equal(t, 4, res.Spawned)

	var order []string
	for _, inst := range res.Instances {
		order = append(order, inst.DefinitionID)
	}
	assert.Equal(t, []string{"first-workout", "workouts-5", "bench-100", "streak-3"}, order)

	got := byDefinition(res.Instances)
	assert.Equal(t, models.StatusCompleted, got["first-workout"].Status)
	assert.Equal(t, snap.AsOf, *got["first-workout"].CompletedAt)
	assert.Equal(t, models.StatusInProgress, got["workouts-5"].Status)
	assert.Equal(t, 0.8, got["workouts-5"].Progress.Percent)
	assert.Equal(t, "workouts", got["workouts-5"].Progress.Unit)
	assert.Equal(t, models.StatusLocked, got["bench-100"].Status, "no bench press was ever logged")
	assert.Equal(t, models.StatusCompleted, got["streak-3"].Status)

	done := completedEvents(res.Events)
	require.Len(t, done, 2)
	assert.Equal(t, "first-workout", done[0].DefinitionID)
	assert.Equal(t, "streak-3", done[1].DefinitionID)
	for _, inst := range res.Instances {
		assert.Equal(t, snap.AsOf, inst.CreatedAt)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	engine := NewEngine()
	snap := Snapshot{
		AsOf:        ts(t, "2024-05-10T12:00:00Z"),
		History:     models.History{Sessions: dailySessions(ts(t, "2024-05-01T18:00:00Z"), 4)},
		Definitions: basicCatalog(),
	}
	first, err := engine.Recompute(context.Background(), snap)
	require.NoError(t, err)

	snap.Instances = first.Instances
	second, err := engine.Recompute(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, first.Instances, second.Instances)
	assert.Zero(t, second.Spawned)
	assert.Empty(t, second.Events)
}

func TestCompletedSurvivesHistoryChanges(t *testing.T) {
	engine := NewEngine()
	snap := Snapshot{
		AsOf:        ts(t, "2024-05-10T12:00:00Z"),
		History:     models.History{Sessions: dailySessions(ts(t, "2024-05-01T18:00:00Z"), 4)},
		Definitions: basicCatalog(),
	}
	first, err := engine.Recompute(context.Background(), snap)
	require.NoError(t, err)

	// Every session was deleted afterwards.
	snap.History = models.History{}
	snap.Instances = first.Instances
	snap.AsOf = snap.AsOf.Add(24 * time.Hour)
	second, err := engine.Recompute(context.Background(), snap)
	require.NoError(t, err)

	before, after := byDefinition(first.Instances), byDefinition(second.Instances)
	assert.Equal(t, before["first-workout"], after["first-workout"])
	assert.Equal(t, before["streak-3"], after["streak-3"])
	assert.Equal(t, models.StatusInProgress, after["workouts-5"].Status)
	assert.Equal(t, 4.0, after["workouts-5"].Progress.Current, "lifetime totals keep their best value")
	assert.Equal(t, models.StatusLocked, after["bench-100"].Status)
	assert.Empty(t, second.Events)
}

func TestRepeatableSpawnsOneInstanceAtATime(t *testing.T) {
	weekly := definition("three-a-week", models.MetricWorkoutsPerWeek, 3, 1)
	weekly.WindowDays = intPtr(7)
	weekly.Repeatable = true

	engine := NewEngine()
	snap := Snapshot{
		AsOf:        ts(t, "2024-05-10T12:00:00Z"),
		History:     models.History{Sessions: dailySessions(ts(t, "2024-05-07T18:00:00Z"), 3)},
		Definitions: []models.AchievementDefinition{weekly},
	}

	pass := func() *Result {
		res, err := engine.Recompute(context.Background(), snap)
		require.NoError(t, err)
		snap.Instances = res.Instances
		return res
	}

	// The first round completes at once and the next one opens in the same
	// pass, counting only workouts after it was created.
	res := pass()
	require.Len(t, res.Instances, 2)
	assert.Equal(t, 2, res.Spawned)
	assert.Equal(t, models.StatusCompleted, res.Instances[0].Status)
	assert.Equal(t, models.StatusInProgress, res.Instances[1].Status)
	assert.Zero(t, res.Instances[1].Progress.Current)
	require.Len(t, completedEvents(res.Events), 1)
	assert.Equal(t, res.Instances[0].ID, res.Events[0].Instance())

	for i := 0; i < 3; i++ {
		res = pass()
		require.Len(t, res.Instances, 2, "no duplicate rounds while one is open")
		assert.Zero(t, res.Spawned)
	}

	snap.History.Sessions = append(snap.History.Sessions, dailySessions(ts(t, "2024-05-11T18:00:00Z"), 3)...)
	snap.AsOf = ts(t, "2024-05-14T12:00:00Z")
	res = pass()
	require.Len(t, res.Instances, 3)
	assert.Equal(t, models.StatusCompleted, res.Instances[1].Status)
	assert.Equal(t, models.StatusInProgress, res.Instances[2].Status)
	require.Len(t, completedEvents(res.Events), 1)
	assert.Equal(t, res.Instances[1].ID, res.Events[0].Instance())

	ids := map[string]bool{}
	open := 0
	for _, inst := range res.Instances {
		ids[inst.ID] = true
		if !inst.Status.IsTerminal() {
			open++
		}
	}
	assert.Len(t, ids, 3)
	assert.Equal(t, 1, open)
}

func TestRepeatableNextRoundCountsWorkoutsBeforeNextPass(t *testing.T) {
	weekly := definition("three-a-week", models.MetricWorkoutsPerWeek, 3, 1)
	weekly.WindowDays = intPtr(7)
	weekly.Repeatable = true

	engine := NewEngine(WithIDGenerator(sequentialIDs("inst")))
	snap := Snapshot{
		AsOf:        ts(t, "2024-05-10T12:00:00Z"),
		History:     models.History{Sessions: dailySessions(ts(t, "2024-05-07T18:00:00Z"), 3)},
		Definitions: []models.AchievementDefinition{weekly},
	}
	first, err := engine.Recompute(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, first.Instances, 2)
	assert.Equal(t, snap.AsOf, first.Instances[1].CreatedAt)

	// A workout logged after the first round completed, before the next pass.
	snap.History.Sessions = append(snap.History.Sessions, dailySessions(ts(t, "2024-05-11T18:00:00Z"), 1)...)
	snap.Instances = first.Instances
	snap.AsOf = ts(t, "2024-05-11T19:00:00Z")
	second, err := engine.Recompute(context.Background(), snap)
	require.NoError(t, err)

	require.Len(t, second.Instances, 2)
	assert.Zero(t, second.Spawned)
	assert.Equal(t, first.Instances[1].ID, second.Instances[1].ID)
	assert.Equal(t, models.StatusInProgress, second.Instances[1].Status)
	assert.Equal(t, 1.0, second.Instances[1].Progress.Current)
}

func TestGoalsAreEvaluatedFromCreation(t *testing.T) {
	asOf := ts(t, "2024-05-10T12:00:00Z")
	deadline := asOf.Add(48 * time.Hour)
	goal := models.UserGoal{
		ID:           "g1",
		Kind:         models.GoalOneRM,
		ExerciseName: "Bench Press",
		TargetValue:  120,
		DeadlineAt:   &deadline,
		CreatedAt:    ts(t, "2024-05-05T00:00:00Z"),
	}

	engine := NewEngine()
	snap := Snapshot{
		AsOf: asOf,
		History: models.History{Sessions: []models.TrainingSession{
			session("old-pr", ts(t, "2024-05-01T10:00:00Z"), setSpec{exercise: "Bench Press", weight: 200, reps: 1, unit: "kg"}),
			session("recent", ts(t, "2024-05-08T10:00:00Z"), setSpec{exercise: "Bench Press", weight: 90, reps: 5, unit: "kg"}),
		}},
		Goals: []models.UserGoal{goal},
	}

	res, err := engine.Recompute(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, res.Instances, 1)

	inst := res.Instances[0]
	assert.Equal(t, "goal:g1", inst.DefinitionID)
	assert.Equal(t, goal.CreatedAt, inst.CreatedAt)
	assert.Equal(t, models.StatusInProgress, inst.Status)
	assert.InDelta(t, 105, inst.Progress.Current, 1e-9)

	require.Len(t, res.Events, 1)
	due, ok := res.Events[0].(models.DeadlineApproachingEvent)
	require.True(t, ok)
	assert.Equal(t, deadline, due.DeadlineAt)
	assert.Equal(t, inst.ID, due.InstanceID)

	// The reminder is repeated on every pass; the sink drops the duplicates.
	snap.Instances = res.Instances
	res, err = engine.Recompute(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.IsType(t, models.DeadlineApproachingEvent{}, res.Events[0])

	snap.History.Sessions = append(snap.History.Sessions,
		session("pr", ts(t, "2024-05-09T10:00:00Z"), setSpec{exercise: "bench press", weight: 115, reps: 3, unit: "kg"}))
	res, err = engine.Recompute(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, res.Instances, 1)
	assert.Equal(t, models.StatusCompleted, res.Instances[0].Status)
	require.Len(t, res.Events, 1)
	assert.IsType(t, models.CompletedEvent{}, res.Events[0])
	assert.Zero(t, res.Spawned, "goals are never repeatable")
}

func TestRecomputeRejectsUnknownMetric(t *testing.T) {
	snap := Snapshot{
		AsOf:        ts(t, "2024-05-10T12:00:00Z"),
		Definitions: []models.AchievementDefinition{definition("mystery", "JUMPING_JACKS", 10, 1)},
	}
	_, err := NewEngine().Recompute(context.Background(), snap)
	require.ErrorIs(t, err, ErrUnknownMetric)
}

func TestRecomputeRejectsUnknownGoalKind(t *testing.T) {
	snap := Snapshot{
		AsOf:  ts(t, "2024-05-10T12:00:00Z"),
		Goals: []models.UserGoal{{ID: "g1", Kind: "plank", TargetValue: 1}},
	}
	_, err := NewEngine().Recompute(context.Background(), snap)
	require.ErrorIs(t, err, ErrUnknownGoalKind)
}

func TestRecomputeCarriesOrphans(t *testing.T) {
	orphan := models.AchievementInstance{
		ID:           "old-1",
		DefinitionID: "retired",
		CreatedAt:    ts(t, "2023-01-01T00:00:00Z"),
		Status:       models.StatusInProgress,
		Progress:     ComputeProgress(2, 10, "workouts"),
		UserNotes:    "keep me",
	}
	snap := Snapshot{
		AsOf:        ts(t, "2024-05-10T12:00:00Z"),
		Definitions: []models.AchievementDefinition{definition("first-workout", models.MetricTotalWorkouts, 1, 1)},
		Instances:   []models.AchievementInstance{orphan},
	}

	res, err := NewEngine().Recompute(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, res.Instances, 2)
	assert.Equal(t, orphan, res.Instances[1])
}

func TestRecomputeIsDeterministicAcrossParallelism(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	snap := Snapshot{
		AsOf: ts(t, "2024-05-30T12:00:00Z"),
		History: models.History{
			Sessions: dailySessions(ts(t, "2024-05-01T06:00:00Z"), 20),
			BodyWeights: []models.BodyWeightEntry{
				{ID: "bw1", MeasuredAt: ts(t, "2024-05-01T07:00:00Z"), Weight: 60, Unit: "kg"},
			},
		},
		Definitions: catalog,
	}

	serial, err := NewEngine(WithParallelism(1), WithIDGenerator(sequentialIDs("inst"))).Recompute(context.Background(), snap)
	require.NoError(t, err)
	parallel, err := NewEngine(WithParallelism(8), WithIDGenerator(sequentialIDs("inst"))).Recompute(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
	assert.Len(t, serial.Instances, len(catalog))

	got := byDefinition(serial.Instances)
	assert.Equal(t, models.StatusCompleted, got["streak-7"].Status)
	assert.Equal(t, models.StatusCompleted, got["squat-1.5x"].Status)
	assert.Equal(t, models.StatusLocked, got["bench-bodyweight"].Status)
}

func TestRecomputeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := Snapshot{
		AsOf:        ts(t, "2024-05-10T12:00:00Z"),
		Definitions: basicCatalog(),
	}
	_, err := NewEngine().Recompute(ctx, snap)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRecomputeCanonicalUnit(t *testing.T) {
	bench := definition("bench-225", models.MetricMaxWeight, 225, 1)
	bench.Metadata = &models.AchievementMetadata{ExerciseName: "Bench Press"}
	snap := Snapshot{
		AsOf: ts(t, "2024-05-10T12:00:00Z"),
		History: models.History{Sessions: []models.TrainingSession{
			session("a", ts(t, "2024-05-08T10:00:00Z"), setSpec{exercise: "Bench Press", weight: 102.5, reps: 1, unit: "kg"}),
		}},
		Definitions: []models.AchievementDefinition{bench},
	}

	res, err := NewEngine(WithCanonicalUnit("lb")).Recompute(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, res.Instances, 1)
	assert.Equal(t, models.StatusCompleted, res.Instances[0].Status)
	assert.Equal(t, "lb", res.Instances[0].Progress.Unit)
}
