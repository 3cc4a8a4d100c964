package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}

func finishedSession(t *testing.T, id, start string, sets ...models.SessionExercise) models.TrainingSession {
	t.Helper()
	begin := mustTime(t, start)
	end := begin.Add(time.Hour)
	return models.TrainingSession{ID: id, WorkoutID: "push", StartTime: begin, EndTime: &end, Exercises: sets}
}

func benchPress(weight float64, reps int, unit string, at time.Time) models.SessionExercise {
	return models.SessionExercise{
		Exercise: models.Exercise{Name: "Bench Press", Category: "chest"},
		Sets:     []models.ExerciseSet{{Weight: weight, Reps: reps, Unit: unit, Timestamp: at}},
	}
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "sqlite3", driverFor(":memory:"))
	assert.Equal(t, "sqlite3", driverFor("file:./podium.db?cache=shared&mode=rwc"))
	assert.Equal(t, "libsql", driverFor("libsql://podium-me.turso.io?authToken=x"))
	assert.Equal(t, "libsql", driverFor("https://podium-me.turso.io"))
}

func TestSaveSessionAndLoadHistory(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)

	rpe := 8.5
	first := finishedSession(t, "s1", "2024-05-01T10:00:00Z", benchPress(100, 5, "KG", mustTime(t, "2024-05-01T10:05:00Z")))
	first.Exercises[0].Sets[0].RPE = &rpe
	second := finishedSession(t, "s2", "2024-05-03T10:00:00Z",
		benchPress(225, 3, "lbs", mustTime(t, "2024-05-03T10:05:00Z")),
		models.SessionExercise{
			Exercise: models.Exercise{Name: "bench press"},
			Sets:     []models.ExerciseSet{{Reps: 10, Timestamp: mustTime(t, "2024-05-03T10:20:00Z")}},
		},
	)
	later := finishedSession(t, "s3", "2024-05-10T10:00:00Z")

	for _, s := range []models.TrainingSession{first, second, later} {
		require.NoError(t, st.SaveSession(ctx, s))
	}

	running := models.TrainingSession{ID: "open", StartTime: mustTime(t, "2024-05-02T10:00:00Z")}
	require.Error(t, st.SaveSession(ctx, running))

	exercises, err := st.ListExercises(ctx)
	require.NoError(t, err)
	require.Len(t, exercises, 1, "exercise names match case insensitively")
	assert.Equal(t, "chest", exercises[0].Category)

	h, err := st.LoadHistory(ctx, mustTime(t, "2024-05-05T00:00:00Z"))
	require.NoError(t, err)
	require.Len(t, h.Sessions, 2)
	assert.Equal(t, "s1", h.Sessions[0].ID)
	assert.Equal(t, "push", h.Sessions[0].WorkoutID)
	require.NotNil(t, h.Sessions[0].EndTime)
	assert.Equal(t, mustTime(t, "2024-05-01T11:00:00Z"), *h.Sessions[0].EndTime)

	set := h.Sessions[0].Exercises[0].Sets[0]
	assert.Equal(t, 100.0, set.Weight)
	assert.Equal(t, "kg", set.Unit)
	require.NotNil(t, set.RPE)
	assert.Equal(t, 8.5, *set.RPE)
	assert.Nil(t, set.DurationSeconds)

	require.Len(t, h.Sessions[1].Exercises, 2)
	assert.Equal(t, "lb", h.Sessions[1].Exercises[0].Sets[0].Unit)
	assert.Equal(t, "Bench Press", h.Sessions[1].Exercises[1].Exercise.Name)

	recent, err := st.ListSessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "s3", recent[0].ID)
	assert.Equal(t, "s2", recent[1].ID)

	require.NoError(t, st.DeleteSession(ctx, "s2"))
	_, err = st.GetSessionByID(ctx, "s2")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, st.DeleteSession(ctx, "s2"), ErrNotFound)
}

func TestBodyWeights(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)

	_, err := st.AddBodyWeight(ctx, models.BodyWeightEntry{Weight: 80, Unit: "stone"})
	require.Error(t, err)
	_, err = st.AddBodyWeight(ctx, models.BodyWeightEntry{Weight: 0})
	require.Error(t, err)

	_, err = st.AddBodyWeight(ctx, models.BodyWeightEntry{MeasuredAt: mustTime(t, "2024-05-02T07:00:00Z"), Weight: 176, Unit: "lbs"})
	require.NoError(t, err)
	_, err = st.AddBodyWeight(ctx, models.BodyWeightEntry{MeasuredAt: mustTime(t, "2024-05-01T07:00:00Z"), Weight: 80})
	require.NoError(t, err)

	entries, err := st.ListBodyWeights(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "kg", entries[0].Unit)
	assert.Equal(t, "lb", entries[1].Unit)
}

func TestReplaceCatalog(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)

	catalog, err := achievement.DefaultCatalog()
	require.NoError(t, err)
	require.NoError(t, st.ReplaceCatalog(ctx, catalog))

	defs, err := st.ListDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, defs, len(catalog))
	assert.Equal(t, "first-workout", defs[0].ID)

	byID := map[string]models.AchievementDefinition{}
	for _, d := range defs {
		byID[d.ID] = d
	}
	weekly := byID["three-a-week"]
	assert.True(t, weekly.Repeatable)
	require.NotNil(t, weekly.WindowDays)
	assert.Equal(t, 7, *weekly.WindowDays)
	require.NotNil(t, byID["bench-1rm-100"].Metadata)
	assert.Equal(t, "Bench Press", byID["bench-1rm-100"].Metadata.ExerciseName)
	assert.Nil(t, byID["first-workout"].Metadata)

	require.NoError(t, st.ReplaceCatalog(ctx, catalog[:2]))
	defs, err = st.ListDefinitions(ctx)
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	require.NoError(t, st.ReplaceCatalog(ctx, nil))
	defs, err = st.ListDefinitions(ctx)
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestApplyPassDeliversEachEventOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)
	now := mustTime(t, "2024-05-10T12:00:00Z")
	deadline := now.Add(24 * time.Hour)

	done := models.AchievementInstance{
		ID:           "i1",
		DefinitionID: "first-workout",
		CreatedAt:    now,
		Status:       models.StatusCompleted,
		Progress:     achievement.ComputeProgress(1, 1, "workouts"),
		CompletedAt:  &now,
	}
	open := models.AchievementInstance{
		ID:           "i2",
		DefinitionID: "goal:g1",
		CreatedAt:    now,
		Status:       models.StatusInProgress,
		Progress:     achievement.ComputeProgress(50, 100, "kg"),
		Metadata:     &models.AchievementMetadata{DeadlineAt: &deadline, ExerciseName: "Squat"},
	}
	events := []models.AchievementEvent{
		models.CompletedEvent{InstanceID: "i1", DefinitionID: "first-workout", Title: "First Rep", CompletedAt: now},
		models.DeadlineApproachingEvent{InstanceID: "i2", DefinitionID: "goal:g1", Title: "Squat", DeadlineAt: deadline},
	}

	delivered, err := st.ApplyPass(ctx, []models.AchievementInstance{done, open}, events, now)
	require.NoError(t, err)
	assert.Equal(t, events, delivered)

	delivered, err = st.ApplyPass(ctx, []models.AchievementInstance{done, open}, events, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, delivered)

	// A moved deadline is a new reminder.
	moved := deadline.Add(48 * time.Hour)
	delivered, err = st.ApplyPass(ctx, nil, []models.AchievementEvent{
		models.DeadlineApproachingEvent{InstanceID: "i2", DefinitionID: "goal:g1", DeadlineAt: moved},
	}, now)
	require.NoError(t, err)
	assert.Len(t, delivered, 1)

	notifications, err := st.ListNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, notifications, 3)

	instances, err := st.ListInstances(ctx)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, done, instances[0])
	assert.Equal(t, open, instances[1])

	require.NoError(t, st.SetInstanceNotes(ctx, "i2", "felt strong"))
	open.Progress = achievement.ComputeProgress(60, 100, "kg")
	_, err = st.ApplyPass(ctx, []models.AchievementInstance{open}, nil, now)
	require.NoError(t, err)

	instances, err = st.ListInstances(ctx)
	require.NoError(t, err)
	assert.Equal(t, "felt strong", instances[1].UserNotes, "a pass never overwrites notes")
	assert.Equal(t, 60.0, instances[1].Progress.Current)
	require.ErrorIs(t, st.SetInstanceNotes(ctx, "missing", "x"), ErrNotFound)
}

func TestGoals(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)

	_, err := st.CreateGoal(ctx, models.UserGoal{Kind: models.GoalOneRM, TargetValue: 100})
	require.Error(t, err, "one rm goals need an exercise")

	deadline := mustTime(t, "2024-06-01T00:00:00Z")
	minWeight := 20.0
	g, err := st.CreateGoal(ctx, models.UserGoal{
		Kind:           models.GoalReps,
		ExerciseName:   "Pull-up",
		TargetValue:    10,
		SecondaryValue: &minWeight,
		DeadlineAt:     &deadline,
		CreatedAt:      mustTime(t, "2024-05-01T00:00:00Z"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, g.ID)

	goals, err := st.ListGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, *g, goals[0])

	inst := models.AchievementInstance{
		ID:           "gi",
		DefinitionID: achievement.GoalDefinitionID(g.ID),
		CreatedAt:    g.CreatedAt,
		Status:       models.StatusInProgress,
	}
	_, err = st.ApplyPass(ctx, []models.AchievementInstance{inst}, nil, g.CreatedAt)
	require.NoError(t, err)

	require.NoError(t, st.DeleteGoal(ctx, g.ID))
	goals, err = st.ListGoals(ctx)
	require.NoError(t, err)
	assert.Empty(t, goals)
	instances, err := st.ListInstances(ctx)
	require.NoError(t, err)
	assert.Empty(t, instances)
	require.ErrorIs(t, st.DeleteGoal(ctx, g.ID), ErrNotFound)
}

func TestSchedules(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)

	require.Error(t, st.UpsertSchedule(ctx, models.WorkoutSchedule{WorkoutID: "push", Enabled: true}))

	sched := models.WorkoutSchedule{
		WorkoutID:    "push",
		Days:         []time.Weekday{time.Monday, time.Thursday},
		NotifyHour:   7,
		NotifyMinute: 30,
		Enabled:      true,
	}
	require.NoError(t, st.UpsertSchedule(ctx, sched))

	next := mustTime(t, "2024-05-02T10:30:00Z")
	require.NoError(t, st.SetNextRun(ctx, "push", &next))

	sched.NotifyHour = 8
	require.NoError(t, st.UpsertSchedule(ctx, sched))

	got, err := st.GetSchedule(ctx, "push")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Monday, time.Thursday}, got.Days)
	assert.Equal(t, 8, got.NotifyHour)
	require.NotNil(t, got.NextRunAt, "updating the schedule keeps the armed run")
	assert.Equal(t, next, *got.NextRunAt)

	require.NoError(t, st.DisableSchedule(ctx, "push"))
	got, err = st.GetSchedule(ctx, "push")
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Nil(t, got.NextRunAt)

	require.ErrorIs(t, st.SetNextRun(ctx, "legs", &next), ErrNotFound)
	_, err = st.GetSchedule(ctx, "legs")
	require.ErrorIs(t, err, ErrNotFound)

	schedules, err := st.ListSchedules(ctx)
	require.NoError(t, err)
	assert.Len(t, schedules, 1)
}

func TestSnapshotRecomputeRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)

	catalog, err := achievement.DefaultCatalog()
	require.NoError(t, err)
	require.NoError(t, st.ReplaceCatalog(ctx, catalog))
	require.NoError(t, st.SaveSession(ctx, finishedSession(t, "s1", "2024-05-01T10:00:00Z",
		benchPress(100, 5, "kg", mustTime(t, "2024-05-01T10:05:00Z")))))

	engine := achievement.NewEngine()
	asOf := mustTime(t, "2024-05-02T12:00:00Z")

	pass := func() ([]models.AchievementEvent, []models.AchievementInstance) {
		snap, err := st.LoadSnapshot(ctx, asOf)
		require.NoError(t, err)
		res, err := engine.Recompute(ctx, snap)
		require.NoError(t, err)
		delivered, err := st.ApplyPass(ctx, res.Instances, res.Events, asOf)
		require.NoError(t, err)
		return delivered, res.Instances
	}

	delivered, first := pass()
	assert.Len(t, first, len(catalog))
	var titles []string
	for _, ev := range delivered {
		if c, ok := ev.(models.CompletedEvent); ok {
			titles = append(titles, c.DefinitionID)
		}
	}
	assert.Contains(t, titles, "first-workout")
	assert.Contains(t, titles, "bench-1rm-100")

	delivered, second := pass()
	assert.Empty(t, delivered)
	assert.ElementsMatch(t, first, second)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestStorage(t)

	require.NoError(t, src.SaveSession(ctx, finishedSession(t, "s1", "2024-05-01T10:00:00Z",
		benchPress(100, 5, "kg", mustTime(t, "2024-05-01T10:05:00Z")))))
	_, err := src.AddBodyWeight(ctx, models.BodyWeightEntry{MeasuredAt: mustTime(t, "2024-05-01T07:00:00Z"), Weight: 80})
	require.NoError(t, err)
	require.NoError(t, src.UpsertSchedule(ctx, models.WorkoutSchedule{
		WorkoutID: "push", Days: []time.Weekday{time.Tuesday}, NotifyHour: 6, Enabled: true,
	}))

	path := filepath.Join(t.TempDir(), "dump.toml")
	require.NoError(t, src.ExportTOML(ctx, path))

	dst := newTestStorage(t)
	_, err = dst.AddBodyWeight(ctx, models.BodyWeightEntry{MeasuredAt: mustTime(t, "2023-01-01T07:00:00Z"), Weight: 99})
	require.NoError(t, err)
	require.NoError(t, dst.ImportTOML(ctx, path))

	asOf := mustTime(t, "2024-06-01T00:00:00Z")
	want, err := src.LoadHistory(ctx, asOf)
	require.NoError(t, err)
	got, err := dst.LoadHistory(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
