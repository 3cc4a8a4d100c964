package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/misterclayt0n/podium/internal/achievement"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps a single snapshot in memory and dedupes events by instance.
type fakeStore struct {
	definitions []models.AchievementDefinition
	history     models.History
	instances   []models.AchievementInstance
	delivered   map[string]bool
	schedules   []models.WorkoutSchedule
	nextRuns    map[string]*time.Time

	loadErrs  []error
	loads     int
	applies   int
	lastAsOf  time.Time
	setRunErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{delivered: map[string]bool{}, nextRuns: map[string]*time.Time{}}
}

func (f *fakeStore) LoadSnapshot(_ context.Context, asOf time.Time) (achievement.Snapshot, error) {
	f.loads++
	f.lastAsOf = asOf
	if len(f.loadErrs) > 0 {
		err := f.loadErrs[0]
		f.loadErrs = f.loadErrs[1:]
		if err != nil {
			return achievement.Snapshot{}, err
		}
	}
	return achievement.Snapshot{
		AsOf:        asOf,
		History:     f.history,
		Definitions: f.definitions,
		Instances:   append([]models.AchievementInstance(nil), f.instances...),
	}, nil
}

func (f *fakeStore) ApplyPass(_ context.Context, instances []models.AchievementInstance, events []models.AchievementEvent, _ time.Time) ([]models.AchievementEvent, error) {
	f.applies++
	f.instances = instances
	var out []models.AchievementEvent
	for _, ev := range events {
		key := fmt.Sprintf("%T:%s", ev, ev.Instance())
		if f.delivered[key] {
			continue
		}
		f.delivered[key] = true
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeStore) ListSchedules(context.Context) ([]models.WorkoutSchedule, error) {
	return f.schedules, nil
}

func (f *fakeStore) SetNextRun(_ context.Context, workoutID string, next *time.Time) error {
	if f.setRunErr != nil {
		return f.setRunErr
	}
	f.nextRuns[workoutID] = next
	return nil
}

func fixedClock(t *testing.T, s string) func() time.Time {
	t.Helper()
	now, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)
	return func() time.Time { return now }
}

func oneWorkout(t *testing.T) models.History {
	t.Helper()
	start := time.Date(2024, 5, 6, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	return models.History{Sessions: []models.TrainingSession{{
		ID:        "s1",
		StartTime: start,
		EndTime:   &end,
		Exercises: []models.SessionExercise{{
			Exercise: models.Exercise{Name: "Squat"},
			Sets:     []models.ExerciseSet{{Weight: 100, Reps: 5, Unit: "kg", Timestamp: start}},
		}},
	}}}
}

func firstWorkout() models.AchievementDefinition {
	return models.AchievementDefinition{
		ID:          "first-workout",
		Title:       "First Rep",
		Type:        models.TypeConsistency,
		Metric:      models.MetricTotalWorkouts,
		TargetValue: 1,
	}
}

func TestRecomputeDeliversOnce(t *testing.T) {
	store := newFakeStore()
	store.definitions = []models.AchievementDefinition{firstWorkout()}
	store.history = oneWorkout(t)

	tr := New(store, achievement.NewEngine(), WithClock(fixedClock(t, "2024-05-07T09:30:15.75Z")))

	out, err := tr.Recompute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 7, 9, 30, 15, 0, time.UTC), out.AsOf)
	assert.Equal(t, out.AsOf, store.lastAsOf)
	assert.Equal(t, 1, out.Spawned)
	require.Len(t, out.Instances, 1)
	assert.Equal(t, models.StatusCompleted, out.Instances[0].Status)
	require.Len(t, out.Delivered, 1)
	assert.IsType(t, models.CompletedEvent{}, out.Delivered[0])

	out, err = tr.Recompute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, out.Spawned)
	assert.Empty(t, out.Delivered)
	assert.Equal(t, 2, store.applies)
}

func TestRecomputeRetries(t *testing.T) {
	transient := errors.New("database is locked")

	tests := []struct {
		name      string
		attempts  int
		loadErrs  []error
		wantErr   error
		wantLoads int
	}{
		{name: "succeeds after transient failures", attempts: 3, loadErrs: []error{transient, transient}, wantLoads: 3},
		{name: "gives up after the last attempt", attempts: 2, loadErrs: []error{transient, transient, transient}, wantErr: transient, wantLoads: 2},
		{name: "unknown metric is not retried", attempts: 5, loadErrs: []error{achievement.ErrUnknownMetric}, wantErr: achievement.ErrUnknownMetric, wantLoads: 1},
		{name: "single attempt by default", attempts: 0, loadErrs: []error{transient}, wantErr: transient, wantLoads: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.definitions = []models.AchievementDefinition{firstWorkout()}
			store.loadErrs = tt.loadErrs

			tr := New(store, achievement.NewEngine(),
				WithRetry(tt.attempts, time.Millisecond),
				WithClock(fixedClock(t, "2024-05-07T09:30:00Z")),
			)
			_, err := tr.Recompute(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, store.applies)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, store.applies)
			}
			assert.Equal(t, tt.wantLoads, store.loads)
		})
	}
}

func TestRecomputeStopsOnUnknownStoredMetric(t *testing.T) {
	store := newFakeStore()
	store.definitions = []models.AchievementDefinition{{ID: "legacy", Metric: "CALORIES", TargetValue: 1}}

	tr := New(store, achievement.NewEngine(), WithRetry(3, time.Millisecond))
	_, err := tr.Recompute(context.Background())
	require.ErrorIs(t, err, achievement.ErrUnknownMetric)
	assert.Equal(t, 1, store.loads)
	assert.Zero(t, store.applies)
}

func TestRecomputeHonorsCancellationBetweenAttempts(t *testing.T) {
	store := newFakeStore()
	store.loadErrs = []error{errors.New("busy"), errors.New("busy")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := New(store, achievement.NewEngine(), WithRetry(3, time.Hour))
	_, err := tr.Recompute(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, store.loads)
}

func TestBackoffDelayIsLinear(t *testing.T) {
	tr := New(newFakeStore(), achievement.NewEngine(), WithRetry(4, 250*time.Millisecond))
	assert.Equal(t, 250*time.Millisecond, tr.backoffDelay(1))
	assert.Equal(t, 500*time.Millisecond, tr.backoffDelay(2))
	assert.Equal(t, 750*time.Millisecond, tr.backoffDelay(3))
}

func TestArmSchedules(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	store := newFakeStore()
	store.schedules = []models.WorkoutSchedule{
		{WorkoutID: "legs", Days: []time.Weekday{time.Monday, time.Friday}, NotifyHour: 7, Enabled: true},
		{WorkoutID: "pull", Days: []time.Weekday{time.Wednesday}, NotifyHour: 7, Enabled: false},
	}
	stale := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.nextRuns["pull"] = &stale

	// Tuesday 2024-05-07 12:00 in Sao Paulo.
	tr := New(store, achievement.NewEngine(),
		WithLocation(saoPaulo),
		WithClock(fixedClock(t, "2024-05-07T15:00:00Z")),
	)
	armed, err := tr.ArmSchedules(context.Background())
	require.NoError(t, err)
	require.Len(t, armed, 2)

	require.NotNil(t, armed[0].Next)
	assert.Equal(t, time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC), *armed[0].Next)
	assert.Equal(t, armed[0].Next, store.nextRuns["legs"])
	assert.Nil(t, armed[1].Next)
	assert.Nil(t, store.nextRuns["pull"])
}

func TestArmSchedulesReportsStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.schedules = []models.WorkoutSchedule{{WorkoutID: "legs", Days: []time.Weekday{time.Monday}, Enabled: true}}
	store.setRunErr = errors.New("read only")

	tr := New(store, achievement.NewEngine())
	_, err := tr.ArmSchedules(context.Background())
	require.ErrorContains(t, err, "arming legs")
}
