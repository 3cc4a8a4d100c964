package achievement

import (
	"testing"
	"time"

	"github.com/misterclayt0n/podium/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitCompletion(t *testing.T) {
	asOf := ts(t, "2024-05-10T12:00:00Z")
	def := models.AchievementDefinition{ID: "workouts-50", Title: "Fifty"}
	prev := models.AchievementInstance{ID: "i1", Status: models.StatusInProgress}
	next := prev
	next.Status = models.StatusCompleted
	next.CompletedAt = &asOf

	events := Emit(def, prev, next, asOf, DefaultDeadlineThreshold)
	require.Len(t, events, 1)
	done, ok := events[0].(models.CompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "i1", done.Instance())
	assert.Equal(t, "workouts-50", done.DefinitionID)
	assert.Equal(t, "Fifty", done.Title)
	assert.Equal(t, asOf, done.CompletedAt)

	// Once stored as completed, later passes stay silent.
	assert.Empty(t, Emit(def, next, next, asOf.Add(time.Hour), DefaultDeadlineThreshold))
}

func TestEmitDeadlineApproaching(t *testing.T) {
	asOf := ts(t, "2024-05-10T12:00:00Z")
	deadline := func(d time.Duration) *models.AchievementMetadata {
		at := asOf.Add(d)
		return &models.AchievementMetadata{DeadlineAt: &at}
	}

	tests := []struct {
		name   string
		status models.AchievementStatus
		meta   *models.AchievementMetadata
		want   bool
	}{
		{name: "inside threshold", status: models.StatusInProgress, meta: deadline(48 * time.Hour), want: true},
		{name: "exactly at threshold", status: models.StatusInProgress, meta: deadline(72 * time.Hour), want: true},
		{name: "due now", status: models.StatusInProgress, meta: deadline(0), want: true},
		{name: "too far away", status: models.StatusInProgress, meta: deadline(73 * time.Hour), want: false},
		{name: "already passed", status: models.StatusInProgress, meta: deadline(-time.Minute), want: false},
		{name: "still locked", status: models.StatusLocked, meta: deadline(time.Hour), want: false},
		{name: "no deadline", status: models.StatusInProgress, meta: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := models.AchievementInstance{ID: "i1", Status: tt.status, Metadata: tt.meta}
			events := Emit(models.AchievementDefinition{ID: "goal:g1"}, inst, inst, asOf, DefaultDeadlineThreshold)
			if !tt.want {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			ev, ok := events[0].(models.DeadlineApproachingEvent)
			require.True(t, ok)
			assert.Equal(t, *tt.meta.DeadlineAt, ev.DeadlineAt)
		})
	}
}

func TestEmitDeadlineFromDefinitionMetadata(t *testing.T) {
	asOf := ts(t, "2024-05-10T12:00:00Z")
	due := asOf.Add(24 * time.Hour)
	def := models.AchievementDefinition{ID: "goal:g1", Metadata: &models.AchievementMetadata{DeadlineAt: &due}}
	inst := models.AchievementInstance{ID: "i1", Status: models.StatusInProgress}

	events := Emit(def, inst, inst, asOf, DefaultDeadlineThreshold)
	require.Len(t, events, 1)
	assert.IsType(t, models.DeadlineApproachingEvent{}, events[0])

	assert.Empty(t, Emit(def, inst, inst, asOf, time.Hour), "a shorter threshold excludes it")
}
