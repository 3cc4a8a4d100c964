package achievement

import (
	"time"

	"github.com/misterclayt0n/podium/internal/models"
)

// DefaultDeadlineThreshold is how close a deadline must be to be announced.
const DefaultDeadlineThreshold = 72 * time.Hour

// Emit derives the events for one instance transition. It keeps no memory of
// earlier passes: a deadline event repeats on every pass inside the threshold
// and the event sink is expected to drop the repeats.
func Emit(def models.AchievementDefinition, prev, next models.AchievementInstance, asOf time.Time, threshold time.Duration) []models.AchievementEvent {
	var events []models.AchievementEvent

	if !prev.Status.IsTerminal() && next.Status == models.StatusCompleted && next.CompletedAt != nil {
		events = append(events, models.CompletedEvent{
			InstanceID:   next.ID,
			DefinitionID: def.ID,
			Title:        def.Title,
			CompletedAt:  *next.CompletedAt,
		})
	}

	if next.Status != models.StatusInProgress {
		return events
	}
	meta := next.Metadata.Merge(def.Metadata)
	if meta == nil || meta.DeadlineAt == nil {
		return events
	}
	remaining := meta.DeadlineAt.Sub(asOf)
	if remaining >= 0 && remaining <= threshold {
		events = append(events, models.DeadlineApproachingEvent{
			InstanceID:   next.ID,
			DefinitionID: def.ID,
			Title:        def.Title,
			DeadlineAt:   *meta.DeadlineAt,
		})
	}
	return events
}
