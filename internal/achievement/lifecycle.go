package achievement

import (
	"time"

	"github.com/misterclayt0n/podium/internal/models"
)

// Advance merges a freshly computed evaluation into the previously stored
// instance. Status only moves forward: LOCKED -> IN_PROGRESS -> COMPLETED.
// A COMPLETED instance is returned untouched, so completedAt is written once.
//
// keepBest is set for monotonic metrics evaluated over the whole history; the
// stored Current then never drops below its previous value for the same target.
func Advance(prev models.AchievementInstance, eval Evaluation, next models.Progress, keepBest bool, asOf time.Time) models.AchievementInstance {
	if prev.Status.IsTerminal() {
		return prev
	}

	out := prev
	if out.Status == "" {
		out.Status = models.StatusLocked
	}

	if keepBest && prev.Status == models.StatusInProgress && prev.Progress.Target == next.Target && prev.Progress.Current > next.Current {
		next = ComputeProgress(prev.Progress.Current, next.Target, next.Unit)
	}
	out.Progress = next

	if out.Status == models.StatusLocked && !eval.Meaningful {
		return out
	}
	out.Status = models.StatusInProgress

	if next.IsComplete() {
		completedAt := asOf
		out.Status = models.StatusCompleted
		out.CompletedAt = &completedAt
	}
	return out
}
