package achievement

import (
	"math"

	"github.com/misterclayt0n/podium/internal/models"
)

// ComputeProgress normalizes raw against target. Current keeps the raw value so
// overshoot stays visible; only Percent is clamped to [0, 1].
func ComputeProgress(raw, target float64, unit string) models.Progress {
	p := models.Progress{Current: raw, Target: target, Unit: unit}
	if target > 0 && !math.IsNaN(raw) {
		p.Percent = math.Min(math.Max(raw/target, 0), 1)
	}
	return p
}
