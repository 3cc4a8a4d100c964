package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/misterclayt0n/podium/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPrintEventsMeasuresDeadlineFromPass(t *testing.T) {
	color.NoColor = true
	asOf := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	events := []models.AchievementEvent{
		models.CompletedEvent{InstanceID: "i1", DefinitionID: "first-workout", Title: "First Rep", CompletedAt: asOf},
		models.DeadlineApproachingEvent{InstanceID: "i2", DefinitionID: "goal:g1", Title: "Bench 100kg", DeadlineAt: asOf.Add(48 * time.Hour)},
	}

	var buf bytes.Buffer
	printEvents(&buf, events, asOf, time.UTC)

	out := buf.String()
	assert.Contains(t, out, "Achievement unlocked: First Rep")
	assert.Contains(t, out, "Bench 100kg is due Sun, 12 May 12:00 (48h0m0s left)")
}
