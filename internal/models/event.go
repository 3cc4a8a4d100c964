package models

import "time"

// AchievementEvent is either a CompletedEvent or a DeadlineApproachingEvent.
// The unexported marker keeps the set closed to this package.
type AchievementEvent interface {
	Instance() string
	isAchievementEvent()
}

type CompletedEvent struct {
	InstanceID   string    `json:"instance_id"`
	DefinitionID string    `json:"definition_id"`
	Title        string    `json:"title"`
	CompletedAt  time.Time `json:"completed_at"`
}

type DeadlineApproachingEvent struct {
	InstanceID   string    `json:"instance_id"`
	DefinitionID string    `json:"definition_id"`
	Title        string    `json:"title"`
	DeadlineAt   time.Time `json:"deadline_at"`
}

func (e CompletedEvent) Instance() string           { return e.InstanceID }
func (e DeadlineApproachingEvent) Instance() string { return e.InstanceID }

func (CompletedEvent) isAchievementEvent()           {}
func (DeadlineApproachingEvent) isAchievementEvent() {}
