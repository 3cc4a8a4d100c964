// Package schedule computes when a weekly workout reminder fires next.
package schedule

import (
	"time"

	"github.com/misterclayt0n/podium/internal/models"
)

// NextRun returns the first instant strictly after now that falls on one of days
// at hour:minute wall-clock time in loc. It returns false when days is empty.
//
// Offsets run 0..7 so that a single selected weekday whose time already passed
// today resolves to the same weekday next week.
func NextRun(days []time.Weekday, hour, minute int, now time.Time, loc *time.Location) (time.Time, bool) {
	if len(days) == 0 {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	selected := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		selected[d] = true
	}

	local := now.In(loc)
	y, m, d := local.Date()
	for offset := 0; offset <= 7; offset++ {
		// Weekday of the calendar date, independent of DST transitions in loc.
		day := time.Date(y, m, d+offset, 12, 0, 0, 0, time.UTC)
		if !selected[day.Weekday()] {
			continue
		}
		candidate := time.Date(y, m, d+offset, hour, minute, 0, 0, loc)
		if candidate.After(now) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// Next is NextRun for a stored schedule. Disabled schedules never fire.
func Next(s models.WorkoutSchedule, now time.Time, loc *time.Location) (time.Time, bool) {
	if !s.Enabled {
		return time.Time{}, false
	}
	return NextRun(s.Days, s.NotifyHour, s.NotifyMinute, now, loc)
}

// Upcoming lists every run of s in (now, now+horizon], in order.
func Upcoming(s models.WorkoutSchedule, now time.Time, horizon time.Duration, loc *time.Location) []time.Time {
	var runs []time.Time
	end := now.Add(horizon)
	cursor := now
	for {
		next, ok := Next(s, cursor, loc)
		if !ok || next.After(end) {
			return runs
		}
		runs = append(runs, next)
		cursor = next
	}
}
