package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type WorkoutSchedule struct {
	WorkoutID    string         `json:"workout_id"`
	Days         []time.Weekday `json:"days"`
	NotifyHour   int            `json:"notify_hour"`
	NotifyMinute int            `json:"notify_minute"`
	Enabled      bool           `json:"enabled"`
	NextRunAt    *time.Time     `json:"next_run_at,omitempty"`
}

// HasDay reports whether d is one of the scheduled weekdays.
func (s WorkoutSchedule) HasDay(d time.Weekday) bool {
	for _, day := range s.Days {
		if day == d {
			return true
		}
	}
	return false
}

func (s WorkoutSchedule) Validate() error {
	if s.WorkoutID == "" {
		return fmt.Errorf("schedule needs a workout id")
	}
	if s.NotifyHour < 0 || s.NotifyHour > 23 {
		return fmt.Errorf("notify hour %d out of range 0-23", s.NotifyHour)
	}
	if s.NotifyMinute < 0 || s.NotifyMinute > 59 {
		return fmt.Errorf("notify minute %d out of range 0-59", s.NotifyMinute)
	}
	if s.Enabled && len(s.Days) == 0 {
		return fmt.Errorf("an enabled schedule needs at least one weekday")
	}
	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekdays parses a comma separated list such as "mon,wed,fri".
// Duplicates collapse and the result is sorted Sunday first.
func ParseWeekdays(s string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		d, ok := weekdayNames[part]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		seen[d] = true
	}
	days := make([]time.Weekday, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days, nil
}

// FormatWeekdays is the inverse of ParseWeekdays.
func FormatWeekdays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strings.ToLower(d.String()[:3])
	}
	return strings.Join(parts, ",")
}
