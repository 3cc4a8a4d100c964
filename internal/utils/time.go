package utils

import (
	"fmt"
	"time"
)

// DefaultTimeZone is used when the config does not name one.
const DefaultTimeZone = "America/Sao_Paulo"

// LoadLocation resolves name, falling back to DefaultTimeZone when empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", name, err)
	}
	return loc, nil
}

// FormatLocal returns t formatted in loc.
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC1123)
}

// LocalDate truncates t to midnight of its calendar day in loc.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DaysBetween counts calendar days from a to b, both already truncated with LocalDate.
// It is immune to 23h and 25h days around DST changes.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
