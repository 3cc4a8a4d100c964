package utils

import (
	"fmt"
	"strings"

	"github.com/misterclayt0n/podium/internal/models"
)

const poundsPerKilogram = 2.20462262185

// NormalizeUnit maps the accepted spellings to "kg" or "lb". An empty unit is kg,
// which is what sets were logged in before units were recorded.
func NormalizeUnit(unit string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "kg", "kgs", "kilogram", "kilograms":
		return models.UnitKilograms, true
	case "lb", "lbs", "pound", "pounds":
		return models.UnitPounds, true
	}
	return "", false
}

// ConvertWeight converts value from one unit to another. Unknown units yield ok=false.
func ConvertWeight(value float64, from, to string) (float64, bool) {
	f, ok := NormalizeUnit(from)
	if !ok {
		return 0, false
	}
	t, ok := NormalizeUnit(to)
	if !ok {
		return 0, false
	}
	switch {
	case f == t:
		return value, true
	case f == models.UnitPounds:
		return value / poundsPerKilogram, true
	default:
		return value * poundsPerKilogram, true
	}
}

// ValidateUnit returns the canonical spelling or an error.
func ValidateUnit(unit string) (string, error) {
	u, ok := NormalizeUnit(unit)
	if !ok {
		return "", fmt.Errorf("unsupported unit %q (use kg or lb)", unit)
	}
	return u, nil
}
