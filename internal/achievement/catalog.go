package achievement

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/misterclayt0n/podium/internal/models"
)

//go:embed default_catalog.toml
var defaultCatalog []byte

type catalogFile struct {
	Achievements []models.AchievementDefinition `toml:"achievement"`
}

// DefaultCatalog returns the built-in definitions seeded by `podium init`.
func DefaultCatalog() ([]models.AchievementDefinition, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes and validates a catalog TOML document.
func ParseCatalog(data []byte) ([]models.AchievementDefinition, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid catalog TOML: %w", err)
	}

	seen := make(map[string]bool)
	for i := range file.Achievements {
		def := &file.Achievements[i]
		def.ID = strings.TrimSpace(def.ID)
		if def.ID == "" {
			return nil, fmt.Errorf("achievement #%d has no id", i+1)
		}
		if IsGoalDefinition(def.ID) {
			return nil, fmt.Errorf("achievement %s: the %q prefix is reserved for goals", def.ID, goalDefinitionPrefix)
		}
		if seen[def.ID] {
			return nil, fmt.Errorf("achievement %s is defined twice", def.ID)
		}
		seen[def.ID] = true

		metric, err := models.ParseMetricType(string(def.Metric))
		if err != nil || !Supported(metric) {
			return nil, fmt.Errorf("achievement %s: %w: %q", def.ID, ErrUnknownMetric, def.Metric)
		}
		def.Metric = metric

		if def.TargetValue <= 0 {
			return nil, fmt.Errorf("achievement %s: target must be positive", def.ID)
		}
		if def.WindowDays != nil && *def.WindowDays <= 0 {
			return nil, fmt.Errorf("achievement %s: window_days must be positive", def.ID)
		}
		if def.Title == "" {
			def.Title = def.ID
		}
		if def.Type == "" {
			def.Type = models.TypeConsistency
		}
		if def.Tier == "" {
			def.Tier = models.TierBronze
		}
		if def.SortOrder == 0 {
			def.SortOrder = i + 1
		}
	}
	return file.Achievements, nil
}
