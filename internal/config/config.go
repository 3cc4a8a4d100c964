package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/misterclayt0n/podium/internal/utils"
)

const devConnectionString = "file:./podium.db?cache=shared&mode=rwc"

type Config struct {
	DB        DBConfig        `toml:"database"`
	Engine    EngineConfig    `toml:"engine"`
	Reminders RemindersConfig `toml:"reminders"`
}

type DBConfig struct {
	ConnectionString string `toml:"connection_string"` // The entire DB connection string.
}

type EngineConfig struct {
	TimeZone               string   `toml:"timezone"`
	CanonicalUnit          string   `toml:"canonical_unit"`
	DeadlineThresholdHours int      `toml:"deadline_threshold_hours"`
	RetryAttempts          int      `toml:"retry_attempts"`
	RetryDelay             Duration `toml:"retry_delay"`
}

type RemindersConfig struct {
	LookaheadDays int `toml:"lookahead_days"` // How far ahead `schedule list` prints upcoming runs.
}

// Duration lets TOML carry values such as "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DB: DBConfig{ConnectionString: devConnectionString},
		Engine: EngineConfig{
			TimeZone:               utils.DefaultTimeZone,
			CanonicalUnit:          "kg",
			DeadlineThresholdHours: 72,
			RetryAttempts:          3,
			RetryDelay:             Duration{200 * time.Millisecond},
		},
		Reminders: RemindersConfig{LookaheadDays: 7},
	}
}

// Returns the path to the config file.
func GetConfigPath() (string, error) {
	dir, err := utils.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Reads the configuration from the config file, layered over Default.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile is LoadConfig for an explicit path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	// A .env file is optional.
	_ = godotenv.Load()

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if url := os.Getenv("PODIUM_DATABASE_URL"); url != "" {
		cfg.DB.ConnectionString = url
	}
	if tz := os.Getenv("PODIUM_TIMEZONE"); tz != "" {
		cfg.Engine.TimeZone = tz
	}
	// Check for a DEV_MODE environment variable.
	if os.Getenv("DEV_MODE") == "true" {
		cfg.DB.ConnectionString = devConnectionString
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DB.ConnectionString == "" {
		return fmt.Errorf("database.connection_string is required")
	}
	unit, err := utils.ValidateUnit(c.Engine.CanonicalUnit)
	if err != nil {
		return fmt.Errorf("engine.canonical_unit: %w", err)
	}
	c.Engine.CanonicalUnit = unit
	if _, err := utils.LoadLocation(c.Engine.TimeZone); err != nil {
		return fmt.Errorf("engine.timezone: %w", err)
	}
	if c.Engine.DeadlineThresholdHours < 0 {
		return fmt.Errorf("engine.deadline_threshold_hours must not be negative")
	}
	if c.Engine.RetryAttempts < 1 {
		return fmt.Errorf("engine.retry_attempts must be at least 1")
	}
	return nil
}

// Location returns the evaluation time zone. Validate has already checked it loads.
func (c *Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Engine.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) DeadlineThreshold() time.Duration {
	return time.Duration(c.Engine.DeadlineThresholdHours) * time.Hour
}
