// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/shinedesk/detailer/internal/appointment"
	"github.com/shinedesk/detailer/internal/dateutil"
	"github.com/shinedesk/detailer/internal/schedule"
)

// Config holds the application configuration.
type Config struct {
	Calendar CalendarConfig `toml:"calendar"`
	Schedule ScheduleConfig `toml:"schedule"`
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
	Log      LogConfig      `toml:"log"`
}

// CalendarConfig holds month view settings.
type CalendarConfig struct {
	WeekStart string `toml:"week_start"` // e.g., "sunday", "monday"
}

// ScheduleConfig holds working day settings.
type ScheduleConfig struct {
	Clock    string   `toml:"clock"`     // "24h" or "12h"
	DayStart string   `toml:"day_start"` // e.g., "08:00"
	DayEnd   string   `toml:"day_end"`   // e.g., "18:00"
	Workdays []string `toml:"workdays"`  // e.g., ["monday", "tuesday", ...]
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
	File  string `toml:"file"`  // empty logs to stderr
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Calendar: CalendarConfig{
			WeekStart: strings.ToLower(dateutil.DefaultWeekStart.String()),
		},
		Schedule: ScheduleConfig{
			Clock:    "24h",
			DayStart: "08:00",
			DayEnd:   "18:00",
			Workdays: []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"},
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme: "midnight",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "detailer.db"
	}
	return filepath.Join(home, ".local", "share", "detailer", "detailer.db")
}

// DefaultConfigPath returns the config file path. DETAILER_CONFIG points
// at another file.
func DefaultConfigPath() string {
	if p := os.Getenv("DETAILER_CONFIG"); p != "" {
		return expandPath(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "detailer", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"DETAILER_WEEK_START", &cfg.Calendar.WeekStart},
		{"DETAILER_CLOCK", &cfg.Schedule.Clock},
		{"DETAILER_DAY_START", &cfg.Schedule.DayStart},
		{"DETAILER_DAY_END", &cfg.Schedule.DayEnd},
		{"DETAILER_DB_PATH", &cfg.Storage.DBPath},
		{"DETAILER_UI_THEME", &cfg.UI.Theme},
		{"DETAILER_LOG_LEVEL", &cfg.Log.Level},
		{"DETAILER_LOG_FILE", &cfg.Log.File},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	if v := os.Getenv("DETAILER_WORKDAYS"); v != "" {
		days := strings.Split(v, ",")
		for i := range days {
			days[i] = strings.TrimSpace(days[i])
		}
		cfg.Schedule.Workdays = days
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := dateutil.ParseWeekday(c.Calendar.WeekStart); err != nil {
		return fmt.Errorf("week_start: %w", err)
	}
	if _, err := schedule.ParseLabelStyle(c.Schedule.Clock); err != nil {
		return fmt.Errorf("clock: %w", err)
	}
	if err := validateTime(c.Schedule.DayStart, "day_start"); err != nil {
		return err
	}
	if err := validateTime(c.Schedule.DayEnd, "day_end"); err != nil {
		return err
	}
	if c.Schedule.DayStart >= c.Schedule.DayEnd {
		return errors.New("day_start must be before day_end")
	}

	if len(c.Schedule.Workdays) == 0 {
		return errors.New("at least one workday must be configured")
	}
	for _, day := range c.Schedule.Workdays {
		if _, err := dateutil.ParseWeekday(day); err != nil {
			return fmt.Errorf("invalid workday: %s", day)
		}
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// validateTime checks if a time string is a valid HH:MM wall-clock time.
func validateTime(t, field string) error {
	if _, _, err := appointment.ParseClock(t); err != nil {
		return fmt.Errorf("%s must be in HH:MM format, got %q", field, t)
	}
	return nil
}

// WeekStart returns the configured first day of the week.
func (c *Config) WeekStart() time.Weekday {
	ws, err := dateutil.ParseWeekday(c.Calendar.WeekStart)
	if err != nil {
		return dateutil.DefaultWeekStart
	}
	return ws
}

// LabelStyle returns the configured hour label style.
func (c *Config) LabelStyle() schedule.LabelStyle {
	style, _ := schedule.ParseLabelStyle(c.Schedule.Clock)
	return style
}

// BusinessHours returns the configured working hours as [start, end) hours
// of the day. A day_end with minutes past the hour includes that hour.
func (c *Config) BusinessHours() (start, end int) {
	start = appointment.TimeToMinutes(c.Schedule.DayStart) / 60
	endMinutes := appointment.TimeToMinutes(c.Schedule.DayEnd)
	end = (endMinutes + 59) / 60
	return start, end
}

// IsWorkday returns true if the given weekday is a configured workday.
func (c *Config) IsWorkday(weekday time.Weekday) bool {
	for _, d := range c.Schedule.Workdays {
		if wd, err := dateutil.ParseWeekday(d); err == nil && wd == weekday {
			return true
		}
	}
	return false
}

// Workdays returns the configured workdays in week order.
func (c *Config) Workdays() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if c.IsWorkday(d) {
			days = append(days, d)
		}
	}
	return days
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
