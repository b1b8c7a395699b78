package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"relaybot/internal/schedule"
)

type Config struct {
	Bot      BotConfig
	Schedule ScheduleConfig
}

type BotConfig struct {
	Token    string
	SourceID string
	Targets  []string
	Timezone string
}

type ScheduleConfig struct {
	StartHour      int
	IntervalHours  int
	RebuildHour    int
	HealthInterval time.Duration
	Mode           schedule.Mode
	File           string
}

// Load reads configuration from .env file and environment variables. It
// fails on any missing required value or out-of-range schedule parameter;
// the process must not start with invalid configuration.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("BOT_TZ", "Asia/Kuala_Lumpur")
	viper.SetDefault("SCHEDULE_MODE", "oneshot")
	viper.SetDefault("START_HOUR", 8)
	viper.SetDefault("INTERVAL_HOURS", 2)
	viper.SetDefault("REBUILD_HOUR", 4)
	viper.SetDefault("HEALTH_INTERVAL", "5m")

	healthInterval, err := time.ParseDuration(viper.GetString("HEALTH_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid HEALTH_INTERVAL: %w", err)
	}

	var mode schedule.Mode
	switch strings.ToLower(viper.GetString("SCHEDULE_MODE")) {
	case "oneshot":
		mode = schedule.OneShot
	case "recurring":
		mode = schedule.Recurring
	default:
		return nil, fmt.Errorf("invalid SCHEDULE_MODE %q (want oneshot or recurring)", viper.GetString("SCHEDULE_MODE"))
	}

	cfg := &Config{
		Bot: BotConfig{
			Token:    viper.GetString("BOT_TOKEN"),
			SourceID: viper.GetString("SOURCE_CHAT_ID"),
			Targets:  splitList(viper.GetString("TARGET_CHANNELS")),
			Timezone: viper.GetString("BOT_TZ"),
		},
		Schedule: ScheduleConfig{
			StartHour:      viper.GetInt("START_HOUR"),
			IntervalHours:  viper.GetInt("INTERVAL_HOURS"),
			RebuildHour:    viper.GetInt("REBUILD_HOUR"),
			HealthInterval: healthInterval,
			Mode:           mode,
			File:           viper.GetString("SCHEDULE_FILE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Bot.SourceID == "" {
		return fmt.Errorf("SOURCE_CHAT_ID is required")
	}
	if len(c.Bot.Targets) == 0 {
		return fmt.Errorf("TARGET_CHANNELS is required")
	}
	if _, err := time.LoadLocation(c.Bot.Timezone); err != nil {
		return fmt.Errorf("invalid BOT_TZ %q: %w", c.Bot.Timezone, err)
	}
	if c.Schedule.StartHour < 0 || c.Schedule.StartHour > 23 {
		return fmt.Errorf("START_HOUR must be 0-23, got %d", c.Schedule.StartHour)
	}
	if c.Schedule.IntervalHours < 1 {
		return fmt.Errorf("INTERVAL_HOURS must be positive, got %d", c.Schedule.IntervalHours)
	}
	if c.Schedule.RebuildHour < 0 || c.Schedule.RebuildHour > 23 {
		return fmt.Errorf("REBUILD_HOUR must be 0-23, got %d", c.Schedule.RebuildHour)
	}
	if c.Schedule.HealthInterval < 0 {
		return fmt.Errorf("HEALTH_INTERVAL must not be negative")
	}
	return nil
}

// Location returns the configured time zone. Call after validation.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Bot.Timezone)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
