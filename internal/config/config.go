// Package config provides YAML-based configuration loading for Agiletrack.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level Agiletrack configuration, loaded from agiletrack.yaml.
type Config struct {
	Database       DatabaseConfig  `yaml:"database"`
	Metrics        MetricsConfig   `yaml:"metrics"`
	Dashboard      DashboardConfig `yaml:"dashboard"`
	Digest         DigestConfig    `yaml:"digest"`
	Log            LogConfig       `yaml:"log"`
	SeedSampleData bool            `yaml:"seed_sample_data"`
}

// DatabaseConfig selects and locates the entity store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or mysql
	Path   string `yaml:"path"`   // sqlite file
	DSN    string `yaml:"dsn"`    // explicit mysql DSN, overrides host/port/name/user
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Name   string `yaml:"name"`
	User   string `yaml:"user"`
}

// MetricsConfig tunes the aggregation engine.
type MetricsConfig struct {
	HoursPerPoint  float64 `yaml:"hours_per_point"`
	TimeSeriesDays int     `yaml:"time_series_days"`
	VelocityWindow int     `yaml:"velocity_window"`
}

// DashboardConfig holds the HTTP dashboard settings.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// DigestConfig controls the scheduled metrics digest.
type DigestConfig struct {
	Schedule string        `yaml:"schedule"` // 5-field cron expression
	Slack    ChannelConfig `yaml:"slack"`
	Discord  ChannelConfig `yaml:"discord"`
}

// ChannelConfig identifies a chat channel and the bot allowed to post in it.
type ChannelConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether both token and channel are set.
func (c ChannelConfig) Enabled() bool {
	return c.BotToken != "" && c.ChannelID != ""
}

// LogConfig selects the log encoding.
type LogConfig struct {
	Env string `yaml:"env"` // development or production
}

// Load reads a YAML config file from path and returns a validated Config.
// A .env file in the working directory, if present, is loaded first so its
// AGT_* variables can override file values.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	cfg := Config{SeedSampleData: true}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays AGT_* environment variables onto file values.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("AGT_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := getenv("AGT_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := getenv("AGT_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := getenv("AGT_DASHBOARD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Dashboard.Port = port
		}
	}
	if v := getenv("AGT_LOG_ENV"); v != "" {
		c.Log.Env = v
	}
	if v := getenv("AGT_SLACK_TOKEN"); v != "" {
		c.Digest.Slack.BotToken = v
	}
	if v := getenv("AGT_DISCORD_TOKEN"); v != "" {
		c.Digest.Discord.BotToken = v
	}
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "data/agiletrack.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.Name == "" {
			c.Database.Name = "agiletrack"
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
	}
	if c.Metrics.HoursPerPoint == 0 {
		c.Metrics.HoursPerPoint = 8
	}
	if c.Metrics.TimeSeriesDays == 0 {
		c.Metrics.TimeSeriesDays = 7
	}
	if c.Metrics.VelocityWindow == 0 {
		c.Metrics.VelocityWindow = 6
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.Digest.Schedule == "" {
		c.Digest.Schedule = "0 9 * * 1"
	}
	if c.Log.Env == "" {
		c.Log.Env = "development"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (want sqlite or mysql)", c.Database.Driver))
	}
	if c.Metrics.HoursPerPoint < 0 {
		errs = append(errs, "metrics.hours_per_point must be positive")
	}
	if c.Metrics.TimeSeriesDays < 0 {
		errs = append(errs, "metrics.time_series_days must be positive")
	}
	if c.Metrics.VelocityWindow < 0 {
		errs = append(errs, "metrics.velocity_window must be positive")
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		errs = append(errs, fmt.Sprintf("dashboard.port %d is out of range", c.Dashboard.Port))
	}
	switch c.Log.Env {
	case "development", "production":
	default:
		errs = append(errs, fmt.Sprintf("log.env %q is not supported (want development or production)", c.Log.Env))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
