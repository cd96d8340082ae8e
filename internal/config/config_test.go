package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
database:
  driver: mysql
  host: 10.0.0.5
  port: 3307
  name: agiletrack_team
  user: tracker

metrics:
  hours_per_point: 6
  time_series_days: 14
  velocity_window: 4

dashboard:
  port: 9090

digest:
  schedule: "30 8 * * 1-5"
  slack:
    bot_token: xoxb-test
    channel_id: C0123
  discord:
    bot_token: discord-test
    channel_id: "998877"

log:
  env: production

seed_sample_data: false
`

const minimalYAML = `
database:
  path: /tmp/agt.db
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Driver != "mysql" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "mysql")
	}
	if cfg.Database.Host != "10.0.0.5" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "10.0.0.5")
	}
	if cfg.Database.Port != 3307 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 3307)
	}
	if cfg.Database.Name != "agiletrack_team" {
		t.Errorf("Database.Name = %q, want %q", cfg.Database.Name, "agiletrack_team")
	}
	if cfg.Database.User != "tracker" {
		t.Errorf("Database.User = %q, want %q", cfg.Database.User, "tracker")
	}
	if cfg.Metrics.HoursPerPoint != 6 {
		t.Errorf("Metrics.HoursPerPoint = %v, want 6", cfg.Metrics.HoursPerPoint)
	}
	if cfg.Metrics.TimeSeriesDays != 14 {
		t.Errorf("Metrics.TimeSeriesDays = %d, want 14", cfg.Metrics.TimeSeriesDays)
	}
	if cfg.Metrics.VelocityWindow != 4 {
		t.Errorf("Metrics.VelocityWindow = %d, want 4", cfg.Metrics.VelocityWindow)
	}
	if cfg.Dashboard.Port != 9090 {
		t.Errorf("Dashboard.Port = %d, want 9090", cfg.Dashboard.Port)
	}
	if cfg.Digest.Schedule != "30 8 * * 1-5" {
		t.Errorf("Digest.Schedule = %q", cfg.Digest.Schedule)
	}
	if !cfg.Digest.Slack.Enabled() {
		t.Error("Digest.Slack should be enabled")
	}
	if cfg.Digest.Discord.ChannelID != "998877" {
		t.Errorf("Digest.Discord.ChannelID = %q, want %q", cfg.Digest.Discord.ChannelID, "998877")
	}
	if cfg.Log.Env != "production" {
		t.Errorf("Log.Env = %q, want production", cfg.Log.Env)
	}
	if cfg.SeedSampleData {
		t.Error("SeedSampleData = true, want false")
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.Path != "/tmp/agt.db" {
		t.Errorf("Database.Path = %q, want /tmp/agt.db", cfg.Database.Path)
	}
	if cfg.Metrics.HoursPerPoint != 8 {
		t.Errorf("Metrics.HoursPerPoint = %v, want 8", cfg.Metrics.HoursPerPoint)
	}
	if cfg.Metrics.TimeSeriesDays != 7 {
		t.Errorf("Metrics.TimeSeriesDays = %d, want 7", cfg.Metrics.TimeSeriesDays)
	}
	if cfg.Metrics.VelocityWindow != 6 {
		t.Errorf("Metrics.VelocityWindow = %d, want 6", cfg.Metrics.VelocityWindow)
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("Dashboard.Port = %d, want 8080", cfg.Dashboard.Port)
	}
	if cfg.Digest.Schedule != "0 9 * * 1" {
		t.Errorf("Digest.Schedule = %q, want %q", cfg.Digest.Schedule, "0 9 * * 1")
	}
	if cfg.Digest.Slack.Enabled() || cfg.Digest.Discord.Enabled() {
		t.Error("chat channels should be disabled by default")
	}
	if cfg.Log.Env != "development" {
		t.Errorf("Log.Env = %q, want development", cfg.Log.Env)
	}
	if !cfg.SeedSampleData {
		t.Error("SeedSampleData should default to true")
	}
}

func TestParse_EmptyUsesSqliteDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "data/agiletrack.db" {
		t.Errorf("Database.Path = %q, want data/agiletrack.db", cfg.Database.Path)
	}
}

func TestParse_MySQLDefaults(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  driver: mysql\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "127.0.0.1" || cfg.Database.Port != 3306 {
		t.Errorf("mysql host/port = %s:%d, want 127.0.0.1:3306", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Database.Name != "agiletrack" || cfg.Database.User != "root" {
		t.Errorf("mysql name/user = %q/%q", cfg.Database.Name, cfg.Database.User)
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("AGT_DB_PATH", "/var/lib/agt/override.db")
	t.Setenv("AGT_DASHBOARD_PORT", "7070")
	t.Setenv("AGT_LOG_ENV", "production")
	t.Setenv("AGT_SLACK_TOKEN", "xoxb-env")

	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Path != "/var/lib/agt/override.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.Dashboard.Port != 7070 {
		t.Errorf("Dashboard.Port = %d, want 7070", cfg.Dashboard.Port)
	}
	if cfg.Log.Env != "production" {
		t.Errorf("Log.Env = %q, want production", cfg.Log.Env)
	}
	if cfg.Digest.Slack.BotToken != "xoxb-env" {
		t.Errorf("Digest.Slack.BotToken = %q, want xoxb-env", cfg.Digest.Slack.BotToken)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unsupported driver",
			yaml: "database:\n  driver: postgres\n",
			want: `database.driver "postgres" is not supported`,
		},
		{
			name: "negative hours per point",
			yaml: "metrics:\n  hours_per_point: -8\n",
			want: "metrics.hours_per_point must be positive",
		},
		{
			name: "port out of range",
			yaml: "dashboard:\n  port: 70000\n",
			want: "dashboard.port 70000 is out of range",
		},
		{
			name: "unknown log env",
			yaml: "log:\n  env: staging\n",
			want: `log.env "staging" is not supported`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("database: [unclosed"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("error = %q, want config: parse prefix", err.Error())
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agiletrack.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/agt.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/agiletrack.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want config: read prefix", err.Error())
	}
}
