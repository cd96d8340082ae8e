package digest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zulandar/agiletrack/internal/config"
	"github.com/zulandar/agiletrack/internal/db"
	"github.com/zulandar/agiletrack/internal/metrics"
	"github.com/zulandar/agiletrack/internal/models"
	"gorm.io/gorm"
)

var testNow = time.Date(2023, 2, 15, 9, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	mu   sync.Mutex
	name string
	err  error
	got  []Message
	sent chan struct{}
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Send(ctx context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, msg)
	if f.sent != nil {
		select {
		case f.sent <- struct{}{}:
		default:
		}
	}
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func seededDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.SeedSample(gdb); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return gdb
}

func TestBuild(t *testing.T) {
	d := &metrics.Dashboard{
		GeneratedAt: testNow,
		Overview:    metrics.Overview{TotalProjects: 3, ActiveProjects: 1, ActiveSprints: 1, TasksInProgress: 2, OpenBugs: 2, LoggedHours: 42.5},
		Projects: []metrics.ProjectSummary{
			{Name: "Website Redesign", Health: models.HealthAtRisk},
			{Name: "Mobile App", Health: models.HealthNotStarted},
		},
		Sprints: []metrics.SprintSummary{
			{Name: "Sprint 2", Status: models.SprintCompleted},
			{Name: "Sprint 3", Status: models.SprintActive, Committed: 50, Accepted: 12, Completion: 24, DaysRemaining: 8},
		},
		Team: []metrics.Allocation{
			{Name: "Jane Smith", Utilization: 110, OverAllocated: true},
			{Name: "John Doe", Utilization: 60},
		},
		Velocity:    []metrics.VelocityPoint{{Name: "Sprint 2", Accepted: 30}},
		Diagnostics: metrics.Diagnostics{OrphanTasks: 2},
	}

	msg := Build(d)
	for _, want := range []string{
		"**Projects**: 3 total, 1 in progress, 0 completed",
		"42.5h logged",
		"Sprint 3: 12/50 pts (24%), 8 days left",
		"Website Redesign: At Risk",
		"**Over-allocated**: Jane Smith (110%)",
		"**Data issues**: 2 records skipped",
	} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q:\n%s", want, msg.Body)
		}
	}
	if strings.Contains(msg.Body, "Sprint 2:") {
		t.Error("completed sprints should not be listed as active")
	}
	if msg.Color != ColorAtRisk {
		t.Errorf("Color = %q, want %q", msg.Color, ColorAtRisk)
	}
	if len(msg.Fields) != 3 || msg.Fields[2].Value != "30 pts" {
		t.Errorf("fields = %+v", msg.Fields)
	}
}

func TestColorFor(t *testing.T) {
	tests := []struct {
		name   string
		health []models.Health
		want   string
	}{
		{"none", nil, ColorInfo},
		{"only new", []models.Health{models.HealthNew}, ColorInfo},
		{"healthy", []models.Health{models.HealthHealthy, models.HealthNew}, ColorHealthy},
		{"at risk wins over healthy", []models.Health{models.HealthHealthy, models.HealthAtRisk}, ColorAtRisk},
		{"critical wins", []models.Health{models.HealthAtRisk, models.HealthCritical, models.HealthHealthy}, ColorCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ps []metrics.ProjectSummary
			for _, h := range tt.health {
				ps = append(ps, metrics.ProjectSummary{Health: h})
			}
			if got := colorFor(ps); got != tt.want {
				t.Errorf("colorFor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseSchedule(t *testing.T) {
	if _, err := ParseSchedule("0 9 * * 1"); err != nil {
		t.Errorf("valid schedule: %v", err)
	}
	if _, err := ParseSchedule("every monday"); err == nil {
		t.Error("expected error for invalid schedule")
	}
	if _, err := ParseSchedule("0 0 9 * * 1"); err == nil {
		t.Error("expected error for 6-field schedule")
	}
}

func TestUntilNext(t *testing.T) {
	sched, _ := ParseSchedule("0 9 * * *")
	now := time.Date(2023, 2, 15, 8, 30, 0, 0, time.UTC)
	if got := untilNext(sched, now); got != 30*time.Minute {
		t.Errorf("untilNext = %v, want 30m", got)
	}
}

func TestNewScheduler_Validation(t *testing.T) {
	gdb := seededDB(t)
	n := &fakeNotifier{name: "fake"}
	tests := []struct {
		name string
		opts SchedulerOpts
		want string
	}{
		{"no db", SchedulerOpts{Schedule: "0 9 * * 1", Notifiers: []Notifier{n}}, "db is required"},
		{"no notifiers", SchedulerOpts{DB: gdb, Schedule: "0 9 * * 1"}, "at least one notifier"},
		{"bad schedule", SchedulerOpts{DB: gdb, Schedule: "nope", Notifiers: []Notifier{n}}, "parse schedule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScheduler(tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want to contain %q", err, tt.want)
			}
		})
	}
}

func TestSendOnce_DeliversToAll(t *testing.T) {
	gdb := seededDB(t)
	good := &fakeNotifier{name: "good"}
	bad := &fakeNotifier{name: "bad", err: errors.New("boom")}
	also := &fakeNotifier{name: "also"}

	s, err := NewScheduler(SchedulerOpts{
		DB:        gdb,
		Schedule:  "0 9 * * 1",
		Notifiers: []Notifier{good, bad, also},
		Now:       func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatal(err)
	}

	err = s.SendOnce(context.Background())
	if err == nil || !strings.Contains(err.Error(), "send via bad: boom") {
		t.Errorf("err = %v, want bad notifier failure", err)
	}
	if good.count() != 1 || also.count() != 1 {
		t.Errorf("deliveries = %d/%d, want 1/1", good.count(), also.count())
	}
	if !strings.Contains(good.got[0].Body, "Website Redesign") {
		t.Errorf("digest body = %q", good.got[0].Body)
	}
}

func TestCompose_InvalidFilter(t *testing.T) {
	gdb := seededDB(t)
	s, _ := NewScheduler(SchedulerOpts{
		DB:        gdb,
		Schedule:  "0 9 * * 1",
		Notifiers: []Notifier{&fakeNotifier{name: "fake"}},
		Filter:    map[string]string{"dateRange": "forever"},
	})
	if _, err := s.Compose(context.Background()); err == nil {
		t.Error("expected error for invalid filter")
	}
}

func TestRun_FiresAndStops(t *testing.T) {
	gdb := seededDB(t)
	n := &fakeNotifier{name: "fake", sent: make(chan struct{}, 1)}
	// 20ms before the top of a minute, so "* * * * *" fires almost at once.
	now := time.Date(2023, 2, 15, 8, 59, 59, 980_000_000, time.UTC)
	s, err := NewScheduler(SchedulerOpts{
		DB:        gdb,
		Schedule:  "* * * * *",
		Notifiers: []Notifier{n},
		Now:       func() time.Time { return now },
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-n.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("digest was not sent")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
