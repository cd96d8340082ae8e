package store

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/agiletrack/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an in-memory SQLite DB with every collection migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.Project{},
		&models.Sprint{},
		&models.Task{},
		&models.Bug{},
		&models.TeamMember{},
		&models.TimeEntry{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func uptr(v uint) *uint { return &v }

func seedProject(t *testing.T, db *gorm.DB, name string) models.Project {
	t.Helper()
	p := models.Project{Name: name, Status: models.ProjectInProgress, Priority: models.PriorityHigh, StartDate: day0, EndDate: day0.AddDate(0, 6, 0)}
	if err := Insert(db, &p); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	return p
}

func TestInsert_AssignsIDAndTimestamps(t *testing.T) {
	db := openTestDB(t)
	p := seedProject(t, db, "Website Redesign")
	if p.ID == 0 {
		t.Fatal("ID not assigned")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	got, err := Get[models.Project](db, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Website Redesign" || got.Status != models.ProjectInProgress {
		t.Errorf("Get = %+v", got)
	}
}

func TestInsert_RejectsInvalid(t *testing.T) {
	db := openTestDB(t)
	err := Insert(db, &models.Project{Name: "", Status: "Paused", Priority: models.PriorityLow})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "store: insert project") {
		t.Errorf("error = %q", err.Error())
	}
	if n, _ := Count[models.Project](db); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := Get[models.Sprint](db, 42)
	if err == nil || !strings.Contains(err.Error(), "store: sprint not found: 42") {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestGetByIndex(t *testing.T) {
	db := openTestDB(t)
	p1 := seedProject(t, db, "A")
	p2 := seedProject(t, db, "B")
	sprints := []models.Sprint{
		{ProjectID: p1.ID, Name: "S1", Status: models.SprintCompleted},
		{ProjectID: p1.ID, Name: "S2", Status: models.SprintActive},
		{ProjectID: p2.ID, Name: "S3", Status: models.SprintPlanning},
	}
	if err := BulkInsert(db, sprints); err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}

	got, err := GetByIndex[models.Sprint](db, "project_id", p1.ID)
	if err != nil {
		t.Fatalf("GetByIndex: %v", err)
	}
	if len(got) != 2 || got[0].Name != "S1" || got[1].Name != "S2" {
		t.Errorf("GetByIndex = %+v", got)
	}

	active, err := GetByIndex[models.Sprint](db, "status", models.SprintActive)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].Name != "S2" {
		t.Errorf("active = %+v", active)
	}
}

func TestGetRange(t *testing.T) {
	db := openTestDB(t)
	p := seedProject(t, db, "A")
	var entries []models.TimeEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, models.TimeEntry{Kind: models.EntryTask, ItemID: 1, ProjectID: p.ID, Date: day0.AddDate(0, 0, i), Hours: 1})
	}
	if err := BulkInsert(db, entries); err != nil {
		t.Fatal(err)
	}

	got, err := GetRange[models.TimeEntry](db, "date", day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("GetRange: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}

	open, err := GetRange[models.TimeEntry](db, "date", day0.AddDate(0, 0, 3), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(open) != 2 {
		t.Errorf("open range len = %d, want 2", len(open))
	}
}

func TestBulkInsert_AllOrNothingOnValidation(t *testing.T) {
	db := openTestDB(t)
	members := []models.TeamMember{
		{Name: "Jane Smith", Role: "Developer", Capacity: 40},
		{Name: "", Capacity: 10},
	}
	if err := BulkInsert(db, members); err == nil {
		t.Fatal("expected error")
	}
	if n, _ := Count[models.TeamMember](db); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	db := openTestDB(t)
	p := seedProject(t, db, "A")

	if err := Update[models.Project](db, p.ID, map[string]any{"status": models.ProjectOnHold}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := Get[models.Project](db, p.ID)
	if got.Status != models.ProjectOnHold {
		t.Errorf("status = %q, want On Hold", got.Status)
	}

	if err := Update[models.Project](db, 999, map[string]any{"name": "x"}); err == nil {
		t.Error("expected not found on update")
	}

	if err := Delete[models.Project](db, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := Delete[models.Project](db, p.ID); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("second delete err = %v, want not found", err)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := openTestDB(t)
	p := seedProject(t, src, "Website Redesign")
	m := models.TeamMember{Name: "Jane Smith", Role: "Developer", Capacity: 40}
	if err := Insert(src, &m); err != nil {
		t.Fatal(err)
	}
	s := models.Sprint{ProjectID: p.ID, Name: "Sprint 1", Status: models.SprintActive, CommittedPoints: 40}
	if err := Insert(src, &s); err != nil {
		t.Fatal(err)
	}
	task := models.Task{ProjectID: p.ID, SprintID: uptr(s.ID), Title: "Design", Status: models.TaskDone, Priority: models.PriorityHigh, AssigneeID: uptr(m.ID), ActualHours: 12}
	if err := Insert(src, &task); err != nil {
		t.Fatal(err)
	}
	entry := models.TimeEntry{Kind: models.EntryTask, ItemID: task.ID, ProjectID: p.ID, SprintID: uptr(s.ID), Date: day0, Hours: 12}
	if err := Insert(src, &entry); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	exported, err := Export(src, &buf)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exported.Counts()["tasks"] != 1 {
		t.Errorf("exported counts = %v", exported.Counts())
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	for _, key := range []string{"projects", "sprints", "tasks", "bugs", "timeEntries", "team"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("export missing key %q", key)
		}
	}

	dst := openTestDB(t)
	seedProject(t, dst, "Stale")
	if _, err := Import(dst, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Import: %v", err)
	}
	snap, err := LoadSnapshot(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Projects) != 1 || snap.Projects[0].Name != "Website Redesign" {
		t.Errorf("projects = %+v", snap.Projects)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].AssigneeID == nil || *snap.Tasks[0].AssigneeID != m.ID {
		t.Errorf("tasks = %+v", snap.Tasks)
	}
	if len(snap.TimeEntries) != 1 || snap.TimeEntries[0].Hours != 12 {
		t.Errorf("time entries = %+v", snap.TimeEntries)
	}
}

func TestDecode_LegacyFields(t *testing.T) {
	doc := `{
	  "projects": [{"id": 1, "name": "Website Redesign", "status": "In Progress", "priority": "High"}],
	  "sprints": [{"id": 1, "projectId": 1, "name": "Sprint 1", "status": "Active", "committedPoints": 40, "acceptedPoints": 38}],
	  "tasks": [{"id": 1, "projectId": 1, "sprintId": 1, "title": "Design", "status": "Done", "priority": "High", "assignee": "Jane Smith"}],
	  "bugs": [{"id": 1, "projectId": 1, "title": "Crash", "status": "New", "priority": "Low", "severity": "Low", "assignee": "Nobody"}],
	  "timeEntries": [{"id": 1, "taskId": 1, "projectId": 1, "date": "2024-03-01T00:00:00Z", "hours": 3}],
	  "team": [{"id": 7, "name": "Jane Smith", "role": "Developer", "capacity": 40}]
	}`
	s, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Tasks[0].AssigneeID == nil || *s.Tasks[0].AssigneeID != 7 {
		t.Errorf("task assignee = %v, want 7", s.Tasks[0].AssigneeID)
	}
	if s.Bugs[0].AssigneeID != nil {
		t.Errorf("unknown assignee name should resolve to nil, got %v", *s.Bugs[0].AssigneeID)
	}
	e := s.TimeEntries[0]
	if e.Kind != models.EntryTask || e.ItemID != 1 {
		t.Errorf("time entry = %+v, want task 1", e)
	}
}

func TestImport_InvalidDocumentLeavesDataIntact(t *testing.T) {
	db := openTestDB(t)
	seedProject(t, db, "Keep Me")

	bad := `{"projects": [{"id": 5, "name": "", "status": "Nope", "priority": "High"}]}`
	if _, err := Import(db, strings.NewReader(bad)); err == nil {
		t.Fatal("expected import error")
	}
	all, err := GetAll[models.Project](db)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Name != "Keep Me" {
		t.Errorf("projects after failed import = %+v", all)
	}

	if _, err := Import(db, strings.NewReader("not json")); err == nil {
		t.Error("expected decode error")
	}
}
