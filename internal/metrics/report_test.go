package metrics

import (
	"errors"
	"testing"

	"github.com/zulandar/agiletrack/internal/filter"
	"github.com/zulandar/agiletrack/internal/models"
)

func reportSnapshot() models.Snapshot {
	return models.Snapshot{
		Projects: []models.Project{
			{ID: 1, Name: "Website Redesign", Status: models.ProjectInProgress, Priority: models.PriorityHigh, StartDate: now.AddDate(0, -3, 0), EndDate: now.AddDate(0, 3, 0)},
			{ID: 2, Name: "Mobile App", Status: models.ProjectNotStarted, Priority: models.PriorityMedium, StartDate: now.AddDate(0, 1, 0), EndDate: now.AddDate(0, 6, 0)},
		},
		Sprints: []models.Sprint{
			{ID: 1, ProjectID: 1, Name: "Sprint 1", Status: models.SprintCompleted, CommittedPoints: 40, StartDate: now.AddDate(0, 0, -28), EndDate: now.AddDate(0, 0, -14)},
			{ID: 2, ProjectID: 1, Name: "Sprint 2", Status: models.SprintActive, CommittedPoints: 50, StartDate: now.AddDate(0, 0, -7), EndDate: now.AddDate(0, 0, 7)},
			{ID: 3, ProjectID: 2, Name: "Planning Sprint", Status: models.SprintPlanning, CommittedPoints: 35, StartDate: now.AddDate(0, 1, 0), EndDate: now.AddDate(0, 1, 14)},
		},
		Tasks: []models.Task{
			{ID: 1, ProjectID: 1, SprintID: uptr(1), Status: models.TaskDone, Priority: models.PriorityHigh, AssigneeID: uptr(1), EstimatedHours: 40, ActualHours: 304, CreatedAt: now.AddDate(0, 0, -30)},
			{ID: 2, ProjectID: 1, SprintID: uptr(2), Status: models.TaskInProgress, Priority: models.PriorityHigh, AssigneeID: uptr(1), EstimatedHours: 16, CreatedAt: now.AddDate(0, 0, -5)},
			{ID: 3, ProjectID: 2, SprintID: uptr(3), Status: models.TaskNew, Priority: models.PriorityLow, AssigneeID: uptr(2), EstimatedHours: 8, CreatedAt: now.AddDate(0, 0, -1)},
			{ID: 4, ProjectID: 99, SprintID: uptr(1), Status: models.TaskDone, Priority: models.PriorityLow, ActualHours: 800},
		},
		Bugs: []models.Bug{
			{ID: 1, ProjectID: 1, SprintID: uptr(2), Status: models.TaskNew, Priority: models.PriorityCritical, Severity: models.SeverityCritical, CreatedAt: now.AddDate(0, 0, -2)},
		},
		TimeEntries: []models.TimeEntry{
			{ID: 1, Kind: models.EntryTask, ItemID: 2, ProjectID: 1, SprintID: uptr(2), Date: now.AddDate(0, 0, -1), Hours: 6},
			{ID: 2, Kind: models.EntryTask, ItemID: 77, ProjectID: 1, Date: now.AddDate(0, 0, -2), Hours: 1},
		},
		Team: []models.TeamMember{
			{ID: 1, Name: "Jane Smith", Role: "Developer", Capacity: 40},
			{ID: 2, Name: "John Doe", Role: "Designer", Capacity: 35},
		},
	}
}

func TestDiagnose(t *testing.T) {
	snap := reportSnapshot()
	snap.Sprints = append(snap.Sprints, models.Sprint{ID: 10, ProjectID: 42, Status: "Frozen"})
	snap.Bugs = append(snap.Bugs, models.Bug{ID: 2, ProjectID: 1, SprintID: uptr(55), Status: models.TaskNew, Priority: models.PriorityLow, Severity: models.SeverityLow})

	d := Diagnose(snap)
	want := Diagnostics{OrphanSprints: 1, OrphanTasks: 1, OrphanBugs: 1, OrphanTimeEntries: 1, UnknownValues: 1}
	if d != want {
		t.Errorf("Diagnose = %+v, want %+v", d, want)
	}
	if d.Total() != 5 {
		t.Errorf("Total = %d, want 5", d.Total())
	}
}

func TestDiagnose_Clean(t *testing.T) {
	snap := reportSnapshot()
	snap.Tasks = snap.Tasks[:3]
	snap.TimeEntries = snap.TimeEntries[:1]
	if d := Diagnose(snap); d.Total() != 0 {
		t.Errorf("Diagnose = %+v, want no problems", d)
	}
}

func TestReport_Unfiltered(t *testing.T) {
	d, err := Default().Report(reportSnapshot(), filter.Spec{}, now)
	if err != nil {
		t.Fatal(err)
	}
	if d.Overview.TotalProjects != 2 || d.Overview.ActiveSprints != 1 {
		t.Errorf("overview = %+v", d.Overview)
	}
	if len(d.Sprints) != 3 {
		t.Fatalf("sprints = %d, want 3", len(d.Sprints))
	}
	// Task 4 is Done in sprint 1 but filed under a missing project.
	if d.Sprints[0].Accepted != 38 || d.Sprints[0].Completion != 95 {
		t.Errorf("sprint 1 accepted, completion = %d, %d, want 38, 95", d.Sprints[0].Accepted, d.Sprints[0].Completion)
	}
	if d.Sprints[2].Accepted != 0 {
		t.Errorf("planning sprint accepted = %d, want 0", d.Sprints[2].Accepted)
	}
	if d.Projects[1].Health != models.HealthNew {
		t.Errorf("project 2 health = %q, want New", d.Projects[1].Health)
	}
	if len(d.Team) != 2 || d.Team[0].AllocatedHours != 56 || d.Team[0].Utilization != 140 {
		t.Errorf("team = %+v", d.Team)
	}
	if len(d.TimeSeries) != 2 {
		t.Errorf("time series = %+v", d.TimeSeries)
	}
	if len(d.Velocity) != 1 || d.Velocity[0].SprintID != 1 {
		t.Errorf("velocity = %+v", d.Velocity)
	}
	if d.Diagnostics.OrphanTasks != 1 || d.Diagnostics.OrphanTimeEntries != 1 {
		t.Errorf("diagnostics = %+v", d.Diagnostics)
	}
}

func TestReport_FilteredByProject(t *testing.T) {
	d, err := Default().Report(reportSnapshot(), filter.Spec{filter.KeyProjectID: "2"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if d.Overview.TotalProjects != 1 || len(d.Projects) != 1 || d.Projects[0].ProjectID != 2 {
		t.Errorf("projects = %+v", d.Projects)
	}
	if len(d.Sprints) != 1 || d.Sprints[0].SprintID != 3 {
		t.Errorf("sprints = %+v", d.Sprints)
	}
	if d.Team[0].AllocatedHours != 0 || d.Team[1].AllocatedHours != 8 {
		t.Errorf("team = %+v", d.Team)
	}
	if len(d.TimeSeries) != 0 {
		t.Errorf("time series = %+v, want empty", d.TimeSeries)
	}
	if d.Diagnostics.OrphanTasks != 1 {
		t.Errorf("diagnostics should cover the whole snapshot, got %+v", d.Diagnostics)
	}
}

// deliverySnapshot is one Active sprint with 50 committed points and two
// Done tasks of 20h and 12h opened a year ago.
func deliverySnapshot() models.Snapshot {
	created := now.AddDate(-1, 0, 0)
	return models.Snapshot{
		Projects: []models.Project{
			{ID: 1, Name: "Website Redesign", Status: models.ProjectInProgress, Priority: models.PriorityHigh, StartDate: now.AddDate(0, -2, 0), EndDate: now.AddDate(0, 2, 0)},
		},
		Sprints: []models.Sprint{
			{ID: 1, ProjectID: 1, Name: "Sprint 3", Status: models.SprintActive, CommittedPoints: 50, StartDate: now.AddDate(0, 0, -7), EndDate: now.AddDate(0, 0, 7)},
		},
		Tasks: []models.Task{
			{ID: 1, ProjectID: 1, SprintID: uptr(1), Status: models.TaskDone, Priority: models.PriorityHigh, AssigneeID: uptr(1), EstimatedHours: 20, ActualHours: 20, CreatedAt: created},
			{ID: 2, ProjectID: 1, SprintID: uptr(1), Status: models.TaskDone, Priority: models.PriorityLow, AssigneeID: uptr(2), EstimatedHours: 12, ActualHours: 12, CreatedAt: created},
		},
		Team: []models.TeamMember{
			{ID: 1, Name: "Jane Smith", Capacity: 40},
			{ID: 2, Name: "John Doe", Capacity: 40},
		},
	}
}

func TestReport_FiltersKeepSprintDelivery(t *testing.T) {
	tests := []struct {
		name string
		spec filter.Spec
	}{
		{"unfiltered", filter.Spec{}},
		{"project status", filter.Spec{filter.KeyStatus: string(models.ProjectInProgress)}},
		{"project priority", filter.Spec{filter.KeyPriority: string(models.PriorityHigh)}},
		{"date range", filter.Spec{filter.KeyDateRange: filter.RangeLast30Days}},
		{"this year", filter.Spec{filter.KeyDateRange: filter.RangeThisYear}},
		{"assignee", filter.Spec{filter.KeyAssigneeID: "1"}},
		{"sprint", filter.Spec{filter.KeySprintID: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Default().Report(deliverySnapshot(), tt.spec, now)
			if err != nil {
				t.Fatal(err)
			}
			if len(d.Projects) != 1 || len(d.Sprints) != 1 {
				t.Fatalf("projects, sprints = %d, %d, want 1, 1", len(d.Projects), len(d.Sprints))
			}
			if d.Sprints[0].Accepted != 4 || d.Sprints[0].Completion != 8 {
				t.Errorf("accepted, completion = %d, %d, want 4, 8", d.Sprints[0].Accepted, d.Sprints[0].Completion)
			}
			if d.Projects[0].Health != models.HealthNew {
				t.Errorf("health = %q, want New", d.Projects[0].Health)
			}
		})
	}
}

func TestReport_StatusFilterSelectsProjects(t *testing.T) {
	d, err := Default().Report(deliverySnapshot(), filter.Spec{filter.KeyStatus: string(models.SprintActive)}, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Projects) != 0 || len(d.Sprints) != 0 || d.Overview.ActiveSprints != 0 {
		t.Errorf("a sprint status matches no project: projects=%d sprints=%d", len(d.Projects), len(d.Sprints))
	}

	d, err = Default().Report(deliverySnapshot(), filter.Spec{filter.KeyStatus: string(models.ProjectOnHold)}, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Projects) != 0 || len(d.Velocity) != 0 {
		t.Errorf("on hold filter = %+v", d.Projects)
	}
}

func TestReport_AssigneeNarrowsAllocationOnly(t *testing.T) {
	d, err := Default().Report(deliverySnapshot(), filter.Spec{filter.KeyAssigneeID: "2"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if d.Team[0].AllocatedHours != 0 || d.Team[1].AllocatedHours != 12 {
		t.Errorf("team = %+v", d.Team)
	}
	if d.Sprints[0].Accepted != 4 {
		t.Errorf("accepted = %d, want 4", d.Sprints[0].Accepted)
	}
}

func TestReport_InvalidFilter(t *testing.T) {
	_, err := Default().Report(reportSnapshot(), filter.Spec{filter.KeySprintID: "two"}, now)
	if !errors.Is(err, filter.ErrInvalidSpec) {
		t.Errorf("err = %v, want ErrInvalidSpec", err)
	}
}
