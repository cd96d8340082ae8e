package filter

import (
	"time"

	"github.com/zulandar/agiletrack/internal/models"
)

func deref(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}

// ProjectFields exposes a project's status, priority, own id and date span.
func ProjectFields(p models.Project) Fields {
	return Fields{
		Dims:      DimStatus | DimPriority | DimProject | DimDate,
		Status:    string(p.Status),
		Priority:  string(p.Priority),
		ProjectID: p.ID,
		Dates:     []time.Time{p.StartDate, p.EndDate},
	}
}

// SprintFields exposes a sprint's status, project, own id and date span.
func SprintFields(s models.Sprint) Fields {
	return Fields{
		Dims:      DimStatus | DimProject | DimSprint | DimDate,
		Status:    string(s.Status),
		ProjectID: s.ProjectID,
		SprintID:  s.ID,
		Dates:     []time.Time{s.StartDate, s.EndDate},
	}
}

// TaskFields exposes a task's workflow fields and creation date.
func TaskFields(t models.Task) Fields {
	return Fields{
		Dims:       DimStatus | DimPriority | DimProject | DimSprint | DimAssignee | DimDate,
		Status:     string(t.Status),
		Priority:   string(t.Priority),
		ProjectID:  t.ProjectID,
		SprintID:   deref(t.SprintID),
		AssigneeID: deref(t.AssigneeID),
		Dates:      []time.Time{t.CreatedAt},
	}
}

// BugFields exposes a bug's workflow fields, severity and creation date.
func BugFields(b models.Bug) Fields {
	return Fields{
		Dims:       DimStatus | DimPriority | DimSeverity | DimProject | DimSprint | DimAssignee | DimDate,
		Status:     string(b.Status),
		Priority:   string(b.Priority),
		Severity:   string(b.Severity),
		ProjectID:  b.ProjectID,
		SprintID:   deref(b.SprintID),
		AssigneeID: deref(b.AssigneeID),
		Dates:      []time.Time{b.CreatedAt},
	}
}

// TimeEntryFields exposes an entry's project, sprint and logged date.
func TimeEntryFields(e models.TimeEntry) Fields {
	return Fields{
		Dims:      DimProject | DimSprint | DimDate,
		ProjectID: e.ProjectID,
		SprintID:  deref(e.SprintID),
		Dates:     []time.Time{e.Date},
	}
}

// Projects filters projects.
func Projects(items []models.Project, spec Spec, now time.Time) ([]models.Project, error) {
	return Apply(items, spec, now, ProjectFields)
}

// Sprints filters sprints.
func Sprints(items []models.Sprint, spec Spec, now time.Time) ([]models.Sprint, error) {
	return Apply(items, spec, now, SprintFields)
}

// Tasks filters tasks.
func Tasks(items []models.Task, spec Spec, now time.Time) ([]models.Task, error) {
	return Apply(items, spec, now, TaskFields)
}

// Bugs filters bugs.
func Bugs(items []models.Bug, spec Spec, now time.Time) ([]models.Bug, error) {
	return Apply(items, spec, now, BugFields)
}

// TimeEntries filters time entries.
func TimeEntries(items []models.TimeEntry, spec Spec, now time.Time) ([]models.TimeEntry, error) {
	return Apply(items, spec, now, TimeEntryFields)
}

// Snapshot scopes s to the projects that pass spec. Status, priority,
// project id and date range select projects; their sprints, tasks, bugs and
// time entries follow, narrowed further only by sprint, assignee and
// severity. Records of a project that does not exist are dropped. Team
// members are copied through.
func Snapshot(s models.Snapshot, spec Spec, now time.Time) (models.Snapshot, error) {
	projectPred, err := Compile(spec, now)
	if err != nil {
		return models.Snapshot{}, err
	}
	workPred, err := Compile(spec.only(KeySprintID, KeyAssignee, KeyAssigneeID, KeySeverity), now)
	if err != nil {
		return models.Snapshot{}, err
	}

	projects := Select(s.Projects, projectPred, ProjectFields)
	keep := make(map[uint]bool, len(projects))
	for _, p := range projects {
		keep[p.ID] = true
	}
	inScope := func(f Fields) bool {
		return keep[f.ProjectID] && workPred(f)
	}

	team := make([]models.TeamMember, len(s.Team))
	copy(team, s.Team)
	return models.Snapshot{
		Projects:    projects,
		Sprints:     Select(s.Sprints, inScope, SprintFields),
		Tasks:       Select(s.Tasks, inScope, TaskFields),
		Bugs:        Select(s.Bugs, inScope, BugFields),
		TimeEntries: Select(s.TimeEntries, inScope, TimeEntryFields),
		Team:        team,
	}, nil
}
