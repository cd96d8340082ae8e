package metrics

import (
	"fmt"
	"sort"

	"github.com/zulandar/agiletrack/internal/models"
)

// Overview is the executive headline row.
type Overview struct {
	TotalProjects     int     `json:"totalProjects"`
	ActiveProjects    int     `json:"activeProjects"`
	CompletedProjects int     `json:"completedProjects"`
	ActiveSprints     int     `json:"activeSprints"`
	TasksInProgress   int     `json:"tasksInProgress"`
	OpenBugs          int     `json:"openBugs"`
	LoggedHours       float64 `json:"loggedHours"`
}

// StatusCount is the number of projects in one status.
type StatusCount struct {
	Status models.ProjectStatus `json:"status"`
	Count  int                  `json:"count"`
}

// Summarize counts headline figures across the snapshot.
func Summarize(s models.Snapshot) (Overview, error) {
	o := Overview{TotalProjects: len(s.Projects)}
	for _, p := range s.Projects {
		switch p.Status {
		case models.ProjectInProgress:
			o.ActiveProjects++
		case models.ProjectCompleted:
			o.CompletedProjects++
		}
	}
	for _, sp := range s.Sprints {
		if sp.Status == models.SprintActive {
			o.ActiveSprints++
		}
	}
	for _, t := range s.Tasks {
		if t.Status == models.TaskInProgress {
			o.TasksInProgress++
		}
	}
	for _, b := range s.Bugs {
		if b.Status.Valid() && b.Status != models.TaskDone {
			o.OpenBugs++
		}
	}
	for _, e := range s.TimeEntries {
		if e.Hours < 0 {
			return Overview{}, fmt.Errorf("metrics: time entry %d: negative hours %g: %w", e.ID, e.Hours, ErrInvalidInput)
		}
		o.LoggedHours += e.Hours
	}
	return o, nil
}

// StatusDistribution counts projects per known status, in display order.
// Unknown statuses are not counted.
func StatusDistribution(projects []models.Project) []StatusCount {
	counts := make(map[models.ProjectStatus]int)
	for _, p := range projects {
		counts[p.Status]++
	}
	out := make([]StatusCount, 0, len(models.ProjectStatuses))
	for _, st := range models.ProjectStatuses {
		out = append(out, StatusCount{Status: st, Count: counts[st]})
	}
	return out
}

// View selects which work items WorkItems returns.
type View string

const (
	ViewAll        View = "all"
	ViewTasks      View = "tasks"
	ViewBugs       View = "bugs"
	ViewInProgress View = "in-progress"
	ViewTesting    View = "testing"
)

// WorkItem is a task or bug in the blended work list.
type WorkItem struct {
	Kind           models.EntryKind  `json:"kind"`
	ID             uint              `json:"id"`
	ProjectID      uint              `json:"projectId"`
	SprintID       *uint             `json:"sprintId"`
	Title          string            `json:"title"`
	Status         models.TaskStatus `json:"status"`
	Priority       models.Priority   `json:"priority"`
	Severity       models.Severity   `json:"severity,omitempty"`
	AssigneeID     *uint             `json:"assigneeId"`
	EstimatedHours float64           `json:"estimatedHours"`
	ActualHours    float64           `json:"actualHours"`
}

// WorkItems blends tasks and bugs into one list ordered from Critical to Low
// priority. Unknown priorities sort last. An empty view means ViewAll.
func WorkItems(tasks []models.Task, bugs []models.Bug, view View) ([]WorkItem, error) {
	var wantTasks, wantBugs bool
	var status models.TaskStatus
	switch view {
	case ViewAll, "":
		wantTasks, wantBugs = true, true
	case ViewTasks:
		wantTasks = true
	case ViewBugs:
		wantBugs = true
	case ViewInProgress:
		wantTasks, wantBugs, status = true, true, models.TaskInProgress
	case ViewTesting:
		wantTasks, wantBugs, status = true, true, models.TaskTesting
	default:
		return nil, fmt.Errorf("metrics: unknown work item view %q: %w", view, ErrInvalidInput)
	}

	out := make([]WorkItem, 0, len(tasks)+len(bugs))
	if wantTasks {
		for _, t := range tasks {
			if status != "" && t.Status != status {
				continue
			}
			out = append(out, WorkItem{
				Kind: models.EntryTask, ID: t.ID, ProjectID: t.ProjectID, SprintID: t.SprintID,
				Title: t.Title, Status: t.Status, Priority: t.Priority, AssigneeID: t.AssigneeID,
				EstimatedHours: t.EstimatedHours, ActualHours: t.ActualHours,
			})
		}
	}
	if wantBugs {
		for _, b := range bugs {
			if status != "" && b.Status != status {
				continue
			}
			out = append(out, WorkItem{
				Kind: models.EntryBug, ID: b.ID, ProjectID: b.ProjectID, SprintID: b.SprintID,
				Title: b.Title, Status: b.Status, Priority: b.Priority, Severity: b.Severity,
				AssigneeID: b.AssigneeID, EstimatedHours: b.EstimatedHours, ActualHours: b.ActualHours,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i].Priority) < rank(out[j].Priority)
	})
	return out, nil
}

// unknownRank sorts after Low.
const unknownRank = 4

func rank(p models.Priority) int {
	if r := p.Rank(); r >= 0 {
		return r
	}
	return unknownRank
}
