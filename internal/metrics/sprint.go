package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/zulandar/agiletrack/internal/models"
)

// SprintSummary is the derived view of one sprint.
type SprintSummary struct {
	SprintID      uint                `json:"sprintId"`
	ProjectID     uint                `json:"projectId"`
	Name          string              `json:"name"`
	Status        models.SprintStatus `json:"status"`
	StartDate     time.Time           `json:"startDate"`
	EndDate       time.Time           `json:"endDate"`
	Committed     int                 `json:"committedPoints"`
	Accepted      int                 `json:"acceptedPoints"`
	Added         int                 `json:"addedPoints"`
	Descoped      int                 `json:"descopedPoints"`
	Completion    int                 `json:"completion"`
	DaysRemaining int                 `json:"daysRemaining"`
}

// CompletedHours sums actual hours of Done tasks and bugs in the sprint.
// Work filed under another project is not counted.
func CompletedHours(sprint models.Sprint, tasks []models.Task, bugs []models.Bug) (float64, error) {
	var total float64
	for _, t := range tasks {
		if t.ProjectID != sprint.ProjectID || !sameID(t.SprintID, sprint.ID) || t.Status != models.TaskDone {
			continue
		}
		if t.ActualHours < 0 {
			return 0, fmt.Errorf("metrics: task %d: negative actual hours %g: %w", t.ID, t.ActualHours, ErrInvalidInput)
		}
		total += t.ActualHours
	}
	for _, b := range bugs {
		if b.ProjectID != sprint.ProjectID || !sameID(b.SprintID, sprint.ID) || b.Status != models.TaskDone {
			continue
		}
		if b.ActualHours < 0 {
			return 0, fmt.Errorf("metrics: bug %d: negative actual hours %g: %w", b.ID, b.ActualHours, ErrInvalidInput)
		}
		total += b.ActualHours
	}
	return total, nil
}

// AcceptedPoints derives the points delivered by a sprint from the actual
// hours of its Done work. A sprint still in Planning always reports zero.
func (e *Engine) AcceptedPoints(sprint models.Sprint, tasks []models.Task, bugs []models.Bug) (int, error) {
	if sprint.Status == models.SprintPlanning {
		return 0, nil
	}
	hours, err := CompletedHours(sprint, tasks, bugs)
	if err != nil {
		return 0, err
	}
	return int(math.Round(hours / e.hoursPerPoint())), nil
}

// Completion returns accepted as a rounded percentage of committed, or 0
// when nothing was committed.
func Completion(accepted, committed int) int {
	if committed <= 0 {
		return 0
	}
	return int(math.Round(float64(accepted) / float64(committed) * 100))
}

// DaysRemaining returns the whole days left until end, rounded up, never
// negative.
func DaysRemaining(end, now time.Time) int {
	if end.IsZero() {
		return 0
	}
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// Summary derives the full summary of one sprint.
func (e *Engine) Summary(sprint models.Sprint, tasks []models.Task, bugs []models.Bug, now time.Time) (SprintSummary, error) {
	if sprint.CommittedPoints < 0 || sprint.AddedPoints < 0 || sprint.DescopedPoints < 0 {
		return SprintSummary{}, fmt.Errorf("metrics: sprint %d: negative point count: %w", sprint.ID, ErrInvalidInput)
	}
	accepted, err := e.AcceptedPoints(sprint, tasks, bugs)
	if err != nil {
		return SprintSummary{}, err
	}
	s := SprintSummary{
		SprintID:   sprint.ID,
		ProjectID:  sprint.ProjectID,
		Name:       sprint.Name,
		Status:     sprint.Status,
		StartDate:  sprint.StartDate,
		EndDate:    sprint.EndDate,
		Committed:  sprint.CommittedPoints,
		Accepted:   accepted,
		Added:      sprint.AddedPoints,
		Descoped:   sprint.DescopedPoints,
		Completion: Completion(accepted, sprint.CommittedPoints),
	}
	if sprint.Status != models.SprintCompleted {
		s.DaysRemaining = DaysRemaining(sprint.EndDate, now)
	}
	return s, nil
}

// Summaries derives a summary for every sprint, in input order.
func (e *Engine) Summaries(sprints []models.Sprint, tasks []models.Task, bugs []models.Bug, now time.Time) ([]SprintSummary, error) {
	out := make([]SprintSummary, 0, len(sprints))
	for _, sp := range sprints {
		s, err := e.Summary(sp, tasks, bugs, now)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ActiveSprint returns the first Active sprint of the project. A zero
// projectID matches any project.
func ActiveSprint(sprints []models.Sprint, projectID uint) (models.Sprint, bool) {
	for _, s := range sprints {
		if s.Status != models.SprintActive {
			continue
		}
		if projectID == 0 || s.ProjectID == projectID {
			return s, true
		}
	}
	return models.Sprint{}, false
}
