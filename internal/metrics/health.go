package metrics

import (
	"math"

	"github.com/zulandar/agiletrack/internal/models"
)

// ProjectSummary is the derived view of one project.
type ProjectSummary struct {
	ProjectID         uint                 `json:"projectId"`
	Name              string               `json:"name"`
	Status            models.ProjectStatus `json:"status"`
	Priority          models.Priority      `json:"priority"`
	Health            models.Health        `json:"health"`
	Sprints           int                  `json:"sprints"`
	CompletedSprints  int                  `json:"completedSprints"`
	AverageCompletion int                  `json:"averageCompletion"`
	OpenTasks         int                  `json:"openTasks"`
	OpenBugs          int                  `json:"openBugs"`
}

// ClassifyHealth maps a mean accepted/committed ratio onto a health label.
func ClassifyHealth(rate float64) models.Health {
	switch {
	case rate >= HealthyThreshold:
		return models.HealthHealthy
	case rate >= AtRiskThreshold:
		return models.HealthAtRisk
	default:
		return models.HealthCritical
	}
}

// completionRate returns the mean accepted/committed ratio over the
// project's Completed sprints and how many sprints the project has in total
// and completed. A completed sprint with nothing committed counts as 0.
func (e *Engine) completionRate(projectID uint, sprints []models.Sprint, tasks []models.Task, bugs []models.Bug) (rate float64, total, completed int, err error) {
	var sum float64
	for _, s := range sprints {
		if s.ProjectID != projectID {
			continue
		}
		total++
		if s.Status != models.SprintCompleted {
			continue
		}
		completed++
		if s.CommittedPoints <= 0 {
			continue
		}
		accepted, err := e.AcceptedPoints(s, tasks, bugs)
		if err != nil {
			return 0, 0, 0, err
		}
		sum += float64(accepted) / float64(s.CommittedPoints)
	}
	if completed == 0 {
		return 0, total, 0, nil
	}
	return sum / float64(completed), total, completed, nil
}

// ProjectHealth labels a project by its sprint delivery record: Not Started
// with no sprints, New with no Completed sprint, otherwise by the mean
// accepted/committed ratio of its Completed sprints.
func (e *Engine) ProjectHealth(project models.Project, sprints []models.Sprint, tasks []models.Task, bugs []models.Bug) (models.Health, error) {
	rate, total, completed, err := e.completionRate(project.ID, sprints, tasks, bugs)
	if err != nil {
		return "", err
	}
	return healthOf(rate, total, completed), nil
}

func healthOf(rate float64, total, completed int) models.Health {
	switch {
	case total == 0:
		return models.HealthNotStarted
	case completed == 0:
		return models.HealthNew
	default:
		return ClassifyHealth(rate)
	}
}

// ProjectSummaries derives a summary for every project in the snapshot.
func (e *Engine) ProjectSummaries(s models.Snapshot) ([]ProjectSummary, error) {
	return e.projectSummaries(s, s)
}

// projectSummaries summarizes the projects of view. Health is rated over
// every sprint and work item in all; open counts come from view.
func (e *Engine) projectSummaries(view, all models.Snapshot) ([]ProjectSummary, error) {
	out := make([]ProjectSummary, 0, len(view.Projects))
	for _, p := range view.Projects {
		rate, total, completed, err := e.completionRate(p.ID, all.Sprints, all.Tasks, all.Bugs)
		if err != nil {
			return nil, err
		}
		ps := ProjectSummary{
			ProjectID:         p.ID,
			Name:              p.Name,
			Status:            p.Status,
			Priority:          p.Priority,
			Health:            healthOf(rate, total, completed),
			Sprints:           total,
			CompletedSprints:  completed,
			AverageCompletion: int(math.Round(rate * 100)),
		}
		for _, t := range view.Tasks {
			if t.ProjectID == p.ID && t.Status.Valid() && t.Status != models.TaskDone {
				ps.OpenTasks++
			}
		}
		for _, b := range view.Bugs {
			if b.ProjectID == p.ID && b.Status.Valid() && b.Status != models.TaskDone {
				ps.OpenBugs++
			}
		}
		out = append(out, ps)
	}
	return out, nil
}
