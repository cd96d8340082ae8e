package metrics

import (
	"time"

	"github.com/zulandar/agiletrack/internal/filter"
	"github.com/zulandar/agiletrack/internal/models"
)

// Dashboard is every derived figure for one filter state.
type Dashboard struct {
	GeneratedAt        time.Time        `json:"generatedAt"`
	Filter             filter.Spec      `json:"filter"`
	Overview           Overview         `json:"overview"`
	StatusDistribution []StatusCount    `json:"statusDistribution"`
	Projects           []ProjectSummary `json:"projects"`
	Sprints            []SprintSummary  `json:"sprints"`
	Team               []Allocation     `json:"team"`
	TimeSeries         []DayHours       `json:"timeSeries"`
	Velocity           []VelocityPoint  `json:"velocity"`
	Diagnostics        Diagnostics      `json:"diagnostics"`
}

// Report scopes the snapshot by spec and derives the full dashboard.
// Accepted points, health and velocity are joined against every task and
// bug of a sprint, so narrowing work items never changes sprint delivery.
// Diagnostics are computed over the unfiltered snapshot.
func (e *Engine) Report(s models.Snapshot, spec filter.Spec, now time.Time) (*Dashboard, error) {
	view, err := filter.Snapshot(s, spec, now)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		GeneratedAt:        now,
		Filter:             spec,
		StatusDistribution: StatusDistribution(view.Projects),
		Diagnostics:        Diagnose(s),
	}
	if d.Overview, err = Summarize(view); err != nil {
		return nil, err
	}
	if d.Projects, err = e.projectSummaries(view, s); err != nil {
		return nil, err
	}
	if d.Sprints, err = e.Summaries(view.Sprints, s.Tasks, s.Bugs, now); err != nil {
		return nil, err
	}
	if d.Team, err = TeamAllocation(view.Team, view.Tasks, view.TimeEntries); err != nil {
		return nil, err
	}
	if d.TimeSeries, err = e.HoursByDate(view.TimeEntries); err != nil {
		return nil, err
	}
	if d.Velocity, err = e.Velocity(view.Sprints, s.Tasks, s.Bugs); err != nil {
		return nil, err
	}
	return d, nil
}
