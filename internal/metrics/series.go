package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/zulandar/agiletrack/internal/models"
)

// DayHours is the total logged on one calendar date.
type DayHours struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
}

// VelocityPoint is one completed sprint on the velocity chart.
type VelocityPoint struct {
	SprintID  uint      `json:"sprintId"`
	Name      string    `json:"name"`
	EndDate   time.Time `json:"endDate"`
	Committed int       `json:"committedPoints"`
	Accepted  int       `json:"acceptedPoints"`
	Added     int       `json:"addedPoints"`
	Descoped  int       `json:"descopedPoints"`
}

// HoursByDate groups entries by calendar date in each entry's location and
// returns the most recent SeriesDays dates in ascending order. Entries
// without a date are skipped.
func (e *Engine) HoursByDate(entries []models.TimeEntry) ([]DayHours, error) {
	byDay := make(map[string]*DayHours)
	for _, te := range entries {
		if te.Date.IsZero() {
			continue
		}
		if te.Hours < 0 {
			return nil, fmt.Errorf("metrics: time entry %d: negative hours %g: %w", te.ID, te.Hours, ErrInvalidInput)
		}
		key := te.Date.Format(time.DateOnly)
		d, ok := byDay[key]
		if !ok {
			y, m, day := te.Date.Date()
			d = &DayHours{Date: time.Date(y, m, day, 0, 0, 0, 0, te.Date.Location())}
			byDay[key] = d
		}
		d.Hours += te.Hours
	}

	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if n := e.seriesDays(); len(keys) > n {
		keys = keys[len(keys)-n:]
	}

	out := make([]DayHours, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byDay[k])
	}
	return out, nil
}

// Velocity returns the last VelocityWindow Completed sprints by end date,
// oldest first.
func (e *Engine) Velocity(sprints []models.Sprint, tasks []models.Task, bugs []models.Bug) ([]VelocityPoint, error) {
	var done []models.Sprint
	for _, s := range sprints {
		if s.Status == models.SprintCompleted {
			done = append(done, s)
		}
	}
	sort.SliceStable(done, func(i, j int) bool {
		if !done[i].EndDate.Equal(done[j].EndDate) {
			return done[i].EndDate.After(done[j].EndDate)
		}
		return done[i].ID > done[j].ID
	})
	if n := e.velocityWindow(); len(done) > n {
		done = done[:n]
	}

	out := make([]VelocityPoint, len(done))
	for i, s := range done {
		accepted, err := e.AcceptedPoints(s, tasks, bugs)
		if err != nil {
			return nil, err
		}
		out[len(done)-1-i] = VelocityPoint{
			SprintID:  s.ID,
			Name:      s.Name,
			EndDate:   s.EndDate,
			Committed: s.CommittedPoints,
			Accepted:  accepted,
			Added:     s.AddedPoints,
			Descoped:  s.DescopedPoints,
		}
	}
	return out, nil
}
