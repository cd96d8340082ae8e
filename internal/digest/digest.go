// Package digest renders the metrics dashboard into a chat message and
// delivers it on a cron schedule to Slack, Discord, or both.
package digest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zulandar/agiletrack/internal/metrics"
	"github.com/zulandar/agiletrack/internal/models"
)

// Sidebar colors by the worst project health in the digest.
const (
	ColorHealthy  = "#36a64f"
	ColorAtRisk   = "#daa038"
	ColorCritical = "#cc0000"
	ColorInfo     = "#439fe0"
)

// Message is a platform-neutral digest ready for a Notifier.
type Message struct {
	Title  string
	Body   string
	Color  string
	Fields []Field
}

// Field is a key-value pair displayed next to the digest body.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Notifier delivers a digest to one chat platform.
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Build formats a dashboard as a digest message.
func Build(d *metrics.Dashboard) Message {
	o := d.Overview
	var lines []string
	lines = append(lines, fmt.Sprintf("**Generated**: %s", d.GeneratedAt.Format("Mon Jan 2 15:04")))
	lines = append(lines, fmt.Sprintf("**Projects**: %d total, %d in progress, %d completed",
		o.TotalProjects, o.ActiveProjects, o.CompletedProjects))
	lines = append(lines, fmt.Sprintf("**Work**: %d tasks in progress, %d open bugs, %s logged",
		o.TasksInProgress, o.OpenBugs, formatHours(o.LoggedHours)))

	if active := activeSprints(d.Sprints); len(active) > 0 {
		lines = append(lines, "", "**Active Sprints**:")
		for _, s := range active {
			lines = append(lines, fmt.Sprintf("  %s: %d/%d pts (%d%%), %d days left",
				s.Name, s.Accepted, s.Committed, s.Completion, s.DaysRemaining))
		}
	}

	if len(d.Projects) > 0 {
		lines = append(lines, "", "**Project Health**:")
		for _, p := range d.Projects {
			lines = append(lines, fmt.Sprintf("  %s: %s", p.Name, p.Health))
		}
	}

	var over []string
	for _, a := range d.Team {
		if a.OverAllocated {
			over = append(over, fmt.Sprintf("%s (%d%%)", a.Name, a.Utilization))
		}
	}
	if len(over) > 0 {
		lines = append(lines, "", "**Over-allocated**: "+strings.Join(over, ", "))
	}
	if n := d.Diagnostics.Total(); n > 0 {
		lines = append(lines, "", fmt.Sprintf("**Data issues**: %d records skipped", n))
	}

	fields := []Field{
		{Name: "Active Sprints", Value: fmt.Sprintf("%d", o.ActiveSprints), Short: true},
		{Name: "Open Bugs", Value: fmt.Sprintf("%d", o.OpenBugs), Short: true},
	}
	if len(d.Velocity) > 0 {
		last := d.Velocity[len(d.Velocity)-1]
		fields = append(fields, Field{Name: "Last Velocity", Value: fmt.Sprintf("%d pts", last.Accepted), Short: true})
	}

	return Message{
		Title:  "Agiletrack Digest",
		Body:   strings.Join(lines, "\n"),
		Color:  colorFor(d.Projects),
		Fields: fields,
	}
}

func activeSprints(sprints []metrics.SprintSummary) []metrics.SprintSummary {
	var out []metrics.SprintSummary
	for _, s := range sprints {
		if s.Status == models.SprintActive {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysRemaining < out[j].DaysRemaining })
	return out
}

func colorFor(projects []metrics.ProjectSummary) string {
	color := ColorInfo
	for _, p := range projects {
		switch p.Health {
		case models.HealthCritical:
			return ColorCritical
		case models.HealthAtRisk:
			color = ColorAtRisk
		case models.HealthHealthy:
			if color == ColorInfo {
				color = ColorHealthy
			}
		}
	}
	return color
}

func formatHours(h float64) string {
	if h == float64(int64(h)) {
		return fmt.Sprintf("%dh", int64(h))
	}
	return fmt.Sprintf("%.1fh", h)
}
