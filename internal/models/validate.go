package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("invalid")

// fieldErrors collects validation failures for a single entity.
type fieldErrors struct {
	entity string
	errs   []string
}

func (f *fieldErrors) add(format string, args ...any) {
	f.errs = append(f.errs, fmt.Sprintf(format, args...))
}

func (f *fieldErrors) err() error {
	if len(f.errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w: %s", f.entity, ErrInvalid, strings.Join(f.errs, "; "))
}

func (f *fieldErrors) checkRange(start, end time.Time) {
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		f.add("start date %s is after end date %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
}

// Validate checks the project's required fields and enum domains.
func (p *Project) Validate() error {
	fe := &fieldErrors{entity: "project"}
	if strings.TrimSpace(p.Name) == "" {
		fe.add("name is required")
	}
	if !p.Status.Valid() {
		fe.add("unknown status %q", p.Status)
	}
	if !p.Priority.Valid() {
		fe.add("unknown priority %q", p.Priority)
	}
	fe.checkRange(p.StartDate, p.EndDate)
	return fe.err()
}

// Validate checks the sprint's required fields, enum domains and point counts.
func (s *Sprint) Validate() error {
	fe := &fieldErrors{entity: "sprint"}
	if strings.TrimSpace(s.Name) == "" {
		fe.add("name is required")
	}
	if s.ProjectID == 0 {
		fe.add("project id is required")
	}
	if !s.Status.Valid() {
		fe.add("unknown status %q", s.Status)
	}
	if s.CommittedPoints < 0 {
		fe.add("committed points must be >= 0, got %d", s.CommittedPoints)
	}
	if s.AddedPoints < 0 {
		fe.add("added points must be >= 0, got %d", s.AddedPoints)
	}
	if s.DescopedPoints < 0 {
		fe.add("descoped points must be >= 0, got %d", s.DescopedPoints)
	}
	fe.checkRange(s.StartDate, s.EndDate)
	return fe.err()
}

func validateWork(fe *fieldErrors, title string, projectID uint, status TaskStatus, priority Priority, estimated, actual float64) {
	if strings.TrimSpace(title) == "" {
		fe.add("title is required")
	}
	if projectID == 0 {
		fe.add("project id is required")
	}
	if !status.Valid() {
		fe.add("unknown status %q", status)
	}
	if !priority.Valid() {
		fe.add("unknown priority %q", priority)
	}
	if estimated < 0 {
		fe.add("estimated hours must be >= 0, got %g", estimated)
	}
	if actual < 0 {
		fe.add("actual hours must be >= 0, got %g", actual)
	}
}

// Validate checks the task's required fields, enum domains and hours.
func (t *Task) Validate() error {
	fe := &fieldErrors{entity: "task"}
	validateWork(fe, t.Title, t.ProjectID, t.Status, t.Priority, t.EstimatedHours, t.ActualHours)
	return fe.err()
}

// Validate checks the bug's required fields, enum domains and hours.
func (b *Bug) Validate() error {
	fe := &fieldErrors{entity: "bug"}
	validateWork(fe, b.Title, b.ProjectID, b.Status, b.Priority, b.EstimatedHours, b.ActualHours)
	if !b.Severity.Valid() {
		fe.add("unknown severity %q", b.Severity)
	}
	return fe.err()
}

// Validate checks the member's name and capacity.
func (m *TeamMember) Validate() error {
	fe := &fieldErrors{entity: "team member"}
	if strings.TrimSpace(m.Name) == "" {
		fe.add("name is required")
	}
	if m.Capacity < 0 {
		fe.add("capacity must be >= 0, got %d", m.Capacity)
	}
	return fe.err()
}

// Validate checks the entry's discriminator, target and hours.
func (e *TimeEntry) Validate() error {
	fe := &fieldErrors{entity: "time entry"}
	if !e.Kind.Valid() {
		fe.add("unknown kind %q", e.Kind)
	}
	if e.ItemID == 0 {
		fe.add("item id is required")
	}
	if e.Hours < 0 {
		fe.add("hours must be >= 0, got %g", e.Hours)
	}
	if e.Date.IsZero() {
		fe.add("date is required")
	}
	return fe.err()
}
