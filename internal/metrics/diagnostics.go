package metrics

import "github.com/zulandar/agiletrack/internal/models"

// Diagnostics counts records that reference missing parents or carry values
// outside their enum. Such records are left out of the aggregates they would
// otherwise feed.
type Diagnostics struct {
	OrphanSprints     int `json:"orphanSprints"`
	OrphanTasks       int `json:"orphanTasks"`
	OrphanBugs        int `json:"orphanBugs"`
	OrphanTimeEntries int `json:"orphanTimeEntries"`
	UnknownValues     int `json:"unknownValues"`
}

// Total is the number of problem records found.
func (d Diagnostics) Total() int {
	return d.OrphanSprints + d.OrphanTasks + d.OrphanBugs + d.OrphanTimeEntries + d.UnknownValues
}

type idSet map[uint]struct{}

func (s idSet) has(id uint) bool {
	_, ok := s[id]
	return ok
}

// hasRef reports whether an optional reference is unset or points at a
// known id.
func (s idSet) hasRef(ref *uint) bool {
	return ref == nil || s.has(*ref)
}

func setOf[T any](items []T, id func(T) uint) idSet {
	s := make(idSet, len(items))
	for _, it := range items {
		s[id(it)] = struct{}{}
	}
	return s
}

// Diagnose scans the snapshot for referential gaps and unknown enum values.
func Diagnose(s models.Snapshot) Diagnostics {
	projects := setOf(s.Projects, func(p models.Project) uint { return p.ID })
	sprints := setOf(s.Sprints, func(sp models.Sprint) uint { return sp.ID })
	tasks := setOf(s.Tasks, func(t models.Task) uint { return t.ID })
	bugs := setOf(s.Bugs, func(b models.Bug) uint { return b.ID })
	team := setOf(s.Team, func(m models.TeamMember) uint { return m.ID })

	var d Diagnostics
	for _, p := range s.Projects {
		if !p.Status.Valid() || !p.Priority.Valid() {
			d.UnknownValues++
		}
	}
	for _, sp := range s.Sprints {
		if !projects.has(sp.ProjectID) {
			d.OrphanSprints++
		}
		if !sp.Status.Valid() {
			d.UnknownValues++
		}
	}
	for _, t := range s.Tasks {
		if !projects.has(t.ProjectID) || !sprints.hasRef(t.SprintID) || !team.hasRef(t.AssigneeID) {
			d.OrphanTasks++
		}
		if !t.Status.Valid() || !t.Priority.Valid() {
			d.UnknownValues++
		}
	}
	for _, b := range s.Bugs {
		if !projects.has(b.ProjectID) || !sprints.hasRef(b.SprintID) || !team.hasRef(b.AssigneeID) {
			d.OrphanBugs++
		}
		if !b.Status.Valid() || !b.Priority.Valid() || !b.Severity.Valid() {
			d.UnknownValues++
		}
	}
	for _, e := range s.TimeEntries {
		var item bool
		switch e.Kind {
		case models.EntryTask:
			item = tasks.has(e.ItemID)
		case models.EntryBug:
			item = bugs.has(e.ItemID)
		default:
			d.UnknownValues++
		}
		if !item || !projects.has(e.ProjectID) || !sprints.hasRef(e.SprintID) {
			d.OrphanTimeEntries++
		}
	}
	return d
}
