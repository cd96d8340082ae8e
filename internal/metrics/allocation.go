package metrics

import (
	"fmt"
	"math"

	"github.com/zulandar/agiletrack/internal/models"
)

// Allocation is a team member's planned and logged load against capacity.
type Allocation struct {
	MemberID       uint    `json:"memberId"`
	Name           string  `json:"name"`
	Role           string  `json:"role"`
	Capacity       int     `json:"capacity"`
	Tasks          int     `json:"tasks"`
	AllocatedHours float64 `json:"allocatedHours"`
	UsedHours      float64 `json:"usedHours"`
	ActualHours    float64 `json:"actualHours"`
	Utilization    int     `json:"utilization"`
	UsedPct        int     `json:"usedPct"`
	OverAllocated  bool    `json:"overAllocated"`
}

// BarWidth is Utilization clamped to [0, 100] for progress bars. The
// reported Utilization itself is never clamped.
func (a Allocation) BarWidth() int {
	return clampPct(a.Utilization)
}

// UsedBarWidth is UsedPct clamped to [0, 100].
func (a Allocation) UsedBarWidth() int {
	return clampPct(a.UsedPct)
}

func clampPct(v int) int {
	return max(0, min(v, 100))
}

func percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}

// MemberAllocation sums the estimated hours of tasks assigned to member
// against their weekly capacity. Used hours come from task time entries
// logged against those tasks.
func MemberAllocation(member models.TeamMember, tasks []models.Task, entries []models.TimeEntry) (Allocation, error) {
	a := Allocation{
		MemberID: member.ID,
		Name:     member.Name,
		Role:     member.Role,
		Capacity: member.Capacity,
	}
	if member.Capacity < 0 {
		return a, fmt.Errorf("metrics: team member %d: negative capacity %d: %w", member.ID, member.Capacity, ErrInvalidInput)
	}

	assigned := make(map[uint]bool)
	for _, t := range tasks {
		if !sameID(t.AssigneeID, member.ID) {
			continue
		}
		if t.EstimatedHours < 0 || t.ActualHours < 0 {
			return a, fmt.Errorf("metrics: task %d: negative hours: %w", t.ID, ErrInvalidInput)
		}
		assigned[t.ID] = true
		a.Tasks++
		a.AllocatedHours += t.EstimatedHours
		a.ActualHours += t.ActualHours
	}
	for _, e := range entries {
		if e.Kind != models.EntryTask || !assigned[e.ItemID] {
			continue
		}
		if e.Hours < 0 {
			return a, fmt.Errorf("metrics: time entry %d: negative hours %g: %w", e.ID, e.Hours, ErrInvalidInput)
		}
		a.UsedHours += e.Hours
	}

	a.Utilization = percent(a.AllocatedHours, float64(member.Capacity))
	a.UsedPct = percent(a.UsedHours, a.AllocatedHours)
	a.OverAllocated = a.Utilization > 100
	return a, nil
}

// TeamAllocation derives an allocation for every member, in input order.
func TeamAllocation(members []models.TeamMember, tasks []models.Task, entries []models.TimeEntry) ([]Allocation, error) {
	out := make([]Allocation, 0, len(members))
	for _, m := range members {
		a, err := MemberAllocation(m, tasks, entries)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
