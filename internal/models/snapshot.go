package models

// Snapshot holds every collection at one point in time. Its JSON form is the
// export/import document.
type Snapshot struct {
	Projects    []Project    `json:"projects"`
	Sprints     []Sprint     `json:"sprints"`
	Tasks       []Task       `json:"tasks"`
	Bugs        []Bug        `json:"bugs"`
	TimeEntries []TimeEntry  `json:"timeEntries"`
	Team        []TeamMember `json:"team"`
}

// Counts returns the number of records per collection, keyed like the JSON
// document.
func (s Snapshot) Counts() map[string]int {
	return map[string]int{
		"projects":    len(s.Projects),
		"sprints":     len(s.Sprints),
		"tasks":       len(s.Tasks),
		"bugs":        len(s.Bugs),
		"timeEntries": len(s.TimeEntries),
		"team":        len(s.Team),
	}
}
