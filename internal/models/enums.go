package models

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "Not Started"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectOnHold     ProjectStatus = "On Hold"
	ProjectCompleted  ProjectStatus = "Completed"
)

// ProjectStatuses lists every project status in display order.
var ProjectStatuses = []ProjectStatus{ProjectNotStarted, ProjectInProgress, ProjectOnHold, ProjectCompleted}

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectNotStarted, ProjectInProgress, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

// Priority ranks projects, tasks and bugs.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank orders priorities from most urgent (0) to least urgent (3).
// Unknown priorities rank -1.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return -1
}

// SprintStatus is the lifecycle state of a sprint.
type SprintStatus string

const (
	SprintPlanning  SprintStatus = "Planning"
	SprintActive    SprintStatus = "Active"
	SprintCompleted SprintStatus = "Completed"
)

// Valid reports whether s is a known sprint status.
func (s SprintStatus) Valid() bool {
	switch s {
	case SprintPlanning, SprintActive, SprintCompleted:
		return true
	}
	return false
}

// TaskStatus is the workflow state shared by tasks and bugs.
type TaskStatus string

const (
	TaskNew        TaskStatus = "New"
	TaskInProgress TaskStatus = "In Progress"
	TaskTesting    TaskStatus = "Testing"
	TaskDone       TaskStatus = "Done"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNew, TaskInProgress, TaskTesting, TaskDone:
		return true
	}
	return false
}

// Severity grades bug impact. It shares the priority vocabulary.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// EntryKind discriminates what a time entry was logged against.
type EntryKind string

const (
	EntryTask EntryKind = "task"
	EntryBug  EntryKind = "bug"
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	return k == EntryTask || k == EntryBug
}

// Health summarizes a project's sprint delivery reliability. It is derived,
// never stored.
type Health string

const (
	HealthHealthy    Health = "Healthy"
	HealthAtRisk     Health = "At Risk"
	HealthCritical   Health = "Critical"
	HealthNew        Health = "New"
	HealthNotStarted Health = "Not Started"
)
