package models

import "time"

// Bug is a defect. It has the task shape plus a severity and an optional
// link to the task it was found in.
type Bug struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID         *uint      `gorm:"index" json:"taskId"`
	ProjectID      uint       `gorm:"not null;index" json:"projectId"`
	SprintID       *uint      `gorm:"index" json:"sprintId"`
	Title          string     `gorm:"size:256;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	Status         TaskStatus `gorm:"size:16;default:New;index" json:"status"`
	Priority       Priority   `gorm:"size:16;default:Medium;index" json:"priority"`
	Severity       Severity   `gorm:"size:16;default:Medium;index" json:"severity"`
	AssigneeID     *uint      `gorm:"index" json:"assigneeId"`
	EstimatedHours float64    `gorm:"default:0" json:"estimatedHours"`
	ActualHours    float64    `gorm:"default:0" json:"actualHours"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	Assignee *TeamMember `gorm:"foreignKey:AssigneeID" json:"-"`
}
