package models

import "time"

// Project is the top-level container for sprints, tasks and bugs.
type Project struct {
	ID        uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string        `gorm:"size:128;not null" json:"name"`
	Status    ProjectStatus `gorm:"size:16;default:'Not Started';index" json:"status"`
	Priority  Priority      `gorm:"size:16;default:Medium;index" json:"priority"`
	StartDate time.Time     `gorm:"index" json:"startDate"`
	EndDate   time.Time     `gorm:"index" json:"endDate"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	Sprints []Sprint `gorm:"foreignKey:ProjectID" json:"-"`
	Tasks   []Task   `gorm:"foreignKey:ProjectID" json:"-"`
	Bugs    []Bug    `gorm:"foreignKey:ProjectID" json:"-"`
}
