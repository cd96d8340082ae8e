package models

import "time"

// Sprint is a time-boxed iteration within a project. Accepted points are
// derived from completed work and have no column of their own.
type Sprint struct {
	ID              uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID       uint         `gorm:"not null;index" json:"projectId"`
	Name            string       `gorm:"size:128;not null" json:"name"`
	StartDate       time.Time    `json:"startDate"`
	EndDate         time.Time    `gorm:"index" json:"endDate"`
	Status          SprintStatus `gorm:"size:16;default:Planning;index" json:"status"`
	CommittedPoints int          `gorm:"default:0" json:"committedPoints"`
	AddedPoints     int          `gorm:"default:0" json:"addedPoints"`
	DescopedPoints  int          `gorm:"default:0" json:"descopedPoints"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}
