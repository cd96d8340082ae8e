package models

import "time"

// TimeEntry records hours logged against exactly one task or bug. Project
// and sprint ids are copied from the item at logging time.
type TimeEntry struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind        EntryKind `gorm:"size:8;not null;default:task;index:idx_entry_item" json:"kind"`
	ItemID      uint      `gorm:"not null;index:idx_entry_item" json:"itemId"`
	ProjectID   uint      `gorm:"index" json:"projectId"`
	SprintID    *uint     `gorm:"index" json:"sprintId"`
	Date        time.Time `gorm:"index" json:"date"`
	Hours       float64   `gorm:"not null" json:"hours"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
