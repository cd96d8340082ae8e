package models

import "time"

// TeamMember is a person work can be assigned to.
type TeamMember struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Role      string    `gorm:"size:64" json:"role"`
	Capacity  int       `gorm:"default:40" json:"capacity"` // hours per week
	Avatar    string    `gorm:"size:256" json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
