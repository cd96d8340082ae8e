// Package team provides team member lifecycle operations.
package team

import (
	"errors"
	"fmt"

	"github.com/zulandar/agiletrack/internal/models"
	"gorm.io/gorm"
)

// DefaultCapacity is the weekly hours given to members created without one.
const DefaultCapacity = 40

// CreateOpts holds parameters for adding a team member.
type CreateOpts struct {
	Name     string
	Role     string
	Capacity int // hours per week; 0 means DefaultCapacity
	Avatar   string
}

// Create validates and stores a new team member. Names are unique.
func Create(db *gorm.DB, opts CreateOpts) (*models.TeamMember, error) {
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	m := models.TeamMember{
		Name:     opts.Name,
		Role:     opts.Role,
		Capacity: opts.Capacity,
		Avatar:   opts.Avatar,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.TeamMember{}).Where("name = ?", opts.Name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("team: check name %q: %w", opts.Name, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("team: member %q already exists", opts.Name)
	}

	if err := db.Create(&m).Error; err != nil {
		return nil, fmt.Errorf("team: create: %w", err)
	}
	return &m, nil
}

// Get retrieves a team member by ID.
func Get(db *gorm.DB, id uint) (*models.TeamMember, error) {
	var m models.TeamMember
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("team: not found: %d", id)
		}
		return nil, fmt.Errorf("team: get %d: %w", id, err)
	}
	return &m, nil
}

// List returns every team member ordered by name.
func List(db *gorm.DB) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := db.Order("name ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("team: list: %w", err)
	}
	return members, nil
}

// Update applies column updates. The stored result must still validate.
func Update(db *gorm.DB, id uint, updates map[string]interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.TeamMember{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("team: update %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("team: not found: %d", id)
		}
		m, err := Get(tx, id)
		if err != nil {
			return err
		}
		return m.Validate()
	})
}

// Delete removes a team member and unassigns their tasks and bugs.
func Delete(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}
		for _, m := range []interface{}{&models.Task{}, &models.Bug{}} {
			if err := tx.Model(m).Where("assignee_id = ?", id).Update("assignee_id", nil).Error; err != nil {
				return fmt.Errorf("team: unassign work of %d: %w", id, err)
			}
		}
		if err := tx.Delete(&models.TeamMember{}, id).Error; err != nil {
			return fmt.Errorf("team: delete %d: %w", id, err)
		}
		return nil
	})
}
