// Package project provides project lifecycle operations.
package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/agiletrack/internal/models"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a new project.
type CreateOpts struct {
	Name      string
	Status    models.ProjectStatus // defaults to Not Started
	Priority  models.Priority      // defaults to Medium
	StartDate time.Time
	EndDate   time.Time
}

// ListFilters holds optional filters for listing projects.
type ListFilters struct {
	Status   models.ProjectStatus
	Priority models.Priority
}

// Create validates and stores a new project.
func Create(db *gorm.DB, opts CreateOpts) (*models.Project, error) {
	if opts.Status == "" {
		opts.Status = models.ProjectNotStarted
	}
	if opts.Priority == "" {
		opts.Priority = models.PriorityMedium
	}
	p := models.Project{
		Name:      opts.Name,
		Status:    opts.Status,
		Priority:  opts.Priority,
		StartDate: opts.StartDate,
		EndDate:   opts.EndDate,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("project: create: %w", err)
	}
	return &p, nil
}

// Get retrieves a project by ID.
func Get(db *gorm.DB, id uint) (*models.Project, error) {
	var p models.Project
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project: not found: %d", id)
		}
		return nil, fmt.Errorf("project: get %d: %w", id, err)
	}
	return &p, nil
}

// List returns projects matching the filters, highest priority first.
func List(db *gorm.DB, filters ListFilters) ([]models.Project, error) {
	q := db.Model(&models.Project{})
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		q = q.Where("priority = ?", filters.Priority)
	}
	var projects []models.Project
	if err := q.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}
	return projects, nil
}

// Update applies column updates. The stored result must still validate,
// otherwise nothing is written.
func Update(db *gorm.DB, id uint, updates map[string]interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("project: update %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("project: not found: %d", id)
		}
		p, err := Get(tx, id)
		if err != nil {
			return err
		}
		return p.Validate()
	})
}

// Delete removes a project together with its sprints, tasks, bugs and time
// entries. Team members are not linked to projects and are left alone.
func Delete(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}
		for _, m := range []interface{}{&models.TimeEntry{}, &models.Bug{}, &models.Task{}, &models.Sprint{}} {
			if err := tx.Where("project_id = ?", id).Delete(m).Error; err != nil {
				return fmt.Errorf("project: delete %d dependents: %w", id, err)
			}
		}
		if err := tx.Delete(&models.Project{}, id).Error; err != nil {
			return fmt.Errorf("project: delete %d: %w", id, err)
		}
		return nil
	})
}
