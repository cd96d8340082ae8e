// Package sprint provides sprint lifecycle operations.
package sprint

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/agiletrack/internal/models"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a new sprint.
type CreateOpts struct {
	ProjectID       uint
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	CommittedPoints int
}

// ListFilters holds optional filters for listing sprints.
type ListFilters struct {
	ProjectID uint
	Status    models.SprintStatus
}

// ValidTransitions maps each status to its valid next status. Sprints move
// forward one step at a time and Completed is final.
var ValidTransitions = map[models.SprintStatus][]models.SprintStatus{
	models.SprintPlanning: {models.SprintActive},
	models.SprintActive:   {models.SprintCompleted},
}

// Create stores a new sprint in Planning status. The owning project must
// exist.
func Create(db *gorm.DB, opts CreateOpts) (*models.Sprint, error) {
	s := models.Sprint{
		ProjectID:       opts.ProjectID,
		Name:            opts.Name,
		StartDate:       opts.StartDate,
		EndDate:         opts.EndDate,
		Status:          models.SprintPlanning,
		CommittedPoints: opts.CommittedPoints,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.Project{}).Where("id = ?", opts.ProjectID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("sprint: check project %d: %w", opts.ProjectID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("sprint: project not found: %d", opts.ProjectID)
	}

	if err := db.Create(&s).Error; err != nil {
		return nil, fmt.Errorf("sprint: create: %w", err)
	}
	return &s, nil
}

// Get retrieves a sprint by ID.
func Get(db *gorm.DB, id uint) (*models.Sprint, error) {
	var s models.Sprint
	if err := db.Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("sprint: not found: %d", id)
		}
		return nil, fmt.Errorf("sprint: get %d: %w", id, err)
	}
	return &s, nil
}

// List returns sprints matching the filters ordered by start date.
func List(db *gorm.DB, filters ListFilters) ([]models.Sprint, error) {
	q := db.Model(&models.Sprint{})
	if filters.ProjectID != 0 {
		q = q.Where("project_id = ?", filters.ProjectID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	var sprints []models.Sprint
	if err := q.Order("start_date ASC, id ASC").Find(&sprints).Error; err != nil {
		return nil, fmt.Errorf("sprint: list: %w", err)
	}
	return sprints, nil
}

// Update modifies sprint fields. Status transitions are validated against
// ValidTransitions and the stored result must still validate.
func Update(db *gorm.DB, id uint, updates map[string]interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		s, err := Get(tx, id)
		if err != nil {
			return err
		}

		fields := make(map[string]interface{}, len(updates))
		for k, v := range updates {
			fields[k] = v
		}

		if raw, ok := fields["status"]; ok {
			to, ok := statusOf(raw)
			if !ok {
				return fmt.Errorf("sprint: status must be a string, got %T", raw)
			}
			if to != s.Status && !isValidTransition(s.Status, to) {
				return fmt.Errorf("sprint: invalid status transition from %q to %q; valid transitions: %v",
					s.Status, to, ValidTransitions[s.Status])
			}
			fields["status"] = to
		}

		if err := tx.Model(&models.Sprint{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return fmt.Errorf("sprint: update %d: %w", id, err)
		}
		updated, err := Get(tx, id)
		if err != nil {
			return err
		}
		return updated.Validate()
	})
}

// Start moves a Planning sprint to Active.
func Start(db *gorm.DB, id uint) error {
	return Update(db, id, map[string]interface{}{"status": models.SprintActive})
}

// Complete moves an Active sprint to Completed.
func Complete(db *gorm.DB, id uint) error {
	return Update(db, id, map[string]interface{}{"status": models.SprintCompleted})
}

func statusOf(v interface{}) (models.SprintStatus, bool) {
	switch s := v.(type) {
	case models.SprintStatus:
		return s, true
	case string:
		return models.SprintStatus(s), true
	}
	return "", false
}

// isValidTransition checks whether a status transition is allowed.
func isValidTransition(from, to models.SprintStatus) bool {
	for _, v := range ValidTransitions[from] {
		if v == to {
			return true
		}
	}
	return false
}

// Delete removes a sprint. Its tasks, bugs and time entries are kept with
// the sprint reference cleared.
func Delete(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}
		for _, m := range []interface{}{&models.Task{}, &models.Bug{}, &models.TimeEntry{}} {
			if err := tx.Model(m).Where("sprint_id = ?", id).Update("sprint_id", nil).Error; err != nil {
				return fmt.Errorf("sprint: dissociate %d: %w", id, err)
			}
		}
		if err := tx.Delete(&models.Sprint{}, id).Error; err != nil {
			return fmt.Errorf("sprint: delete %d: %w", id, err)
		}
		return nil
	})
}
