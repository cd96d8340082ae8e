// Package workitem provides task and bug lifecycle operations and time
// logging against them.
package workitem

import (
	"errors"
	"fmt"

	"github.com/zulandar/agiletrack/internal/models"
	"gorm.io/gorm"
)

// CreateOpts holds parameters shared by new tasks and bugs.
type CreateOpts struct {
	ProjectID      uint
	SprintID       *uint
	Title          string
	Description    string
	Status         models.TaskStatus // defaults to New
	Priority       models.Priority   // defaults to Medium
	AssigneeID     *uint
	EstimatedHours float64
}

// BugOpts adds the bug-only fields to CreateOpts.
type BugOpts struct {
	CreateOpts
	Severity models.Severity // defaults to Medium
	TaskID   *uint
}

// ListFilters holds optional filters for listing tasks and bugs.
type ListFilters struct {
	ProjectID  uint
	SprintID   uint
	AssigneeID uint
	Status     models.TaskStatus
}

func (o *CreateOpts) applyDefaults() {
	if o.Status == "" {
		o.Status = models.TaskNew
	}
	if o.Priority == "" {
		o.Priority = models.PriorityMedium
	}
}

// checkRefs verifies that the project, sprint and assignee exist and that
// the sprint belongs to the project.
func checkRefs(db *gorm.DB, o CreateOpts) error {
	var count int64
	if err := db.Model(&models.Project{}).Where("id = ?", o.ProjectID).Count(&count).Error; err != nil {
		return fmt.Errorf("workitem: check project %d: %w", o.ProjectID, err)
	}
	if count == 0 {
		return fmt.Errorf("workitem: project not found: %d", o.ProjectID)
	}
	if o.SprintID != nil {
		var s models.Sprint
		if err := db.Where("id = ?", *o.SprintID).First(&s).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("workitem: sprint not found: %d", *o.SprintID)
			}
			return fmt.Errorf("workitem: check sprint %d: %w", *o.SprintID, err)
		}
		if s.ProjectID != o.ProjectID {
			return fmt.Errorf("workitem: sprint %d belongs to project %d, not %d", s.ID, s.ProjectID, o.ProjectID)
		}
	}
	if o.AssigneeID != nil {
		if err := db.Model(&models.TeamMember{}).Where("id = ?", *o.AssigneeID).Count(&count).Error; err != nil {
			return fmt.Errorf("workitem: check assignee %d: %w", *o.AssigneeID, err)
		}
		if count == 0 {
			return fmt.Errorf("workitem: assignee not found: %d", *o.AssigneeID)
		}
	}
	return nil
}

func applyFilters(q *gorm.DB, f ListFilters) *gorm.DB {
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.SprintID != 0 {
		q = q.Where("sprint_id = ?", f.SprintID)
	}
	if f.AssigneeID != 0 {
		q = q.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

// CreateTask validates and stores a new task.
func CreateTask(db *gorm.DB, opts CreateOpts) (*models.Task, error) {
	opts.applyDefaults()
	t := models.Task{
		ProjectID:      opts.ProjectID,
		SprintID:       opts.SprintID,
		Title:          opts.Title,
		Description:    opts.Description,
		Status:         opts.Status,
		Priority:       opts.Priority,
		AssigneeID:     opts.AssigneeID,
		EstimatedHours: opts.EstimatedHours,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := checkRefs(db, opts); err != nil {
		return nil, err
	}
	if err := db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("workitem: create task: %w", err)
	}
	return &t, nil
}

// GetTask retrieves a task by ID.
func GetTask(db *gorm.DB, id uint) (*models.Task, error) {
	var t models.Task
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workitem: task not found: %d", id)
		}
		return nil, fmt.Errorf("workitem: get task %d: %w", id, err)
	}
	return &t, nil
}

// ListTasks returns tasks matching the filters ordered by id.
func ListTasks(db *gorm.DB, filters ListFilters) ([]models.Task, error) {
	var tasks []models.Task
	if err := applyFilters(db.Model(&models.Task{}), filters).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("workitem: list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies column updates. The stored result must still validate.
func UpdateTask(db *gorm.DB, id uint, updates map[string]interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("workitem: update task %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("workitem: task not found: %d", id)
		}
		t, err := GetTask(tx, id)
		if err != nil {
			return err
		}
		return t.Validate()
	})
}

// DeleteTask removes a task and the time logged against it. Bugs that
// referenced the task are kept with the reference cleared.
func DeleteTask(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetTask(tx, id); err != nil {
			return err
		}
		if err := tx.Model(&models.Bug{}).Where("task_id = ?", id).Update("task_id", nil).Error; err != nil {
			return fmt.Errorf("workitem: dissociate bugs from task %d: %w", id, err)
		}
		if err := tx.Where("kind = ? AND item_id = ?", models.EntryTask, id).Delete(&models.TimeEntry{}).Error; err != nil {
			return fmt.Errorf("workitem: delete time entries of task %d: %w", id, err)
		}
		if err := tx.Delete(&models.Task{}, id).Error; err != nil {
			return fmt.Errorf("workitem: delete task %d: %w", id, err)
		}
		return nil
	})
}

// CreateBug validates and stores a new bug.
func CreateBug(db *gorm.DB, opts BugOpts) (*models.Bug, error) {
	opts.applyDefaults()
	if opts.Severity == "" {
		opts.Severity = models.SeverityMedium
	}
	b := models.Bug{
		ProjectID:      opts.ProjectID,
		SprintID:       opts.SprintID,
		TaskID:         opts.TaskID,
		Title:          opts.Title,
		Description:    opts.Description,
		Status:         opts.Status,
		Priority:       opts.Priority,
		Severity:       opts.Severity,
		AssigneeID:     opts.AssigneeID,
		EstimatedHours: opts.EstimatedHours,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := checkRefs(db, opts.CreateOpts); err != nil {
		return nil, err
	}
	if opts.TaskID != nil {
		if _, err := GetTask(db, *opts.TaskID); err != nil {
			return nil, err
		}
	}
	if err := db.Create(&b).Error; err != nil {
		return nil, fmt.Errorf("workitem: create bug: %w", err)
	}
	return &b, nil
}

// GetBug retrieves a bug by ID.
func GetBug(db *gorm.DB, id uint) (*models.Bug, error) {
	var b models.Bug
	if err := db.Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workitem: bug not found: %d", id)
		}
		return nil, fmt.Errorf("workitem: get bug %d: %w", id, err)
	}
	return &b, nil
}

// ListBugs returns bugs matching the filters ordered by id.
func ListBugs(db *gorm.DB, filters ListFilters) ([]models.Bug, error) {
	var bugs []models.Bug
	if err := applyFilters(db.Model(&models.Bug{}), filters).Order("id ASC").Find(&bugs).Error; err != nil {
		return nil, fmt.Errorf("workitem: list bugs: %w", err)
	}
	return bugs, nil
}

// UpdateBug applies column updates. The stored result must still validate.
func UpdateBug(db *gorm.DB, id uint, updates map[string]interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Bug{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("workitem: update bug %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("workitem: bug not found: %d", id)
		}
		b, err := GetBug(tx, id)
		if err != nil {
			return err
		}
		return b.Validate()
	})
}

// DeleteBug removes a bug and the time logged against it.
func DeleteBug(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetBug(tx, id); err != nil {
			return err
		}
		if err := tx.Where("kind = ? AND item_id = ?", models.EntryBug, id).Delete(&models.TimeEntry{}).Error; err != nil {
			return fmt.Errorf("workitem: delete time entries of bug %d: %w", id, err)
		}
		if err := tx.Delete(&models.Bug{}, id).Error; err != nil {
			return fmt.Errorf("workitem: delete bug %d: %w", id, err)
		}
		return nil
	})
}
