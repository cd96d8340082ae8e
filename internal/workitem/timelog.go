package workitem

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/agiletrack/internal/models"
	"gorm.io/gorm"
)

// LogOpts holds parameters for logging time against a task or bug.
type LogOpts struct {
	Kind        models.EntryKind
	ItemID      uint
	Date        time.Time
	Hours       float64
	Description string
}

// TimeFilters holds optional filters for listing time entries. AssigneeID
// matches entries whose task or bug is assigned to that member.
type TimeFilters struct {
	ProjectID  uint
	SprintID   uint
	AssigneeID uint
	Kind       models.EntryKind
	ItemID     uint
}

// item is the part of a task or bug that time logging needs.
type item struct {
	ProjectID   uint
	SprintID    *uint
	Status      models.TaskStatus
	ActualHours float64
}

func loadItem(db *gorm.DB, kind models.EntryKind, id uint) (*item, error) {
	switch kind {
	case models.EntryTask:
		t, err := GetTask(db, id)
		if err != nil {
			return nil, err
		}
		return &item{ProjectID: t.ProjectID, SprintID: t.SprintID, Status: t.Status, ActualHours: t.ActualHours}, nil
	case models.EntryBug:
		b, err := GetBug(db, id)
		if err != nil {
			return nil, err
		}
		return &item{ProjectID: b.ProjectID, SprintID: b.SprintID, Status: b.Status, ActualHours: b.ActualHours}, nil
	}
	return nil, fmt.Errorf("workitem: unknown time entry kind %q", kind)
}

func itemModel(kind models.EntryKind) interface{} {
	if kind == models.EntryBug {
		return &models.Bug{}
	}
	return &models.Task{}
}

// LogTime records hours against a task or bug. Project and sprint are
// copied from the item. Hours logged against a Done item are added to its
// actual hours.
func LogTime(db *gorm.DB, opts LogOpts) (*models.TimeEntry, error) {
	e := models.TimeEntry{
		Kind:        opts.Kind,
		ItemID:      opts.ItemID,
		Date:        opts.Date,
		Hours:       opts.Hours,
		Description: opts.Description,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		it, err := loadItem(tx, opts.Kind, opts.ItemID)
		if err != nil {
			return err
		}
		e.ProjectID = it.ProjectID
		e.SprintID = it.SprintID
		if err := tx.Create(&e).Error; err != nil {
			return fmt.Errorf("workitem: log time: %w", err)
		}
		if it.Status == models.TaskDone {
			if err := tx.Model(itemModel(opts.Kind)).Where("id = ?", opts.ItemID).
				Update("actual_hours", it.ActualHours+opts.Hours).Error; err != nil {
				return fmt.Errorf("workitem: roll up hours for %s %d: %w", opts.Kind, opts.ItemID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetTimeEntry retrieves a time entry by ID.
func GetTimeEntry(db *gorm.DB, id uint) (*models.TimeEntry, error) {
	var e models.TimeEntry
	if err := db.Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workitem: time entry not found: %d", id)
		}
		return nil, fmt.Errorf("workitem: get time entry %d: %w", id, err)
	}
	return &e, nil
}

// DeleteTimeEntry removes a time entry. If its item is Done the hours are
// taken back off the item's actual hours, never below zero.
func DeleteTimeEntry(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		e, err := GetTimeEntry(tx, id)
		if err != nil {
			return err
		}
		it, err := loadItem(tx, e.Kind, e.ItemID)
		if err == nil && it.Status == models.TaskDone {
			hours := max(0, it.ActualHours-e.Hours)
			if err := tx.Model(itemModel(e.Kind)).Where("id = ?", e.ItemID).
				Update("actual_hours", hours).Error; err != nil {
				return fmt.Errorf("workitem: roll back hours for %s %d: %w", e.Kind, e.ItemID, err)
			}
		}
		if err := tx.Delete(&models.TimeEntry{}, id).Error; err != nil {
			return fmt.Errorf("workitem: delete time entry %d: %w", id, err)
		}
		return nil
	})
}

// ListTimeEntries returns time entries matching the filters, newest first.
func ListTimeEntries(db *gorm.DB, filters TimeFilters) ([]models.TimeEntry, error) {
	q := db.Model(&models.TimeEntry{})
	if filters.ProjectID != 0 {
		q = q.Where("project_id = ?", filters.ProjectID)
	}
	if filters.SprintID != 0 {
		q = q.Where("sprint_id = ?", filters.SprintID)
	}
	if filters.Kind != "" {
		q = q.Where("kind = ?", filters.Kind)
	}
	if filters.ItemID != 0 {
		q = q.Where("item_id = ?", filters.ItemID)
	}
	if filters.AssigneeID != 0 {
		tasks := db.Model(&models.Task{}).Select("id").Where("assignee_id = ?", filters.AssigneeID)
		bugs := db.Model(&models.Bug{}).Select("id").Where("assignee_id = ?", filters.AssigneeID)
		q = q.Where("(kind = ? AND item_id IN (?)) OR (kind = ? AND item_id IN (?))",
			models.EntryTask, tasks, models.EntryBug, bugs)
	}

	var entries []models.TimeEntry
	if err := q.Order("date DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("workitem: list time entries: %w", err)
	}
	return entries, nil
}
