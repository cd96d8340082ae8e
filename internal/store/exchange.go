package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zulandar/agiletrack/internal/models"
	"gorm.io/gorm"
)

// Export writes every collection as one indented JSON document.
func Export(db *gorm.DB, w io.Writer) (models.Snapshot, error) {
	s, err := LoadSnapshot(db)
	if err != nil {
		return s, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return s, fmt.Errorf("store: encode export: %w", err)
	}
	return s, nil
}

// document is the import shape. It accepts the current export format plus
// the older one where work items named their assignee and time entries
// pointed at a task with taskId.
type document struct {
	Projects    []models.Project    `json:"projects"`
	Sprints     []models.Sprint     `json:"sprints"`
	Tasks       []importedTask      `json:"tasks"`
	Bugs        []importedBug       `json:"bugs"`
	TimeEntries []importedTimeEntry `json:"timeEntries"`
	Team        []models.TeamMember `json:"team"`
}

type importedTask struct {
	models.Task
	AssigneeName string `json:"assignee"`
}

type importedBug struct {
	models.Bug
	AssigneeName string `json:"assignee"`
}

type importedTimeEntry struct {
	models.TimeEntry
	TaskID *uint `json:"taskId"`
}

// Decode reads an export document into a Snapshot, resolving legacy
// assignee names against the document's team.
func Decode(r io.Reader) (models.Snapshot, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return models.Snapshot{}, fmt.Errorf("store: decode import: %w", err)
	}

	byName := make(map[string]uint, len(doc.Team))
	for _, m := range doc.Team {
		byName[m.Name] = m.ID
	}
	resolve := func(id *uint, name string) *uint {
		if id != nil || name == "" {
			return id
		}
		if mid, ok := byName[name]; ok {
			return &mid
		}
		return nil
	}

	s := models.Snapshot{
		Projects:    doc.Projects,
		Sprints:     doc.Sprints,
		Team:        doc.Team,
		Tasks:       make([]models.Task, 0, len(doc.Tasks)),
		Bugs:        make([]models.Bug, 0, len(doc.Bugs)),
		TimeEntries: make([]models.TimeEntry, 0, len(doc.TimeEntries)),
	}
	for _, t := range doc.Tasks {
		t.Task.AssigneeID = resolve(t.Task.AssigneeID, t.AssigneeName)
		s.Tasks = append(s.Tasks, t.Task)
	}
	for _, b := range doc.Bugs {
		b.Bug.AssigneeID = resolve(b.Bug.AssigneeID, b.AssigneeName)
		s.Bugs = append(s.Bugs, b.Bug)
	}
	for _, e := range doc.TimeEntries {
		if e.ItemID == 0 && e.TaskID != nil {
			e.Kind = models.EntryTask
			e.ItemID = *e.TaskID
		}
		if e.Kind == "" {
			e.Kind = models.EntryTask
		}
		s.TimeEntries = append(s.TimeEntries, e.TimeEntry)
	}
	return s, nil
}

// Import replaces every collection with the document read from r. The
// replacement runs in one transaction.
func Import(db *gorm.DB, r io.Reader) (models.Snapshot, error) {
	s, err := Decode(r)
	if err != nil {
		return s, err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := clearAll(tx); err != nil {
			return err
		}
		return insertAll(tx, s)
	})
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("store: import: %w", err)
	}
	return s, nil
}

// ClearAll removes every record from every collection in one transaction.
func ClearAll(db *gorm.DB) error {
	return db.Transaction(clearAll)
}

func clearAll(tx *gorm.DB) error {
	if err := Clear[models.TimeEntry](tx); err != nil {
		return err
	}
	if err := Clear[models.Bug](tx); err != nil {
		return err
	}
	if err := Clear[models.Task](tx); err != nil {
		return err
	}
	if err := Clear[models.Sprint](tx); err != nil {
		return err
	}
	if err := Clear[models.Project](tx); err != nil {
		return err
	}
	return Clear[models.TeamMember](tx)
}

// InsertSnapshot bulk-inserts every collection of s in one transaction.
func InsertSnapshot(db *gorm.DB, s models.Snapshot) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return insertAll(tx, s)
	})
}

func insertAll(tx *gorm.DB, s models.Snapshot) error {
	if err := BulkInsert(tx, s.Team); err != nil {
		return err
	}
	if err := BulkInsert(tx, s.Projects); err != nil {
		return err
	}
	if err := BulkInsert(tx, s.Sprints); err != nil {
		return err
	}
	if err := BulkInsert(tx, s.Tasks); err != nil {
		return err
	}
	if err := BulkInsert(tx, s.Bugs); err != nil {
		return err
	}
	return BulkInsert(tx, s.TimeEntries)
}
