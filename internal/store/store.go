// Package store is the entity store: CRUD and query-by-field over the six
// collections, backed by GORM.
package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/zulandar/agiletrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity is any of the stored collection types.
type Entity interface {
	models.Project | models.Sprint | models.Task | models.Bug | models.TeamMember | models.TimeEntry
}

type validator interface {
	Validate() error
}

// entityName returns a lowercase label for T used in error messages.
func entityName[T Entity]() string {
	return strings.ToLower(reflect.TypeOf((*T)(nil)).Elem().Name())
}

// GetAll returns every record of T ordered by id.
func GetAll[T Entity](db *gorm.DB) ([]T, error) {
	var out []T
	if err := db.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("store: list %s: %w", entityName[T](), err)
	}
	return out, nil
}

// Get returns the record of T with the given id.
func Get[T Entity](db *gorm.DB, id uint) (*T, error) {
	var out T
	if err := db.Where("id = ?", id).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("store: %s not found: %d", entityName[T](), id)
		}
		return nil, fmt.Errorf("store: get %s %d: %w", entityName[T](), id, err)
	}
	return &out, nil
}

// GetByIndex returns records of T whose column equals value, ordered by id.
func GetByIndex[T Entity](db *gorm.DB, column string, value any) ([]T, error) {
	var out []T
	err := db.Clauses(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Order("id ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("store: list %s by %s: %w", entityName[T](), column, err)
	}
	return out, nil
}

// GetRange returns records of T whose column lies in [from, to], ordered by
// column. A nil bound is open.
func GetRange[T Entity](db *gorm.DB, column string, from, to any) ([]T, error) {
	col := clause.Column{Name: column}
	q := db
	if from != nil {
		q = q.Clauses(clause.Gte{Column: col, Value: from})
	}
	if to != nil {
		q = q.Clauses(clause.Lte{Column: col, Value: to})
	}
	var out []T
	if err := q.Order(clause.OrderByColumn{Column: col}).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("store: range %s by %s: %w", entityName[T](), column, err)
	}
	return out, nil
}

// Count returns the number of records of T.
func Count[T Entity](db *gorm.DB) (int64, error) {
	var n int64
	if err := db.Model(new(T)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("store: count %s: %w", entityName[T](), err)
	}
	return n, nil
}

// Insert validates and creates record. The assigned id is written back into
// record.
func Insert[T Entity](db *gorm.DB, record *T) error {
	if v, ok := any(record).(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("store: insert %s: %w", entityName[T](), err)
		}
	}
	if err := db.Create(record).Error; err != nil {
		return fmt.Errorf("store: insert %s: %w", entityName[T](), err)
	}
	return nil
}

// BulkInsert validates and creates records in batches. Nothing is written if
// any record is invalid.
func BulkInsert[T Entity](db *gorm.DB, records []T) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		if v, ok := any(&records[i]).(validator); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("store: bulk insert %s #%d: %w", entityName[T](), i, err)
			}
		}
	}
	if err := db.CreateInBatches(records, 100).Error; err != nil {
		return fmt.Errorf("store: bulk insert %s: %w", entityName[T](), err)
	}
	return nil
}

// Update applies column updates to the record of T with the given id.
func Update[T Entity](db *gorm.DB, id uint, updates map[string]any) error {
	res := db.Model(new(T)).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("store: update %s %d: %w", entityName[T](), id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store: %s not found: %d", entityName[T](), id)
	}
	return nil
}

// Save validates and writes every column of record.
func Save[T Entity](db *gorm.DB, record *T) error {
	if v, ok := any(record).(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("store: save %s: %w", entityName[T](), err)
		}
	}
	if err := db.Save(record).Error; err != nil {
		return fmt.Errorf("store: save %s: %w", entityName[T](), err)
	}
	return nil
}

// Delete removes the record of T with the given id.
func Delete[T Entity](db *gorm.DB, id uint) error {
	res := db.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("store: delete %s %d: %w", entityName[T](), id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store: %s not found: %d", entityName[T](), id)
	}
	return nil
}

// Clear removes every record of T.
func Clear[T Entity](db *gorm.DB) error {
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("store: clear %s: %w", entityName[T](), err)
	}
	return nil
}

// LoadSnapshot reads every collection.
func LoadSnapshot(db *gorm.DB) (models.Snapshot, error) {
	var s models.Snapshot
	var err error
	if s.Projects, err = GetAll[models.Project](db); err != nil {
		return s, err
	}
	if s.Sprints, err = GetAll[models.Sprint](db); err != nil {
		return s, err
	}
	if s.Tasks, err = GetAll[models.Task](db); err != nil {
		return s, err
	}
	if s.Bugs, err = GetAll[models.Bug](db); err != nil {
		return s, err
	}
	if s.TimeEntries, err = GetAll[models.TimeEntry](db); err != nil {
		return s, err
	}
	if s.Team, err = GetAll[models.TeamMember](db); err != nil {
		return s, err
	}
	return s, nil
}
