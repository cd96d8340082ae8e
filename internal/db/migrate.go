package db

import (
	"fmt"

	"github.com/zulandar/agiletrack/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model in dependency order: referenced tables
// come before the tables that reference them.
func AllModels() []interface{} {
	return []interface{}{
		&models.TeamMember{},
		&models.Project{},
		&models.Sprint{},
		&models.Task{},
		&models.Bug{},
		&models.TimeEntry{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every table, dependents first.
func DropAll(db *gorm.DB) error {
	all := AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("db: drop %T: %w", all[i], err)
		}
	}
	return nil
}
