package db

import (
	"fmt"
	"time"

	"github.com/zulandar/agiletrack/internal/models"
	"gorm.io/gorm"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedSample inserts the demonstration data set when there are no projects
// yet. It reports whether anything was inserted.
func SeedSample(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&models.Project{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("db: count projects: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		projects := []models.Project{
			{Name: "Website Redesign", Status: models.ProjectInProgress, Priority: models.PriorityHigh, StartDate: date("2023-01-10"), EndDate: date("2023-06-30")},
			{Name: "Mobile App Development", Status: models.ProjectNotStarted, Priority: models.PriorityCritical, StartDate: date("2023-03-15"), EndDate: date("2023-09-01")},
			{Name: "Data Migration Project", Status: models.ProjectOnHold, Priority: models.PriorityMedium, StartDate: date("2023-02-01"), EndDate: date("2023-04-15")},
		}
		if err := tx.Create(&projects).Error; err != nil {
			return fmt.Errorf("db: seed projects: %w", err)
		}

		team := []models.TeamMember{
			{Name: "Jane Smith", Role: "Frontend Developer", Capacity: 40},
			{Name: "John Doe", Role: "Backend Developer", Capacity: 35},
			{Name: "Alex Johnson", Role: "UX Designer", Capacity: 30},
			{Name: "Maria Garcia", Role: "Project Manager", Capacity: 40},
		}
		for i := range team {
			// Members are global and may already exist.
			if err := tx.Where(models.TeamMember{Name: team[i].Name}).Attrs(team[i]).FirstOrCreate(&team[i]).Error; err != nil {
				return fmt.Errorf("db: seed team member %q: %w", team[i].Name, err)
			}
		}
		jane, john, alex := &team[0].ID, &team[1].ID, &team[2].ID

		web := projects[0].ID
		sprints := []models.Sprint{
			{ProjectID: web, Name: "Sprint 1", StartDate: date("2023-01-10"), EndDate: date("2023-01-24"), Status: models.SprintCompleted, CommittedPoints: 40, AddedPoints: 5, DescopedPoints: 2},
			{ProjectID: web, Name: "Sprint 2", StartDate: date("2023-01-25"), EndDate: date("2023-02-08"), Status: models.SprintCompleted, CommittedPoints: 45, AddedPoints: 3, DescopedPoints: 1},
			{ProjectID: web, Name: "Sprint 3", StartDate: date("2023-02-09"), EndDate: date("2023-02-23"), Status: models.SprintActive, CommittedPoints: 50, AddedPoints: 7},
			{ProjectID: projects[1].ID, Name: "Planning Sprint", StartDate: date("2023-03-15"), EndDate: date("2023-03-29"), Status: models.SprintPlanning, CommittedPoints: 35},
		}
		if err := tx.Create(&sprints).Error; err != nil {
			return fmt.Errorf("db: seed sprints: %w", err)
		}
		s1, s2, s3 := &sprints[0].ID, &sprints[1].ID, &sprints[2].ID

		tasks := []models.Task{
			{ProjectID: web, SprintID: s1, Title: "Design homepage wireframes", Description: "Create wireframes for the new homepage design", Status: models.TaskDone, Priority: models.PriorityHigh, AssigneeID: alex, EstimatedHours: 8, ActualHours: 10},
			{ProjectID: web, SprintID: s1, Title: "Implement navigation menu", Description: "Develop the new responsive navigation menu", Status: models.TaskDone, Priority: models.PriorityMedium, AssigneeID: jane, EstimatedHours: 6, ActualHours: 5},
			{ProjectID: web, SprintID: s2, Title: "Optimize images", Description: "Compress and optimize all website images", Status: models.TaskDone, Priority: models.PriorityLow, AssigneeID: jane, EstimatedHours: 4, ActualHours: 3},
			{ProjectID: web, SprintID: s2, Title: "Implement authentication", Description: "Set up user authentication system", Status: models.TaskDone, Priority: models.PriorityHigh, AssigneeID: john, EstimatedHours: 12, ActualHours: 14},
			{ProjectID: web, SprintID: s3, Title: "Create user profiles", Description: "Design and implement user profile pages", Status: models.TaskInProgress, Priority: models.PriorityMedium, AssigneeID: jane, EstimatedHours: 10, ActualHours: 5},
			{ProjectID: web, SprintID: s3, Title: "Implement search functionality", Description: "Add search feature to the website", Status: models.TaskNew, Priority: models.PriorityMedium, AssigneeID: john, EstimatedHours: 8},
		}
		if err := tx.Create(&tasks).Error; err != nil {
			return fmt.Errorf("db: seed tasks: %w", err)
		}

		bugs := []models.Bug{
			{TaskID: &tasks[0].ID, ProjectID: web, SprintID: s1, Title: "Navigation breaks on mobile", Description: "The navigation menu is not responding correctly on mobile devices", Status: models.TaskDone, Priority: models.PriorityHigh, Severity: models.SeverityHigh, AssigneeID: jane, EstimatedHours: 3, ActualHours: 2},
			{TaskID: &tasks[3].ID, ProjectID: web, SprintID: s2, Title: "Login fails with special characters", Description: "Users cannot log in when their password contains certain special characters", Status: models.TaskInProgress, Priority: models.PriorityCritical, Severity: models.SeverityCritical, AssigneeID: john, EstimatedHours: 5, ActualHours: 3},
			{ProjectID: web, SprintID: s3, Title: "Incorrect form validation", Description: "Contact form allows submission with invalid email format", Status: models.TaskNew, Priority: models.PriorityMedium, Severity: models.SeverityMedium, AssigneeID: jane, EstimatedHours: 2},
		}
		if err := tx.Create(&bugs).Error; err != nil {
			return fmt.Errorf("db: seed bugs: %w", err)
		}

		var entries []models.TimeEntry
		logged := func(kind models.EntryKind, id uint, sprint *uint, day string, hours float64, desc string) {
			entries = append(entries, models.TimeEntry{Kind: kind, ItemID: id, ProjectID: web, SprintID: sprint, Date: date(day), Hours: hours, Description: desc})
		}
		logged(models.EntryTask, tasks[0].ID, s1, "2023-01-12", 6, "Wireframe drafts")
		logged(models.EntryTask, tasks[0].ID, s1, "2023-01-13", 4, "Wireframe review")
		logged(models.EntryTask, tasks[1].ID, s1, "2023-01-16", 5, "Navigation menu")
		logged(models.EntryBug, bugs[0].ID, s1, "2023-01-18", 2, "Mobile navigation fix")
		logged(models.EntryTask, tasks[2].ID, s2, "2023-01-27", 3, "Image compression")
		logged(models.EntryTask, tasks[3].ID, s2, "2023-01-30", 8, "Auth flow")
		logged(models.EntryTask, tasks[3].ID, s2, "2023-02-01", 6, "Auth tokens")
		logged(models.EntryBug, bugs[1].ID, s2, "2023-02-06", 3, "Password encoding")
		logged(models.EntryTask, tasks[4].ID, s3, "2023-02-13", 5, "Profile page layout")
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("db: seed time entries: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
