package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/agiletrack/internal/models"
	"github.com/zulandar/agiletrack/internal/workitem"
	"gorm.io/gorm"
)

// workFlags are the fields shared by task and bug creation.
type workFlags struct {
	configPath  string
	projectID   uint
	sprintID    uint
	assigneeID  uint
	title       string
	description string
	status      string
	priority    string
	estimate    float64
}

func (f *workFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	cmd.Flags().UintVar(&f.projectID, "project", 0, "project id (required)")
	cmd.Flags().UintVar(&f.sprintID, "sprint", 0, "sprint id")
	cmd.Flags().UintVar(&f.assigneeID, "assignee", 0, "team member id")
	cmd.Flags().StringVar(&f.title, "title", "", "title (required)")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.status, "status", "", "New, In Progress, Testing or Done")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Low, Medium, High or Critical")
	cmd.Flags().Float64Var(&f.estimate, "estimate", 0, "estimated hours")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("title")
}

func (f *workFlags) opts() workitem.CreateOpts {
	return workitem.CreateOpts{
		ProjectID:      f.projectID,
		SprintID:       optionalID(f.sprintID),
		Title:          f.title,
		Description:    f.description,
		Status:         models.TaskStatus(f.status),
		Priority:       models.Priority(f.priority),
		AssigneeID:     optionalID(f.assigneeID),
		EstimatedHours: f.estimate,
	}
}

// listFlags filter task and bug listings.
type listFlags struct {
	configPath string
	projectID  uint
	sprintID   uint
	assigneeID uint
	status     string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	cmd.Flags().UintVar(&f.projectID, "project", 0, "filter by project id")
	cmd.Flags().UintVar(&f.sprintID, "sprint", 0, "filter by sprint id")
	cmd.Flags().UintVar(&f.assigneeID, "assignee", 0, "filter by team member id")
	cmd.Flags().StringVar(&f.status, "status", "", "filter by status")
}

func (f *listFlags) filters() workitem.ListFilters {
	return workitem.ListFilters{
		ProjectID:  f.projectID,
		SprintID:   f.sprintID,
		AssigneeID: f.assigneeID,
		Status:     models.TaskStatus(f.status),
	}
}

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
	}

	cmd.AddCommand(newTaskCreateCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newItemStatusCmd(models.EntryTask, workitem.UpdateTask))
	cmd.AddCommand(newItemDeleteCmd(models.EntryTask, workitem.DeleteTask))
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var f workFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(f.configPath)
			if err != nil {
				return err
			}
			t, err := workitem.CreateTask(gormDB, f.opts())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %d (%s)\n", t.ID, t.Title)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(f.configPath)
			if err != nil {
				return err
			}
			tasks, err := workitem.ListTasks(gormDB, f.filters())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tSPRINT\tASSIGNEE\tEST\tACTUAL")
			for _, t := range tasks {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%.1f\t%.1f\n",
					t.ID, truncate(t.Title, 40), t.Status, t.Priority,
					formatRef(t.SprintID), formatRef(t.AssigneeID), t.EstimatedHours, t.ActualHours)
			}
			return w.Flush()
		},
	}

	f.register(cmd)
	return cmd
}

func newBugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bug",
		Short: "Bug management commands",
	}

	cmd.AddCommand(newBugCreateCmd())
	cmd.AddCommand(newBugListCmd())
	cmd.AddCommand(newItemStatusCmd(models.EntryBug, workitem.UpdateBug))
	cmd.AddCommand(newItemDeleteCmd(models.EntryBug, workitem.DeleteBug))
	return cmd
}

func newBugCreateCmd() *cobra.Command {
	var (
		f        workFlags
		severity string
		taskID   uint
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Report a new bug",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(f.configPath)
			if err != nil {
				return err
			}
			b, err := workitem.CreateBug(gormDB, workitem.BugOpts{
				CreateOpts: f.opts(),
				Severity:   models.Severity(severity),
				TaskID:     optionalID(taskID),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created bug %d (%s, %s)\n", b.ID, b.Title, b.Severity)
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&severity, "severity", "", "Low, Medium, High or Critical")
	cmd.Flags().UintVar(&taskID, "task", 0, "related task id")
	return cmd
}

func newBugListCmd() *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bugs",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(f.configPath)
			if err != nil {
				return err
			}
			bugs, err := workitem.ListBugs(gormDB, f.filters())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(bugs) == 0 {
				fmt.Fprintln(out, "No bugs found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tSEVERITY\tPRIORITY\tTASK\tASSIGNEE")
			for _, b := range bugs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					b.ID, truncate(b.Title, 40), b.Status, b.Severity, b.Priority,
					formatRef(b.TaskID), formatRef(b.AssigneeID))
			}
			return w.Flush()
		},
	}

	f.register(cmd)
	return cmd
}

func newItemStatusCmd(kind models.EntryKind, update func(*gorm.DB, uint, map[string]interface{}) error) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: fmt.Sprintf("Move a %s through the workflow", kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := update(gormDB, id, map[string]interface{}{"status": args[1]}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d is now %s\n", capitalize(string(kind)), id, args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	return cmd
}

func newItemDeleteCmd(kind models.EntryKind, remove func(*gorm.DB, uint) error) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s and its logged time", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := remove(gormDB, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", kind, id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	return cmd
}

func newTimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Time tracking commands",
	}

	cmd.AddCommand(newTimeLogCmd())
	cmd.AddCommand(newTimeListCmd())
	cmd.AddCommand(newTimeDeleteCmd())
	return cmd
}

func newTimeLogCmd() *cobra.Command {
	var (
		configPath, date, description string
		taskID, bugID                 uint
		hours                         float64
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log hours against a task or bug",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, itemID, err := entryTarget(taskID, bugID)
			if err != nil {
				return err
			}
			day, err := parseDate("date", date)
			if err != nil {
				return err
			}
			if day.IsZero() {
				y, m, d := nowFunc().Date()
				day = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			e, err := workitem.LogTime(gormDB, workitem.LogOpts{
				Kind:        kind,
				ItemID:      itemID,
				Date:        day,
				Hours:       hours,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %gh on %s %d (entry %d)\n", e.Hours, e.Kind, e.ItemID, e.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	cmd.Flags().UintVar(&taskID, "task", 0, "task id")
	cmd.Flags().UintVar(&bugID, "bug", 0, "bug id")
	cmd.Flags().Float64Var(&hours, "hours", 0, "hours worked (required)")
	cmd.Flags().StringVar(&date, "date", "", "work date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&description, "description", "", "what was done")
	cmd.MarkFlagRequired("hours")
	return cmd
}

// entryTarget resolves --task/--bug to exactly one work item.
func entryTarget(taskID, bugID uint) (models.EntryKind, uint, error) {
	switch {
	case taskID != 0 && bugID != 0:
		return "", 0, fmt.Errorf("--task and --bug are mutually exclusive")
	case taskID != 0:
		return models.EntryTask, taskID, nil
	case bugID != 0:
		return models.EntryBug, bugID, nil
	}
	return "", 0, fmt.Errorf("one of --task or --bug is required")
}

func newTimeListCmd() *cobra.Command {
	var (
		configPath                      string
		projectID, sprintID, assigneeID uint
		taskID, bugID                   uint
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List time entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := workitem.TimeFilters{ProjectID: projectID, SprintID: sprintID, AssigneeID: assigneeID}
			if taskID != 0 || bugID != 0 {
				kind, itemID, err := entryTarget(taskID, bugID)
				if err != nil {
					return err
				}
				filters.Kind, filters.ItemID = kind, itemID
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			entries, err := workitem.ListTimeEntries(gormDB, filters)
			if err != nil {
				return err
			}
			return printTimeEntries(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	cmd.Flags().UintVar(&projectID, "project", 0, "filter by project id")
	cmd.Flags().UintVar(&sprintID, "sprint", 0, "filter by sprint id")
	cmd.Flags().UintVar(&assigneeID, "assignee", 0, "filter by the item's assignee")
	cmd.Flags().UintVar(&taskID, "task", 0, "only entries for this task")
	cmd.Flags().UintVar(&bugID, "bug", 0, "only entries for this bug")
	return cmd
}

func printTimeEntries(out io.Writer, entries []models.TimeEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No time entries found.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tITEM\tHOURS\tDESCRIPTION")
	var total float64
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s %d\t%.1f\t%s\n",
			e.ID, formatDate(e.Date), e.Kind, e.ItemID, e.Hours, truncate(e.Description, 50))
		total += e.Hours
	}
	fmt.Fprintf(w, "\t\tTOTAL\t%.1f\t\n", total)
	return w.Flush()
}

func newTimeDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a time entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := workitem.DeleteTimeEntry(gormDB, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted time entry %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	return cmd
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
