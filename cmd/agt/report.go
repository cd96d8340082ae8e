package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/agiletrack/internal/filter"
	"github.com/zulandar/agiletrack/internal/metrics"
	"github.com/zulandar/agiletrack/internal/store"
)

// nowFunc anchors date ranges and sprint countdowns. Tests pin it.
var nowFunc = time.Now

// filterFlags binds the filter dimensions to command-line flags.
type filterFlags struct {
	status     string
	priority   string
	severity   string
	projectID  string
	sprintID   string
	assigneeID string
	dateRange  string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fl := cmd.PersistentFlags()
	fl.StringVar(&f.status, "status", "", "only items with this status")
	fl.StringVar(&f.priority, "priority", "", "only items with this priority")
	fl.StringVar(&f.severity, "severity", "", "only bugs with this severity")
	fl.StringVar(&f.projectID, "project", "", "only this project id")
	fl.StringVar(&f.sprintID, "sprint", "", "only this sprint id")
	fl.StringVar(&f.assigneeID, "assignee", "", "only work assigned to this member id")
	fl.StringVar(&f.dateRange, "date-range", "",
		filter.RangeLast30Days+", "+filter.RangeLast90Days+" or "+filter.RangeThisYear)
}

func (f *filterFlags) spec() filter.Spec {
	spec := filter.Spec{}
	for k, v := range map[string]string{
		filter.KeyStatus:     f.status,
		filter.KeyPriority:   f.priority,
		filter.KeySeverity:   f.severity,
		filter.KeyProjectID:  f.projectID,
		filter.KeySprintID:   f.sprintID,
		filter.KeyAssigneeID: f.assigneeID,
		filter.KeyDateRange:  f.dateRange,
	} {
		if v != "" {
			spec[k] = v
		}
	}
	return spec
}

// reportOpts is shared by every report subcommand.
type reportOpts struct {
	configPath string
	asJSON     bool
	filters    filterFlags
}

func newReportCmd() *cobra.Command {
	opts := &reportOpts{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print derived metrics",
		Long:  "Prints the overview, or one section of the dashboard with a subcommand. Filter flags narrow every report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, printOverview)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")
	opts.filters.bind(cmd)

	sections := []struct {
		use, short string
		render     func(io.Writer, *metrics.Dashboard) error
	}{
		{"sprints", "Sprint points and completion", printSprints},
		{"projects", "Project health", printProjects},
		{"team", "Team allocation against capacity", printTeam},
		{"time", "Hours logged per day", printTime},
		{"velocity", "Accepted points per completed sprint", printVelocity},
	}
	for _, s := range sections {
		render := s.render
		cmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runReport(cmd, opts, render)
			},
		})
	}
	return cmd
}

func runReport(cmd *cobra.Command, opts *reportOpts, render func(io.Writer, *metrics.Dashboard) error) error {
	cfg, gormDB, err := connectFromConfig(opts.configPath)
	if err != nil {
		return err
	}
	snap, err := store.LoadSnapshot(gormDB)
	if err != nil {
		return err
	}
	d, err := metrics.New(cfg.Metrics).Report(snap, opts.filters.spec(), nowFunc())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	return render(out, d)
}

func printOverview(out io.Writer, d *metrics.Dashboard) error {
	o := d.Overview
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Projects:\t%d (%d in progress, %d completed)\n", o.TotalProjects, o.ActiveProjects, o.CompletedProjects)
	fmt.Fprintf(w, "Active sprints:\t%d\n", o.ActiveSprints)
	fmt.Fprintf(w, "Tasks in progress:\t%d\n", o.TasksInProgress)
	fmt.Fprintf(w, "Open bugs:\t%d\n", o.OpenBugs)
	fmt.Fprintf(w, "Hours logged:\t%.1f\n", o.LoggedHours)
	for _, sc := range d.StatusDistribution {
		fmt.Fprintf(w, "  %s:\t%d\n", sc.Status, sc.Count)
	}
	if n := d.Diagnostics.Total(); n > 0 {
		fmt.Fprintf(w, "Skipped records:\t%d\n", n)
	}
	return w.Flush()
}

func printSprints(out io.Writer, d *metrics.Dashboard) error {
	names := make(map[uint]string, len(d.Projects))
	for _, p := range d.Projects {
		names[p.ProjectID] = p.Name
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSPRINT\tPROJECT\tSTATUS\tCOMMITTED\tACCEPTED\tADDED\tDESCOPED\tCOMPLETION\tDAYS LEFT")
	for _, s := range d.Sprints {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d%%\t%d\n",
			s.SprintID, s.Name, names[s.ProjectID], s.Status,
			s.Committed, s.Accepted, s.Added, s.Descoped, s.Completion, s.DaysRemaining)
	}
	return w.Flush()
}

func printProjects(out io.Writer, d *metrics.Dashboard) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROJECT\tSTATUS\tPRIORITY\tHEALTH\tSPRINTS\tAVG COMPLETION\tOPEN TASKS\tOPEN BUGS")
	for _, p := range d.Projects {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d/%d\t%d%%\t%d\t%d\n",
			p.ProjectID, p.Name, p.Status, p.Priority, p.Health,
			p.CompletedSprints, p.Sprints, p.AverageCompletion, p.OpenTasks, p.OpenBugs)
	}
	return w.Flush()
}

func printTeam(out io.Writer, d *metrics.Dashboard) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tROLE\tCAPACITY\tTASKS\tALLOCATED\tUSED\tUTILIZATION\t")
	for _, a := range d.Team {
		flag := ""
		if a.OverAllocated {
			flag = "OVER"
		}
		fmt.Fprintf(w, "%s\t%s\t%dh\t%d\t%.1fh\t%.1fh\t%d%%\t%s\n",
			a.Name, a.Role, a.Capacity, a.Tasks, a.AllocatedHours, a.UsedHours, a.Utilization, flag)
	}
	return w.Flush()
}

func printTime(out io.Writer, d *metrics.Dashboard) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tHOURS")
	for _, day := range d.TimeSeries {
		fmt.Fprintf(w, "%s\t%.1f\n", day.Date.Format(time.DateOnly), day.Hours)
	}
	return w.Flush()
}

func printVelocity(out io.Writer, d *metrics.Dashboard) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPRINT\tEND\tCOMMITTED\tACCEPTED\tADDED\tDESCOPED")
	for _, v := range d.Velocity {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
			v.Name, v.EndDate.Format(time.DateOnly), v.Committed, v.Accepted, v.Added, v.Descoped)
	}
	return w.Flush()
}
