package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// defaultConfigPath is used by every command's --config flag.
const defaultConfigPath = "agiletrack.yaml"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "agt",
		Short:        "Agiletrack: sprint, project and team metrics",
		Long:         "Agiletrack tracks projects, sprints, tasks, bugs and logged time, and derives delivery metrics from them.",
		SilenceUsage: true,
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newDashboardCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newProjectCmd())
	cmd.AddCommand(newSprintCmd())
	cmd.AddCommand(newMemberCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newBugCmd())
	cmd.AddCommand(newTimeCmd())
	cmd.AddCommand(newDigestCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agt %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
