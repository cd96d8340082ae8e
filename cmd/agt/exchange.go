package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/agiletrack/internal/models"
	"github.com/zulandar/agiletrack/internal/store"
)

func newExportCmd() *cobra.Command {
	var configPath, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every collection to a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, configPath, output)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, configPath, output string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	snap, err := store.Export(gormDB, w)
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", describeCounts(snap), output)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	var (
		configPath string
		input      string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace every collection with a JSON document",
		Long: `Reads a document written by "agt export" and replaces all stored
projects, sprints, tasks, bugs, time entries and team members with it.
Nothing is changed if the document fails to load.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, configPath, input, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	cmd.Flags().StringVarP(&input, "file", "f", "", "document to import")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(cmd *cobra.Command, configPath, input string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open %s: %w", input, err)
	}
	defer f.Close()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if !skipConfirm {
		ok, err := confirm(cmd, "this will replace all stored data with the contents of "+input)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	snap, err := store.Import(gormDB, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %s\n", describeCounts(snap))
	return nil
}

func describeCounts(s models.Snapshot) string {
	c := s.Counts()
	return fmt.Sprintf("%d projects, %d sprints, %d tasks, %d bugs, %d time entries, %d team members",
		c["projects"], c["sprints"], c["tasks"], c["bugs"], c["timeEntries"], c["team"])
}
