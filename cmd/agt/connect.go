package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/agiletrack/internal/config"
	"github.com/zulandar/agiletrack/internal/db"
	"github.com/zulandar/agiletrack/internal/logger"
	"golang.org/x/term"
	"gorm.io/gorm"
)

// connectFromConfig loads the config file and opens the store it names.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to store: %w", err)
	}
	return cfg, gormDB, nil
}

func newLogger(cfg *config.Config, component string) *logger.Logger {
	return logger.NewWithWriter(component, cfg.Log.Env, os.Stderr)
}

// stdinIsTerminal is swapped out by tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// confirm asks the user to type "yes" before a destructive action. Without
// an interactive terminal it refuses and asks for --yes instead.
func confirm(cmd *cobra.Command, action string) (bool, error) {
	if !stdinIsTerminal() {
		return false, fmt.Errorf("%s requires confirmation: re-run with --yes", action)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "WARNING: %s.\n", action)
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes", nil
	}
	return false, nil
}
