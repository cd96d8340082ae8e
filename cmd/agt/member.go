package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/agiletrack/internal/team"
)

func newMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Team roster commands",
	}

	cmd.AddCommand(newMemberAddCmd())
	cmd.AddCommand(newMemberListCmd())
	cmd.AddCommand(newMemberRemoveCmd())
	return cmd
}

func newMemberAddCmd() *cobra.Command {
	var (
		configPath, name, role, avatar string
		capacity                       int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a team member",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			m, err := team.Create(gormDB, team.CreateOpts{
				Name:     name,
				Role:     role,
				Capacity: capacity,
				Avatar:   avatar,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added member %d (%s, %dh/week)\n", m.ID, m.Name, m.Capacity)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	cmd.Flags().StringVar(&name, "name", "", "member name (required, unique)")
	cmd.Flags().StringVar(&role, "role", "", "role, e.g. Developer")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "weekly capacity in hours (default 40)")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newMemberListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List team members",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			members, err := team.List(gormDB)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(members) == 0 {
				fmt.Fprintln(out, "No team members found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tROLE\tCAPACITY")
			for _, m := range members {
				fmt.Fprintf(w, "%d\t%s\t%s\t%dh\n", m.ID, m.Name, m.Role, m.Capacity)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	return cmd
}

func newMemberRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a team member and unassign their work",
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
			if err := team.Delete(gormDB, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed member %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	return cmd
}
