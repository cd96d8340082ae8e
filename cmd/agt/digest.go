package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/agiletrack/internal/config"
	"github.com/zulandar/agiletrack/internal/digest"
	"github.com/zulandar/agiletrack/internal/digest/discord"
	"github.com/zulandar/agiletrack/internal/digest/slack"
	"github.com/zulandar/agiletrack/internal/metrics"
	"gorm.io/gorm"
)

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the metrics digest to Slack and Discord",
	}

	cmd.AddCommand(newDigestSendCmd())
	cmd.AddCommand(newDigestRunCmd())
	cmd.AddCommand(newDigestPreviewCmd())
	return cmd
}

func newDigestSendCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send the digest once to every configured channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := newScheduler(configPath)
			if err != nil {
				return err
			}
			if err := s.SendOnce(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Digest sent.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	return cmd
}

func newDigestRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Send the digest on the configured cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := newScheduler(configPath)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			fmt.Fprintf(cmd.OutOrStdout(), "Digest scheduled (%s); press Ctrl-C to stop\n", cfg.Digest.Schedule)
			return s.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	return cmd
}

func newDigestPreviewCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the digest without sending it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			s, err := digest.NewScheduler(schedulerOpts(cfg, gormDB, []digest.Notifier{previewNotifier{}}))
			if err != nil {
				return err
			}
			msg, err := s.Compose(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", msg.Title, msg.Body)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Agiletrack config file")
	return cmd
}

// previewNotifier satisfies the scheduler for commands that never send.
type previewNotifier struct{}

func (previewNotifier) Name() string                                { return "preview" }
func (previewNotifier) Send(context.Context, digest.Message) error { return nil }

func newScheduler(configPath string) (*digest.Scheduler, *config.Config, error) {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	notifiers, err := buildNotifiers(cfg.Digest)
	if err != nil {
		return nil, nil, err
	}
	s, err := digest.NewScheduler(schedulerOpts(cfg, gormDB, notifiers))
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

func schedulerOpts(cfg *config.Config, gormDB *gorm.DB, notifiers []digest.Notifier) digest.SchedulerOpts {
	return digest.SchedulerOpts{
		DB:        gormDB,
		Schedule:  cfg.Digest.Schedule,
		Notifiers: notifiers,
		Engine:    metrics.New(cfg.Metrics),
		Logger:    newLogger(cfg, "digest"),
	}
}

// buildNotifiers creates a notifier for every enabled channel.
func buildNotifiers(cfg config.DigestConfig) ([]digest.Notifier, error) {
	var notifiers []digest.Notifier
	if cfg.Slack.Enabled() {
		n, err := slack.New(slack.Opts{BotToken: cfg.Slack.BotToken, ChannelID: cfg.Slack.ChannelID})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if cfg.Discord.Enabled() {
		n, err := discord.New(discord.Opts{BotToken: cfg.Discord.BotToken, ChannelID: cfg.Discord.ChannelID})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if len(notifiers) == 0 {
		return nil, fmt.Errorf("digest: no channels configured (set digest.slack or digest.discord)")
	}
	return notifiers, nil
}
