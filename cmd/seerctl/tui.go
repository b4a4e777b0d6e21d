package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/seerctl/internal/adapter"
	"github.com/mmcdole/seerctl/internal/connection"
	"github.com/mmcdole/seerctl/internal/notifications"
	"github.com/mmcdole/seerctl/internal/notify"
	"github.com/mmcdole/seerctl/internal/syncmon"
	"github.com/mmcdole/seerctl/internal/tui"
)

func newTUICmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive settings console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd)
		},
	}
}

func (c *cli) runTUI(cmd *cobra.Command) error {
	// The TUI owns the terminal, so log to file only
	logger, err := adapter.SetupLogger(&c.cfg.Logging)
	if err != nil {
		logger = adapter.NullLogger()
	}
	c.logger = logger

	api, err := c.client()
	if err != nil {
		return err
	}

	toasts := notify.NewQueue(c.cfg.UI.ToastDuration)
	updates := make(chan syncmon.Update, 1)

	svc := tui.Services{
		ServerURL:     c.cfg.Server.URL,
		Connection:    connection.NewService(api, toasts, c.journal, logger),
		Discoverer:    connection.NewDiscoverer(api, toasts, c.journal, logger),
		Notifications: notifications.NewService(api, c.cfg.Server.UserID, toasts, c.journal, logger),
		NewMonitor: func() *syncmon.Monitor {
			return syncmon.New(api, syncmon.Options{
				Interval: c.cfg.Sync.PollInterval,
				Sink:     toasts,
				Journal:  c.journal,
				Observer: tui.NewChannelObserver(updates),
				Logger:   logger,
			})
		},
		SyncUpdates: updates,
		Toasts:      toasts,
		Journal:     c.journal,
		Timeout:     c.cfg.API.Timeout,
		Logger:      logger,
	}

	p := tea.NewProgram(
		tui.NewModel(svc),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)

	logger.Info("starting TUI", "server", c.cfg.Server.URL)
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	logger.Info("shutting down")
	return nil
}
