package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmcdole/seerctl/internal/syncmon"
)

func newSyncCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Inspect and control the full library scan",
	}
	cmd.AddCommand(
		newSyncStatusCmd(c),
		newSyncControlCmd(c, "start", "Start a full library scan", (*syncmon.Monitor).Start),
		newSyncControlCmd(c, "cancel", "Cancel the running library scan", (*syncmon.Monitor).Cancel),
		newSyncWatchCmd(c),
	)
	return cmd
}

func newSyncStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current scan state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mon, err := c.monitor(nil)
			if err != nil {
				return err
			}
			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			if err := mon.Refresh(ctx); err != nil {
				return err
			}
			u, _ := mon.Status()
			if u.Err != nil {
				return u.Err
			}
			return c.printSync(u.Status, nil)
		},
	}
}

func newSyncControlCmd(c *cli, use, short string, control func(*syncmon.Monitor, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mon, err := c.monitor(nil)
			if err != nil {
				return err
			}
			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			if err := control(mon, ctx); err != nil {
				return err
			}
			// The monitor re-polled after the request
			u, _ := mon.Status()
			return c.printSync(u.Status, u.Err)
		},
	}
}

func newSyncWatchCmd(c *cli) *cobra.Command {
	var (
		interval time.Duration
		exitIdle bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the scan state until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("interval") {
				c.cfg.Sync.PollInterval = interval
			}
			mon, err := c.monitor(nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			updates := mon.Subscribe()
			done := make(chan struct{})
			go func() {
				defer close(done)
				mon.Run(ctx)
			}()

			last := ""
			for u := range updates {
				if err := c.printWatchUpdate(u, &last); err != nil {
					cancel()
					<-done
					return err
				}
				if exitIdle && u.Err == nil && !u.Status.Running {
					cancel()
				}
			}
			<-done
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", syncmon.DefaultInterval, "poll interval")
	cmd.Flags().BoolVar(&exitIdle, "exit-idle", false, "exit once no scan is running")
	return cmd
}

// printWatchUpdate prints u unless it repeats the previous human line
func (c *cli) printWatchUpdate(u syncmon.Update, last *string) error {
	if c.jsonOut {
		return c.printJSON(newSyncView(u.Status, u.Err))
	}

	line := formatSyncStatus(u.Status)
	if u.Err != nil {
		line = red("✗") + " status unavailable: " + u.Err.Error()
	}
	if line == *last {
		return nil
	}
	*last = line
	_, err := fmt.Fprintf(c.out, "%s  %s\n", u.At.Format("15:04:05"), line)
	return err
}
