package main

import (
	"fmt"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
)

func newLibrariesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "libraries",
		Aliases: []string{"libs"},
		Short:   "List, toggle or re-sync media server libraries",
	}
	cmd.AddCommand(newLibrariesListCmd(c), newLibrariesToggleCmd(c), newLibrariesSyncCmd(c))
	return cmd
}

func newLibrariesListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List libraries and whether they are enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.connectionService()
			if err != nil {
				return err
			}
			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			settings, err := svc.Get(ctx)
			if err != nil {
				return err
			}
			return c.printLibraries(settings.Libraries)
		},
	}
}

func newLibrariesToggleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Enable or disable one library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.connectionService()
			if err != nil {
				return err
			}
			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			settings, err := svc.ToggleLibrary(ctx, args[0])
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printLibraries(settings.Libraries)
			}

			lib, ok := settings.FindLibrary(args[0])
			if !ok {
				return c.printLibraries(settings.Libraries)
			}
			state := "disabled"
			if lib.Enabled {
				state = "enabled"
			}
			_, err = fmt.Fprintf(c.out, "%s %s is now %s\n", mark(true), lib.Name, state)
			return err
		},
	}
}

func newLibrariesSyncCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Refresh the library list from the media server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.connectionService()
			if err != nil {
				return err
			}
			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			settings, err := svc.SyncLibraries(ctx)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printLibraries(settings.Libraries)
			}
			_, err = fmt.Fprintf(c.out, "%s found\n", english.Plural(len(settings.Libraries), "library", "libraries"))
			return err
		},
	}
}
