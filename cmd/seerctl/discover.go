package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/seerctl/internal/connection"
)

func newDiscoverCmd(c *cli) *cobra.Command {
	var (
		match string
		apply int
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List media servers reachable from the request server",
		Long: `List every connection of every media server the request server can see,
reachable and secure connections first. --apply N saves entry N as the
current connection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.discoverer()
			if err != nil {
				return err
			}
			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			servers, err := d.Refresh(ctx)
			if err != nil {
				return err
			}
			servers = connection.Filter(servers, match)

			if apply == 0 {
				return c.printServers(servers)
			}
			if apply < 1 || apply > len(servers) {
				return fmt.Errorf("--apply %d out of range (1-%d)", apply, len(servers))
			}
			chosen := servers[apply-1]

			svc, err := c.connectionService()
			if err != nil {
				return err
			}
			f := svc.NewForm()
			if err := f.Load(ctx); err != nil {
				return err
			}

			var applyErr error
			f.Update(func(v *connection.Values) {
				applyErr = connection.Apply(v, chosen)
			})
			if applyErr != nil {
				return applyErr
			}

			if err := c.submit(f.Submit(ctx)); err != nil {
				return err
			}
			settings, err := f.Server().ToSettings()
			if err != nil {
				return err
			}
			return c.printConnection(settings)
		},
	}

	cmd.Flags().StringVarP(&match, "match", "m", "", "fuzzy filter on name and address")
	cmd.Flags().IntVar(&apply, "apply", 0, "save entry N as the connection")
	return cmd
}
