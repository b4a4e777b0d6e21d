package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errJournalDisabled = errors.New("activity journal is disabled or held by another seerctl")

func newActivityCmd(c *cli) *cobra.Command {
	var (
		limit int
		wipe  bool
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the local journal of settings changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.journal == nil {
				return errJournalDisabled
			}
			if wipe {
				if err := c.journal.Clear(); err != nil {
					return err
				}
				_, err := fmt.Fprintf(c.out, "%s activity cleared\n", mark(true))
				return err
			}

			entries, err := c.journal.Recent(limit)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(entries)
			}
			if len(entries) == 0 {
				_, err := fmt.Fprintln(c.out, "No activity yet.")
				return err
			}

			tw := newTable(c.out)
			fmt.Fprintln(tw, header("WHEN", "KIND", "OK", "SUBJECT", "DETAIL"))
			for _, a := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", humanize.Time(a.At), a.Kind, mark(a.OK), a.Subject, a.Detail)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries (0 for all)")
	cmd.Flags().BoolVar(&wipe, "clear", false, "delete every entry")
	return cmd
}
