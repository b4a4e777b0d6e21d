package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mmcdole/seerctl/internal/connection"
	"github.com/mmcdole/seerctl/internal/validate"
)

func newConnectionCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connection",
		Short: "Show or change the media server connection",
	}
	cmd.AddCommand(newConnectionGetCmd(c), newConnectionSetCmd(c))
	return cmd
}

func newConnectionGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current connection settings",
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
			return c.printConnection(settings)
		},
	}
}

func newConnectionSetCmd(c *cli) *cobra.Command {
	var (
		host        string
		port        string
		secure      bool
		externalURL string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change host, port, SSL or web app URL",
		Long: `Change the connection. Only the flags given are changed; everything else
is kept from the server. The library list is re-synced after a successful save.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if changedLocalFlags(cmd) == 0 {
				return errors.New("nothing to change: pass --host, --port, --ssl or --external-url")
			}

			svc, err := c.connectionService()
			if err != nil {
				return err
			}
			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			f := svc.NewForm()
			if err := f.Load(ctx); err != nil {
				return err
			}
			f.Update(func(v *connection.Values) {
				if flags.Changed("host") {
					v.Host = host
				}
				if flags.Changed("port") {
					v.Port = port
				}
				if flags.Changed("ssl") {
					v.UseSecureTransport = secure
				}
				if flags.Changed("external-url") {
					v.ExternalURL = externalURL
				}
			})

			if err := c.submit(f.Submit(ctx)); err != nil {
				return err
			}
			settings, err := svc.Get(ctx)
			if err != nil {
				return err
			}
			return c.printConnection(settings)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "hostname or IP address")
	cmd.Flags().StringVar(&port, "port", "", "TCP port")
	cmd.Flags().BoolVar(&secure, "ssl", false, "connect over TLS")
	cmd.Flags().StringVar(&externalURL, "external-url", "", "externally facing web app URL (empty clears)")
	return cmd
}

// changedLocalFlags counts flags of cmd itself that were set
func changedLocalFlags(cmd *cobra.Command) int {
	n := 0
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			n++
		}
	})
	return n
}

// submit reports per-field validation messages and passes other errors through
func (c *cli) submit(err error) error {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		for _, field := range verrs.Fields() {
			fmt.Fprintf(c.errOut, "%s %s: %s\n", red("✗"), field, verrs[field])
		}
		return fmt.Errorf("%s failed validation", english.Plural(len(verrs), "field", ""))
	}
	return err
}
