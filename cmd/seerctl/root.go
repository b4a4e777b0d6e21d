package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmcdole/seerctl/internal/adapter"
	"github.com/mmcdole/seerctl/internal/apiclient"
	"github.com/mmcdole/seerctl/internal/connection"
	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/notifications"
	"github.com/mmcdole/seerctl/internal/notify"
	"github.com/mmcdole/seerctl/internal/store"
	"github.com/mmcdole/seerctl/internal/syncmon"
)

var errNotConfigured = errors.New("not configured: run 'seerctl setup' or pass --server and --api-key")

// cli carries state shared by every command
type cli struct {
	// flags
	configFile string
	serverURL  string
	apiKey     string
	jsonOut    bool
	verbose    bool

	loader  *adapter.Loader
	cfg     *adapter.Config
	logger  *slog.Logger
	journal domain.ActivityStore
	sink    notify.Sink
	api     domain.SettingsAPI

	out    io.Writer
	errOut io.Writer
	stdin  io.Reader

	// newAPI builds the backend client
	newAPI func(cfg *adapter.Config, logger *slog.Logger) domain.SettingsAPI
}

func newCLI() *cli {
	return &cli{
		logger: slog.Default(),
		out:    os.Stdout,
		errOut: os.Stderr,
		stdin:  os.Stdin,
		newAPI: func(cfg *adapter.Config, logger *slog.Logger) domain.SettingsAPI {
			return apiclient.NewClient(cfg.Server.URL, cfg.Server.APIKey, apiclient.Options{
				Timeout:    cfg.API.Timeout,
				RetryCount: cfg.API.RetryCount,
				Logger:     logger,
			})
		},
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "seerctl",
		Short:         "Settings console for a media request server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.cfg.IsConfigured() {
				return c.runSetup(cmd, setupOptions{})
			}
			return c.runTUI(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.SortFlags = false
	flags.StringVarP(&c.configFile, "config", "c", "", "config file (default ~/.config/seerctl/config.yaml)")
	flags.StringVar(&c.serverURL, "server", "", "request server base URL")
	flags.StringVar(&c.apiKey, "api-key", "", "API key sent as X-Api-Key")
	flags.BoolVar(&c.jsonOut, "json", false, "print JSON instead of tables")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newTUICmd(c),
		newConnectionCmd(c),
		newDiscoverCmd(c),
		newLibrariesCmd(c),
		newSyncCmd(c),
		newNotificationsCmd(c),
		newActivityCmd(c),
		newSetupCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup loads config, wires logging and opens the journal
func (c *cli) setup(cmd *cobra.Command) error {
	c.out = cmd.OutOrStdout()
	c.errOut = cmd.ErrOrStderr()
	if in := cmd.InOrStdin(); in != nil {
		c.stdin = in
	}

	c.loader = adapter.NewLoader(c.configFile)
	v := c.loader.Viper()
	flags := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("server.url", flags.Lookup("server")); err != nil {
		return err
	}
	if err := v.BindPFlag("server.api_key", flags.Lookup("api-key")); err != nil {
		return err
	}

	cfg, err := c.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger = adapter.SetupConsoleLogger(&cfg.Logging, os.Stderr, level)
	slog.SetDefault(c.logger)
	c.sink = notify.NewLogSink(c.errOut, c.logger)

	if cfg.Activity.Enabled {
		journal, err := store.NewActivityStore(cfg.Activity.File, 0)
		if err != nil {
			// Another seerctl may hold the lock
			c.logger.Warn("activity journal unavailable", "file", cfg.Activity.File, "error", err)
		} else {
			c.journal = journal
		}
	}

	c.logger.Debug("config loaded", "server", cfg.Server.URL, "command", cmd.CommandPath())
	return nil
}

func (c *cli) close() {
	if c.journal != nil {
		if err := c.journal.Close(); err != nil {
			c.logger.Warn("failed to close activity journal", "error", err)
		}
		c.journal = nil
	}
}

// client returns the backend client, building it on first use
func (c *cli) client() (domain.SettingsAPI, error) {
	if c.api != nil {
		return c.api, nil
	}
	if !c.cfg.IsConfigured() {
		return nil, errNotConfigured
	}
	c.api = c.newAPI(c.cfg, c.logger)
	return c.api, nil
}

func (c *cli) connectionService() (*connection.Service, error) {
	api, err := c.client()
	if err != nil {
		return nil, err
	}
	return connection.NewService(api, c.sink, c.journal, c.logger), nil
}

func (c *cli) discoverer() (*connection.Discoverer, error) {
	api, err := c.client()
	if err != nil {
		return nil, err
	}
	return connection.NewDiscoverer(api, c.sink, c.journal, c.logger), nil
}

func (c *cli) notificationsService() (*notifications.Service, error) {
	api, err := c.client()
	if err != nil {
		return nil, err
	}
	return notifications.NewService(api, c.cfg.Server.UserID, c.sink, c.journal, c.logger), nil
}

func (c *cli) monitor(observer domain.SyncObserver) (*syncmon.Monitor, error) {
	api, err := c.client()
	if err != nil {
		return nil, err
	}
	return syncmon.New(api, syncmon.Options{
		Interval: c.cfg.Sync.PollInterval,
		Sink:     c.sink,
		Journal:  c.journal,
		Observer: observer,
		Logger:   c.logger,
	}), nil
}

// requestContext bounds one command's requests by the configured timeout
func (c *cli) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.cfg.API.Timeout)
}
