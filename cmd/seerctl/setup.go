package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/tui/styles"
)

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

const verifyTimeout = 15 * time.Second

type setupOptions struct {
	userID string
}

func newSetupCmd(c *cli) *cobra.Command {
	var opts setupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure the request server URL and API key",
		Long: `Prompt for the request server URL and API key, check them against the
server and save them to the config file. --server and --api-key skip the
matching prompts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSetup(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.userID, "user-id", "", "user whose notification settings are edited")
	return cmd
}

// runSetup handles the initial setup when not configured
func (c *cli) runSetup(cmd *cobra.Command, opts setupOptions) error {
	cfg := c.cfg
	in := bufio.NewReader(c.stdin)

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Welcome to seerctl!")
	fmt.Fprintln(c.out)

	// Loop until the server accepts the URL and key
	var settings domain.ConnectionSettings
	for {
		for cfg.Server.URL == "" {
			url, err := c.prompt(in, "Request server URL (e.g., http://localhost:5055): ")
			if err != nil {
				return err
			}
			if url == "" {
				fmt.Fprintln(c.out, "Server URL cannot be empty. Please try again.")
				continue
			}
			cfg.Server.URL = strings.TrimRight(url, "/")
		}

		for cfg.Server.APIKey == "" {
			key, err := c.readSecret(in, "API key (Settings > General): ")
			if err != nil {
				return err
			}
			if key == "" {
				fmt.Fprintln(c.out, "API key cannot be empty. Please try again.")
				continue
			}
			cfg.Server.APIKey = key
		}

		fmt.Fprintln(c.out)
		var err error
		settings, err = c.verifyWithSpinner(cmd.Context(), c.newAPI(cfg, c.logger))
		if err == nil {
			break
		}

		fmt.Fprintf(c.out, "%s Could not verify server: %v\n", red("✗"), err)
		if errors.Is(err, domain.ErrAuthFailed) {
			fmt.Fprintln(c.out, "The API key was rejected. Please try again.")
		} else {
			fmt.Fprintln(c.out, "Please check the URL and try again.")
			cfg.Server.URL = ""
		}
		cfg.Server.APIKey = ""
		fmt.Fprintln(c.out)
	}

	switch {
	case opts.userID != "":
		cfg.Server.UserID = opts.userID
	default:
		id, err := c.prompt(in, fmt.Sprintf("User ID for notification settings [%s]: ", cfg.Server.UserID))
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if id != "" {
			cfg.Server.UserID = id
		}
	}

	if err := c.loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(c.out)
	if settings.Name != "" {
		fmt.Fprintf(c.out, "%s Connected (media server: %s)\n", green("✓"), settings.Name)
	}
	fmt.Fprintf(c.out, "%s Configuration saved to %s\n", green("✓"), c.loader.ConfigFile())
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Run seerctl again to start the console.")
	return nil
}

func (c *cli) prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(c.out, label)
	return readLine(in)
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads without echo when stdin is a terminal
func (c *cli) readSecret(in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(c.out, label)
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return readLine(in)
}

// verifyServer checks the key can read connection and sync settings, both
// of which need admin rights
func verifyServer(ctx context.Context, api domain.SettingsAPI) (domain.ConnectionSettings, error) {
	g, gctx := errgroup.WithContext(ctx)

	var settings domain.ConnectionSettings
	g.Go(func() error {
		s, err := api.GetConnection(gctx)
		settings = s
		return err
	})
	g.Go(func() error {
		_, err := api.GetSyncStatus(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.ConnectionSettings{}, err
	}
	return settings, nil
}

// verifyWithSpinner verifies the server with a visual spinner
func (c *cli) verifyWithSpinner(ctx context.Context, api domain.SettingsAPI) (domain.ConnectionSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	type result struct {
		settings domain.ConnectionSettings
		err      error
	}
	resultCh := make(chan result, 1)

	go func() {
		s, err := verifyServer(ctx, api)
		resultCh <- result{s, err}
	}()

	f, ok := c.out.(*os.File)
	animate := ok && isatty.IsTerminal(f.Fd())
	if !animate {
		res := <-resultCh
		return res.settings, res.err
	}

	frame := 0
	fmt.Fprintf(c.out, "\r%s Checking server...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Fprint(c.out, clearSpinnerLine)
			return res.settings, res.err

		case <-ticker.C:
			frame++
			fmt.Fprintf(c.out, "\r%s Checking server...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Fprint(c.out, clearSpinnerLine)
			return domain.ConnectionSettings{}, fmt.Errorf("verification timed out")
		}
	}
}
