package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/notifications"
)

func newNotificationsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notify"},
		Short:   "Show or change the configured user's notification settings",
	}
	cmd.AddCommand(newNotificationsGetCmd(c), newNotificationsSetCmd(c))
	return cmd
}

type notificationsView struct {
	UserID                   string              `json:"userId"`
	EmailEnabled             bool                `json:"emailEnabled"`
	PGPKey                   string              `json:"pgpKey,omitempty"`
	DiscordID                string              `json:"discordId,omitempty"`
	PushbulletAccessToken    string              `json:"pushbulletAccessToken,omitempty"`
	PushoverApplicationToken string              `json:"pushoverApplicationToken,omitempty"`
	PushoverUserKey          string              `json:"pushoverUserKey,omitempty"`
	TelegramChatID           string              `json:"telegramChatId,omitempty"`
	TelegramSendSilently     bool                `json:"telegramSendSilently"`
	WebPushEnabled           bool                `json:"webPushEnabled"`
	Types                    map[string][]string `json:"types"`
}

func redact(s string, show bool) string {
	if s == "" || show {
		return s
	}
	return "(set)"
}

func newNotificationsGetCmd(c *cli) *cobra.Command {
	var showSecrets bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print notification settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.notificationsService()
			if err != nil {
				return err
			}
			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			v, err := svc.Load(ctx)
			if err != nil {
				return err
			}
			return c.printNotifications(svc.UserID(), v, showSecrets)
		},
	}
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print tokens and keys instead of (set)")
	return cmd
}

func (c *cli) printNotifications(userID string, v notifications.Values, showSecrets bool) error {
	if c.jsonOut {
		view := notificationsView{
			UserID:                   userID,
			EmailEnabled:             v.EmailEnabled,
			PGPKey:                   v.PGPKey,
			DiscordID:                v.DiscordID,
			PushbulletAccessToken:    redact(v.PushbulletAccessToken, showSecrets),
			PushoverApplicationToken: redact(v.PushoverApplicationToken, showSecrets),
			PushoverUserKey:          redact(v.PushoverUserKey, showSecrets),
			TelegramChatID:           v.TelegramChatID,
			TelegramSendSilently:     v.TelegramSendSilently,
			WebPushEnabled:           v.WebPushEnabled,
			Types:                    make(map[string][]string, len(domain.Channels)),
		}
		for _, ch := range domain.Channels {
			view.Types[string(ch)] = v.TypesFor(ch).Names()
		}
		return c.printJSON(view)
	}

	pgp := "(none)"
	if v.PGPKey != "" {
		pgp = "(set)"
	}

	tw := newTable(c.out)
	fmt.Fprintf(tw, "User\t%s\n", userID)
	fmt.Fprintf(tw, "Email\t%s\n", yesNo(v.EmailEnabled))
	fmt.Fprintf(tw, "PGP key\t%s\n", pgp)
	fmt.Fprintf(tw, "Discord ID\t%s\n", v.DiscordID)
	fmt.Fprintf(tw, "Pushbullet token\t%s\n", redact(v.PushbulletAccessToken, showSecrets))
	fmt.Fprintf(tw, "Pushover app token\t%s\n", redact(v.PushoverApplicationToken, showSecrets))
	fmt.Fprintf(tw, "Pushover user key\t%s\n", redact(v.PushoverUserKey, showSecrets))
	fmt.Fprintf(tw, "Telegram chat ID\t%s\n", v.TelegramChatID)
	fmt.Fprintf(tw, "Telegram silent\t%s\n", yesNo(v.TelegramSendSilently))
	fmt.Fprintf(tw, "Web push\t%s\n", yesNo(v.WebPushEnabled))
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, header("CHANNEL", "TYPES"))
	for _, ch := range domain.Channels {
		fmt.Fprintf(tw, "%s\t%s\n", ch, v.TypesFor(ch))
	}
	return tw.Flush()
}

// parseTypeFlags parses channel=type,type pairs
func parseTypeFlags(pairs []string) (map[domain.Channel]domain.NotificationType, error) {
	out := make(map[domain.Channel]domain.NotificationType, len(pairs))
	for _, pair := range pairs {
		name, list, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("--types %q: want channel=type,type", pair)
		}
		ch := domain.Channel(strings.ToLower(strings.TrimSpace(name)))
		known := false
		for _, c := range domain.Channels {
			if c == ch {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("--types %q: unknown channel %q", pair, name)
		}
		t, err := domain.ParseNotificationTypes(list)
		if err != nil {
			return nil, fmt.Errorf("--types %q: %w", pair, err)
		}
		out[ch] = t
	}
	return out, nil
}

func readPGPKey(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read pgp key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func newNotificationsSetCmd(c *cli) *cobra.Command {
	var (
		email, silent, webPush                bool
		pgpFile, discord, pushbullet          string
		pushoverApp, pushoverUser, telegramID string
		types                                 []string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change notification settings",
		Long: `Change notification settings. Only the flags given are changed.
--types takes channel=type,type and may be repeated, e.g.
  --types email=media-available,media-declined --types telegram=none`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if changedLocalFlags(cmd) == 0 {
				return fmt.Errorf("nothing to change: see 'seerctl notifications set --help'")
			}

			typeMasks, err := parseTypeFlags(types)
			if err != nil {
				return err
			}
			var pgpKey string
			if flags.Changed("pgp-key-file") {
				if pgpKey, err = readPGPKey(pgpFile, c.stdin); err != nil {
					return err
				}
			}

			svc, err := c.notificationsService()
			if err != nil {
				return err
			}
			ctx, cancel := c.requestContext(cmd)
			defer cancel()

			f := svc.NewForm()
			if err := f.Load(ctx); err != nil {
				return err
			}
			f.Update(func(v *notifications.Values) {
				if flags.Changed("email") {
					v.EmailEnabled = email
				}
				if flags.Changed("pgp-key-file") {
					v.PGPKey = pgpKey
				}
				if flags.Changed("discord-id") {
					v.DiscordID = discord
				}
				if flags.Changed("pushbullet-token") {
					v.PushbulletAccessToken = pushbullet
				}
				if flags.Changed("pushover-app-token") {
					v.PushoverApplicationToken = pushoverApp
				}
				if flags.Changed("pushover-user-key") {
					v.PushoverUserKey = pushoverUser
				}
				if flags.Changed("telegram-chat-id") {
					v.TelegramChatID = telegramID
				}
				if flags.Changed("telegram-silent") {
					v.TelegramSendSilently = silent
				}
				if flags.Changed("webpush") {
					v.WebPushEnabled = webPush
				}
				for ch, t := range typeMasks {
					*v = v.WithTypes(ch, t)
				}
			})

			if err := c.submit(f.Submit(ctx)); err != nil {
				return err
			}
			return c.printNotifications(svc.UserID(), f.Server(), false)
		},
	}

	fl := cmd.Flags()
	fl.SortFlags = false
	fl.BoolVar(&email, "email", false, "email notifications")
	fl.StringVar(&pgpFile, "pgp-key-file", "", "armored PGP public key file (- for stdin, empty file clears)")
	fl.StringVar(&discord, "discord-id", "", "Discord user ID")
	fl.StringVar(&pushbullet, "pushbullet-token", "", "Pushbullet access token")
	fl.StringVar(&pushoverApp, "pushover-app-token", "", "Pushover application token")
	fl.StringVar(&pushoverUser, "pushover-user-key", "", "Pushover user key")
	fl.StringVar(&telegramID, "telegram-chat-id", "", "Telegram chat ID")
	fl.BoolVar(&silent, "telegram-silent", false, "send Telegram messages silently")
	fl.BoolVar(&webPush, "webpush", false, "web push notifications")
	fl.StringArrayVar(&types, "types", nil, "channel=type,type (repeatable)")
	return cmd
}
