package domain

import (
	"fmt"
	"strings"
)

// Channel names a notification delivery agent
type Channel string

const (
	ChannelEmail      Channel = "email"
	ChannelDiscord    Channel = "discord"
	ChannelPushbullet Channel = "pushbullet"
	ChannelPushover   Channel = "pushover"
	ChannelTelegram   Channel = "telegram"
	ChannelWebPush    Channel = "webpush"
)

// Channels lists every channel in display order
var Channels = []Channel{
	ChannelEmail, ChannelDiscord, ChannelPushbullet,
	ChannelPushover, ChannelTelegram, ChannelWebPush,
}

// NotificationType is a bitmask of events a user subscribes to
type NotificationType int

const (
	NotificationNone               NotificationType = 0
	NotificationMediaPending       NotificationType = 2
	NotificationMediaApproved      NotificationType = 4
	NotificationMediaAvailable     NotificationType = 8
	NotificationMediaFailed        NotificationType = 16
	NotificationTest               NotificationType = 32
	NotificationMediaDeclined      NotificationType = 64
	NotificationMediaAutoApproved  NotificationType = 128
	NotificationIssueCreated       NotificationType = 256
	NotificationIssueComment       NotificationType = 512
	NotificationIssueResolved      NotificationType = 1024
	NotificationIssueReopened      NotificationType = 2048
	NotificationMediaAutoRequested NotificationType = 4096
)

var notificationNames = []struct {
	t    NotificationType
	name string
}{
	{NotificationMediaPending, "media-pending"},
	{NotificationMediaApproved, "media-approved"},
	{NotificationMediaAutoApproved, "media-auto-approved"},
	{NotificationMediaAutoRequested, "media-auto-requested"},
	{NotificationMediaAvailable, "media-available"},
	{NotificationMediaDeclined, "media-declined"},
	{NotificationMediaFailed, "media-failed"},
	{NotificationIssueCreated, "issue-created"},
	{NotificationIssueComment, "issue-comment"},
	{NotificationIssueResolved, "issue-resolved"},
	{NotificationIssueReopened, "issue-reopened"},
	{NotificationTest, "test"},
}

// Has reports whether every bit of other is set
func (t NotificationType) Has(other NotificationType) bool {
	return other != 0 && t&other == other
}

// With returns t with other's bits set
func (t NotificationType) With(other NotificationType) NotificationType { return t | other }

// Without returns t with other's bits cleared
func (t NotificationType) Without(other NotificationType) NotificationType { return t &^ other }

// Names returns the kebab-case names of set bits in display order
func (t NotificationType) Names() []string {
	var names []string
	for _, n := range notificationNames {
		if t.Has(n.t) {
			names = append(names, n.name)
		}
	}
	return names
}

// String implements fmt.Stringer
func (t NotificationType) String() string {
	if t == NotificationNone {
		return "none"
	}
	return strings.Join(t.Names(), ",")
}

// ParseNotificationTypes parses a comma separated list of type names.
// "none" and "" yield NotificationNone.
func ParseNotificationTypes(s string) (NotificationType, error) {
	var out NotificationType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" || part == "none" {
			continue
		}
		found := false
		for _, n := range notificationNames {
			if n.name == part {
				out = out.With(n.t)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown notification type %q", part)
		}
	}
	return out, nil
}

// NotificationSettings is a user's per-channel notification configuration
type NotificationSettings struct {
	EmailEnabled             bool
	PGPKey                   string
	DiscordID                string
	PushbulletAccessToken    string
	PushoverApplicationToken string
	PushoverUserKey          string
	TelegramChatID           string
	TelegramSendSilently     bool
	WebPushEnabled           bool
	NotificationTypes        map[Channel]NotificationType
}

// Types returns the bitmask for a channel (NotificationNone if unset)
func (n NotificationSettings) Types(ch Channel) NotificationType {
	if n.NotificationTypes == nil {
		return NotificationNone
	}
	return n.NotificationTypes[ch]
}

// SetTypes replaces the bitmask for a channel
func (n *NotificationSettings) SetTypes(ch Channel, t NotificationType) {
	if n.NotificationTypes == nil {
		n.NotificationTypes = make(map[Channel]NotificationType)
	}
	n.NotificationTypes[ch] = t
}

// Clone returns a copy that does not share the types map
func (n NotificationSettings) Clone() NotificationSettings {
	out := n
	out.NotificationTypes = make(map[Channel]NotificationType, len(n.NotificationTypes))
	for k, v := range n.NotificationTypes {
		out.NotificationTypes[k] = v
	}
	return out
}
