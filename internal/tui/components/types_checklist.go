package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/tui/styles"
)

type typeOption struct {
	t     domain.NotificationType
	label string
}

var typeOptions = []typeOption{
	{domain.NotificationMediaPending, "Request Pending Approval"},
	{domain.NotificationMediaAutoRequested, "Request Automatically Submitted"},
	{domain.NotificationMediaApproved, "Request Approved"},
	{domain.NotificationMediaAutoApproved, "Request Automatically Approved"},
	{domain.NotificationMediaAvailable, "Request Available"},
	{domain.NotificationMediaDeclined, "Request Declined"},
	{domain.NotificationMediaFailed, "Request Processing Failed"},
	{domain.NotificationIssueCreated, "Issue Reported"},
	{domain.NotificationIssueComment, "Issue Comment"},
	{domain.NotificationIssueResolved, "Issue Resolved"},
	{domain.NotificationIssueReopened, "Issue Reopened"},
}

// TypesChecklist edits one bitmask per channel. left/right switch channel,
// up/down move, space toggles.
type TypesChecklist struct {
	types   map[domain.Channel]domain.NotificationType
	channel int
	cursor  int
	focused bool
}

// NewTypesChecklist creates an empty checklist
func NewTypesChecklist() *TypesChecklist {
	return &TypesChecklist{types: make(map[domain.Channel]domain.NotificationType)}
}

func (c *TypesChecklist) Key() string    { return "Types" }
func (c *TypesChecklist) Focus() tea.Cmd { c.focused = true; return nil }
func (c *TypesChecklist) Blur()          { c.focused = false }
func (c *TypesChecklist) Focused() bool  { return c.focused }

// SetTypes replaces all masks with a copy of types
func (c *TypesChecklist) SetTypes(types map[domain.Channel]domain.NotificationType) {
	c.types = make(map[domain.Channel]domain.NotificationType, len(types))
	for k, v := range types {
		c.types[k] = v
	}
}

// Types returns a copy of all masks
func (c *TypesChecklist) Types() map[domain.Channel]domain.NotificationType {
	out := make(map[domain.Channel]domain.NotificationType, len(c.types))
	for k, v := range c.types {
		out[k] = v
	}
	return out
}

// Channel returns the channel being edited
func (c *TypesChecklist) Channel() domain.Channel { return domain.Channels[c.channel] }

func (c *TypesChecklist) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !c.focused {
		return nil
	}
	switch keyMsg.String() {
	case "left", "h":
		c.channel = (c.channel - 1 + len(domain.Channels)) % len(domain.Channels)
	case "right", "l":
		c.channel = (c.channel + 1) % len(domain.Channels)
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < len(typeOptions)-1 {
			c.cursor++
		}
	case " ", "x":
		ch := c.Channel()
		opt := typeOptions[c.cursor].t
		if c.types[ch].Has(opt) {
			c.types[ch] = c.types[ch].Without(opt)
		} else {
			c.types[ch] = c.types[ch].With(opt)
		}
	}
	return nil
}

func (c *TypesChecklist) View(width int, errMsg string) string {
	var tabs []string
	for i, ch := range domain.Channels {
		name := string(ch)
		if i == c.channel {
			tabs = append(tabs, styles.ActiveTabStyle.Padding(0, 1).Render(name))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Padding(0, 1).Render(name))
		}
	}

	label := styles.LabelStyle
	if c.focused {
		label = styles.FocusedLabelStyle
	}

	rows := []string{label.Render("Notification Types") + strings.Join(tabs, "")}
	mask := c.types[c.Channel()]
	for i, opt := range typeOptions {
		box := styles.UncheckedChar
		if mask.Has(opt.t) {
			box = styles.CheckedChar
		}
		parts := []styles.RowPart{{Text: box + " " + opt.label}}
		rows = append(rows, styles.RenderListRow(parts, c.focused && i == c.cursor, min(width, 60)))
	}
	if errMsg != "" {
		rows = append(rows, styles.ErrorStyle.Render(errMsg))
	}
	return strings.Join(rows, "\n")
}
