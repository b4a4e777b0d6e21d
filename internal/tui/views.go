package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/form"
	"github.com/mmcdole/seerctl/internal/tui/components"
	"github.com/mmcdole/seerctl/internal/tui/styles"
)

// View renders the UI
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	var body string
	switch {
	case m.picker.IsVisible():
		body = m.renderCentered(m.picker.View(min(m.bodyWidth(), 80), m.SpinnerFrame))
	case m.ShowHelp:
		body = m.renderCentered(m.renderHelp())
	default:
		body = m.renderTab()
	}
	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Padding(0, 2).Render(body)

	toasts := components.RenderToasts(m.svc.Toasts.Active(m.now()), m.Width, m.SpinnerFrame)
	if toasts != "" {
		body = overlayBottom(body, toasts)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	title := styles.TitleStyle.Render("seerctl")
	if m.svc.ServerURL != "" {
		title += " " + styles.DimStyle.Render(m.svc.ServerURL)
	}

	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.Tab {
			tabs[i] = styles.ActiveTabStyle.Render(label)
		} else {
			tabs[i] = styles.InactiveTabStyle.Render(label)
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return lipgloss.JoinVertical(lipgloss.Left, " "+title, bar, "")
}

func (m Model) renderFooter() string {
	var hints []string
	switch m.Tab {
	case TabConnection:
		hints = []string{"tab next", "ctrl+s save", "ctrl+r reset", "ctrl+f discover"}
	case TabLibraries:
		hints = []string{"space toggle", "s sync list", "/ filter"}
	case TabSync:
		hints = []string{"s start", "c cancel"}
	case TabNotifications:
		hints = []string{"tab next", "ctrl+s save", "ctrl+r reset"}
	case TabActivity:
		hints = []string{"r refresh", "X clear"}
	}
	hints = append(hints, "ctrl+t tab", "? help", "ctrl+c quit")

	left := styles.DimStyle.Render(" " + strings.Join(hints, " • "))
	right := ""
	if len(m.activity) > 0 {
		right = styles.DimStyle.Render(renderActivitySummary(m.activity[0]) + " ")
	}
	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderTab() string {
	switch m.Tab {
	case TabConnection:
		return m.renderConnection()
	case TabLibraries:
		return m.renderLibraries()
	case TabSync:
		return m.syncPanel.View(m.bodyWidth(), m.SpinnerFrame)
	case TabNotifications:
		return m.renderNotifications()
	case TabActivity:
		return m.renderActivity()
	}
	return ""
}

// formState renders the loading and failure states shared by both forms
func (m Model) formState(state form.State, err error) (string, bool) {
	switch state {
	case form.StateLoading:
		return RenderSpinner(m.SpinnerFrame) + " Loading settings…", true
	case form.StateFailed:
		return RenderError(err, m.bodyWidth()) + "\n\n" +
			styles.DimStyle.Render("Press ctrl+r to retry."), true
	}
	return "", false
}

func renderSubmit(busy, enabled bool) string {
	switch {
	case busy:
		return styles.DisabledButtonStyle.Render("Saving…")
	case !enabled:
		return styles.DisabledButtonStyle.Render("Save Changes")
	default:
		return styles.ButtonStyle.Render("Save Changes")
	}
}

func (m Model) renderConnection() string {
	if s, ok := m.formState(m.connForm.State(), m.connForm.Err()); ok {
		return s
	}

	width := m.bodyWidth()
	server := m.connForm.Server()

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Media Server Settings"))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("Configure the connection to your media server."))
	b.WriteString("\n\n")

	name := server.Name
	if name == "" {
		name = "Not connected"
	}
	b.WriteString(styles.LabelStyle.Render("Server Name") + styles.ReadOnlyStyle.Render(name) + "\n")
	if server.MachineID != "" {
		b.WriteString(styles.LabelStyle.Render("Machine ID") + styles.ReadOnlyStyle.Render(server.MachineID) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.connFields.View(width, m.connectionErrors()))
	b.WriteString("\n\n")
	b.WriteString(renderSubmit(m.connForm.Busy(), m.connForm.CanSubmit()))
	b.WriteString("  ")
	b.WriteString(styles.DimStyle.Render("ctrl+f to pick a discovered server"))
	return b.String()
}

func (m Model) renderLibraries() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Libraries"))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("Choose the libraries to scan. Sync the list after adding libraries on the server."))
	b.WriteString("\n\n")

	if m.connForm.State() == form.StateLoading {
		b.WriteString(RenderSpinner(m.SpinnerFrame) + " Loading libraries…")
		return b.String()
	}
	if m.librariesBusy {
		b.WriteString(RenderSpinner(m.SpinnerFrame) + " Updating…\n")
	}
	b.WriteString(m.libraries.View(m.bodyWidth(), m.SpinnerFrame))
	return b.String()
}

func (m Model) renderNotifications() string {
	if s, ok := m.formState(m.notifForm.State(), m.notifForm.Err()); ok {
		return s
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Notifications"))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("Personal notification settings for user "+m.svc.Notifications.UserID()+"."))
	b.WriteString("\n\n")
	b.WriteString(m.notifFields.View(m.bodyWidth(), m.notificationErrors()))
	b.WriteString("\n\n")
	b.WriteString(renderSubmit(m.notifForm.Busy(), m.notifForm.CanSubmit()))
	return b.String()
}

func (m Model) renderActivity() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Activity"))
	b.WriteString("\n\n")

	if m.svc.Journal == nil {
		b.WriteString(styles.DimStyle.Render("Activity journal is disabled."))
		return b.String()
	}
	if m.activityErr != nil {
		b.WriteString(RenderError(m.activityErr, m.bodyWidth()))
		return b.String()
	}
	if len(m.activity) == 0 {
		b.WriteString(styles.DimStyle.Render("No activity yet."))
		return b.String()
	}

	width := m.bodyWidth()
	limit := max(m.bodyHeight()-3, 1)
	for i, a := range m.activity {
		if i >= limit {
			break
		}
		b.WriteString(renderActivityRow(a, width))
		b.WriteString("\n")
	}
	return b.String()
}

func renderActivityRow(a domain.Activity, width int) string {
	mark := styles.SuccessStyle.Render("✓")
	if !a.OK {
		mark = styles.ErrorStyle.Render("✗")
	}
	when := styles.DimStyle.Render(styles.Pad(humanize.Time(a.At), 16))
	kind := styles.AccentStyle.Render(styles.Pad(string(a.Kind), 12))

	text := a.Subject
	if a.Detail != "" {
		text += ": " + a.Detail
	}
	text = styles.Truncate(text, max(width-34, 10))
	return fmt.Sprintf("%s %s %s %s", mark, when, kind, text)
}

func renderActivitySummary(a domain.Activity) string {
	status := "ok"
	if !a.OK {
		status = "failed"
	}
	return fmt.Sprintf("last: %s %s (%s)", a.Kind, status, humanize.Time(a.At))
}

func (m Model) renderHelp() string {
	var rows []string
	rows = append(rows, styles.ModalTitleStyle.Render("Keys"), "")
	for _, e := range m.keys.HelpEntries() {
		rows = append(rows, styles.HelpKeyStyle.Render(styles.Pad(e[0], 14))+styles.HelpDescStyle.Render(e[1]))
	}
	rows = append(rows, "", styles.DimStyle.Render("esc to close"))
	return styles.ModalStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderCentered(content string) string {
	return lipgloss.Place(m.Width-4, m.bodyHeight(), lipgloss.Center, lipgloss.Center, content)
}

// overlayBottom replaces the last lines of body with overlay
func overlayBottom(body, overlay string) string {
	bodyLines := strings.Split(body, "\n")
	overLines := strings.Split(overlay, "\n")
	start := max(len(bodyLines)-len(overLines), 0)
	for i, line := range overLines {
		if start+i < len(bodyLines) {
			bodyLines[start+i] = line
		}
	}
	return strings.Join(bodyLines, "\n")
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wordLen := lipgloss.Width(word)

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}

		if i > 0 && lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
}

// RenderError renders an error message
func RenderError(err error, width int) string {
	msg := wordWrap(err.Error(), width-4)
	return styles.ErrorStyle.Render("Error: " + msg)
}
