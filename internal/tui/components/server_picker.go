package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/seerctl/internal/connection"
	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/tui/styles"
)

// ServerPicker lists discovered connections. Unreachable entries are shown
// but cannot be chosen.
type ServerPicker struct {
	visible bool
	loading bool
	servers []domain.DiscoveredServer
	shown   []domain.DiscoveredServer
	cursor  int
	notice  string

	filter textinput.Model
	keys   PickerKeyMap
}

// NewServerPicker creates a hidden picker
func NewServerPicker() ServerPicker {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.CharLimit = 64
	ti.Width = 30
	return ServerPicker{filter: ti, keys: DefaultPickerKeyMap()}
}

// Open shows the picker in loading state
func (p *ServerPicker) Open() tea.Cmd {
	p.visible = true
	p.loading = true
	p.notice = ""
	p.servers = nil
	p.shown = nil
	p.cursor = 0
	p.filter.SetValue("")
	return p.filter.Focus()
}

// Close hides the picker
func (p *ServerPicker) Close() {
	p.visible = false
	p.filter.Blur()
}

// IsVisible reports whether the picker is shown
func (p ServerPicker) IsVisible() bool { return p.visible }

// SetServers replaces the candidates with a ranked list
func (p *ServerPicker) SetServers(servers []domain.DiscoveredServer) {
	p.loading = false
	p.servers = servers
	p.applyFilter()
}

// SetFailed leaves the picker open with an empty list
func (p *ServerPicker) SetFailed() {
	p.loading = false
	p.servers = nil
	p.shown = nil
}

func (p *ServerPicker) applyFilter() {
	p.shown = connection.Filter(p.servers, p.filter.Value())
	if p.cursor >= len(p.shown) {
		p.cursor = max(0, len(p.shown)-1)
	}
}

// Selected returns the candidate under the cursor
func (p ServerPicker) Selected() (domain.DiscoveredServer, bool) {
	if p.cursor < 0 || p.cursor >= len(p.shown) {
		return domain.DiscoveredServer{}, false
	}
	return p.shown[p.cursor], true
}

// Update handles keys. chosen is set when a reachable entry is accepted.
func (p ServerPicker) Update(msg tea.Msg) (ServerPicker, tea.Cmd, *domain.DiscoveredServer) {
	if !p.visible {
		return p, nil, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, p.keys.Cancel):
			p.Close()
			return p, nil, nil
		case key.Matches(keyMsg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
			p.notice = ""
			return p, nil, nil
		case key.Matches(keyMsg, p.keys.Down):
			if p.cursor < len(p.shown)-1 {
				p.cursor++
			}
			p.notice = ""
			return p, nil, nil
		case key.Matches(keyMsg, p.keys.Choose):
			s, ok := p.Selected()
			if !ok {
				return p, nil, nil
			}
			if !s.Reachable() {
				p.notice = "That connection is unreachable and cannot be selected."
				return p, nil, nil
			}
			p.Close()
			return p, nil, &s
		}
	}

	before := p.filter.Value()
	var cmd tea.Cmd
	p.filter, cmd = p.filter.Update(msg)
	if p.filter.Value() != before {
		p.cursor = 0
		p.applyFilter()
	}
	return p, cmd, nil
}

// View renders the picker as a modal
func (p ServerPicker) View(width, spinnerFrame int) string {
	if !p.visible {
		return ""
	}

	modalWidth := min(max(width-8, 40), 90)
	var rows []string
	rows = append(rows, styles.ModalTitleStyle.Render("Select a server"))
	rows = append(rows, p.filter.View())

	switch {
	case p.loading:
		frame := styles.SpinnerFrames[spinnerFrame%len(styles.SpinnerFrames)]
		rows = append(rows, styles.SpinnerStyle.Render(frame)+" Retrieving servers…")
	case len(p.shown) == 0:
		rows = append(rows, styles.DimStyle.Render("No servers found"))
	default:
		for i, s := range p.shown {
			rows = append(rows, renderServerRow(s, i == p.cursor, modalWidth-4))
		}
	}

	if p.notice != "" {
		rows = append(rows, "", styles.ErrorStyle.Render(p.notice))
	}
	rows = append(rows, "", styles.DimStyle.Render("enter select • esc close"))

	return styles.ModalStyle.Width(modalWidth).Render(strings.Join(rows, "\n"))
}

func renderServerRow(s domain.DiscoveredServer, selected bool, width int) string {
	indicator := styles.ReachableChar
	color := styles.Green
	if !s.Reachable() {
		indicator = styles.UnreachableChar
		color = styles.Red
	}

	scheme := "http"
	if s.Secure {
		scheme = "https"
	}
	scope := "remote"
	if s.Local {
		scope = "local"
	}
	detail := fmt.Sprintf("%s://%s:%d  %s", scheme, s.Address, s.Port, scope)
	if s.Secure {
		detail = styles.SecureChar + " " + detail
	}
	if !s.Reachable() && s.Message != "" {
		detail += "  " + s.Message
	}

	dim := lipgloss.Color(styles.DimGray)
	parts := []styles.RowPart{
		{Text: indicator + " ", Foreground: &color},
		{Text: styles.Truncate(s.Name, 24) + "  "},
		{Text: styles.Truncate(detail, max(10, width-30)), Foreground: &dim},
	}
	return styles.RenderListRow(parts, selected, width)
}
