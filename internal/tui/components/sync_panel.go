package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/tui/styles"
)

// SyncPanel renders the library scan state
type SyncPanel struct {
	status   domain.SyncStatus
	err      error
	polled   bool
	polledAt time.Time
	pending  string // "starting" or "cancelling" while a control request is in flight
}

// SetStatus records the latest poll result. A failed poll keeps the last
// good status on screen.
func (p *SyncPanel) SetStatus(status domain.SyncStatus, err error, at time.Time) {
	p.err = err
	p.polledAt = at
	if err == nil {
		p.status = status
		p.polled = true
	}
}

// SetPending marks a start or cancel request in flight ("" clears)
func (p *SyncPanel) SetPending(action string) { p.pending = action }

// Pending returns the in-flight control action
func (p *SyncPanel) Pending() string { return p.pending }

// Status returns the last good status
func (p *SyncPanel) Status() domain.SyncStatus { return p.status }

// View renders the panel
func (p *SyncPanel) View(width, spinnerFrame int) string {
	var rows []string
	rows = append(rows, styles.TitleStyle.Render("Library Scan"))
	rows = append(rows, styles.SubtitleStyle.Render("Scans every enabled library for new and removed items."))
	rows = append(rows, "")

	switch {
	case !p.polled && p.err == nil:
		frame := styles.SpinnerFrames[spinnerFrame%len(styles.SpinnerFrames)]
		rows = append(rows, styles.SpinnerStyle.Render(frame)+" Loading status…")
	case !p.status.Running:
		rows = append(rows, styles.DimStyle.Render("○ Idle, no scan running"))
	default:
		barWidth := max(10, min(width-12, 60))
		pct := p.status.Percent()
		rows = append(rows, fmt.Sprintf("%s %3.0f%%", styles.RenderProgressBar(pct, barWidth), pct*100))
		rows = append(rows, fmt.Sprintf("%d of %d", p.status.Progress, p.status.Total))
		if name := p.status.CurrentName(); name != "" {
			rows = append(rows, "Current library: "+styles.AccentStyle.Render(name))
		}
		if n := p.status.Remaining(); n > 0 {
			rows = append(rows, english.Plural(n, "library", "libraries")+" remaining")
		}
	}

	rows = append(rows, "")
	switch p.pending {
	case "starting":
		rows = append(rows, styles.WarningStyle.Render("Starting scan…"))
	case "cancelling":
		rows = append(rows, styles.WarningStyle.Render("Cancelling scan…"))
	default:
		if p.status.Running {
			rows = append(rows, styles.HelpKeyStyle.Render("c")+" "+styles.HelpDescStyle.Render("cancel scan"))
		} else {
			rows = append(rows, styles.HelpKeyStyle.Render("s")+" "+styles.HelpDescStyle.Render("start full scan"))
		}
	}

	if p.err != nil {
		rows = append(rows, "", styles.ErrorStyle.Render("Status unavailable: "+p.err.Error()))
	}
	if !p.polledAt.IsZero() {
		rows = append(rows, styles.DimStyle.Render("updated "+humanize.Time(p.polledAt)))
	}
	return strings.Join(rows, "\n")
}
