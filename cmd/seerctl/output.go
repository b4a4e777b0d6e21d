package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/goccy/go-json"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/tui/styles"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func (c *cli) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func header(cols ...string) string {
	return bold(strings.Join(cols, "\t"))
}

func mark(ok bool) string {
	if ok {
		return green("✓")
	}
	return red("✗")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// JSON views keep the command output stable independent of domain types

type libraryView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type connectionView struct {
	Name        string        `json:"name,omitempty"`
	MachineID   string        `json:"machineId,omitempty"`
	Host        string        `json:"host"`
	Port        int           `json:"port"`
	UseSSL      bool          `json:"useSsl"`
	ExternalURL string        `json:"externalUrl,omitempty"`
	Address     string        `json:"address,omitempty"`
	Libraries   []libraryView `json:"libraries"`
}

type serverView struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Port      int    `json:"port"`
	Secure    bool   `json:"secure"`
	Local     bool   `json:"local"`
	Reachable bool   `json:"reachable"`
	Status    int    `json:"status"`
	Message   string `json:"message,omitempty"`
}

type syncView struct {
	Running        bool          `json:"running"`
	Progress       int           `json:"progress"`
	Total          int           `json:"total"`
	Percent        float64       `json:"percent"`
	CurrentLibrary string        `json:"currentLibrary,omitempty"`
	Remaining      int           `json:"remaining"`
	Libraries      []libraryView `json:"libraries"`
	Error          string        `json:"error,omitempty"`
}

func libraryViews(libs []domain.Library) []libraryView {
	out := make([]libraryView, 0, len(libs))
	for _, l := range libs {
		out = append(out, libraryView{ID: l.ID, Name: l.Name, Enabled: l.Enabled})
	}
	return out
}

func newConnectionView(s domain.ConnectionSettings) connectionView {
	return connectionView{
		Name:        s.Name,
		MachineID:   s.MachineID,
		Host:        s.Host,
		Port:        s.Port,
		UseSSL:      s.UseSecureTransport,
		ExternalURL: s.ExternalURL,
		Address:     s.Address(),
		Libraries:   libraryViews(s.Libraries),
	}
}

func newSyncView(s domain.SyncStatus, err error) syncView {
	v := syncView{
		Running:        s.Running,
		Progress:       s.Progress,
		Total:          s.Total,
		Percent:        s.Percent() * 100,
		CurrentLibrary: s.CurrentName(),
		Remaining:      s.Remaining(),
		Libraries:      libraryViews(s.Libraries),
	}
	if err != nil {
		v.Error = err.Error()
	}
	return v
}

func (c *cli) printConnection(s domain.ConnectionSettings) error {
	if c.jsonOut {
		return c.printJSON(newConnectionView(s))
	}

	tw := newTable(c.out)
	fmt.Fprintf(tw, "Server\t%s\n", s.Name)
	if s.MachineID != "" {
		fmt.Fprintf(tw, "Machine ID\t%s\n", s.MachineID)
	}
	fmt.Fprintf(tw, "Host\t%s\n", s.Host)
	fmt.Fprintf(tw, "Port\t%d\n", s.Port)
	fmt.Fprintf(tw, "SSL\t%s\n", yesNo(s.UseSecureTransport))
	if s.ExternalURL != "" {
		fmt.Fprintf(tw, "Web App URL\t%s\n", s.ExternalURL)
	}
	fmt.Fprintf(tw, "Libraries\t%s (%d enabled)\n", english.Plural(len(s.Libraries), "library", "libraries"), len(s.EnabledLibraryIDs()))
	return tw.Flush()
}

func (c *cli) printLibraries(libs []domain.Library) error {
	if c.jsonOut {
		return c.printJSON(libraryViews(libs))
	}
	if len(libs) == 0 {
		_, err := fmt.Fprintln(c.out, "No libraries. Run 'seerctl libraries sync' to fetch them.")
		return err
	}

	tw := newTable(c.out)
	fmt.Fprintln(tw, header("ID", "NAME", "ENABLED"))
	for _, l := range libs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.ID, l.Name, mark(l.Enabled))
	}
	return tw.Flush()
}

func (c *cli) printServers(servers []domain.DiscoveredServer) error {
	if c.jsonOut {
		views := make([]serverView, 0, len(servers))
		for i, s := range servers {
			views = append(views, serverView{
				Index: i + 1, Name: s.Name, Address: s.Address, Port: s.Port,
				Secure: s.Secure, Local: s.Local, Reachable: s.Reachable(),
				Status: s.Status, Message: s.Message,
			})
		}
		return c.printJSON(views)
	}
	if len(servers) == 0 {
		_, err := fmt.Fprintln(c.out, "No servers found.")
		return err
	}

	tw := newTable(c.out)
	fmt.Fprintln(tw, header("#", "NAME", "ADDRESS", "SSL", "SCOPE", "REACHABLE"))
	for i, s := range servers {
		scope := "remote"
		if s.Local {
			scope = "local"
		}
		reach := mark(s.Reachable())
		if !s.Reachable() && s.Message != "" {
			reach += " " + s.Message
		}
		fmt.Fprintf(tw, "%d\t%s\t%s:%d\t%s\t%s\t%s\n", i+1, s.Name, s.Address, s.Port, yesNo(s.Secure), scope, reach)
	}
	return tw.Flush()
}

// formatSyncStatus renders one status line for humans
func formatSyncStatus(s domain.SyncStatus) string {
	if !s.Running {
		return "idle, no scan running"
	}
	parts := []string{
		fmt.Sprintf("%s %3.0f%%", styles.RenderProgressBar(s.Percent(), 30), s.Percent()*100),
		fmt.Sprintf("%d of %d", s.Progress, s.Total),
	}
	if name := s.CurrentName(); name != "" {
		parts = append(parts, cyan(name))
	}
	if n := s.Remaining(); n > 0 {
		parts = append(parts, english.Plural(n, "library", "libraries")+" remaining")
	}
	return strings.Join(parts, "  ")
}

func (c *cli) printSync(s domain.SyncStatus, err error) error {
	if c.jsonOut {
		return c.printJSON(newSyncView(s, err))
	}
	if err != nil {
		_, werr := fmt.Fprintf(c.out, "%s status unavailable: %v\n", red("✗"), err)
		return werr
	}
	_, werr := fmt.Fprintln(c.out, formatSyncStatus(s))
	return werr
}
