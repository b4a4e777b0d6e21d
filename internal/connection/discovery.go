package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/notify"
)

// Flatten produces one candidate per device connection
func Flatten(devices []domain.Device) []domain.DiscoveredServer {
	var out []domain.DiscoveredServer
	for _, d := range devices {
		for _, c := range d.Connections {
			out = append(out, domain.DiscoveredServer{
				Name:    d.Name,
				Secure:  c.Protocol == "https",
				Address: c.Address,
				Port:    c.Port,
				Local:   c.Local,
				Status:  c.Status,
				Message: c.Message,
			})
		}
	}
	return out
}

// Rank orders candidates reachable first, then secure first. Ties keep
// discovery order.
func Rank(servers []domain.DiscoveredServer) []domain.DiscoveredServer {
	ranked := make([]domain.DiscoveredServer, len(servers))
	copy(ranked, servers)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Reachable() != b.Reachable() {
			return a.Reachable()
		}
		return a.Secure && !b.Secure
	})
	return ranked
}

// Filter keeps candidates whose name or address fuzzily match query, best
// match first. An empty query returns servers unchanged.
func Filter(servers []domain.DiscoveredServer, query string) []domain.DiscoveredServer {
	query = strings.TrimSpace(query)
	if query == "" {
		return servers
	}

	targets := make([]string, len(servers))
	for i, s := range servers {
		targets[i] = s.Name + " " + s.Address + ":" + strconv.Itoa(s.Port)
	}

	matches := fuzzy.RankFindFold(query, targets)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].OriginalIndex < matches[j].OriginalIndex
	})

	out := make([]domain.DiscoveredServer, 0, len(matches))
	for _, m := range matches {
		out = append(out, servers[m.OriginalIndex])
	}
	return out
}

// Apply copies a candidate into pending values. Unreachable candidates are
// listed but cannot be selected.
func Apply(values *Values, s domain.DiscoveredServer) error {
	if !s.Reachable() {
		return fmt.Errorf("%s: %w", s.Label(), domain.ErrUnreachable)
	}
	values.Host = s.Address
	values.Port = strconv.Itoa(s.Port)
	values.UseSecureTransport = s.Secure
	return nil
}

// Discoverer fetches and ranks candidate connections
type Discoverer struct {
	repo    domain.DiscoveryRepository
	sink    notify.Sink
	journal domain.ActivityStore
	logger  *slog.Logger
}

// NewDiscoverer creates a discoverer. journal may be nil.
func NewDiscoverer(repo domain.DiscoveryRepository, sink notify.Sink, journal domain.ActivityStore, logger *slog.Logger) *Discoverer {
	if sink == nil {
		sink = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{repo: repo, sink: sink, journal: journal, logger: logger}
}

// Refresh fetches devices and returns the ranked candidates. A persistent
// toast is shown while the request is in flight.
func (d *Discoverer) Refresh(ctx context.Context) ([]domain.DiscoveredServer, error) {
	pending := d.sink.Progress("Retrieving servers…")

	devices, err := d.repo.GetDevices(ctx)
	d.sink.Dismiss(pending)
	record(d.journal, d.logger, domain.NewActivity(domain.ActivityDiscover, "devices", err))

	if err != nil {
		d.logger.Error("failed to retrieve servers", "error", err)
		d.sink.Error("Failed to retrieve servers.")
		return nil, err
	}

	servers := Rank(Flatten(devices))
	d.logger.Info("discovered servers", "devices", len(devices), "connections", len(servers))
	d.sink.Success("Found " + english.Plural(len(servers), "connection", ""))
	return servers, nil
}

func record(journal domain.ActivityStore, logger *slog.Logger, a domain.Activity) {
	if journal == nil {
		return
	}
	if err := journal.Record(a); err != nil {
		logger.Warn("failed to record activity", "kind", a.Kind, "error", err)
	}
}
