package domain

import "fmt"

// Device is a media server reported by discovery. A device may expose
// several connection endpoints.
type Device struct {
	Name             string
	ClientIdentifier string
	Product          string
	Connections      []DeviceConnection
}

// DeviceConnection is one endpoint of a discovered device
type DeviceConnection struct {
	Protocol string // "http" or "https"
	Address  string
	Port     int
	URI      string
	Local    bool
	Status   int    // HTTP-style status code from the server's reachability probe
	Message  string // Optional diagnostic from the probe
}

// StatusReachable is the probe status of a working connection
const StatusReachable = 200

// DiscoveredServer is a single flattened connection candidate.
// Derived on every discovery refresh and never persisted.
type DiscoveredServer struct {
	Name    string
	Secure  bool
	Address string
	Port    int
	Local   bool
	Status  int
	Message string
}

// Reachable reports whether the probe succeeded
func (s DiscoveredServer) Reachable() bool {
	return s.Status == StatusReachable
}

// Label returns a one-line description for pickers and tables
func (s DiscoveredServer) Label() string {
	scope := "remote"
	if s.Local {
		scope = "local"
	}
	scheme := "http"
	if s.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s (%s://%s:%d, %s)", s.Name, scheme, s.Address, s.Port, scope)
}
