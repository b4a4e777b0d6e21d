package domain

import "time"

// ActivityKind classifies a journal entry
type ActivityKind string

const (
	ActivitySubmit    ActivityKind = "submit"
	ActivityToggle    ActivityKind = "toggle"
	ActivityLibraries ActivityKind = "libraries"
	ActivitySyncStart ActivityKind = "sync-start"
	ActivitySyncStop  ActivityKind = "sync-cancel"
	ActivityDiscover  ActivityKind = "discover"
)

// Activity records the outcome of one mutating request
type Activity struct {
	ID      string       `json:"id"`
	At      time.Time    `json:"at"`
	Kind    ActivityKind `json:"kind"`
	Subject string       `json:"subject"`
	OK      bool         `json:"ok"`
	Detail  string       `json:"detail,omitempty"`
}

// NewActivity builds an entry from a request outcome. ID and At are left for
// the store to fill.
func NewActivity(kind ActivityKind, subject string, err error) Activity {
	a := Activity{Kind: kind, Subject: subject, OK: err == nil}
	if err != nil {
		a.Detail = err.Error()
	}
	return a
}
