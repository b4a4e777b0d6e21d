package tui

import (
	"time"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/syncmon"
)

// ChannelObserver adapts domain.SyncObserver to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- syncmon.Update
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- syncmon.Update) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnStatus sends the poll result to the channel (non-blocking if full).
func (o *ChannelObserver) OnStatus(status domain.SyncStatus, err error) {
	select {
	case o.ch <- syncmon.Update{Status: status, Err: err, At: time.Now()}:
	default: // Non-blocking if channel full
	}
}
