package domain

// SyncStatus is the latest state of the backend library scan.
// It is re-fetched on every poll and never mutated locally.
type SyncStatus struct {
	Running        bool
	Progress       int
	Total          int
	CurrentLibrary *Library
	Libraries      []Library
}

// Percent returns progress as a fraction in [0, 1]. A zero total yields 0.
func (s SyncStatus) Percent() float64 {
	if s.Total <= 0 || s.Progress <= 0 {
		return 0
	}
	if s.Progress >= s.Total {
		return 1
	}
	return float64(s.Progress) / float64(s.Total)
}

// Remaining counts libraries queued after the current one.
// Returns 0 when there is no current library or it is last.
func (s SyncStatus) Remaining() int {
	if s.CurrentLibrary == nil {
		return 0
	}
	for i, lib := range s.Libraries {
		if lib.ID == s.CurrentLibrary.ID {
			return len(s.Libraries) - i - 1
		}
	}
	return 0
}

// CurrentName returns the current library name, or "" when idle.
func (s SyncStatus) CurrentName() string {
	if s.CurrentLibrary == nil {
		return ""
	}
	return s.CurrentLibrary.Name
}

// SyncObserver receives every poll result.
type SyncObserver interface {
	OnStatus(status SyncStatus, err error)
}

// NoOpObserver discards status updates (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnStatus(SyncStatus, error) {}
