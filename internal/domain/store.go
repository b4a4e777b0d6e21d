package domain

// ActivityStore journals mutation attempts locally
type ActivityStore interface {
	// Record appends an entry; ID and At are filled when empty
	Record(a Activity) error

	// Recent returns up to n entries, newest first
	Recent(n int) ([]Activity, error)

	// Clear wipes the journal
	Clear() error

	Close() error
}
