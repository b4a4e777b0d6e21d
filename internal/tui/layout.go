package tui

// Layout constants
const (
	// Header (title + tab bar), toast gap and footer
	ChromeHeight = 5

	// Form content never grows past this width
	MaxFormWidth = 100

	MinWidth = 40
)

// bodyHeight is the height left for the active tab
func (m Model) bodyHeight() int {
	return max(m.Height-ChromeHeight, 3)
}

// bodyWidth is the width used by forms and panels
func (m Model) bodyWidth() int {
	return max(min(m.Width-4, MaxFormWidth), MinWidth)
}
