package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/mmcdole/seerctl/internal/tui/styles"
)

// LibraryList shows libraries with their enabled state and a fuzzy filter
type LibraryList struct {
	libraries   []domain.Library
	filteredIdx []int         // nil when no filter
	matched     map[int][]int // rune positions of filter hits by library index
	cursor      int
	offset      int
	maxVisible  int

	filterActive bool
	filterInput  textinput.Model

	pending string // library ID with a toggle in flight
	keys    ListKeyMap
}

// NewLibraryList creates an empty list
func NewLibraryList() *LibraryList {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.CharLimit = 64
	return &LibraryList{filterInput: ti, keys: DefaultListKeyMap(), maxVisible: 10}
}

// SetLibraries replaces the list, keeping the cursor on the same library
func (l *LibraryList) SetLibraries(libs []domain.Library) {
	var selectedID string
	if lib, ok := l.Selected(); ok {
		selectedID = lib.ID
	}

	l.libraries = libs
	l.pending = ""
	if l.filterActive || l.filterInput.Value() != "" {
		l.applyFilter()
	}

	l.cursor = 0
	for i := 0; i < l.visibleLen(); i++ {
		if l.libraryAt(i).ID == selectedID {
			l.cursor = i
			break
		}
	}
	l.clampOffset()
}

// Libraries returns every library in server order
func (l *LibraryList) Libraries() []domain.Library { return l.libraries }

// SetPending marks a library as awaiting a toggle round-trip
func (l *LibraryList) SetPending(id string) { l.pending = id }

// SetHeight sets how many rows are visible
func (l *LibraryList) SetHeight(h int) {
	l.maxVisible = max(1, h)
	l.clampOffset()
}

// IsFiltering reports whether the filter input has focus
func (l *LibraryList) IsFiltering() bool { return l.filterActive }

// Selected returns the library under the cursor
func (l *LibraryList) Selected() (domain.Library, bool) {
	if l.cursor < 0 || l.cursor >= l.visibleLen() {
		return domain.Library{}, false
	}
	return l.libraryAt(l.cursor), true
}

func (l *LibraryList) visibleLen() int {
	if l.filteredIdx != nil {
		return len(l.filteredIdx)
	}
	return len(l.libraries)
}

func (l *LibraryList) libraryAt(i int) domain.Library {
	if l.filteredIdx != nil {
		return l.libraries[l.filteredIdx[i]]
	}
	return l.libraries[i]
}

// Update handles navigation and filter keys
func (l *LibraryList) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if l.filterActive {
		switch {
		case key.Matches(keyMsg, l.keys.Escape):
			l.clearFilter()
			return nil
		case key.Matches(keyMsg, l.keys.Enter):
			l.filterActive = false
			l.filterInput.Blur()
			return nil
		}
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd
	}

	switch {
	case key.Matches(keyMsg, l.keys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(keyMsg, l.keys.Down):
		if l.cursor < l.visibleLen()-1 {
			l.cursor++
		}
	case key.Matches(keyMsg, l.keys.Home):
		l.cursor = 0
	case key.Matches(keyMsg, l.keys.End):
		l.cursor = max(0, l.visibleLen()-1)
	case key.Matches(keyMsg, l.keys.Filter):
		l.filterActive = true
		return l.filterInput.Focus()
	case key.Matches(keyMsg, l.keys.Escape):
		l.clearFilter()
	}
	l.clampOffset()
	return nil
}

func (l *LibraryList) clampOffset() {
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *LibraryList) clearFilter() {
	l.filterActive = false
	l.filteredIdx = nil
	l.matched = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.cursor = 0
	l.offset = 0
}

func (l *LibraryList) applyFilter() {
	query := l.filterInput.Value()
	if query == "" {
		l.filteredIdx = nil
		l.matched = nil
		return
	}

	lowerNames := make([]string, len(l.libraries))
	for i, lib := range l.libraries {
		lowerNames[i] = strings.ToLower(lib.Name)
	}

	matches := fuzzy.Find(strings.ToLower(query), lowerNames)

	l.filteredIdx = make([]int, len(matches))
	l.matched = make(map[int][]int, len(matches))
	for i, match := range matches {
		l.filteredIdx[i] = match.Index
		l.matched[match.Index] = runePositions(match.Str, match.MatchedIndexes)
	}

	// Reset cursor to first match
	l.cursor = 0
	l.offset = 0
}

// View renders the list
func (l *LibraryList) View(width, spinnerFrame int) string {
	var rows []string

	if l.filterActive || l.filterInput.Value() != "" {
		rows = append(rows, l.filterInput.View())
	}

	if len(l.libraries) == 0 {
		rows = append(rows, styles.DimStyle.Render("No libraries. Press s to sync the library list."))
		return strings.Join(rows, "\n")
	}
	if l.visibleLen() == 0 {
		rows = append(rows, styles.DimStyle.Render("No matches"))
		return strings.Join(rows, "\n")
	}

	end := min(l.offset+l.maxVisible, l.visibleLen())
	for i := l.offset; i < end; i++ {
		lib := l.libraryAt(i)

		box := styles.UncheckedChar
		if lib.Enabled {
			box = styles.CheckedChar
		}
		if lib.ID == l.pending {
			box = "[" + styles.SpinnerFrames[spinnerFrame%len(styles.SpinnerFrames)] + "]"
		}

		name := styles.Truncate(lib.Name, max(10, width-8))
		var hits []int
		if l.filteredIdx != nil {
			hits = visibleHits(name, lib.Name, l.matched[l.filteredIdx[i]])
		}

		parts := append([]styles.RowPart{{Text: box + " "}}, styles.HighlightParts(name, hits)...)
		rows = append(rows, styles.RenderListRow(parts, i == l.cursor, width))
	}
	return strings.Join(rows, "\n")
}

// runePositions converts byte offsets into s to rune positions
func runePositions(s string, byteIdx []int) []int {
	if len(byteIdx) == 0 {
		return nil
	}
	want := make(map[int]bool, len(byteIdx))
	for _, b := range byteIdx {
		want[b] = true
	}
	out := make([]int, 0, len(byteIdx))
	pos := 0
	for b := range s {
		if want[b] {
			out = append(out, pos)
		}
		pos++
	}
	return out
}

// visibleHits drops positions lost to truncation
func visibleHits(shown, full string, hits []int) []int {
	a, b := []rune(shown), []rune(full)
	out := hits[:0:0]
	for _, h := range hits {
		if h < len(a) && h < len(b) && a[h] == b[h] {
			out = append(out, h)
		}
	}
	return out
}
