package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Indigo     = lipgloss.Color("#6366F1")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Amber      = lipgloss.Color("#F59E0B")
	Blue       = lipgloss.Color("#3B82F6")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Indigo)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)
)

// Tab bar
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Indigo).
			Bold(true).
			Padding(0, 2)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(LightGray).
				Padding(0, 2)
)

// Form styles
var (
	LabelStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Width(22)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(Indigo).
				Bold(true).
				Width(22)

	FieldErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			PaddingLeft(22)

	ReadOnlyStyle = lipgloss.NewStyle().
			Foreground(DimGray).
			Italic(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Indigo).
			Padding(0, 2)

	DisabledButtonStyle = lipgloss.NewStyle().
				Foreground(LightGray).
				Background(SlateLight).
				Padding(0, 2)
)

// Checkbox characters
const (
	CheckedChar   = "[x]"
	UncheckedChar = "[ ]"
)

// Reachability indicators
const (
	ReachableChar   = "●"
	UnreachableChar = "○"
	SecureChar      = "🔒"
)

// Toast styles
var (
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	ToastInfoStyle     = ToastStyle.BorderForeground(Blue)
	ToastSuccessStyle  = ToastStyle.BorderForeground(Green)
	ToastErrorStyle    = ToastStyle.BorderForeground(Red)
	ToastProgressStyle = ToastStyle.BorderForeground(Amber)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Indigo).
			Padding(1, 2).
			Background(SlateDark)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Indigo)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Progress bar styles
var (
	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(Indigo)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(DimGray)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Indigo)
)

// SpinnerFrames animate pending requests
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Filter styles
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Indigo).
				Bold(true)

	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(Indigo).
				Bold(true)
)

// Helper functions

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// Pad pads a string to the given width
func Pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// RenderProgressBar renders a progress bar for a fraction in [0, 1]
func RenderProgressBar(fraction float64, width int) string {
	if width < 3 {
		return ""
	}

	filled := int(float64(width) * fraction)
	filled = max(0, min(filled, width))

	return ProgressFullStyle.Render(strings.Repeat("█", filled)) +
		ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// RenderListRow renders a list row with a uniform background when selected.
// Each part is styled explicitly to avoid ANSI reset issues.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	bg := SlateLight

	var b strings.Builder
	visible := 0

	for _, part := range parts {
		style := lipgloss.NewStyle()
		switch {
		case part.Highlight:
			style = MatchHighlightStyle
		case part.Foreground != nil:
			style = style.Foreground(*part.Foreground)
		case selected:
			style = style.Foreground(White)
		default:
			style = style.Foreground(LightGray)
		}
		if selected {
			style = style.Background(bg)
		}
		b.WriteString(style.Render(part.Text))
		visible += lipgloss.Width(part.Text)
	}

	marginStyle := lipgloss.NewStyle()
	if selected {
		marginStyle = marginStyle.Background(bg)
	}

	// subtract 2 for left/right margin
	if pad := width - visible - 2; pad > 0 {
		b.WriteString(marginStyle.Render(strings.Repeat(" ", pad)))
	}

	margin := marginStyle.Render(" ")
	return margin + b.String() + margin
}

// RowPart is a part of a row with optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
	Highlight  bool // fuzzy match, wins over Foreground
}

// HighlightParts splits text into runs, marking the runes at matched
// positions
func HighlightParts(text string, matched []int) []RowPart {
	if len(matched) == 0 {
		return []RowPart{{Text: text}}
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var parts []RowPart
	var run []rune
	runHit := false
	for i, r := range []rune(text) {
		if len(run) > 0 && hit[i] != runHit {
			parts = append(parts, RowPart{Text: string(run), Highlight: runHit})
			run = run[:0]
		}
		runHit = hit[i]
		run = append(run, r)
	}
	if len(run) > 0 {
		parts = append(parts, RowPart{Text: string(run), Highlight: runHit})
	}
	return parts
}
