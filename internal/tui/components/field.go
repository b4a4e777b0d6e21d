package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/seerctl/internal/tui/styles"
)

// Field is one focusable row of a settings form
type Field interface {
	Key() string // struct field name used for validation messages
	Focus() tea.Cmd
	Blur()
	Focused() bool
	Update(msg tea.Msg) tea.Cmd
	View(width int, errMsg string) string
}

// TextField is a labelled single line input
type TextField struct {
	key   string
	label string
	input textinput.Model
}

// NewTextField creates a text field. Secret fields echo bullets.
func NewTextField(key, label, placeholder string, secret bool) *TextField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 40
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return &TextField{key: key, label: label, input: ti}
}

func (f *TextField) Key() string        { return f.key }
func (f *TextField) Focus() tea.Cmd     { return f.input.Focus() }
func (f *TextField) Blur()              { f.input.Blur() }
func (f *TextField) Focused() bool      { return f.input.Focused() }
func (f *TextField) Value() string      { return f.input.Value() }
func (f *TextField) SetValue(v string)  { f.input.SetValue(v) }
func (f *TextField) SetCharLimit(n int) { f.input.CharLimit = n }

func (f *TextField) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (f *TextField) View(width int, errMsg string) string {
	f.input.Width = max(10, width-lipgloss.Width(styles.LabelStyle.Render(""))-2)
	return renderRow(f.label, f.Focused(), f.input.View(), errMsg)
}

// TextAreaField is a labelled multi line input (armored keys)
type TextAreaField struct {
	key   string
	label string
	area  textarea.Model
}

// NewTextAreaField creates a multi line field
func NewTextAreaField(key, label, placeholder string, height int) *TextAreaField {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(height)
	ta.Prompt = ""
	return &TextAreaField{key: key, label: label, area: ta}
}

func (f *TextAreaField) Key() string       { return f.key }
func (f *TextAreaField) Focus() tea.Cmd    { return f.area.Focus() }
func (f *TextAreaField) Blur()             { f.area.Blur() }
func (f *TextAreaField) Focused() bool     { return f.area.Focused() }
func (f *TextAreaField) Value() string     { return f.area.Value() }
func (f *TextAreaField) SetValue(v string) { f.area.SetValue(v) }

func (f *TextAreaField) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.area, cmd = f.area.Update(msg)
	return cmd
}

func (f *TextAreaField) View(width int, errMsg string) string {
	f.area.SetWidth(max(20, width-lipgloss.Width(styles.LabelStyle.Render(""))-2))
	return renderRow(f.label, f.Focused(), f.area.View(), errMsg)
}

// Checkbox is a labelled boolean toggled with space
type Checkbox struct {
	key     string
	label   string
	checked bool
	focused bool
}

// NewCheckbox creates a checkbox
func NewCheckbox(key, label string) *Checkbox {
	return &Checkbox{key: key, label: label}
}

func (c *Checkbox) Key() string          { return c.key }
func (c *Checkbox) Focus() tea.Cmd       { c.focused = true; return nil }
func (c *Checkbox) Blur()                { c.focused = false }
func (c *Checkbox) Focused() bool        { return c.focused }
func (c *Checkbox) Checked() bool        { return c.checked }
func (c *Checkbox) SetChecked(v bool)    { c.checked = v }

func (c *Checkbox) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && c.focused {
		switch keyMsg.String() {
		case " ", "x":
			c.checked = !c.checked
		}
	}
	return nil
}

func (c *Checkbox) View(_ int, errMsg string) string {
	box := styles.UncheckedChar
	if c.checked {
		box = styles.CheckedChar
	}
	if c.focused {
		box = styles.AccentStyle.Render(box)
	}
	return renderRow(c.label, c.focused, box, errMsg)
}

func renderRow(label string, focused bool, control, errMsg string) string {
	labelStyle := styles.LabelStyle
	if focused {
		labelStyle = styles.FocusedLabelStyle
	}

	// Align label with the first line of multi line controls
	row := lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), control)
	if errMsg == "" {
		return row
	}
	return strings.Join([]string{row, styles.FieldErrorStyle.Render(errMsg)}, "\n")
}

// FieldSet cycles focus through a form's fields
type FieldSet struct {
	fields []Field
	focus  int
}

// NewFieldSet focuses the first field
func NewFieldSet(fields ...Field) *FieldSet {
	fs := &FieldSet{fields: fields}
	if len(fields) > 0 {
		fields[0].Focus()
	}
	return fs
}

// Fields returns the fields in order
func (fs *FieldSet) Fields() []Field { return fs.fields }

// Current returns the focused field
func (fs *FieldSet) Current() Field {
	if len(fs.fields) == 0 {
		return nil
	}
	return fs.fields[fs.focus]
}

// Next moves focus forward, wrapping
func (fs *FieldSet) Next() tea.Cmd { return fs.move(1) }

// Prev moves focus backward, wrapping
func (fs *FieldSet) Prev() tea.Cmd { return fs.move(-1) }

func (fs *FieldSet) move(delta int) tea.Cmd {
	if len(fs.fields) == 0 {
		return nil
	}
	fs.fields[fs.focus].Blur()
	fs.focus = (fs.focus + delta + len(fs.fields)) % len(fs.fields)
	return fs.fields[fs.focus].Focus()
}

// Update forwards msg to the focused field
func (fs *FieldSet) Update(msg tea.Msg) tea.Cmd {
	if f := fs.Current(); f != nil {
		return f.Update(msg)
	}
	return nil
}

// View renders every field with its validation message
func (fs *FieldSet) View(width int, errs map[string]string) string {
	rows := make([]string, 0, len(fs.fields))
	for _, f := range fs.fields {
		rows = append(rows, f.View(width, errs[f.Key()]))
	}
	return strings.Join(rows, "\n")
}
