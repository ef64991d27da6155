package components

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"textkit/internal/adapter/tui/theme"
)

// EditorModel wraps a multi-line textarea holding a tool's buffer.
// Enter inserts a newline; nothing is submitted from here.
type EditorModel struct {
	Textarea textarea.Model
	width    int
	height   int
}

// NewEditor creates an editor with the given placeholder.
func NewEditor(placeholder string) EditorModel {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0 // no limit
	ta.SetHeight(5)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Placeholder = theme.InputPlaceholder
	ta.BlurredStyle.Placeholder = theme.InputPlaceholder

	return EditorModel{Textarea: ta}
}

// SetSize updates the editor dimensions, including its border.
func (m *EditorModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.Textarea.SetWidth(max(w-2, 1))
	m.Textarea.SetHeight(max(h-2, 1))
}

// Focus gives the editor keyboard focus.
func (m *EditorModel) Focus() tea.Cmd {
	return m.Textarea.Focus()
}

// Blur removes keyboard focus.
func (m *EditorModel) Blur() {
	m.Textarea.Blur()
}

// Focused reports whether the editor has focus.
func (m EditorModel) Focused() bool {
	return m.Textarea.Focused()
}

// Value returns the current text.
func (m EditorModel) Value() string {
	return m.Textarea.Value()
}

// SetValue replaces the text and moves the cursor to the end.
func (m *EditorModel) SetValue(s string) {
	m.Textarea.SetValue(s)
	m.Textarea.CursorEnd()
}

// Update forwards key and paste events to the textarea and reports whether
// the text changed.
func (m EditorModel) Update(msg tea.Msg) (EditorModel, tea.Cmd, bool) {
	// Filter out mouse events; the textarea should never receive them.
	if _, ok := msg.(tea.MouseMsg); ok {
		return m, nil, false
	}
	before := m.Textarea.Value()

	var cmd tea.Cmd
	m.Textarea, cmd = m.Textarea.Update(msg)
	return m, cmd, m.Textarea.Value() != before
}

// View renders the editor inside a focus-aware border.
func (m EditorModel) View() string {
	border := theme.UnfocusedBorder
	if m.Textarea.Focused() {
		border = theme.FocusBorder
	}
	return border.Render(m.Textarea.View())
}
