package components

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"textkit/internal/adapter/tui/theme"
)

// ResultPaneModel is a read-only scrollable pane for translation output.
// The viewport is initialized lazily on the first SetSize.
type ResultPaneModel struct {
	Viewport viewport.Model
	Title    string
	content  string
	ready    bool
}

// NewResultPane creates a result pane with the given title.
func NewResultPane(title string) ResultPaneModel {
	return ResultPaneModel{Title: title}
}

// SetSize sets the pane dimensions, including border and title line.
func (m *ResultPaneModel) SetSize(w, h int) {
	innerW, innerH := max(w-2, 1), max(h-3, 1)
	if !m.ready {
		m.Viewport = viewport.New(innerW, innerH)
		m.Viewport.MouseWheelEnabled = true
		m.Viewport.MouseWheelDelta = 3
		m.ready = true
	} else {
		m.Viewport.Width = innerW
		m.Viewport.Height = innerH
	}
	m.refreshContent()
}

// SetContent replaces the displayed text. Unchanged content keeps the scroll position.
func (m *ResultPaneModel) SetContent(s string) {
	if s == m.content {
		return
	}
	m.content = s
	m.refreshContent()
	if m.ready {
		m.Viewport.GotoTop()
	}
}

// Content returns the displayed text.
func (m ResultPaneModel) Content() string {
	return m.content
}

// Update handles viewport scrolling.
func (m ResultPaneModel) Update(msg tea.Msg) (ResultPaneModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View renders the pane.
func (m ResultPaneModel) View() string {
	if !m.ready {
		return "  Initializing..."
	}
	title := theme.TextMuted.Render(m.Title)
	return theme.UnfocusedBorder.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.Viewport.View()))
}

func (m *ResultPaneModel) refreshContent() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(lipgloss.NewStyle().Width(m.Viewport.Width).Render(m.content))
}
