// Package components provides reusable Bubble Tea sub-models for the TUI.
package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"textkit/internal/adapter/tui/theme"
)

// Tab represents a single tab entry.
type Tab struct {
	ID    string
	Label string
	Busy  bool // a request is in flight for this tab
}

// TabBarModel is a horizontal tab bar. The parent model routes keys to
// Next/Prev/SetActive.
type TabBarModel struct {
	Tabs      []Tab
	Active    int
	width     int
	collapsed bool // true when width < MinTabWidth
}

// NewTabBar creates a tab bar with the given tabs. The first tab is active.
func NewTabBar(tabs []Tab) TabBarModel {
	return TabBarModel{Tabs: tabs}
}

// SetWidth updates the available width and determines if tabs should collapse.
func (m *TabBarModel) SetWidth(w int) {
	m.width = w
	m.collapsed = w < theme.MinTabWidth
}

// Next advances to the next tab, wrapping around.
func (m *TabBarModel) Next() {
	if len(m.Tabs) == 0 {
		return
	}
	m.Active = (m.Active + 1) % len(m.Tabs)
}

// Prev moves to the previous tab, wrapping around.
func (m *TabBarModel) Prev() {
	if len(m.Tabs) == 0 {
		return
	}
	m.Active = (m.Active - 1 + len(m.Tabs)) % len(m.Tabs)
}

// SetActive sets the active tab by index.
func (m *TabBarModel) SetActive(i int) {
	if i >= 0 && i < len(m.Tabs) {
		m.Active = i
	}
}

// SetBusy marks the tab with the given ID as busy or idle.
func (m *TabBarModel) SetBusy(id string, busy bool) {
	for i := range m.Tabs {
		if m.Tabs[i].ID == id {
			m.Tabs[i].Busy = busy
		}
	}
}

// View renders the tab bar.
func (m TabBarModel) View() string {
	if len(m.Tabs) == 0 {
		return ""
	}

	if m.collapsed {
		// Collapsed mode: show only the active tab with index.
		t := m.Tabs[m.Active]
		label := theme.TabActive.Render(t.Label)
		counter := theme.Dim.Render("[" + strconv.Itoa(m.Active+1) + "/" + strconv.Itoa(len(m.Tabs)) + "]")
		return lipgloss.JoinHorizontal(lipgloss.Center, label, " ", counter)
	}

	var parts []string
	for i, t := range m.Tabs {
		label := t.Label
		if t.Busy {
			label += " " + theme.SymbolEllipsis
		}
		if i == m.Active {
			parts = append(parts, theme.TabActive.Render(label))
		} else {
			parts = append(parts, theme.TabNormal.Render(label))
		}
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, parts...)

	// Pad to full width.
	if m.width > 0 {
		bg := theme.TabNormal.UnsetPadding()
		remaining := m.width - lipgloss.Width(bar)
		if remaining > 0 {
			bar += bg.Render(strings.Repeat(" ", remaining))
		}
	}

	return bar
}
