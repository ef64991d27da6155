package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorReportsChanges(t *testing.T) {
	e := NewEditor("Type here")
	e.SetSize(40, 8)
	e.Focus()

	e, _, changed := e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	assert.True(t, changed)
	assert.Equal(t, "hi", e.Value())

	e, _, changed = e.Update(tea.MouseMsg{})
	assert.False(t, changed)
}

func TestEditorPasteInsertsRunes(t *testing.T) {
	e := NewEditor("")
	e.Focus()

	long := strings.Repeat("a", 1000)
	e, _, changed := e.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(long), Paste: true})
	assert.True(t, changed)
	assert.Equal(t, long, e.Value(), "no character limit")
}

func TestEditorSetValue(t *testing.T) {
	e := NewEditor("")
	e.SetValue("fixed text")
	assert.Equal(t, "fixed text", e.Value())
	assert.False(t, e.Focused())
}

func TestResultPaneContent(t *testing.T) {
	p := NewResultPane("Translation")
	assert.Equal(t, "  Initializing...", p.View())

	p.SetSize(30, 6)
	p.SetContent("Hola mundo")
	assert.Equal(t, "Hola mundo", p.Content())
	assert.Contains(t, p.View(), "Hola mundo")
	assert.Contains(t, p.View(), "Translation")
}

func TestTabBar(t *testing.T) {
	tb := NewTabBar([]Tab{{ID: "grammar", Label: "Grammar"}, {ID: "translation", Label: "Translate"}})
	tb.SetWidth(80)

	tb.Next()
	assert.Equal(t, 1, tb.Active)
	tb.Next()
	assert.Equal(t, 0, tb.Active)
	tb.Prev()
	assert.Equal(t, 1, tb.Active)
	tb.SetActive(5)
	assert.Equal(t, 1, tb.Active)

	tb.SetBusy("grammar", true)
	require.True(t, tb.Tabs[0].Busy)
	assert.Contains(t, tb.View(), "Grammar")

	tb.SetWidth(20)
	assert.Contains(t, tb.View(), "[2/2]")
}

func TestStatusBar(t *testing.T) {
	sb := NewStatusBar()
	sb.SetWidth(100)
	sb.Hints = []KeyHint{{Key: "Tab", Desc: "Switch"}}
	sb.ModelName = "gpt-4o"
	sb.Extra = "Translating"

	out := sb.View()
	assert.Contains(t, out, "Switch")
	assert.Contains(t, out, "gpt-4o")
	assert.Contains(t, out, "Translating")
}

func TestDivider(t *testing.T) {
	assert.Contains(t, Divider(3), "───")
	assert.NotPanics(t, func() { Divider(-1) })
}
