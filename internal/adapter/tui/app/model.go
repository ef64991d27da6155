package app

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"textkit/internal/adapter/tui/components"
	"textkit/internal/adapter/tui/theme"
	"textkit/internal/adapter/tui/uxerror"
	"textkit/internal/domain"
	"textkit/internal/usecase/tools"
)

// Clipboard copies text to the system clipboard.
type Clipboard interface {
	Copy(text string) error
}

// Deps are the collaborators of the program.
type Deps struct {
	Grammar     *tools.Grammar
	Translation *tools.Translation
	Catalog     domain.Catalog
	Bus         domain.EventBus // optional, nil = editors are never refreshed from tool state
	Clipboard   Clipboard       // optional, nil = copy disabled
	Logger      *slog.Logger
}

const (
	tabGrammar = iota
	tabTranslation
	tabCount
)

const flashTTL = 3 * time.Second

// editable is the part of a tool the editor drives.
type editable interface {
	OnTextChanged(text string) uint64
	OnPaste()
	SetModel(model string) error
	Params() domain.Params
	Clear()
}

// Model is the root Bubble Tea model. Each tab owns an editor; tool state
// arrives as StateMsg and is applied only when newer than what is shown.
type Model struct {
	deps  Deps
	tools [tabCount]editable

	editors [tabCount]components.EditorModel
	states  [tabCount]domain.ToolState
	// localRev is the newest buffer revision produced by this editor or
	// already reflected in it; snapshots read at an older revision never
	// overwrite the editor.
	localRev [tabCount]uint64

	result    components.ResultPaneModel
	tabBar    components.TabBarModel
	statusBar components.StatusBarModel
	spinner   spinner.Model

	active     int
	flash      string
	flashLevel flashLevel
	flashSeq   int
	width      int
	height     int
	quitting   bool
}

// NewModel creates the root model with the grammar tab focused.
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)

	m := Model{
		deps:  deps,
		tools: [tabCount]editable{deps.Grammar, deps.Translation},
		editors: [tabCount]components.EditorModel{
			components.NewEditor("Type or paste text to check..."),
			components.NewEditor("Type or paste text to translate..."),
		},
		result: components.NewResultPane("Translation"),
		tabBar: components.NewTabBar([]components.Tab{
			{ID: string(domain.ToolGrammar), Label: "Grammar"},
			{ID: string(domain.ToolTranslation), Label: "Translate"},
		}),
		statusBar: components.NewStatusBar(),
		spinner:   s,
	}
	m.states[tabGrammar] = domain.ToolState{
		Tool:    domain.ToolGrammar,
		Params:  deps.Grammar.Params(),
		Autofix: deps.Grammar.Autofix(),
	}
	m.states[tabTranslation] = domain.ToolState{
		Tool:   domain.ToolTranslation,
		Params: deps.Translation.Params(),
	}
	m.editors[tabGrammar].Focus()
	m.refreshStatus()
	return m
}

// Init starts the spinner and cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textarea.Blink)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StateMsg:
		m.applyState(msg.State)
		return m, nil


	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.active == tabTranslation {
			var cmd tea.Cmd
			m.result, cmd = m.result.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Cursor blink and other textarea internals.
	var cmd tea.Cmd
	m.editors[m.active], cmd, _ = m.editors[m.active].Update(msg)
	return m, cmd
}

// handleKey processes keyboard input. Tool shortcuts are intercepted before
// the editor sees them; everything else edits the active buffer.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		return m, m.switchTab((m.active + 1) % tabCount)
	case "shift+tab":
		return m, m.switchTab((m.active - 1 + tabCount) % tabCount)
	case "ctrl+o":
		next := m.deps.Catalog.NextModel(m.tools[m.active].Params().Model)
		if err := m.tools[m.active].SetModel(next); err != nil {
			return m.setError(err)
		}
		m.states[m.active].Params.Model = next
		m.refreshStatus()
		return m, nil
	case "ctrl+y":
		return m.copyOutput()
	case "ctrl+l":
		m.tools[m.active].Clear()
		m.editors[m.active].SetValue("")
		if m.active == tabTranslation {
			m.result.SetContent("")
		}
		return m, nil
	}

	if m.active == tabGrammar {
		if handled, model, cmd := m.handleGrammarKey(msg); handled {
			return model, cmd
		}
	} else if handled, model, cmd := m.handleTranslationKey(msg); handled {
		return model, cmd
	}

	return m.edit(msg)
}

func (m Model) handleGrammarKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	g := m.deps.Grammar
	key := msg.String()
	switch key {
	case "ctrl+f":
		on := !g.Autofix()
		g.SetAutofix(on)
		m.states[tabGrammar].Autofix = on
		label, level := "Autofix off", flashInfo
		if on {
			label, level = "Autofix on", flashSuccess
		}
		model, cmd := m.setFlash(label, level)
		return true, model, cmd
	case "alt+left":
		if !g.Back() {
			model, cmd := m.setFlash("No earlier version", flashWarn)
			return true, model, cmd
		}
		return true, m, nil
	case "alt+right":
		if !g.Forward() {
			model, cmd := m.setFlash("No later version", flashWarn)
			return true, model, cmd
		}
		return true, m, nil
	}

	if n, ok := strings.CutPrefix(key, "alt+"); ok {
		if i, err := strconv.Atoi(n); err == nil && i >= 1 && i <= len(domain.Styles) {
			style := domain.Styles[i-1]
			if err := g.ApplyStyle(style); err != nil {
				model, cmd := m.setError(err)
				return true, model, cmd
			}
			m.states[tabGrammar].Params.Style = style
			m.refreshStatus()
			return true, m, nil
		}
	}
	return false, m, nil
}

func (m Model) handleTranslationKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	t := m.deps.Translation
	switch msg.String() {
	case "ctrl+g":
		next := m.deps.Catalog.NextLanguage(t.Params().TargetLanguage)
		if err := t.SetTargetLanguage(next); err != nil {
			model, cmd := m.setError(err)
			return true, model, cmd
		}
		m.states[tabTranslation].Params.TargetLanguage = next
		m.refreshStatus()
		return true, m, nil
	case "ctrl+t":
		if err := t.Translate(); err != nil {
			model, cmd := m.setError(err)
			return true, model, cmd
		}
		return true, m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.result, cmd = m.result.Update(msg)
		return true, m, cmd
	}
	return false, m, nil
}

// edit forwards a key to the active editor and reports the new text to its tool.
func (m Model) edit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.tools[m.active]
	if msg.Paste {
		t.OnPaste()
	}
	var (
		cmd     tea.Cmd
		changed bool
	)
	m.editors[m.active], cmd, changed = m.editors[m.active].Update(msg)
	if changed {
		m.localRev[m.active] = t.OnTextChanged(m.editors[m.active].Value())
	}
	return m, cmd
}

// applyState adopts a snapshot if it is newer than the one shown. The editor
// text is replaced only when the snapshot was read at a buffer revision this
// editor has not seen.
func (m *Model) applyState(s domain.ToolState) {
	i := tabIndex(s.Tool)
	if i < 0 || s.Revision <= m.states[i].Revision {
		return
	}
	m.states[i] = s
	if s.TextRevision > m.localRev[i] {
		if s.Text != m.editors[i].Value() {
			m.editors[i].SetValue(s.Text)
		}
		m.localRev[i] = s.TextRevision
	}
	if i == tabTranslation {
		m.result.SetContent(s.Result)
	}
	m.tabBar.SetBusy(string(s.Tool), s.Loading)
	m.refreshStatus()
}

func (m *Model) switchTab(i int) tea.Cmd {
	m.editors[m.active].Blur()
	m.active = i
	m.tabBar.SetActive(i)
	m.refreshStatus()
	m.layout()
	return m.editors[i].Focus()
}

func (m Model) copyOutput() (tea.Model, tea.Cmd) {
	text := m.editors[tabGrammar].Value()
	if m.active == tabTranslation {
		text = m.states[tabTranslation].Result
	}
	if strings.TrimSpace(text) == "" {
		return m.setFlash("Nothing to copy", flashWarn)
	}
	if m.deps.Clipboard == nil {
		return m.setFlash("Clipboard unavailable", flashError)
	}
	if err := m.deps.Clipboard.Copy(text); err != nil {
		m.deps.Logger.Warn("clipboard copy failed", "error", err)
		return m.setError(err)
	}
	return m.setFlash("Copied to clipboard", flashSuccess)
}

func (m Model) setError(err error) (tea.Model, tea.Cmd) {
	return m.setFlash(uxerror.Humanize(err).Line(), flashError)
}

func (m Model) setFlash(text string, level flashLevel) (tea.Model, tea.Cmd) {
	m.flashSeq++
	m.flash = text
	m.flashLevel = level
	seq := m.flashSeq
	return m, tea.Tick(flashTTL, func(time.Time) tea.Msg { return flashExpiredMsg{seq: seq} })
}

func (m *Model) refreshStatus() {
	m.statusBar.ModelName = m.states[m.active].Params.Model
	if m.active == tabGrammar {
		m.statusBar.Hints = grammarHints()
	} else {
		m.statusBar.Hints = translationHints()
	}
}

// layout recalculates sizes for all sub-models.
func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	const tabBarH, chipsH, lineH, statusH = 1, 1, 1, 1
	contentH := max(m.height-tabBarH-chipsH-lineH-statusH, 6)

	m.tabBar.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.editors[tabGrammar].SetSize(m.width, contentH)

	editorH := contentH / 2
	m.editors[tabTranslation].SetSize(m.width, editorH)
	m.result.SetSize(m.width, contentH-editorH)
}

// View renders the active tab.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}

	parts := []string{m.tabBar.View(), m.chipsView(), m.editors[m.active].View()}
	if m.active == tabTranslation {
		parts = append(parts, m.result.View())
	}
	parts = append(parts, m.lineView(), m.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// chipsView renders the active tool's settings.
func (m Model) chipsView() string {
	s := m.states[m.active]
	var chips []string
	if m.active == tabGrammar {
		for i, style := range domain.Styles {
			label := strconv.Itoa(i+1) + " " + style.Label()
			if style == s.Params.Style {
				chips = append(chips, theme.ChipActive.Render(label))
			} else {
				chips = append(chips, theme.Chip.Render(label))
			}
		}
		autofix := theme.TextMuted.Render("autofix off")
		if s.Autofix {
			autofix = theme.TextSuccess.Render("autofix on")
		}
		chips = append(chips, " ", autofix, " ", m.historyView(s))
	} else {
		chips = append(chips,
			theme.Chip.Render(theme.SymbolArrowR+" "+s.Params.TargetLanguage),
			theme.TextMuted.Render(s.DetectedLanguage),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, chips...)
}

func (m Model) historyView(s domain.ToolState) string {
	if s.HistoryLen == 0 {
		return ""
	}
	back, fwd := theme.Dim.Render(theme.SymbolArrowL), theme.Dim.Render(theme.SymbolArrowR)
	if s.CanGoBack() {
		back = theme.TextInfo.Render(theme.SymbolArrowL)
	}
	if s.CanGoForward() {
		fwd = theme.TextInfo.Render(theme.SymbolArrowR)
	}
	pos := strconv.Itoa(s.HistoryCursor+1) + "/" + strconv.Itoa(s.HistoryLen)
	return back + " " + theme.TextMuted.Render(pos) + " " + fwd
}

// lineView renders the request status, error, or flash message.
func (m Model) lineView() string {
	s := m.states[m.active]
	switch {
	case m.flash != "":
		return m.flashView()
	case s.Loading:
		return m.spinner.View() + " " + theme.TextMuted.Render("Working"+theme.SymbolEllipsis)
	case s.Error != "":
		return theme.TextError.Render(theme.SymbolError + " " + s.Error)
	}
	return ""
}

func (m Model) flashView() string {
	switch m.flashLevel {
	case flashSuccess:
		return theme.TextSuccess.Render(theme.SymbolSuccess + " " + m.flash)
	case flashWarn:
		return theme.TextWarning.Render(theme.SymbolWarning + " " + m.flash)
	case flashError:
		return theme.TextError.Render(theme.SymbolError + " " + m.flash)
	default:
		return theme.TextInfo.Render(theme.SymbolInfo + " " + m.flash)
	}
}

func tabIndex(tool domain.ToolName) int {
	switch tool {
	case domain.ToolGrammar:
		return tabGrammar
	case domain.ToolTranslation:
		return tabTranslation
	}
	return -1
}

func grammarHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Tab", Desc: "Switch"},
		{Key: "Ctrl+F", Desc: "Autofix"},
		{Key: "Alt+1-6", Desc: "Style"},
		{Key: "Alt+" + theme.SymbolArrowL + "/" + theme.SymbolArrowR, Desc: "History"},
		{Key: "Ctrl+O", Desc: "Model"},
		{Key: "Ctrl+Y", Desc: "Copy"},
		{Key: "Ctrl+L", Desc: "Clear"},
	}
}

func translationHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Tab", Desc: "Switch"},
		{Key: "Ctrl+T", Desc: "Translate"},
		{Key: "Ctrl+G", Desc: "Language"},
		{Key: "Ctrl+O", Desc: "Model"},
		{Key: "Ctrl+Y", Desc: "Copy"},
		{Key: "Ctrl+L", Desc: "Clear"},
	}
}
