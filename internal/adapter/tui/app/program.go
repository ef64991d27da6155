package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"textkit/internal/domain"
)

// Run starts the TUI and blocks until it exits. Both tool sessions are
// closed on return.
func Run(ctx context.Context, deps Deps, opts ...tea.ProgramOption) error {
	defer deps.Grammar.Close()
	defer deps.Translation.Close()

	model := NewModel(deps)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Forward tool state from the EventBus to the program.
	if deps.Bus != nil {
		r := newRelay()
		unsub := deps.Bus.Subscribe(domain.EventToolStateChanged, r.handle)
		defer unsub()
		go r.run(runCtx, program.Send)
	}

	// Monitor context cancellation to quit the program.
	go func() {
		<-runCtx.Done()
		program.Send(QuitMsg{})
	}()

	model.deps.Logger.Debug("tui started")
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
