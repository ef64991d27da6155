// Package app implements the textkit Bubble Tea program: one tab per tool,
// each with its own editor, driven by tool state snapshots from the event bus.
package app

import "textkit/internal/domain"

// StateMsg carries a tool state snapshot into the update loop.
type StateMsg struct {
	State domain.ToolState
}

// QuitMsg signals the program to exit.
type QuitMsg struct{}

// flashLevel picks the symbol and color of a status line message.
type flashLevel int

const (
	flashInfo flashLevel = iota
	flashSuccess
	flashWarn
	flashError
)

// flashExpiredMsg clears the flash with the given sequence number.
type flashExpiredMsg struct {
	seq int
}
