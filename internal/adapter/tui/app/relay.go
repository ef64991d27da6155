package app

import (
	"cmp"
	"context"
	"slices"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"textkit/internal/domain"
)

// relay moves state snapshots from bus handlers into the program. Tools
// publish from inside Update, so handlers must never block on program.Send.
// push keeps only the newest snapshot per tool and wakes the pump; the pump
// delivers whatever is pending.
type relay struct {
	mu      sync.Mutex
	pending map[domain.ToolName]domain.ToolState
	wake    chan struct{}
}

func newRelay() *relay {
	return &relay{
		pending: make(map[domain.ToolName]domain.ToolState),
		wake:    make(chan struct{}, 1),
	}
}

// handle is the bus handler for EventToolStateChanged.
func (r *relay) handle(_ context.Context, event domain.Event) {
	if event.State != nil {
		r.push(*event.State)
	}
}

func (r *relay) push(s domain.ToolState) {
	r.mu.Lock()
	if cur, ok := r.pending[s.Tool]; ok && cur.Revision >= s.Revision {
		r.mu.Unlock()
		return
	}
	r.pending[s.Tool] = s
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// drain returns and clears the pending snapshots, ordered by tool name.
func (r *relay) drain() []domain.ToolState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ToolState, 0, len(r.pending))
	for _, s := range r.pending {
		out = append(out, s)
	}
	clear(r.pending)
	slices.SortFunc(out, func(a, b domain.ToolState) int { return cmp.Compare(a.Tool, b.Tool) })
	return out
}

// run delivers pending snapshots until ctx is done.
func (r *relay) run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.wake:
			for _, s := range r.drain() {
				send(StateMsg{State: s})
			}
		}
	}
}
