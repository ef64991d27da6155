// Package tools implements the grammar/style and translation orchestrators.
// Each orchestrator owns one text session: a buffer, its trigger policy, a
// request coordinator and (for grammar) a transformation history.
package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"textkit/internal/domain"
	"textkit/internal/usecase/debounce"
	"textkit/internal/usecase/request"
	"textkit/internal/usecase/textsession"
)

// GrammarDebounceDelay is the grammar tool's default typing debounce.
const GrammarDebounceDelay = 2000 * time.Millisecond

// Deps holds the collaborators of an orchestrator.
type Deps struct {
	Backend domain.TextBackend
	Catalog domain.Catalog
	Bus     domain.EventBus // optional, nil = no events
	Logger  *slog.Logger
}

// Config holds timing and size settings. Zero values select defaults.
type Config struct {
	MinLength       int
	DebounceDelay   time.Duration
	PasteSettle     time.Duration
	HistoryCapacity int
	Clock           debounce.AfterFunc // optional timer source
}

func (c Config) sessionOptions() []textsession.Option {
	opts := []textsession.Option{
		textsession.WithMinLength(c.MinLength),
		textsession.WithDebounceDelay(c.DebounceDelay),
		textsession.WithPasteSettle(c.PasteSettle),
	}
	if c.Clock != nil {
		opts = append(opts, textsession.WithClock(c.Clock))
	}
	return opts
}

// requestPayload is attached to request lifecycle events.
type requestPayload struct {
	Style          domain.Style `json:"style,omitempty"`
	Model          string       `json:"model"`
	TargetLanguage string       `json:"target_language,omitempty"`
	Error          string       `json:"error,omitempty"`
	Code           string       `json:"code,omitempty"`
}

// base carries what both orchestrators share.
//
// Lock order: issueMu, then pubMu, then the coordinator, then mu. The buffer
// and history locks are leaves. Starting a request may publish state while
// issueMu is held, and publishState reads the coordinator under pubMu. Commit
// closures run under the coordinator's lock and may take mu, so mu is never
// held while calling the coordinator.
type base struct {
	id      string
	tool    domain.ToolName
	deps    Deps
	logger  *slog.Logger
	coord   *request.Coordinator
	session *textsession.Session
	buf     *textsession.Buffer

	ctx    context.Context
	cancel context.CancelFunc

	issueMu sync.Mutex
	pubMu   sync.Mutex
	rev     uint64

	mu     sync.Mutex
	params domain.Params
	closed bool
	fill   func(*domain.ToolState) // tool-specific snapshot fields, runs under mu
}

func newBase(tool domain.ToolName, deps Deps) *base {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	id := generateULID(time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	return &base{
		id:     id,
		tool:   tool,
		deps:   deps,
		logger: deps.Logger.With("tool", string(tool), "session_id", id),
		coord:  request.New(string(tool), deps.Logger),
		buf:    textsession.NewBuffer(""),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the tool session's identifier.
func (b *base) ID() string { return b.id }

// Text returns the buffer contents.
func (b *base) Text() string { return b.buf.Latest() }

// Loading reports whether a request is in flight.
func (b *base) Loading() bool { return b.coord.Loading() }

// Error returns the user-facing error of the last request, if any.
func (b *base) Error() string { return b.coord.Error() }

// Params returns the current processing parameters.
func (b *base) Params() domain.Params {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.params
}

// OnTextChanged records an edit and returns the buffer revision it produced.
func (b *base) OnTextChanged(text string) uint64 {
	rev := b.session.OnTextChanged(text)
	b.publishState()
	return rev
}

// OnPaste marks the start of a paste.
func (b *base) OnPaste() {
	b.session.OnPaste()
}

// CancelPending discards a scheduled debounced request.
func (b *base) CancelPending() {
	b.session.CancelPending()
}

// Wait blocks until in-flight requests have settled.
func (b *base) Wait() { b.coord.Wait() }

func (b *base) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// issue starts a request. prepare runs under issueMu and returns the call to
// make, or false when nothing should be sent; reading parameters there keeps
// them consistent with the issue order.
func (b *base) issue(prepare func() (request.Call, requestPayload, bool)) {
	b.issueMu.Lock()
	defer b.issueMu.Unlock()
	if b.isClosed() {
		return
	}
	call, payload, ok := prepare()
	if !ok {
		return
	}
	b.publishEvent(domain.EventToolRequestStarted, payload)
	b.coord.Start(b.ctx, call, func(err error) {
		switch {
		case err == nil:
			b.publishEvent(domain.EventToolRequestCompleted, payload)
		case domain.IsCancelled(err):
			b.publishEvent(domain.EventToolRequestCancelled, payload)
		default:
			p := payload
			p.Error = err.Error()
			p.Code = string(domain.ErrorCodeOf(err))
			b.publishEvent(domain.EventToolRequestFailed, p)
		}
	})
}

// close tears the session down. Safe to call more than once.
func (b *base) close() bool {
	b.issueMu.Lock()
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.issueMu.Unlock()
		return false
	}
	b.closed = true
	b.mu.Unlock()
	b.issueMu.Unlock()

	b.session.Close()
	b.coord.Cancel()
	b.cancel()
	b.coord.Wait()

	if b.deps.Bus != nil {
		b.deps.Bus.Publish(context.Background(), domain.Event{
			Type:      domain.EventToolSessionClosed,
			Timestamp: time.Now(),
			SessionID: b.id,
			Tool:      b.tool,
		})
	}
	b.logger.Debug("tool session closed")
	return true
}

func (b *base) publishState() {
	if b.deps.Bus == nil {
		return
	}
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	text, textRev := b.buf.Snapshot()
	state := domain.ToolState{
		SessionID:    b.id,
		Tool:         b.tool,
		Loading:      b.coord.Loading(),
		Error:        b.coord.Error(),
		Text:         text,
		TextRevision: textRev,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.rev++
	state.Revision = b.rev
	state.Params = b.params
	if b.fill != nil {
		b.fill(&state)
	}
	b.mu.Unlock()

	b.deps.Bus.Publish(context.Background(), domain.Event{
		Type:      domain.EventToolStateChanged,
		Timestamp: time.Now(),
		SessionID: b.id,
		Tool:      b.tool,
		State:     &state,
	})
}

func (b *base) publishEvent(eventType domain.EventType, payload requestPayload) {
	if b.deps.Bus == nil {
		return
	}
	var raw json.RawMessage
	if data, err := json.Marshal(payload); err == nil {
		raw = data
	}
	b.deps.Bus.Publish(context.Background(), domain.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		SessionID: b.id,
		Tool:      b.tool,
		Payload:   raw,
	})
}

func trimmed(text string) string { return strings.TrimSpace(text) }

func generateULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
