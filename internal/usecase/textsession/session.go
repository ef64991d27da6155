// Package textsession decides when edits to a text buffer should be sent for
// processing: typing is debounced, pastes are processed after a short settle.
package textsession

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"textkit/internal/usecase/debounce"
)

// Defaults for session timing.
const (
	DefaultMinLength     = 3
	DefaultDebounceDelay = 1500 * time.Millisecond
	DefaultPasteSettle   = 100 * time.Millisecond
)

// Processor handles the latest buffer text. It must not block; callers
// that issue network requests do so on their own goroutine.
type Processor func(text string)

// Option configures a Session.
type Option func(*Session)

// WithMinLength sets the minimum trimmed length that triggers processing.
func WithMinLength(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// WithDebounceDelay sets the quiet period after typing.
func WithDebounceDelay(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithPasteSettle sets how long a paste is given to land in the buffer.
func WithPasteSettle(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.settleDelay = d
		}
	}
}

// WithClock replaces the timer source for both the debounce and paste timers.
func WithClock(fn debounce.AfterFunc) Option {
	return func(s *Session) { s.afterFunc = fn }
}

// Session applies the trigger policy for one buffer.
type Session struct {
	mu          sync.Mutex
	buf         *Buffer
	processor   Processor
	pasting     bool
	closed      bool
	minLength   int
	delay       time.Duration
	settleDelay time.Duration
	afterFunc   debounce.AfterFunc

	debounce *debounce.Scheduler
	settle   *debounce.Scheduler
}

// New creates a session over buf. A nil processor disables processing.
func New(buf *Buffer, processor Processor, opts ...Option) *Session {
	s := &Session{
		buf:         buf,
		processor:   processor,
		minLength:   DefaultMinLength,
		delay:       DefaultDebounceDelay,
		settleDelay: DefaultPasteSettle,
	}
	for _, o := range opts {
		o(s)
	}
	var schedOpts []debounce.Option
	if s.afterFunc != nil {
		schedOpts = append(schedOpts, debounce.WithAfterFunc(s.afterFunc))
	}
	s.debounce = debounce.New(schedOpts...)
	s.settle = debounce.New(schedOpts...)
	return s
}

// Buffer returns the session's buffer.
func (s *Session) Buffer() *Buffer { return s.buf }

// MinLength returns the trimmed length below which input is not processed.
func (s *Session) MinLength() int { return s.minLength }

// Qualifies reports whether text is long enough to be processed.
func (s *Session) Qualifies(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= s.minLength
}

// OnTextChanged stores newText and, unless a paste is being absorbed,
// schedules debounced processing when the text is long enough. It returns
// the buffer revision of the write, or 0 after Close.
func (s *Session) OnTextChanged(newText string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	rev := s.buf.Set(newText)
	if s.pasting {
		return rev
	}
	if !s.Qualifies(newText) {
		s.debounce.Cancel()
		return rev
	}
	if s.processor != nil {
		s.debounce.Schedule(s.fireDebounced, s.delay)
	}
	return rev
}

// OnPaste marks a paste in progress. After the settle delay the processor
// runs immediately on the latest buffer, bypassing debounce.
func (s *Session) OnPaste() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pasting = true
	s.debounce.Cancel()
	s.settle.Schedule(s.fireSettled, s.settleDelay)
}

// Pasting reports whether a paste is being absorbed.
func (s *Session) Pasting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pasting
}

// CancelPending discards a scheduled debounced invocation. In-flight requests
// are not affected.
func (s *Session) CancelPending() {
	s.debounce.Cancel()
}

// Pending reports whether a debounced invocation is scheduled.
func (s *Session) Pending() bool {
	return s.debounce.Pending()
}

// SetProcessor swaps the processor. Timers already scheduled use the new one.
func (s *Session) SetProcessor(p Processor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processor = p
}

// Close stops both timers. Later events are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.pasting = false
	s.debounce.Stop()
	s.settle.Stop()
}

func (s *Session) fireDebounced() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	p := s.processor
	s.mu.Unlock()

	if p != nil {
		p(s.buf.Latest())
	}
}

func (s *Session) fireSettled() {
	s.mu.Lock()
	if s.closed || !s.pasting {
		s.mu.Unlock()
		return
	}
	s.pasting = false
	p := s.processor
	text := s.buf.Latest()
	s.mu.Unlock()

	if p != nil && strings.TrimSpace(text) != "" {
		p(text)
	}
}
