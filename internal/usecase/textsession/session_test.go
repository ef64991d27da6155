package textsession

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"textkit/internal/usecase/debounce/debouncetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) process(text string) {
	r.mu.Lock()
	r.calls = append(r.calls, text)
	r.mu.Unlock()
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func newTestSession(r *recorder) (*Session, *debouncetest.Clock) {
	clock := debouncetest.New()
	s := New(NewBuffer(""), r.process, WithClock(clock.AfterFunc))
	return s, clock
}

func TestTypingIsDebounced(t *testing.T) {
	r := &recorder{}
	s, clock := newTestSession(r)

	for _, text := range []string{"t", "te", "teh", "teh ", "teh d", "teh dog run"} {
		s.OnTextChanged(text)
		clock.Advance(200 * time.Millisecond)
	}
	assert.Empty(t, r.got())
	assert.Equal(t, "teh dog run", s.Buffer().Latest())

	clock.Advance(DefaultDebounceDelay)
	assert.Equal(t, []string{"teh dog run"}, r.got())
}

func TestDebounceReadsLatestBuffer(t *testing.T) {
	r := &recorder{}
	s, clock := newTestSession(r)

	s.OnTextChanged("hello")
	// A write that bypasses the trigger policy, e.g. a history jump.
	s.Buffer().Set("hello world")
	clock.Advance(DefaultDebounceDelay)

	assert.Equal(t, []string{"hello world"}, r.got())
}

func TestShortInputNeverProcesses(t *testing.T) {
	r := &recorder{}
	s, clock := newTestSession(r)

	s.OnTextChanged("ab")
	clock.Advance(time.Minute)
	assert.Empty(t, r.got())
	assert.Equal(t, "ab", s.Buffer().Latest())
}

func TestShrinkingBelowThresholdCancelsPending(t *testing.T) {
	r := &recorder{}
	s, clock := newTestSession(r)

	s.OnTextChanged("abcd")
	require.True(t, s.Pending())
	s.OnTextChanged("ab")
	assert.False(t, s.Pending())

	clock.Advance(time.Minute)
	assert.Empty(t, r.got())
}

func TestWhitespaceOnlyCancelsPending(t *testing.T) {
	r := &recorder{}
	s, clock := newTestSession(r)

	s.OnTextChanged("hello")
	s.OnTextChanged("   ")
	assert.False(t, s.Pending())

	clock.Advance(time.Minute)
	assert.Empty(t, r.got())
}

func TestMinLengthCountsRunes(t *testing.T) {
	s := New(NewBuffer(""), nil)
	assert.True(t, s.Qualifies("ёжи"))
	assert.False(t, s.Qualifies("  ab  "))
}

func TestPasteBypassesDebounce(t *testing.T) {
	r := &recorder{}
	s, clock := newTestSession(r)

	s.OnPaste()
	s.OnTextChanged("Bonjour le monde")
	assert.False(t, s.Pending(), "paste suppresses the debounce trigger")

	clock.Advance(99 * time.Millisecond)
	assert.Empty(t, r.got())

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"Bonjour le monde"}, r.got())
	assert.False(t, s.Pasting())

	// Nothing else fires later.
	clock.Advance(time.Minute)
	assert.Len(t, r.got(), 1)
}

func TestPasteCancelsPendingDebounce(t *testing.T) {
	r := &recorder{}
	s, clock := newTestSession(r)

	s.OnTextChanged("typed")
	require.True(t, s.Pending())

	s.OnPaste()
	assert.False(t, s.Pending())
	s.OnTextChanged("typed and pasted")

	clock.Advance(time.Minute)
	assert.Equal(t, []string{"typed and pasted"}, r.got())
}

func TestPasteOfWhitespaceDoesNothing(t *testing.T) {
	r := &recorder{}
	s, clock := newTestSession(r)

	s.OnPaste()
	s.OnTextChanged("  \n ")
	clock.Advance(time.Second)

	assert.Empty(t, r.got())
	assert.False(t, s.Pasting())
}

func TestTypingAfterPasteSettlesIsDebounced(t *testing.T) {
	r := &recorder{}
	s, clock := newTestSession(r)

	s.OnPaste()
	s.OnTextChanged("pasted")
	clock.Advance(DefaultPasteSettle)
	s.OnTextChanged("pasted!")
	require.True(t, s.Pending())

	clock.Advance(DefaultDebounceDelay)
	assert.Equal(t, []string{"pasted", "pasted!"}, r.got())
}

func TestNilProcessorDisablesProcessing(t *testing.T) {
	clock := debouncetest.New()
	s := New(NewBuffer(""), nil, WithClock(clock.AfterFunc))

	s.OnTextChanged("hello")
	assert.False(t, s.Pending())
	s.OnPaste()
	s.OnTextChanged("hello again")
	clock.Advance(time.Minute)
	assert.Equal(t, "hello again", s.Buffer().Latest())
}

func TestSetProcessorAppliesToScheduledWork(t *testing.T) {
	first := &recorder{}
	second := &recorder{}
	s, clock := newTestSession(first)

	s.OnTextChanged("hello")
	s.SetProcessor(second.process)
	clock.Advance(DefaultDebounceDelay)

	assert.Empty(t, first.got())
	assert.Equal(t, []string{"hello"}, second.got())
}

func TestCancelPending(t *testing.T) {
	r := &recorder{}
	s, clock := newTestSession(r)

	s.OnTextChanged("hello")
	s.CancelPending()
	s.CancelPending()
	clock.Advance(time.Minute)

	assert.Empty(t, r.got())
}

func TestCustomTiming(t *testing.T) {
	r := &recorder{}
	clock := debouncetest.New()
	s := New(NewBuffer(""), r.process,
		WithClock(clock.AfterFunc),
		WithDebounceDelay(2*time.Second),
		WithMinLength(5),
		WithPasteSettle(50*time.Millisecond),
	)

	s.OnTextChanged("four")
	clock.Advance(time.Minute)
	assert.Empty(t, r.got())

	s.OnTextChanged("five!")
	clock.Advance(1500 * time.Millisecond)
	assert.Empty(t, r.got())
	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, []string{"five!"}, r.got())

	s.OnPaste()
	clock.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"five!", "five!"}, r.got())
}

func TestCloseStopsTimers(t *testing.T) {
	r := &recorder{}
	s, clock := newTestSession(r)

	s.OnTextChanged("hello")
	s.OnPaste()
	s.Close()
	clock.Advance(time.Minute)
	assert.Empty(t, r.got())

	s.OnTextChanged("ignored")
	s.OnPaste()
	clock.Advance(time.Minute)
	assert.Empty(t, r.got())
	assert.Equal(t, "hello", s.Buffer().Latest())
	assert.Equal(t, 0, clock.Pending())
}

func TestRealTimersLeaveNoGoroutines(t *testing.T) {
	done := make(chan string, 1)
	s := New(NewBuffer(""), func(text string) { done <- text },
		WithDebounceDelay(10*time.Millisecond))

	s.OnTextChanged("hello")
	select {
	case got := <-done:
		assert.Equal(t, "hello", got)
	case <-time.After(time.Second):
		t.Fatal("processor not invoked")
	}
	s.Close()
}

func TestBufferSetIf(t *testing.T) {
	b := NewBuffer("a")
	text, rev := b.Snapshot()
	assert.Equal(t, "a", text)

	assert.True(t, b.SetIf(rev, "b"))
	assert.False(t, b.SetIf(rev, "c"))
	assert.Equal(t, "b", b.Latest())
	assert.Equal(t, rev+1, b.Revision())
}
