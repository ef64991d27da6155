package textsession

import "sync"

// Buffer holds the text currently being edited. Deferred and asynchronous
// callbacks read it through Latest or Snapshot at execution time rather than
// capturing the text when they were scheduled.
type Buffer struct {
	mu   sync.RWMutex
	text string
	rev  uint64
}

// NewBuffer creates a buffer holding text.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text}
}

// Set replaces the text and returns the new revision.
func (b *Buffer) Set(text string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
	b.rev++
	return b.rev
}

// SetIf replaces the text only if the buffer is still at revision rev.
func (b *Buffer) SetIf(rev uint64, text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rev != rev {
		return false
	}
	b.text = text
	b.rev++
	return true
}

// Latest returns the current text.
func (b *Buffer) Latest() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Snapshot returns the current text with its revision.
func (b *Buffer) Snapshot() (string, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text, b.rev
}

// Revision returns the number of writes so far.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rev
}
