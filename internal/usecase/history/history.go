// Package history keeps a bounded log of buffer snapshots produced by remote
// transformations, with a cursor for back/forward navigation.
package history

import (
	"slices"
	"sync"
)

// DefaultCapacity is the number of snapshots retained.
const DefaultCapacity = 10

// Log is a capacity-bounded sequence of snapshots with a cursor.
// Navigation moves the cursor only; entries change only through Append.
type Log struct {
	mu       sync.RWMutex
	entries  []string
	cursor   int
	capacity int
}

// New creates an empty log. A capacity <= 0 selects DefaultCapacity.
func New(capacity int, seed ...string) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Log{capacity: capacity}
	for _, s := range seed {
		l.Append(s)
	}
	return l
}

// Append adds entry unless it equals the most recent entry. Past capacity
// the oldest entries are evicted. The cursor moves to the new entry.
func (l *Log) Append(entry string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n := len(l.entries); n > 0 && l.entries[n-1] == entry {
		return false
	}
	l.entries = append(l.entries, entry)
	if over := len(l.entries) - l.capacity; over > 0 {
		l.entries = slices.Delete(l.entries, 0, over)
	}
	l.cursor = len(l.entries) - 1
	return true
}

// Back moves the cursor one step toward older entries and returns the entry
// now under it. At the oldest entry (or when empty) it is a no-op.
func (l *Log) Back() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 || l.cursor == 0 {
		return "", false
	}
	l.cursor--
	return l.entries[l.cursor], true
}

// Forward moves the cursor one step toward newer entries and returns the
// entry now under it. At the newest entry it is a no-op.
func (l *Log) Forward() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cursor >= len(l.entries)-1 {
		return "", false
	}
	l.cursor++
	return l.entries[l.cursor], true
}

// Current returns the entry under the cursor.
func (l *Log) Current() (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return "", false
	}
	return l.entries[l.cursor], true
}

// Cursor returns the cursor index (0 when empty).
func (l *Log) Cursor() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cursor
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns a copy of the entries, oldest first.
func (l *Log) Entries() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.entries)
}

// Capacity returns the maximum number of entries.
func (l *Log) Capacity() int { return l.capacity }

// CanBack reports whether Back would move the cursor.
func (l *Log) CanBack() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cursor > 0
}

// CanForward reports whether Forward would move the cursor.
func (l *Log) CanForward() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cursor < len(l.entries)-1
}
