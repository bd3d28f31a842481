// Package ring holds the bounded scroll-back history of parsed records.
//
// The buffer is a fixed-capacity circular slice: append and oldest-eviction
// are O(1), and Snapshot copies the held records in arrival order so the
// renderer never sees a torn append. One producer writes, any number of
// readers snapshot.
package ring

import (
	"sync"

	"github.com/droidtail/droidtail/internal/record"
)

// DefaultCapacity matches the history depth the interactive view keeps.
const DefaultCapacity = 10000

// Buffer is a fixed-capacity FIFO of records.
type Buffer struct {
	mu    sync.RWMutex
	items []record.Record
	head  int // index of the oldest record
	count int
}

// New returns a buffer holding at most capacity records. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{items: make([]record.Record, capacity)}
}

// Append stores rec, evicting the oldest record when full.
func (b *Buffer) Append(rec record.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := (b.head + b.count) % len(b.items)
	b.items[idx] = rec
	if b.count < len(b.items) {
		b.count++
		return
	}
	b.head = (b.head + 1) % len(b.items)
}

// ReplaceLast swaps the newest record for rec, used when a continuation
// line extends the record most recently appended. Reports false when the
// buffer is empty.
func (b *Buffer) ReplaceLast(rec record.Record) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return false
	}
	idx := (b.head + b.count - 1) % len(b.items)
	b.items[idx] = rec
	return true
}

// Snapshot returns a copy of the held records, oldest first. The copy is
// independent of the buffer and safe to read while appends continue.
func (b *Buffer) Snapshot() []record.Record {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]record.Record, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.items[(b.head+i)%len(b.items)]
	}
	return out
}

// Len reports how many records are currently held.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Cap reports the fixed capacity.
func (b *Buffer) Cap() int {
	return len(b.items)
}
