// Package mistakes implements the relay buffer of recently missed items.
//
// A missed item is queued so that it can be shown again soon, without waiting
// for its full SRS interval. The buffer is a FIFO with filtering: PopNext
// returns the oldest queued ID that is eligible for the caller's pool.
package mistakes

import (
	"slices"
	"sync"
)

// MaxCopies is the number of queued copies allowed per item ID.
const MaxCopies = 2

// Buffer is a mutex-guarded queue of item IDs. The zero value is ready to use.
type Buffer struct {
	mu    sync.Mutex
	queue []string
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Seed appends ids in order. Duplicates are accepted without checking the per-ID cap.
func (b *Buffer) Seed(ids ...string) {
	if len(ids) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue = append(b.queue, ids...)
}

// Drain returns the whole queue and leaves the buffer empty.
func (b *Buffer) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.queue
	b.queue = nil
	return out
}

// Take removes and returns, in queue order, every queued ID present in pool.
// IDs outside pool stay queued for another consumer.
func (b *Buffer) Take(pool []string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 || len(pool) == 0 {
		return nil
	}
	inPool := make(map[string]struct{}, len(pool))
	for _, id := range pool {
		inPool[id] = struct{}{}
	}

	var taken []string
	rest := b.queue[:0]
	for _, id := range b.queue {
		if _, ok := inPool[id]; ok {
			taken = append(taken, id)
			continue
		}
		rest = append(rest, id)
	}
	b.queue = rest
	return taken
}

// PushBack appends id unless MaxCopies of it are already queued.
// It reports whether id was added.
func (b *Buffer) PushBack(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, q := range b.queue {
		if q == id {
			n++
		}
	}
	if n >= MaxCopies {
		return false
	}
	b.queue = append(b.queue, id)
	return true
}

// PopNext removes and returns the first queued ID that differs from excluding
// and is present in pool. IDs that do not match stay queued in order.
func (b *Buffer) PopNext(pool []string, excluding string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 || len(pool) == 0 {
		return "", false
	}

	inPool := make(map[string]struct{}, len(pool))
	for _, id := range pool {
		inPool[id] = struct{}{}
	}

	for i, id := range b.queue {
		if id == excluding {
			continue
		}
		if _, ok := inPool[id]; !ok {
			continue
		}
		b.queue = slices.Delete(b.queue, i, i+1)
		return id, true
	}
	return "", false
}

// Len returns the number of queued IDs, duplicates included.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Snapshot returns a copy of the queue in order.
func (b *Buffer) Snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.queue)
}
