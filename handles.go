package fastedge

import (
	"fmt"
	"sync"

	"fastedge.dev/hostapi"
)

// handleTable maps handles to host-side entries for a single instance. Handles are indexes
// into the table and are never reused. Once closed, every handle is invalid and no new ones are
// issued.
//
// Lookups may run concurrently with each other and with New.
type handleTable[T any] struct {
	mu      sync.RWMutex
	entries []T
	closed  bool
}

// New stores v and returns its handle.
func (t *handleTable[T]) New(v T) (hostapi.Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return hostapi.InvalidHandle, fmt.Errorf("instance torn down: %w", hostapi.ErrHostUnavailable)
	}
	if len(t.entries) >= int(hostapi.InvalidHandle) {
		return hostapi.InvalidHandle, fmt.Errorf("out of handles: %w", hostapi.ErrHostUnavailable)
	}

	t.entries = append(t.entries, v)
	return hostapi.Handle(len(t.entries) - 1), nil
}

// Get returns the entry identified by h, or false if h is unknown or the table is closed.
func (t *handleTable[T]) Get(h hostapi.Handle) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var zero T
	if t.closed || int64(h) >= int64(len(t.entries)) {
		return zero, false
	}
	return t.entries[h], true
}

// Len is the number of handles issued so far.
func (t *handleTable[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Close invalidates every handle.
func (t *handleTable[T]) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.entries = nil
}

// Secret is the plaintext behind a secret handle.
type Secret struct {
	plaintext []byte
}

// Plaintext returns the secret's bytes.
func (s *Secret) Plaintext() []byte {
	return s.plaintext
}
