// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"maps"
	"sync"
	"time"
)

// DefaultCleanupInterval is how often expired sessions are purged from memory.
const DefaultCleanupInterval = 5 * time.Minute

// Backend persists encoded session values. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Load returns the stored values for keys. Missing keys are omitted.
	Load(ctx context.Context, id string, keys []Key) (map[Key][]byte, error)

	// Store writes values and extends the session lifetime to ttl.
	Store(ctx context.Context, id string, values map[Key][]byte, ttl time.Duration) error

	// Remove deletes keys from the session.
	Remove(ctx context.Context, id string, keys []Key) error

	// Destroy deletes the whole session.
	Destroy(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

type memoryEntry struct {
	values    map[Key][]byte
	expiresAt time.Time
}

// MemoryBackend keeps sessions in process memory. It is suitable for a single
// replica and for tests.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]*memoryEntry

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	cleanupDone     chan struct{}
	closeOnce       sync.Once

	now func() time.Time
}

// Compile-time interface check.
var _ Backend = (*MemoryBackend)(nil)

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithCleanupInterval sets how often expired sessions are purged.
func WithCleanupInterval(interval time.Duration) MemoryOption {
	return func(b *MemoryBackend) {
		if interval > 0 {
			b.cleanupInterval = interval
		}
	}
}

// withClock replaces the time source. Used by tests.
func withClock(now func() time.Time) MemoryOption {
	return func(b *MemoryBackend) {
		b.now = now
	}
}

// NewMemoryBackend creates a MemoryBackend and starts its cleanup goroutine.
func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	b := &MemoryBackend{
		sessions:        make(map[string]*memoryEntry),
		cleanupInterval: DefaultCleanupInterval,
		stopCleanup:     make(chan struct{}),
		cleanupDone:     make(chan struct{}),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.cleanupLoop()

	return b
}

// Load implements Backend.
func (b *MemoryBackend) Load(_ context.Context, id string, keys []Key) (map[Key][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[Key][]byte, len(keys))
	e, ok := b.sessions[id]
	if !ok || b.now().After(e.expiresAt) {
		return out, nil
	}
	for _, k := range keys {
		if data, ok := e.values[k]; ok {
			out[k] = append([]byte(nil), data...)
		}
	}
	return out, nil
}

// Store implements Backend.
func (b *MemoryBackend) Store(_ context.Context, id string, values map[Key][]byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	e, ok := b.sessions[id]
	if !ok || now.After(e.expiresAt) {
		e = &memoryEntry{values: make(map[Key][]byte, len(values))}
		b.sessions[id] = e
	}
	for k, data := range values {
		e.values[k] = append([]byte(nil), data...)
	}
	e.expiresAt = now.Add(ttl)
	return nil
}

// Remove implements Backend.
func (b *MemoryBackend) Remove(_ context.Context, id string, keys []Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.sessions[id]; ok {
		for _, k := range keys {
			delete(e.values, k)
		}
	}
	return nil
}

// Destroy implements Backend.
func (b *MemoryBackend) Destroy(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	now := b.now()
	n := 0
	for _, e := range b.sessions {
		if !now.After(e.expiresAt) {
			n++
		}
	}
	return n
}

// Close stops the cleanup goroutine and waits for it to finish.
func (b *MemoryBackend) Close() error {
	b.closeOnce.Do(func() {
		close(b.stopCleanup)
		<-b.cleanupDone
	})
	return nil
}

func (b *MemoryBackend) cleanupLoop() {
	defer close(b.cleanupDone)

	ticker := time.NewTicker(b.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCleanup:
			return
		case <-ticker.C:
			b.cleanupExpired()
		}
	}
}

// cleanupExpired collects expired IDs under the read lock, then deletes
// them under the write lock.
func (b *MemoryBackend) cleanupExpired() {
	now := b.now()

	b.mu.RLock()
	var expired []string
	for id, e := range b.sessions {
		if now.After(e.expiresAt) {
			expired = append(expired, id)
		}
	}
	b.mu.RUnlock()

	if len(expired) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range expired {
		// Re-check; the session may have been refreshed in between.
		if e, ok := b.sessions[id]; ok && now.After(e.expiresAt) {
			delete(b.sessions, id)
		}
	}
}

// snapshot returns a copy of the raw values of a session. Used by tests.
func (b *MemoryBackend) snapshot(id string) map[Key][]byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if e, ok := b.sessions[id]; ok {
		return maps.Clone(e.values)
	}
	return nil
}
