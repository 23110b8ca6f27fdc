package ratelimit

import (
	"context"
	"sync"
	"time"
)

type attempts struct {
	count   int
	expires time.Time
}

// Memory counts failures in process. It is the fallback when no redis
// address is configured and does not share state across instances.
type Memory struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*attempts
}

// NewMemory allows max failures per key inside window
func NewMemory(max int, window time.Duration) *Memory {
	return &Memory{
		max:     max,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*attempts),
	}
}

// WithClock injects a custom clock (useful for tests)
func (m *Memory) WithClock(now func() time.Time) *Memory {
	if now != nil {
		m.now = now
	}
	return m
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	if m.max <= 0 {
		return true, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.live(key)
	if entry == nil {
		return true, nil
	}
	return entry.count < m.max, nil
}

func (m *Memory) Failure(_ context.Context, key string) error {
	if m.max <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.live(key)
	if entry == nil {
		entry = &attempts{expires: m.now().Add(m.window)}
		m.entries[key] = entry
	}
	entry.count++
	return nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Sweep drops every entry whose window has passed
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, entry := range m.entries {
		if !now.Before(entry.expires) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked keys
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// StartCleanup sweeps every interval until the returned stop is called.
// Keys that fail once and never come back would otherwise stay forever.
func (m *Memory) StartCleanup(interval time.Duration) (stop func() error) {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-done:
				return
			}
		}
	}()

	return func() error {
		once.Do(func() { close(done) })
		return nil
	}
}

// live returns the entry for key, dropping it once its window passed.
// Callers hold mu.
func (m *Memory) live(key string) *attempts {
	entry, ok := m.entries[key]
	if !ok {
		return nil
	}
	if !m.now().Before(entry.expires) {
		delete(m.entries, key)
		return nil
	}
	return entry
}
