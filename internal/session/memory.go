package session

import (
	"context"
	"sync"
	"time"

	"order-chatbot/internal/common/metrics"
	"order-chatbot/internal/dialogue"
)

type memoryEntry struct {
	slots     dialogue.Slots
	expiresAt time.Time
}

// MemoryStore holds slots in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore expires idle conversations after ttl; zero keeps them forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, conversationID string) (dialogue.Slots, error) {
	m.mu.RLock()
	e, ok := m.entries[conversationID]
	m.mu.RUnlock()

	if !ok || m.expired(e) {
		return dialogue.Slots{}, nil
	}
	return e.slots.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, conversationID string, slots dialogue.Slots) error {
	if slots.Empty() {
		return m.Clear(ctx, conversationID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{slots: slots.Clone()}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.entries[conversationID] = e
	m.sweepLocked()
	metrics.ActiveConversations.Set(float64(len(m.entries)))
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, conversationID)
	metrics.ActiveConversations.Set(float64(len(m.entries)))
	return nil
}

// Len counts live conversations.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		if !m.expired(e) {
			n++
		}
	}
	return n
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}

// sweepLocked drops expired entries. Caller holds mu.
func (m *MemoryStore) sweepLocked() {
	for id, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, id)
		}
	}
}
