package store

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process implementation of game.SeenStore and
// ReplayCache. It is the default when no Redis address is configured;
// state is lost on restart, which is acceptable for development and
// tests.
type Memory struct {
	mu     sync.RWMutex
	seen   map[string]map[string]struct{} // userID -> question ids
	replay map[string]replayEntry         // sessionID -> payload
	now    func() time.Time
}

type replayEntry struct {
	payload []byte
	expires time.Time
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		seen:   make(map[string]map[string]struct{}),
		replay: make(map[string]replayEntry),
		now:    time.Now,
	}
}

func (m *Memory) Seen(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.seen[userID]))
	for id := range m.seen[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

// MarkSeen is idempotent: re-adding a present id is a no-op.
func (m *Memory) MarkSeen(_ context.Context, userID, questionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[userID] == nil {
		m.seen[userID] = make(map[string]struct{})
	}
	m.seen[userID][questionID] = struct{}{}
	return nil
}

func (m *Memory) Reset(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, userID)
	return nil
}

func (m *Memory) SaveResponse(_ context.Context, sessionID string, payload []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.replay[sessionID] = replayEntry{payload: cp, expires: m.now().Add(ttl)}
	return nil
}

func (m *Memory) LastResponse(_ context.Context, sessionID string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.replay[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(e.expires) {
		m.mu.Lock()
		delete(m.replay, sessionID)
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return e.payload, nil
}
