package session

import (
	"context"
	"sync"

	"github.com/mudkipdev/rephoton/internal/errors"
)

// MemoryStore keeps sealed blobs in process memory. Sessions do not survive
// a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ StorePort = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, token string, blob []byte) error {
	cp := append([]byte(nil), blob...)
	m.mu.Lock()
	m.blobs[token] = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) ([]byte, error) {
	m.mu.RLock()
	blob, ok := m.blobs[token]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.ErrSessionNotStored
	}
	return append([]byte(nil), blob...), nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	delete(m.blobs, token)
	m.mu.Unlock()
	return nil
}
