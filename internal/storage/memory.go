package storage

import (
	"sync"

	"github.com/bjo0vj/zalo-image-bot/internal/models"
)

// MemoryStore holds the session in memory (for tests and USE_MEMORY_STORE)
type MemoryStore struct {
	mu      sync.RWMutex
	session *models.CountingSession
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LoadSession() (*models.CountingSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return models.NewCountingSession(), nil
	}
	return m.session.Clone(), nil
}

func (m *MemoryStore) SaveSession(session *models.CountingSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = session.Clone()
	return nil
}
