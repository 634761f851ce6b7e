package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
)

// SessionStorage persists the device's session between runs. Load returns
// (nil, nil) when nothing is stored.
type SessionStorage interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}

// MemoryStorage keeps the session in process memory only.
type MemoryStorage struct {
	mu sync.Mutex
	s  *models.Session
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return nil, nil
	}
	cp := *m.s
	return &cp, nil
}

func (m *MemoryStorage) Save(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s == nil {
		m.s = nil
		return nil
	}
	cp := *s
	m.s = &cp
	return nil
}

func (m *MemoryStorage) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}
