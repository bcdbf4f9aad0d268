package cache

import (
	"context"
	"sync"

	"github.com/Scott-fo/t3-clone/internal/domain"
)

// Memory is an in-process CvrCache fake for tests.
type Memory struct {
	mu   sync.Mutex
	recs map[string]*domain.CvrRecord
}

func NewMemory() *Memory {
	return &Memory{recs: make(map[string]*domain.CvrRecord)}
}

func (m *Memory) Get(ctx context.Context, id string) (*domain.CvrRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return nil, false, nil
	}
	cp := *rec
	return &cp, true, nil
}

func (m *Memory) Put(ctx context.Context, id string, rec *domain.CvrRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.recs[id] = &cp
	return nil
}
