package registry

import (
	"context"
	"sync"

	"github.com/0x6d61/scandash/internal/scan"
)

// MemoryStore keeps records in a slice with an ID index.
type MemoryStore struct {
	mu    sync.RWMutex
	scans []*scan.Scan
	index map[string]int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

func (m *MemoryStore) Insert(ctx context.Context, s *scan.Scan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.index[s.ID]; ok {
		return ErrDuplicateID
	}
	m.index[s.ID] = len(m.scans)
	m.scans = append(m.scans, s.Clone())
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*scan.Scan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*scan.Scan, len(m.scans))
	for i, s := range m.scans {
		out[i] = s.Clone()
	}
	return out, nil
}

func (m *MemoryStore) Find(ctx context.Context, id string) (*scan.Scan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return nil, nil
	}
	return m.scans[i].Clone(), nil
}

func (m *MemoryStore) Remove(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return false, nil
	}
	m.scans = append(m.scans[:i], m.scans[i+1:]...)
	delete(m.index, id)
	// Shift the positions of everything after the removed record.
	for j := i; j < len(m.scans); j++ {
		m.index[m.scans[j].ID] = j
	}
	return true, nil
}

func (m *MemoryStore) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.scans), nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
