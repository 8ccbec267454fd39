package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

type inMemory struct {
	mu      sync.RWMutex
	storage map[string][]byte
}

// NewMemoryStore returns a Store keeping documents in process memory.
func NewMemoryStore() Store {
	return &inMemory{}
}

func (m *inMemory) Load(ctx context.Context, name string, v any) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return false, nil
	}
	bs, ok := m.storage[name]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(bs, v); err != nil {
		return false, errors.Wrapf(err, "failed to unmarshal document: %s", name)
	}
	return true, nil
}

func (m *inMemory) Save(ctx context.Context, name string, v any) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal document: %s", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]byte)
	}
	m.storage[name] = bs
	return nil
}

func (m *inMemory) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, name)
	}
	return nil
}

func (m *inMemory) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.storage))
	for name := range m.storage {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
