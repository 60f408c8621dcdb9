package blobstore

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/courseimage/internal/common"
)

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, hash string, data []byte) error {
	key, err := Key(hash)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; ok {
		return nil
	}
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, hash string) ([]byte, error) {
	key, err := Key(hash)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Exists(_ context.Context, hash string) (bool, error) {
	key, err := Key(hash)
	if err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[key]
	return ok, nil
}

// Len reports the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
