package storage

import (
	"context"
	"sync"
)

// MemoryStore 只存在於行程中的儲存，也用於測試
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailWrites 為 true 時所有寫入回傳錯誤，用來模擬儲存失敗
	FailWrites bool
}

// NewMemoryStore 建立記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get 實作 KV
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set 實作 KV
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errQuotaExceeded
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete 實作 KV
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errQuotaExceeded
	}
	delete(m.data, key)
	return nil
}

// Close 實作 KV
func (m *MemoryStore) Close() error { return nil }

// SetFailWrites 切換寫入失敗模式
func (m *MemoryStore) SetFailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailWrites = fail
}
