package ratings

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	sum      int
	count    int
	comments []Comment
}

// MemoryStore 行程內的評分儲存
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryStore 建立記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry), now: time.Now}
}

// Rate 實作 Store
func (m *MemoryStore) Rate(_ context.Context, recipe string, rating int, comment string) (Summary, error) {
	key, err := check(recipe, rating)
	if err != nil {
		return Summary{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		e = &memoryEntry{}
		m.entries[key] = e
	}
	e.sum += rating
	e.count++
	if c := strings.TrimSpace(comment); c != "" {
		e.comments = append(e.comments, Comment{Comment: c, CreatedAt: stamp(m.now())})
	}
	return Summary{Average: float64(e.sum) / float64(e.count), Count: e.count}, nil
}

// Comments 實作 Store
func (m *MemoryStore) Comments(_ context.Context, recipe string) ([]Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Comment{}
	if e, ok := m.entries[strings.TrimSpace(recipe)]; ok {
		out = append(out, e.comments...)
	}
	return out, nil
}

// Close 實作 Store
func (m *MemoryStore) Close() error { return nil }
