package catalog

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Selection 每個分類最多選一種食材
type Selection struct {
	mu      sync.RWMutex
	catalog *Catalog
	picks   map[Category]string
	rng     *rand.Rand
}

// NewSelection 建立空的選擇狀態
func NewSelection(c *Catalog) *Selection {
	if c == nil {
		c = Default()
	}
	return &Selection{
		catalog: c,
		picks:   make(map[Category]string, len(Categories)),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand 替換隨機來源，測試時用來固定結果
func (s *Selection) SetRand(r *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = r
}

// Catalog 目前使用的食材清單
func (s *Selection) Catalog() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// SetCatalog 換成新的清單，不在新清單中的選擇會被移除
func (s *Selection) SetCatalog(c *Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c
	for cat, name := range s.picks {
		if _, ok := c.Find(cat, name); !ok {
			delete(s.picks, cat)
		}
	}
}

// Set 選擇分類中的食材，空字串等同 Unset
func (s *Selection) Set(cat Category, name string) error {
	if _, ok := labels[cat]; !ok {
		return fmt.Errorf("unknown category %q", cat)
	}
	if strings.TrimSpace(name) == "" {
		s.Unset(cat)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.catalog.Find(cat, name)
	if !ok {
		return fmt.Errorf("%q is not a %s option", name, cat.Label())
	}
	s.picks[cat] = item.Name
	return nil
}

// Unset 取消某分類的選擇
func (s *Selection) Unset(cat Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.picks, cat)
}

// Clear 清空所有選擇
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picks = make(map[Category]string, len(Categories))
}

// Get 回傳分類目前的選擇
func (s *Selection) Get(cat Category) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.picks[cat]
	return name, ok
}

// Surprise 每個分類隨機選一種，回傳選擇結果
func (s *Selection) Surprise() map[Category]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cat := range Categories {
		items := s.catalog.items[cat]
		if len(items) == 0 {
			delete(s.picks, cat)
			continue
		}
		s.picks[cat] = items[s.rng.Intn(len(items))].Name
	}
	return s.snapshotLocked()
}

// Snapshot 回傳目前選擇的副本
func (s *Selection) Snapshot() map[Category]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Selection) snapshotLocked() map[Category]string {
	out := make(map[Category]string, len(s.picks))
	for k, v := range s.picks {
		out[k] = v
	}
	return out
}

// Ingredients 依分類順序回傳小寫的已選食材
func (s *Selection) Ingredients() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.picks))
	for _, cat := range Categories {
		if name, ok := s.picks[cat]; ok {
			out = append(out, strings.ToLower(name))
		}
	}
	return out
}

// Count 已選的數量
func (s *Selection) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.picks)
}
