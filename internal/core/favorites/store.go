package favorites

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"chuckle-chow/internal/core/notice"
	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/infrastructure/storage"
	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

// StorageKey 收藏在本地儲存中的鍵
const StorageKey = "favorites"

var (
	// ErrDuplicateTitle 已有同名收藏
	ErrDuplicateTitle = errors.New("favorites: recipe already saved")
	// ErrNotFound 找不到該 id
	ErrNotFound = errors.New("favorites: no favorite with that id")
	// ErrNotConfirmed 使用者沒有確認
	ErrNotConfirmed = errors.New("favorites: not confirmed")
	// ErrInvalidID id 不合法
	ErrInvalidID = errors.New("favorites: invalid id")
)

// Options 收藏庫選項
type Options struct {
	Notifier notice.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
	Language string // english | spanish
}

// Store 持久化的收藏庫，記憶體中的清單是本次執行的權威來源
type Store struct {
	kv       storage.KV
	notifier notice.Notifier
	log      *zap.Logger
	now      func() time.Time
	msgs     messages

	persistMu sync.Mutex

	mu        sync.Mutex
	favorites []recipe.Favorite
	selected  int64
	lastID    int64
}

// NewStore 建立收藏庫，需呼叫 Load 讀入既有資料
func NewStore(kv storage.KV, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = common.Logger
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		kv:       kv,
		notifier: notice.Or(opts.Notifier),
		log:      opts.Logger.With(zap.String("component", "favorites")),
		now:      opts.Now,
		msgs:     messagesFor(opts.Language),
	}
}

// nextIDLocked 以毫秒時間戳為 id，保證嚴格遞增
func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Load 讀取並正規化收藏，成功後立即以新格式寫回
func (s *Store) Load(ctx context.Context) []recipe.Favorite {
	raw, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.Debug("no favorites stored")
		return s.List()
	}
	if err != nil {
		s.log.Error("failed to read favorites", zap.Error(err))
		s.notify(notice.Warning, s.msgs.loadFailed)
		return s.List()
	}

	items, version, err := decodeBlob(raw)
	if err != nil {
		// 損壞的資料保留原樣，不覆寫
		s.log.Error("favorites blob is corrupt", zap.Error(err))
		s.notify(notice.Warning, s.msgs.loadFailed)
		s.mu.Lock()
		s.favorites = nil
		s.selected = 0
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	loaded := make([]recipe.Favorite, 0, len(items))
	seenTitles := make(map[string]bool, len(items))
	seenIDs := make(map[int64]bool, len(items))
	var dropped int
	for _, item := range items {
		f, ok := normalize(item)
		if !ok || seenTitles[f.Title] {
			dropped++
			continue
		}
		seenTitles[f.Title] = true
		if f.ID > s.lastID {
			s.lastID = f.ID
		}
		loaded = append(loaded, f)
	}
	// 缺少或重複的 id 在知道最大值之後再補
	for i := range loaded {
		if loaded[i].ID == 0 || seenIDs[loaded[i].ID] {
			loaded[i].ID = s.nextIDLocked()
		}
		seenIDs[loaded[i].ID] = true
	}
	s.favorites = loaded
	s.selected = 0
	out := cloneAll(loaded)
	s.mu.Unlock()

	s.log.Info("favorites loaded",
		zap.Int("count", len(out)),
		zap.Int("dropped", dropped),
		zap.Int("schema_version", version),
	)

	if err := s.persist(ctx); err != nil {
		s.notify(notice.Warning, s.msgs.saveFailed)
	}
	return out
}

// Save 加入收藏，同名時回傳 ErrDuplicateTitle
func (s *Store) Save(ctx context.Context, r recipe.Recipe) (recipe.Favorite, error) {
	if strings.TrimSpace(r.Title) == "" {
		r.Title = defaultTitle
	}

	s.mu.Lock()
	for _, f := range s.favorites {
		if f.Title == r.Title {
			s.mu.Unlock()
			s.notify(notice.Info, s.msgs.duplicate)
			return recipe.Favorite{}, ErrDuplicateTitle
		}
	}
	fav := recipe.Favorite{Recipe: withLists(r.Clone()), ID: s.nextIDLocked()}
	s.favorites = append(s.favorites, fav)
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		s.notify(notice.Warning, s.msgs.saveFailed)
		return fav.Clone(), nil
	}
	s.log.Info("favorite saved", zap.String("title", fav.Title), zap.Int64("id", fav.ID))
	s.notify(notice.Info, s.msgs.saved)
	return fav.Clone(), nil
}

// Remove 確認後刪除收藏，若正在檢視則一併取消選取
func (s *Store) Remove(ctx context.Context, id int64, confirm notice.Confirmer) error {
	if id <= 0 {
		s.notify(notice.Error, s.msgs.invalidID)
		return ErrInvalidID
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	s.mu.Unlock()
	if idx < 0 {
		s.notify(notice.Error, s.msgs.notFound)
		return ErrNotFound
	}

	if confirm == nil || !confirm.Confirm(ctx, s.msgs.confirmRemove) {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	// 確認期間清單可能已變動，重新查找
	idx = s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.notify(notice.Error, s.msgs.notFound)
		return ErrNotFound
	}
	s.favorites = append(s.favorites[:idx:idx], s.favorites[idx+1:]...)
	if s.selected == id {
		s.selected = 0
	}
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		s.notify(notice.Warning, s.msgs.removeFailed)
		return nil
	}
	s.log.Info("favorite removed", zap.Int64("id", id))
	s.notify(notice.Info, s.msgs.removed)
	return nil
}

// Rate 設定收藏的評分（0 表示未評分）
func (s *Store) Rate(ctx context.Context, id int64, rating int) error {
	if rating < 0 || rating > maxRating {
		return common.NewValidationError(fmt.Sprintf("Rating must be between 0 and %d", maxRating))
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.notify(notice.Error, s.msgs.notFound)
		return ErrNotFound
	}
	s.favorites[idx].Rating = rating
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		s.notify(notice.Warning, s.msgs.saveFailed)
	}
	return nil
}

// Clear 確認後刪除所有收藏
func (s *Store) Clear(ctx context.Context, confirm notice.Confirmer) error {
	if confirm == nil || !confirm.Confirm(ctx, s.msgs.confirmClear) {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	s.favorites = nil
	s.selected = 0
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		s.notify(notice.Warning, s.msgs.removeFailed)
		return nil
	}
	s.notify(notice.Info, s.msgs.cleared)
	return nil
}

// Select 選取要檢視的收藏
func (s *Store) Select(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return ErrNotFound
	}
	s.selected = id
	return nil
}

// Deselect 取消選取
func (s *Store) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = 0
}

// Selected 目前選取的收藏
func (s *Store) Selected() (recipe.Favorite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(s.selected)
	if s.selected == 0 || idx < 0 {
		return recipe.Favorite{}, false
	}
	return s.favorites[idx].Clone(), true
}

// Get 依 id 取得收藏
func (s *Store) Get(id int64) (recipe.Favorite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return recipe.Favorite{}, false
	}
	return s.favorites[idx].Clone(), true
}

// List 依加入順序回傳所有收藏
func (s *Store) List() []recipe.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.favorites)
}

// Search 以標題搜尋目前的收藏
func (s *Store) Search(query string) []recipe.Favorite {
	return Search(s.List(), query)
}

// Search 不分大小寫的標題子字串比對，空字串回傳全部
func Search(favs []recipe.Favorite, query string) []recipe.Favorite {
	q := strings.ToLower(query)
	out := make([]recipe.Favorite, 0, len(favs))
	for _, f := range favs {
		if strings.Contains(strings.ToLower(f.Title), q) {
			out = append(out, f)
		}
	}
	return out
}

func (s *Store) indexLocked(id int64) int {
	for i, f := range s.favorites {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// persist 寫入目前的清單，失敗只記錄日誌。
// persistMu 讓快照與寫入成對進行，後寫入的一定是較新的快照
func (s *Store) persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	blob, err := encodeBlob(s.favorites)
	s.mu.Unlock()
	if err == nil {
		err = s.kv.Set(ctx, StorageKey, blob)
	}
	if err != nil {
		s.log.Error("failed to persist favorites", zap.Error(err))
		return common.NewError(common.ErrCodePersistenceError, "failed to persist favorites", 0, err)
	}
	return nil
}

func (s *Store) notify(level notice.Level, msg string) {
	s.notifier.Notify(notice.Notice{Level: level, Message: msg})
}

// withLists 缺少的清單補成空清單，存檔時不會出現 null
func withLists(r recipe.Recipe) recipe.Recipe {
	if r.Ingredients == nil {
		r.Ingredients = []recipe.Ingredient{}
	}
	if r.Steps == nil {
		r.Steps = []recipe.Step{}
	}
	if r.Equipment == nil {
		r.Equipment = recipe.StringList{}
	}
	if r.Tips == nil {
		r.Tips = recipe.StringList{}
	}
	return r
}

func cloneAll(favs []recipe.Favorite) []recipe.Favorite {
	out := make([]recipe.Favorite, len(favs))
	for i, f := range favs {
		out[i] = f.Clone()
	}
	return out
}
