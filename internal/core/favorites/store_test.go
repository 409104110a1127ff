package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"chuckle-chow/internal/core/notice"
	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/infrastructure/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.UnixMilli(1700000000000)

func newStore(t *testing.T, kv storage.KV) (*Store, *notice.Recorder) {
	t.Helper()
	rec := &notice.Recorder{}
	s := NewStore(kv, Options{Notifier: rec, Now: func() time.Time { return fixedNow }})
	return s, rec
}

func storedBlob(t *testing.T, kv storage.KV) storedEnvelope {
	t.Helper()
	raw, err := kv.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	var env storedEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func TestLoadNormalizesLegacyArray(t *testing.T) {
	kv := storage.NewMemoryStore()
	legacy := `[
		{"ingredients": ["pork"]},
		"just a string",
		{"title": "Gator Gumbo", "id": 5, "rating": 9, "tips": "Watch yer fingers", "servings": 0, "nutrition": null},
		42,
		{"title": "Gator Gumbo", "id": 6}
	]`
	require.NoError(t, kv.Set(context.Background(), StorageKey, []byte(legacy)))

	s, _ := newStore(t, kv)
	favs := s.Load(context.Background())
	require.Len(t, favs, 2)

	first := favs[0]
	assert.Equal(t, "Unknown Recipe", first.Title)
	assert.Equal(t, "easy", first.Difficulty)
	assert.Equal(t, recipe.Number(2), first.Servings)
	assert.Equal(t, recipe.Nutrition{}, first.Nutrition)
	assert.Empty(t, first.Steps)
	assert.NotNil(t, first.Steps)
	assert.Equal(t, 0, first.Rating)
	assert.Equal(t, fixedNow.UnixMilli(), first.ID)

	second := favs[1]
	assert.Equal(t, "Gator Gumbo", second.Title)
	assert.Equal(t, int64(5), second.ID)
	assert.Equal(t, 5, second.Rating)
	assert.Equal(t, recipe.StringList{"Watch yer fingers"}, second.Tips)

	env := storedBlob(t, kv)
	assert.Equal(t, SchemaVersion, env.Version)
	assert.Len(t, env.Favorites, 2)
}

func TestLoadAssignsUniqueIDs(t *testing.T) {
	kv := storage.NewMemoryStore()
	blob := `{"version":2,"favorites":[{"title":"A","id":7},{"title":"B","id":7},{"title":"C"},{"title":"D"}]}`
	require.NoError(t, kv.Set(context.Background(), StorageKey, []byte(blob)))

	s, _ := newStore(t, kv)
	favs := s.Load(context.Background())
	require.Len(t, favs, 4)

	ids := map[int64]bool{}
	for _, f := range favs {
		assert.False(t, ids[f.ID], "duplicate id %d", f.ID)
		ids[f.ID] = true
	}
	assert.Equal(t, int64(7), favs[0].ID)
}

func TestLoadCorruptBlobIsLeftAlone(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), StorageKey, []byte("{{not json")))

	s, rec := newStore(t, kv)
	assert.Empty(t, s.Load(context.Background()))
	assert.Equal(t, []string{"Failed to load favorites."}, rec.Messages())

	raw, err := kv.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "{{not json", string(raw))
}

func TestLoadMissingKey(t *testing.T) {
	kv := storage.NewMemoryStore()
	s, rec := newStore(t, kv)
	assert.Empty(t, s.Load(context.Background()))
	assert.Empty(t, rec.All())
	_, err := kv.Get(context.Background(), StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSaveRejectsDuplicateTitle(t *testing.T) {
	kv := storage.NewMemoryStore()
	s, rec := newStore(t, kv)
	s.Load(context.Background())

	fav, err := s.Save(context.Background(), recipe.Recipe{Title: "Moonshine Pork"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli(), fav.ID)

	_, err = s.Save(context.Background(), recipe.Recipe{Title: "Moonshine Pork"})
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	assert.Len(t, s.List(), 1)
	assert.Equal(t, []string{"Recipe saved to favorites!", "Recipe already in favorites!"}, rec.Messages())
	assert.Len(t, storedBlob(t, kv).Favorites, 1)
}

func TestSaveIDsAreMonotonic(t *testing.T) {
	s, _ := newStore(t, storage.NewMemoryStore())
	a, err := s.Save(context.Background(), recipe.Recipe{Title: "A"})
	require.NoError(t, err)
	b, err := s.Save(context.Background(), recipe.Recipe{Title: "B"})
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)
}

func TestSaveKeepsEntryWhenPersistFails(t *testing.T) {
	kv := storage.NewMemoryStore()
	kv.SetFailWrites(true)
	s, rec := newStore(t, kv)

	_, err := s.Save(context.Background(), recipe.Recipe{Title: "Fried Okra"})
	require.NoError(t, err)
	assert.Len(t, s.List(), 1)
	assert.Equal(t, []string{"Failed to save favorite."}, rec.Messages())
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	kv := storage.NewMemoryStore()
	s, rec := newStore(t, kv)
	fav, err := s.Save(context.Background(), recipe.Recipe{Title: "Catfish Surprise"})
	require.NoError(t, err)
	require.NoError(t, s.Select(fav.ID))

	var prompt string
	decline := notice.ConfirmFunc(func(_ context.Context, p string) bool { prompt = p; return false })
	assert.ErrorIs(t, s.Remove(context.Background(), fav.ID, decline), ErrNotConfirmed)
	assert.Equal(t, "Are you sure you want to remove this recipe?", prompt)
	assert.Len(t, s.List(), 1)

	require.NoError(t, s.Remove(context.Background(), fav.ID, notice.Always(true)))
	assert.Empty(t, s.List())
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.Empty(t, storedBlob(t, kv).Favorites)
	assert.Contains(t, rec.Messages(), "Recipe removed from favorites")
}

func TestRemoveUnknownID(t *testing.T) {
	s, rec := newStore(t, storage.NewMemoryStore())
	_, err := s.Save(context.Background(), recipe.Recipe{Title: "Grits"})
	require.NoError(t, err)

	confirmCalled := false
	confirm := notice.ConfirmFunc(func(context.Context, string) bool { confirmCalled = true; return true })
	assert.ErrorIs(t, s.Remove(context.Background(), 12345, confirm), ErrNotFound)
	assert.False(t, confirmCalled)
	assert.Len(t, s.List(), 1)
	assert.Contains(t, rec.Messages(), "Recipe not found in favorites.")

	assert.ErrorIs(t, s.Remove(context.Background(), 0, confirm), ErrInvalidID)
}

func TestRemoveKeepsOtherSelection(t *testing.T) {
	s, _ := newStore(t, storage.NewMemoryStore())
	a, _ := s.Save(context.Background(), recipe.Recipe{Title: "A"})
	b, _ := s.Save(context.Background(), recipe.Recipe{Title: "B"})
	require.NoError(t, s.Select(b.ID))

	require.NoError(t, s.Remove(context.Background(), a.ID, notice.Always(true)))
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "B", sel.Title)
}

func TestRateClampsAndPersists(t *testing.T) {
	kv := storage.NewMemoryStore()
	s, _ := newStore(t, kv)
	fav, _ := s.Save(context.Background(), recipe.Recipe{Title: "Possum Pie"})

	require.NoError(t, s.Rate(context.Background(), fav.ID, 4))
	got, ok := s.Get(fav.ID)
	require.True(t, ok)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, 4, storedBlob(t, kv).Favorites[0].Rating)

	assert.Error(t, s.Rate(context.Background(), fav.ID, 6))
	assert.ErrorIs(t, s.Rate(context.Background(), 999, 3), ErrNotFound)
}

func TestClearAll(t *testing.T) {
	kv := storage.NewMemoryStore()
	s, _ := newStore(t, kv)
	s.Save(context.Background(), recipe.Recipe{Title: "A"})
	s.Save(context.Background(), recipe.Recipe{Title: "B"})

	assert.ErrorIs(t, s.Clear(context.Background(), notice.Always(false)), ErrNotConfirmed)
	assert.Len(t, s.List(), 2)

	require.NoError(t, s.Clear(context.Background(), notice.Always(true)))
	assert.Empty(t, s.List())
	assert.Empty(t, storedBlob(t, kv).Favorites)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	favs := []recipe.Favorite{
		{Recipe: recipe.Recipe{Title: "Moonshine Pork"}},
		{Recipe: recipe.Recipe{Title: "Gator Gumbo"}},
		{Recipe: recipe.Recipe{Title: "Pork Rind Pie"}},
	}
	got := Search(favs, "PORK")
	require.Len(t, got, 2)
	assert.Equal(t, "Moonshine Pork", got[0].Title)
	assert.Equal(t, "Pork Rind Pie", got[1].Title)
	assert.Len(t, Search(favs, ""), 3)
	assert.Empty(t, Search(favs, "tofu"))
}

func TestRoundTripThroughStorage(t *testing.T) {
	kv := storage.NewMemoryStore()
	s, _ := newStore(t, kv)

	var r recipe.Recipe
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Moonshine Pork","ingredients":["pork",["moonshine","1 cup"]],"steps":["Marinate",{"step":"Grill"}],"servings":4,"difficulty":"hard"}`), &r))
	saved, err := s.Save(context.Background(), r)
	require.NoError(t, err)

	reloaded, _ := newStore(t, kv)
	favs := reloaded.Load(context.Background())
	require.Len(t, favs, 1)
	assert.Equal(t, saved.ID, favs[0].ID)
	assert.Equal(t, r.Ingredients, favs[0].Ingredients)
	assert.Equal(t, r.Steps, favs[0].Steps)
	assert.Equal(t, "hard", favs[0].Difficulty)
}

func TestSpanishMessages(t *testing.T) {
	rec := &notice.Recorder{}
	s := NewStore(storage.NewMemoryStore(), Options{Notifier: rec, Language: "spanish"})
	s.Save(context.Background(), recipe.Recipe{Title: "Tacos"})
	assert.Equal(t, []string{"¡Receta guardada en favoritos!"}, rec.Messages())
}

func TestSavedListsStayEmptyNotNull(t *testing.T) {
	kv := storage.NewMemoryStore()
	s, _ := newStore(t, kv)

	var r recipe.Recipe
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Plain Grits","ingredients":["grits"],"steps":["Stir"],"equipment":[],"tips":[]}`), &r))
	_, err := s.Save(context.Background(), r)
	require.NoError(t, err)
	_, err = s.Save(context.Background(), recipe.Recipe{Title: "Bare Biscuit"})
	require.NoError(t, err)

	raw, err := kv.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "null")

	for _, f := range s.List() {
		assert.NotNil(t, f.Equipment, f.Title)
		assert.NotNil(t, f.Tips, f.Title)
		assert.NotNil(t, f.Ingredients, f.Title)
		assert.NotNil(t, f.Steps, f.Title)
	}
}

// slowKV 越短的資料寫得越慢，讓較舊的快照有機會晚寫入
type slowKV struct {
	*storage.MemoryStore
}

func (k slowKV) Set(ctx context.Context, key string, value []byte) error {
	time.Sleep(time.Duration(20000/(len(value)+1)) * time.Millisecond / 10)
	return k.MemoryStore.Set(ctx, key, value)
}

func TestConcurrentSavesPersistLatestList(t *testing.T) {
	kv := slowKV{storage.NewMemoryStore()}
	s, _ := newStore(t, kv)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Save(context.Background(), recipe.Recipe{Title: fmt.Sprintf("Skillet No. %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.List(), n)
	assert.Len(t, storedBlob(t, kv).Favorites, n)
}
