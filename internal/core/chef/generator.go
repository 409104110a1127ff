package chef

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"chuckle-chow/internal/core/recipe"
)

const (
	// MinRandomIngredients 隨機食譜最少食材數
	MinRandomIngredients = 3
	// MaxRandomIngredients 隨機食譜最多食材數
	MaxRandomIngredients = 6

	appLink = "https://chuckle-chow-backend.onrender.com"
)

// ErrEmptyText 整理食譜時沒有提供文字
var ErrEmptyText = errors.New("chef: recipe text is empty")

// SouthernIngredients 隨機食譜的候選食材
var SouthernIngredients = []string{
	"churrasco", "ground beef", "chicken", "pork", "shrimp", "catfish", "green beans", "okra", "collards",
	"potato", "lemon", "cheese", "butter", "grits", "rice", "whiskey", "moonshine", "beer",
}

// Generator 食譜生成器
type Generator interface {
	// Generate 依食材生成食譜，ingredients 為空時自行挑選
	Generate(ctx context.Context, ingredients []string) (*recipe.Recipe, error)
	// Elucidate 把一段自由文字整理成結構化食譜
	Elucidate(ctx context.Context, text string) (*recipe.Recipe, error)
}

// Failed 生成失敗時回傳的食譜，client 端視為語意失敗
func Failed(err error) *recipe.Recipe {
	return &recipe.Recipe{
		Title:       recipe.InvalidTitle,
		Ingredients: []recipe.Ingredient{},
		Steps:       []recipe.Step{},
		Equipment:   recipe.StringList{},
		Tips:        recipe.StringList{},
		Text:        "Failed to generate recipe: " + err.Error(),
	}
}

// lockedRand 可在多個請求間共用的亂數來源
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Perm(n int) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Perm(n)
}

func (l *lockedRand) pick(list []string) string {
	return list[l.Intn(len(list))]
}

// randomIngredients 從候選清單挑 3 到 6 個不重複的食材
func randomIngredients(r *lockedRand) []string {
	n := MinRandomIngredients + r.Intn(MaxRandomIngredients-MinRandomIngredients+1)
	perm := r.Perm(len(SouthernIngredients))
	out := make([]string, 0, n)
	for _, i := range perm[:n] {
		out = append(out, SouthernIngredients[i])
	}
	return out
}

// cleanIngredients 轉小寫去空白並去重
func cleanIngredients(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
