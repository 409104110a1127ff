package catalog

import (
	"context"
	"sort"
	"strings"

	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

// Category 食材分類
type Category string

const (
	Meat       Category = "meat"
	Vegetable  Category = "vegetable"
	Fruit      Category = "fruit"
	Seafood    Category = "seafood"
	Dairy      Category = "dairy"
	Carb       Category = "carb"
	DevilWater Category = "devilWater"
)

// Categories 固定的分類順序，選擇狀態與請求都依此排序
var Categories = []Category{Meat, Vegetable, Fruit, Seafood, Dairy, Carb, DevilWater}

var labels = map[Category]string{
	Meat:       "Meat",
	Vegetable:  "Vegetable",
	Fruit:      "Fruit",
	Seafood:    "Seafood",
	Dairy:      "Dairy",
	Carb:       "Carbs",
	DevilWater: "Devil Water",
}

// 服務端 /ingredients 使用的鍵
var serverKeys = map[Category]string{
	Meat:       "meat",
	Vegetable:  "vegetables",
	Fruit:      "fruits",
	Seafood:    "seafood",
	Dairy:      "dairy",
	Carb:       "bread_carbs",
	DevilWater: "devil_water",
}

// 各種寫法對應到分類
var aliases = map[string]Category{
	"meat":        Meat,
	"meats":       Meat,
	"vegetable":   Vegetable,
	"vegetables":  Vegetable,
	"veggies":     Vegetable,
	"fruit":       Fruit,
	"fruits":      Fruit,
	"seafood":     Seafood,
	"dairy":       Dairy,
	"carb":        Carb,
	"carbs":       Carb,
	"bread_carbs": Carb,
	"breadcarbs":  Carb,
	"devilwater":  DevilWater,
	"devil_water": DevilWater,
	"booze":       DevilWater,
}

// Label 顯示用名稱
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// ServerKey 服務端回應中使用的分類鍵
func (c Category) ServerKey() string {
	if k, ok := serverKeys[c]; ok {
		return k
	}
	return string(c)
}

// ParseCategory 將各種分類寫法轉換為 Category
func ParseCategory(key string) (Category, bool) {
	c, ok := aliases[strings.ToLower(strings.TrimSpace(key))]
	return c, ok
}

// Item 可選的食材
type Item struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Catalog 依分類整理的食材清單，建立後唯讀
type Catalog struct {
	items map[Category][]Item
}

// Items 回傳某分類的食材副本
func (c *Catalog) Items(cat Category) []Item {
	return append([]Item(nil), c.items[cat]...)
}

// Find 在分類中以不分大小寫的方式找食材
func (c *Catalog) Find(cat Category, name string) (Item, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, it := range c.items[cat] {
		if strings.ToLower(it.Name) == name {
			return it, true
		}
	}
	return Item{}, false
}

// CategoryOf 找出食材所屬分類
func (c *Catalog) CategoryOf(name string) (Category, bool) {
	for _, cat := range Categories {
		if _, ok := c.Find(cat, name); ok {
			return cat, true
		}
	}
	return "", false
}

// ByServerKey 以服務端鍵輸出整份清單
func (c *Catalog) ByServerKey() map[string][]Item {
	out := make(map[string][]Item, len(c.items))
	for _, cat := range Categories {
		out[cat.ServerKey()] = c.Items(cat)
	}
	return out
}

// Len 食材總數
func (c *Catalog) Len() int {
	n := 0
	for _, items := range c.items {
		n += len(items)
	}
	return n
}

// Source 遠端食材來源，例如食譜服務的 GET /ingredients
type Source interface {
	Ingredients(ctx context.Context) (map[string][]Item, error)
}

// FromRemote 合併遠端清單，缺少或空白的分類使用內建資料
func FromRemote(remote map[string][]Item) *Catalog {
	merged := make(map[Category][]Item, len(Categories))

	// 依鍵排序，確保多個別名對應同一分類時結果穩定
	keys := make([]string, 0, len(remote))
	for k := range remote {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		cat, ok := ParseCategory(key)
		if !ok {
			common.LogDebug("略過未知的食材分類", zap.String("category", key))
			continue
		}
		for _, it := range remote[key] {
			it.Name = strings.TrimSpace(it.Name)
			if it.Name == "" {
				continue
			}
			merged[cat] = append(merged[cat], it)
		}
	}

	def := Default()
	for _, cat := range Categories {
		if len(merged[cat]) == 0 {
			merged[cat] = def.Items(cat)
		}
	}
	return &Catalog{items: merged}
}

// Load 從遠端載入清單，任何錯誤都退回內建資料
func Load(ctx context.Context, src Source) *Catalog {
	if src == nil {
		return Default()
	}
	remote, err := src.Ingredients(ctx)
	if err != nil {
		common.LogWarn("載入遠端食材失敗，改用內建清單", zap.Error(err))
		return Default()
	}
	return FromRemote(remote)
}
