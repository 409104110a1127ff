package recipe

import (
	"slices"
	"strings"
)

// ErrorTitle 佔位食譜的標題
const ErrorTitle = "Error"

// InvalidTitle 服務端表示生成失敗時回傳的標題
const InvalidTitle = "Error Recipe"

// Nutrition 營養資訊，缺少的欄位為 0
type Nutrition struct {
	Calories    Number `json:"calories"`
	Protein     Number `json:"protein"`
	Fat         Number `json:"fat"`
	ChaosFactor Number `json:"chaos_factor"`
}

// Recipe 食譜服務回傳的食譜，收到後不再修改
type Recipe struct {
	Title       string       `json:"title"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`
	Nutrition   Nutrition    `json:"nutrition"`
	Equipment   StringList   `json:"equipment"`
	CookingTime Number       `json:"cooking_time"`
	Difficulty  string       `json:"difficulty"`
	Servings    Number       `json:"servings"`
	Tips        StringList   `json:"tips"`
	ChaosGear   string       `json:"chaos_gear"`
	ShareText   string       `json:"shareText"`
	Text        string       `json:"text,omitempty"`
}

// Favorite 已收藏的食譜
type Favorite struct {
	Recipe
	ID     int64 `json:"id"`
	Rating int   `json:"rating"`
}

// Placeholder 回傳請求失敗時顯示的佔位食譜
func Placeholder(message string) Recipe {
	return Recipe{
		Title:       ErrorTitle,
		Ingredients: []Ingredient{},
		Steps:       []Step{{Text: message}},
		Equipment:   StringList{},
		Difficulty:  "N/A",
		Tips:        StringList{},
	}
}

// IsPlaceholder 判斷是否為佔位食譜
func (r Recipe) IsPlaceholder() bool {
	return r.Title == ErrorTitle && r.Difficulty == "N/A"
}

// IsSemanticFailure 判斷 2xx 回應中的食譜是否其實是失敗
func IsSemanticFailure(r *Recipe) bool {
	if r == nil {
		return true
	}
	title := strings.TrimSpace(r.Title)
	return title == "" || title == InvalidTitle
}

// Clone 深拷貝，讓呼叫端拿到的副本不影響狀態持有者
func (r Recipe) Clone() Recipe {
	c := r
	// 空切片與 nil 編碼結果不同，必須保留
	c.Ingredients = slices.Clone(r.Ingredients)
	c.Steps = slices.Clone(r.Steps)
	c.Equipment = slices.Clone(r.Equipment)
	c.Tips = slices.Clone(r.Tips)
	return c
}

// Clone 深拷貝收藏
func (f Favorite) Clone() Favorite {
	c := f
	c.Recipe = f.Recipe.Clone()
	return c
}

// StepTexts 回傳所有步驟文字
func (r Recipe) StepTexts() []string {
	out := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		out = append(out, s.Text)
	}
	return out
}
