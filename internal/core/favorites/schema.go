package favorites

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"chuckle-chow/internal/core/recipe"
)

// SchemaVersion 目前的儲存格式版本
//
//	v1: 瀏覽器版本直接存的 JSON 陣列
//	v2: {"version":2,"favorites":[...]}
const SchemaVersion = 2

const (
	defaultTitle      = "Unknown Recipe"
	defaultDifficulty = "easy"
	defaultServings   = 2
	maxRating         = 5
)

var errCorrupt = errors.New("favorites blob is not a list or a versioned envelope")

type envelope struct {
	Version   int               `json:"version"`
	Favorites []json.RawMessage `json:"favorites"`
}

type storedEnvelope struct {
	Version   int               `json:"version"`
	Favorites []recipe.Favorite `json:"favorites"`
}

// decodeBlob 解析儲存內容並回傳每個項目的原始 JSON 與格式版本
func decodeBlob(raw []byte) ([]json.RawMessage, int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, SchemaVersion, nil
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, 0, err
		}
		return items, 1, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, 0, err
		}
		if env.Version == 0 {
			return nil, 0, errCorrupt
		}
		return env.Favorites, env.Version, nil
	default:
		return nil, 0, errCorrupt
	}
}

// encodeBlob 以目前版本編碼
func encodeBlob(favs []recipe.Favorite) ([]byte, error) {
	if favs == nil {
		favs = []recipe.Favorite{}
	}
	return json.Marshal(storedEnvelope{Version: SchemaVersion, Favorites: favs})
}

// normalize 將一筆儲存的收藏補齊預設值；不是物件時回傳 false
// id 為 0 表示需要另外產生
func normalize(raw json.RawMessage) (recipe.Favorite, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return recipe.Favorite{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return recipe.Favorite{}, false
	}

	var f recipe.Favorite
	f.Title = stringField(fields, "title")
	if strings.TrimSpace(f.Title) == "" {
		f.Title = defaultTitle
	}

	f.Ingredients = []recipe.Ingredient{}
	if v, ok := fields["ingredients"]; ok {
		var items []recipe.Ingredient
		if json.Unmarshal(v, &items) == nil && items != nil {
			f.Ingredients = items
		}
	}

	f.Steps = []recipe.Step{}
	if v, ok := fields["steps"]; ok {
		var steps []recipe.Step
		if json.Unmarshal(v, &steps) == nil && steps != nil {
			f.Steps = steps
		} else if s := stringField(fields, "steps"); s != "" {
			f.Steps = []recipe.Step{{Text: s}}
		}
	}

	if v, ok := fields["nutrition"]; ok {
		var n recipe.Nutrition
		if json.Unmarshal(v, &n) == nil {
			f.Nutrition = n
		}
	}

	f.Equipment = listField(fields, "equipment")
	f.Tips = listField(fields, "tips")
	f.CookingTime = numberField(fields, "cooking_time")

	f.Difficulty = stringField(fields, "difficulty")
	if f.Difficulty == "" {
		f.Difficulty = defaultDifficulty
	}
	f.Servings = numberField(fields, "servings")
	if f.Servings <= 0 {
		f.Servings = defaultServings
	}

	f.ChaosGear = stringField(fields, "chaos_gear")
	f.ShareText = stringField(fields, "shareText")
	f.Text = stringField(fields, "text")

	id := float64(numberField(fields, "id"))
	if id > 0 && id < math.MaxInt64 {
		f.ID = int64(id)
	}
	f.Rating = clampRating(int(numberField(fields, "rating")))
	return f, true
}

func clampRating(r int) int {
	if r < 0 {
		return 0
	}
	if r > maxRating {
		return maxRating
	}
	return r
}

func stringField(fields map[string]json.RawMessage, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(v, &s) != nil {
		return ""
	}
	return s
}

func numberField(fields map[string]json.RawMessage, key string) recipe.Number {
	var n recipe.Number
	if v, ok := fields[key]; ok {
		_ = json.Unmarshal(v, &n)
	}
	return n
}

func listField(fields map[string]json.RawMessage, key string) recipe.StringList {
	out := recipe.StringList{}
	if v, ok := fields[key]; ok {
		var l recipe.StringList
		if json.Unmarshal(v, &l) == nil && l != nil {
			out = l
		}
	}
	return out
}
