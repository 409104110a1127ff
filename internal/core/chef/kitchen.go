package chef

import (
	"context"
	"strings"

	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

// Kitchen 在生成器前處理隨機挑選與補齊欄位
type Kitchen struct {
	gen Generator
	rng *lockedRand
}

// NewKitchen 建立 Kitchen，seed 為 0 時以時間為種子
func NewKitchen(gen Generator, seed int64) *Kitchen {
	return &Kitchen{gen: gen, rng: newLockedRand(seed)}
}

// Cook 生成食譜，random 或沒有食材時改用隨機的南方食材
func (k *Kitchen) Cook(ctx context.Context, ingredients []string, random bool) (*recipe.Recipe, error) {
	picks := cleanIngredients(ingredients)
	if random || len(picks) == 0 {
		picks = randomIngredients(k.rng)
		common.LogDebug("Selected random Southern ingredients", zap.Strings("ingredients", picks))
	}

	r, err := k.gen.Generate(ctx, picks)
	if err != nil {
		return nil, err
	}
	finish(r)
	return r, nil
}

// Elucidate 整理使用者提供的食譜文字
func (k *Kitchen) Elucidate(ctx context.Context, text string) (*recipe.Recipe, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	r, err := k.gen.Elucidate(ctx, text)
	if err != nil {
		return nil, err
	}
	finish(r)
	return r, nil
}

// finish 補上分享文字與 Markdown
func finish(r *recipe.Recipe) {
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
	if strings.TrimSpace(r.ShareText) == "" {
		r.ShareText = ShareText(*r)
	}
	if strings.TrimSpace(r.Text) == "" {
		r.Text = Markdown(*r)
	}
}
