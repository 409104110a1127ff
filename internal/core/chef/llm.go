package chef

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chuckle-chow/internal/core/ai/cache"
	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

const systemPrompt = `You write Southern-style recipes with a hilarious redneck vibe that are still cookable.
Reply with a single JSON object and nothing else, using exactly these keys:
"title" (string), "ingredients" (array of {"name","amount"}), "steps" (array of strings),
"nutrition" ({"calories","protein","fat","chaos_factor"} numbers, chaos_factor 1-10),
"equipment" (array of strings), "chaos_gear" (string, e.g. a busted spatula),
"cooking_time" (minutes, number), "difficulty" ("easy"|"medium"|"hard"), "servings" (number),
"tips" (array of strings, useful but ridiculous).`

// Completer chat completions 介面，openrouter.Client 實作此介面
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// LLMGenerator 透過語言模型生成食譜，結果依 prompt 快取
type LLMGenerator struct {
	llm   Completer
	cache cache.Cache
	rng   *lockedRand
}

// NewLLMGenerator 建立生成器，c 可為 nil 表示不快取
func NewLLMGenerator(llm Completer, c cache.Cache, seed int64) *LLMGenerator {
	return &LLMGenerator{llm: llm, cache: c, rng: newLockedRand(seed)}
}

// Generate 實作 Generator
func (g *LLMGenerator) Generate(ctx context.Context, ingredients []string) (*recipe.Recipe, error) {
	ingredients = cleanIngredients(ingredients)
	list := "random Southern ingredients"
	if len(ingredients) > 0 {
		if extra := g.flavorPair(ingredients); extra != "" {
			ingredients = append(ingredients, extra)
		}
		list = strings.Join(ingredients, ", ")
	}
	prompt := fmt.Sprintf("Create a Southern-style recipe using %s as key ingredients. "+
		"Include a funny title, measurements, detailed steps with Southern swagger, equipment, "+
		"a quirky chaos gear, cooking time, difficulty, servings, nutrition and a tip.", list)
	return g.run(ctx, prompt)
}

// Elucidate 實作 Generator
func (g *LLMGenerator) Elucidate(ctx context.Context, text string) (*recipe.Recipe, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	prompt := "Turn this recipe into the JSON format, keeping its title, ingredients and steps:\n\n" + text
	return g.run(ctx, prompt)
}

func (g *LLMGenerator) flavorPair(ingredients []string) string {
	for _, ing := range ingredients {
		if pairs := flavorPairs[ing]; len(pairs) > 0 {
			return g.rng.pick(pairs)
		}
	}
	return ""
}

func (g *LLMGenerator) run(ctx context.Context, prompt string) (*recipe.Recipe, error) {
	if g.cache != nil {
		if content, err := g.cache.Get(ctx, prompt); err == nil {
			if r, err := parseRecipe(content); err == nil {
				return r, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			common.LogWarn("generator cache lookup failed", zap.Error(err))
		}
	}

	content, err := g.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, common.NewError(common.ErrCodeGeneratorError, "model call failed", 0, err)
	}
	r, err := parseRecipe(content)
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, prompt, content); err != nil {
			common.LogWarn("generator cache write failed", zap.Error(err))
		}
	}
	return r, nil
}

// parseRecipe 取出回應中的 JSON 物件並解碼
func parseRecipe(content string) (*recipe.Recipe, error) {
	obj, err := common.ExtractJSONObject(content)
	if err != nil {
		return nil, common.NewError(common.ErrCodeGeneratorError, "Model reply had no recipe", 0, err)
	}
	var r recipe.Recipe
	if err := common.ParseJSON(obj, &r); err != nil {
		// 模型偶爾輸出未加引號的鍵
		r = recipe.Recipe{}
		if err2 := common.ParseJSON(common.QuoteJSONKeys(obj), &r); err2 != nil {
			return nil, common.NewError(common.ErrCodeGeneratorError, "Model reply was not a recipe", 0, err)
		}
	}
	if strings.TrimSpace(r.Title) == "" {
		return nil, common.NewError(common.ErrCodeGeneratorError, "Model reply had no title", 0, nil)
	}
	return &r, nil
}
