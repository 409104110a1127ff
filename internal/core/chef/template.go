package chef

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"chuckle-chow/internal/core/catalog"
	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

// nutritionFacts 每份食材依分類的營養估計
type nutritionFacts struct {
	calories, protein, fat float64
}

var nutritionTable = map[catalog.Category]nutritionFacts{
	catalog.Meat:       {250, 25, 15},
	catalog.Vegetable:  {50, 2, 0},
	catalog.Fruit:      {60, 1, 0},
	catalog.Seafood:    {200, 20, 10},
	catalog.Dairy:      {100, 5, 8},
	catalog.Carb:       {150, 5, 2},
	catalog.DevilWater: {80, 0, 0},
}

var amountByCategory = map[catalog.Category]string{
	catalog.Meat:       "1 lb",
	catalog.Vegetable:  "1 cup, chopped",
	catalog.Fruit:      "2, sliced",
	catalog.Seafood:    "1 lb, cleaned",
	catalog.Dairy:      "1/2 cup",
	catalog.Carb:       "2 cups",
	catalog.DevilWater: "1/4 cup, plus a swig for the cook",
}

var (
	titleOpeners = []string{"Hog-Wild", "Rootin'-Tootin'", "Moonshine-Soaked", "Backwoods", "Double-Dog-Dare", "Hootenanny"}
	titleClosers = []string{"Skillet", "Hoedown", "Jamboree", "Casserole", "Stew", "Surprise"}
	chaosGear    = []string{
		"a busted spatula",
		"grandpa's rusty cast iron",
		"a hubcap wok",
		"a pitchfork for flippin'",
		"duct-taped tongs",
		"a boat paddle for stirrin'",
	}
	tips = []string{
		"Keep a fire extinguisher handy and your cousin further away.",
		"Taste as you go, but don't let the dog taste first.",
		"If it smokes, call it blackened and serve it proud.",
		"A splash of hot sauce fixes most mistakes and some marriages.",
		"Let it rest five minutes, same as you after the hoedown.",
	}
)

// Options 模板生成器選項
type Options struct {
	Catalog  *catalog.Catalog
	Language string // english | spanish
	Seed     int64
}

// TemplateGenerator 不需外部服務的規則式生成器
type TemplateGenerator struct {
	catalog  *catalog.Catalog
	language string
	rng      *lockedRand
}

// NewTemplateGenerator 建立模板生成器
func NewTemplateGenerator(opts Options) *TemplateGenerator {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	return &TemplateGenerator{
		catalog:  opts.Catalog,
		language: opts.Language,
		rng:      newLockedRand(opts.Seed),
	}
}

// Generate 食材全部符合預設食譜時直接回傳，否則組出新食譜
func (g *TemplateGenerator) Generate(_ context.Context, ingredients []string) (*recipe.Recipe, error) {
	ingredients = cleanIngredients(ingredients)
	if len(ingredients) == 0 {
		ingredients = randomIngredients(g.rng)
	}

	if r, ok := matchPredefined(ingredients, g.language); ok {
		common.LogInfo("Matched predefined recipe", zap.String("title", r.Title))
		return r, nil
	}

	if extra := g.flavorPair(ingredients); extra != "" {
		ingredients = append(ingredients, extra)
	}
	return g.compose(ingredients), nil
}

// flavorPair 第一個有搭配表的食材隨機帶出一個搭配
func (g *TemplateGenerator) flavorPair(ingredients []string) string {
	have := make(map[string]bool, len(ingredients))
	for _, ing := range ingredients {
		have[ing] = true
	}
	for _, ing := range ingredients {
		pairs := flavorPairs[ing]
		if len(pairs) == 0 {
			continue
		}
		extra := g.rng.pick(pairs)
		if have[extra] {
			return ""
		}
		return extra
	}
	return ""
}

func (g *TemplateGenerator) compose(ingredients []string) *recipe.Recipe {
	r := &recipe.Recipe{
		Title:       fmt.Sprintf("%s %s %s", g.rng.pick(titleOpeners), titleCase(ingredients[0]), g.rng.pick(titleClosers)),
		Ingredients: make([]recipe.Ingredient, 0, len(ingredients)),
		ChaosGear:   g.rng.pick(chaosGear),
		Tips:        recipe.StringList{g.rng.pick(tips)},
	}

	var n nutritionFacts
	hasBooze, hasCarb := false, false
	for _, ing := range ingredients {
		amount := "a heapin' handful"
		if cat, ok := g.catalog.CategoryOf(ing); ok {
			amount = amountByCategory[cat]
			f := nutritionTable[cat]
			n.calories += f.calories
			n.protein += f.protein
			n.fat += f.fat
			hasBooze = hasBooze || cat == catalog.DevilWater
			hasCarb = hasCarb || cat == catalog.Carb
		}
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{Name: ing, Amount: amount, Shape: recipe.ShapePair})
	}
	if n.calories < 100 {
		n.calories = 100
	}
	chaos := len(ingredients)
	if chaos > 10 {
		chaos = 10
	}
	r.Nutrition = recipe.Nutrition{
		Calories:    recipe.Number(n.calories),
		Protein:     recipe.Number(n.protein),
		Fat:         recipe.Number(n.fat),
		ChaosFactor: recipe.Number(chaos),
	}

	r.Equipment = recipe.StringList{"skillet", "spatula"}
	if hasCarb {
		r.Equipment = append(r.Equipment, "pot")
	}

	steps := []string{
		"Fire up the skillet over medium-high heat, partner.",
		fmt.Sprintf("Toss in the %s and let it sizzle 'til it hollers back.", ingredients[0]),
	}
	if len(ingredients) > 1 {
		steps = append(steps, fmt.Sprintf("Stir in the %s like you mean it.", joinAnd(ingredients[1:])))
	}
	if hasCarb {
		steps = append(steps, "Boil up the starch in a pot on the side and drain it good.")
	}
	if hasBooze {
		steps = append(steps, "Splash in the devil water and stand back a step.")
	}
	steps = append(steps,
		"Simmer for 10 minutes while you tell a tall tale.",
		"Serve it up hot on a paper plate.",
	)
	for _, s := range steps {
		r.Steps = append(r.Steps, recipe.Step{Text: s})
	}

	count := len(ingredients)
	r.CookingTime = recipe.Number(10 + 5*count)
	r.Servings = recipe.Number(2 + count/2)
	switch {
	case count <= 3:
		r.Difficulty = "easy"
	case count <= 5:
		r.Difficulty = "medium"
	default:
		r.Difficulty = "hard"
	}
	return r
}

var (
	numberedLine = regexp.MustCompile(`^\s*(?:\d+[.)]|step\s*\d+:?)\s*`)
	bulletLine   = regexp.MustCompile(`^\s*[-*•]\s+`)
	amountSuffix = regexp.MustCompile(`^(.*?)\s*\(([^)]*)\)\s*$`)
)

// Elucidate 從文字中找出標題、條列食材與編號步驟
func (g *TemplateGenerator) Elucidate(_ context.Context, text string) (*recipe.Recipe, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	r := &recipe.Recipe{Difficulty: "medium", Servings: 2}
	var loose []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case r.Title == "":
			r.Title = strings.Trim(line, "#* ")
		case bulletLine.MatchString(line):
			item := strings.TrimSpace(bulletLine.ReplaceAllString(line, ""))
			ing := recipe.Ingredient{Name: item, Shape: recipe.ShapeRecord}
			if m := amountSuffix.FindStringSubmatch(item); m != nil {
				ing.Name, ing.Amount = m[1], m[2]
			}
			r.Ingredients = append(r.Ingredients, ing)
		case numberedLine.MatchString(line):
			r.Steps = append(r.Steps, recipe.Step{Text: strings.TrimSpace(numberedLine.ReplaceAllString(line, ""))})
		default:
			loose = append(loose, strings.Trim(line, "* "))
		}
	}
	if len(r.Steps) == 0 {
		for _, l := range loose {
			r.Steps = append(r.Steps, recipe.Step{Text: l})
		}
	}

	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	var n nutritionFacts
	for _, name := range names {
		if cat, ok := g.catalog.CategoryOf(name); ok {
			f := nutritionTable[cat]
			n.calories += f.calories
			n.protein += f.protein
			n.fat += f.fat
		}
	}
	if n.calories < 100 {
		n.calories = 100
	}
	r.Nutrition = recipe.Nutrition{
		Calories:    recipe.Number(n.calories),
		Protein:     recipe.Number(n.protein),
		Fat:         recipe.Number(n.fat),
		ChaosFactor: recipe.Number(min(len(names), 10)),
	}
	r.CookingTime = recipe.Number(10 + 5*len(r.Steps))
	r.ChaosGear = g.rng.pick(chaosGear)
	return r, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
