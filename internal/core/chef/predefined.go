package chef

import (
	"chuckle-chow/internal/core/recipe"
)

type predefined struct {
	titleEN, titleES string
	ingredients      [][2]string
	steps            []string
	nutrition        [4]float64
	cookingTime      int
	difficulty       string
	equipment        []string
	servings         int
	tip              string
}

var flavorPairs = map[string][]string{
	"tofu":        {"soy sauce", "ginger", "garlic"},
	"chicken":     {"paprika", "onion", "moonshine", "fajita seasoning"},
	"shrimp":      {"bacon", "cheddar cheese", "green onion", "lemon"},
	"pork":        {"apple", "rosemary", "moonshine", "bbq sauce"},
	"ground beef": {"tequila", "chili powder", "avocado"},
	"catfish":     {"cajun seasoning", "lettuce", "remoulade sauce"},
	"salmon":      {"mango", "sriracha", "lime"},
	"pork ribs":   {"bbq sauce", "brown sugar", "garlic powder"},
	"black beans": {"chili powder", "tomato", "onion"},
}

var predefinedRecipes = []predefined{
	{
		titleEN: "Moonshine Chicken Skillet", titleES: "Pollo a la Sartén con Moonshine",
		ingredients: [][2]string{{"chicken", "1 lb, cut into strips"}, {"moonshine", "1/4 cup"}, {"onion", "1 medium, diced"}, {"paprika", "1 tsp"}},
		steps: []string{
			"Heat olive oil in a skillet over medium-high heat.",
			"Add chicken strips and sear for 8 minutes until golden.",
			"Splash in moonshine and let it sizzle for 1 minute.",
			"Add diced onion and paprika; cook for 5 minutes until soft.",
			"Serve with cornbread for a hearty meal.",
		},
		nutrition: [4]float64{450, 35, 20, 7}, cookingTime: 15, difficulty: "medium",
		equipment: []string{"skillet"}, servings: 2,
		tip: "Use high-proof moonshine for a bold flavor, but don't light it on fire!",
	},
	{
		titleEN: "Shrimp and Grits Hoedown", titleES: "Camarones y Sémola al Estilo Sureño",
		ingredients: [][2]string{{"shrimp", "1 lb, peeled"}, {"grits", "1 cup"}, {"cheddar cheese", "1/2 cup, shredded"}, {"bacon", "4 strips, chopped"}, {"green onion", "2, sliced"}},
		steps: []string{
			"Cook grits according to package, then stir in cheddar cheese.",
			"In a skillet, cook bacon until crispy; remove and set aside.",
			"Sauté shrimp in bacon fat for 3-4 minutes until pink.",
			"Add green onion and bacon back; stir for 1 minute.",
			"Serve shrimp over cheesy grits.",
		},
		nutrition: [4]float64{600, 40, 30, 8}, cookingTime: 20, difficulty: "medium",
		equipment: []string{"skillet", "pot"}, servings: 4,
		tip: "Use stone-ground grits for authentic texture.",
	},
	{
		titleEN: "Pork and Apple Moonshine Roast", titleES: "Asado de Cerdo y Manzana con Moonshine",
		ingredients: [][2]string{{"pork", "2 lbs, loin"}, {"apple", "2, sliced"}, {"moonshine", "1/2 cup"}, {"rosemary", "1 tbsp"}, {"garlic", "3 cloves, minced"}},
		steps: []string{
			"Preheat oven to 375°F.",
			"Rub pork loin with garlic, rosemary, salt, and pepper.",
			"Place apples in a roasting pan, top with pork, and pour moonshine over.",
			"Roast for 60-75 minutes until internal temp is 145°F.",
			"Slice and serve with roasted apples.",
		},
		nutrition: [4]float64{500, 45, 25, 6}, cookingTime: 75, difficulty: "hard",
		equipment: []string{"roasting pan"}, servings: 6,
		tip: "Let pork rest 10 minutes before slicing.",
	},
	{
		titleEN: "Ground Beef Tequila Tacos", titleES: "Tacos de Carne Molida con Tequila",
		ingredients: [][2]string{{"ground beef", "1 lb"}, {"tequila", "1/4 cup"}, {"tortilla", "8, corn"}, {"chili powder", "1 tbsp"}, {"avocado", "1, diced"}},
		steps: []string{
			"Brown ground beef in a skillet over medium heat, 7-10 minutes.",
			"Add chili powder and tequila; cook 2 minutes until evaporated.",
			"Warm tortillas in a dry skillet.",
			"Fill tortillas with beef and top with avocado.",
			"Serve with lime wedges.",
		},
		nutrition: [4]float64{400, 25, 20, 7}, cookingTime: 15, difficulty: "easy",
		equipment: []string{"skillet"}, servings: 4,
		tip: "Use reposado tequila for a smoother flavor.",
	},
	{
		titleEN: "Cajun Catfish Po'Boy", titleES: "Sándwich Po'Boy de Bagre Cajún",
		ingredients: [][2]string{{"catfish", "1 lb, fillets"}, {"cajun seasoning", "2 tbsp"}, {"baguette", "1, cut into 4 pieces"}, {"lettuce", "1 cup, shredded"}, {"remoulade sauce", "1/4 cup"}},
		steps: []string{
			"Coat catfish with cajun seasoning.",
			"Fry catfish in 2 tbsp oil over medium heat, 3-4 minutes per side.",
			"Toast baguette pieces lightly.",
			"Spread remoulade on baguette, add lettuce and catfish.",
			"Serve with pickles on the side.",
		},
		nutrition: [4]float64{550, 30, 25, 6}, cookingTime: 20, difficulty: "medium",
		equipment: []string{"skillet", "toaster"}, servings: 4,
		tip: "Make your own remoulade with mayo, mustard, and hot sauce.",
	},
	{
		titleEN: "Lemon Garlic Butter Shrimp Pasta", titleES: "Pasta con Camarones al Limón y Ajo",
		ingredients: [][2]string{{"shrimp", "1 lb, peeled"}, {"pasta", "8 oz"}, {"butter", "4 tbsp"}, {"garlic", "3 cloves, minced"}, {"lemon", "1, juiced and zested"}},
		steps: []string{
			"Cook pasta according to package; drain and set aside.",
			"Melt butter in a skillet over medium heat.",
			"Add garlic and sauté for 1 minute.",
			"Add shrimp and cook for 3-4 minutes until pink.",
			"Toss in pasta, lemon juice, and zest; stir to combine.",
			"Serve with parsley.",
		},
		nutrition: [4]float64{500, 30, 20, 6}, cookingTime: 20, difficulty: "easy",
		equipment: []string{"skillet", "pot"}, servings: 4,
		tip: "Use fresh lemon for a bright flavor.",
	},
	{
		titleEN: "Vegetarian Chili", titleES: "Chili Vegetariano",
		ingredients: [][2]string{{"black beans", "1 can, drained"}, {"kidney beans", "1 can, drained"}, {"tomato", "1 can, diced"}, {"onion", "1, diced"}, {"chili powder", "2 tbsp"}},
		steps: []string{
			"Sauté onion in 1 tbsp oil over medium heat for 5 minutes.",
			"Add chili powder and stir for 1 minute.",
			"Add beans and tomatoes; bring to a simmer.",
			"Cook for 20 minutes, stirring occasionally.",
			"Serve with cornbread or rice.",
		},
		nutrition: [4]float64{350, 15, 5, 5}, cookingTime: 30, difficulty: "easy",
		equipment: []string{"pot"}, servings: 4,
		tip: "Add a dash of cumin for extra depth.",
	},
}

// matchPredefined 所有請求食材都包含在某個預設食譜時回傳該食譜
func matchPredefined(ingredients []string, language string) (*recipe.Recipe, bool) {
	if len(ingredients) == 0 {
		return nil, false
	}

	best, bestScore := -1, 0
	for i, p := range predefinedRecipes {
		names := make(map[string]bool, len(p.ingredients))
		for _, ing := range p.ingredients {
			names[ing[0]] = true
		}
		score := 0
		for _, ing := range ingredients {
			if names[ing] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore < len(ingredients) {
		return nil, false
	}
	return predefinedRecipes[best].toRecipe(language), true
}

func (p predefined) toRecipe(language string) *recipe.Recipe {
	title := p.titleEN
	if language == "spanish" && p.titleES != "" {
		title = p.titleES
	}

	r := &recipe.Recipe{
		Title:       title,
		Ingredients: make([]recipe.Ingredient, 0, len(p.ingredients)),
		Steps:       make([]recipe.Step, 0, len(p.steps)),
		Nutrition: recipe.Nutrition{
			Calories:    recipe.Number(p.nutrition[0]),
			Protein:     recipe.Number(p.nutrition[1]),
			Fat:         recipe.Number(p.nutrition[2]),
			ChaosFactor: recipe.Number(p.nutrition[3]),
		},
		Equipment:   append(recipe.StringList(nil), p.equipment...),
		CookingTime: recipe.Number(p.cookingTime),
		Difficulty:  p.difficulty,
		Servings:    recipe.Number(p.servings),
		Tips:        recipe.StringList{p.tip},
	}
	for _, ing := range p.ingredients {
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{Name: ing[0], Amount: ing[1], Shape: recipe.ShapeRecord})
	}
	for _, s := range p.steps {
		r.Steps = append(r.Steps, recipe.Step{Text: s})
	}
	return r
}
