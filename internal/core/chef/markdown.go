package chef

import (
	"fmt"
	"strings"

	"chuckle-chow/internal/core/catalog"
	"chuckle-chow/internal/core/recipe"
)

var equipmentEmoji = map[string]string{
	"wok": "🥘", "skillet": "🍳", "roasting pan": "🍲", "baking sheet": "🥧", "pot": "🍲", "spatula": "🥄",
	"toaster": "🍞", "bowl": "🥣", "foil": "📜",
}

var defaultCatalog = catalog.Default()

// ShareText 服務端的分享文字
func ShareText(r recipe.Recipe) string {
	steps := make([]string, 0, len(r.Steps))
	for i, s := range r.StepTexts() {
		steps = append(steps, fmt.Sprintf("Step %d: %s", i+1, s))
	}
	return fmt.Sprintf("Check out my *Chuckle & Chow* recipe: %s!\n\nIngredients: %s\n\nInstructions: %s\n\nNutrition: %s\n\nTry it at %s!",
		r.Title,
		strings.Join(recipe.IngredientLines(r.Ingredients), ", "),
		strings.Join(steps, "; "),
		recipe.NutritionSummary(r.Nutrition),
		appLink,
	)
}

// Markdown 以 Markdown 呈現整份食譜
func Markdown(r recipe.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### **%s** 🎉\n\n", r.Title)

	b.WriteString("**Ingredients:** 🥗\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&b, "- %s %s\n", ing.Line(), ingredientEmoji(ing.Name))
	}

	b.WriteString("\n**Steps:** 🔢\n")
	for i, s := range r.StepTexts() {
		fmt.Fprintf(&b, "%d. %s ✅\n", i+1, s)
	}

	n := r.Nutrition
	fmt.Fprintf(&b, "\n**Nutrition:** 📊\n- 🔥 Calories: %s\n- 💪 Protein: %sg\n- 🧈 Fat: %sg\n- 😜 Chaos Factor: %s/10\n",
		n.Calories, n.Protein, n.Fat, n.ChaosFactor)

	if len(r.Equipment) > 0 {
		gear := make([]string, 0, len(r.Equipment))
		for _, eq := range r.Equipment {
			gear = append(gear, eq+" "+equipmentIcon(eq))
		}
		fmt.Fprintf(&b, "\n**Equipment Needed:** 🍳\n%s\n", strings.Join(gear, ", "))
	}
	if r.ChaosGear != "" {
		fmt.Fprintf(&b, "\n**Chaos Gear:** 🤠 %s\n", r.ChaosGear)
	}
	if r.CookingTime > 0 {
		fmt.Fprintf(&b, "\n**Cooking Time:** ⏰ %s minutes\n", r.CookingTime)
	}
	if r.Difficulty != "" {
		fmt.Fprintf(&b, "\n**Difficulty:** 🎯 %s\n", r.Difficulty)
	}
	if r.Servings > 0 {
		fmt.Fprintf(&b, "\n**Servings:** 🍽️ %s\n", r.Servings)
	}
	if len(r.Tips) > 0 {
		b.WriteString("\n**Tips:** 💡\n")
		for _, tip := range r.Tips {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func ingredientEmoji(name string) string {
	if cat, ok := defaultCatalog.CategoryOf(name); ok {
		if it, ok := defaultCatalog.Find(cat, name); ok {
			return it.Emoji
		}
	}
	return "🥄"
}

func equipmentIcon(name string) string {
	if e, ok := equipmentEmoji[strings.ToLower(name)]; ok {
		return e
	}
	return "🔧"
}
