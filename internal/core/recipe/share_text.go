package recipe

import (
	"fmt"
	"strings"
)

// IngredientLines 將食材轉為一行一項的文字
func IngredientLines(items []Ingredient) []string {
	lines := make([]string, 0, len(items))
	for _, ing := range items {
		if ing.Name == "" {
			continue
		}
		lines = append(lines, ing.Line())
	}
	return lines
}

// NutritionSummary 營養摘要，例如 "Calories: 330, Protein: 25g, Fat: 15g, Chaos Factor: 2/10"
func NutritionSummary(n Nutrition) string {
	return fmt.Sprintf("Calories: %s, Protein: %sg, Fat: %sg, Chaos Factor: %s/10",
		n.Calories, n.Protein, n.Fat, n.ChaosFactor)
}

// ShareText 回傳食譜的分享文字，優先使用服務端提供的 shareText
func ShareText(r Recipe) string {
	if strings.TrimSpace(r.ShareText) != "" {
		return r.ShareText
	}

	title := r.Title
	if title == "" {
		title = "Recipe"
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\nIngredients: ")
	b.WriteString(strings.Join(IngredientLines(r.Ingredients), ", "))
	b.WriteString("\nSteps: ")
	b.WriteString(strings.Join(r.StepTexts(), "; "))
	b.WriteString("\nNutrition: ")
	b.WriteString(NutritionSummary(r.Nutrition))
	if len(r.Equipment) > 0 {
		b.WriteString("\nEquipment: ")
		b.WriteString(strings.Join(r.Equipment, ", "))
	}
	if r.ChaosGear != "" {
		b.WriteString("\nChaos Gear: ")
		b.WriteString(r.ChaosGear)
	}
	return b.String()
}
