package suggest

import (
	"math"

	"example.com/macro-meal-planner/backend/internal/models"
	"example.com/macro-meal-planner/backend/internal/swap"
)

// fallbackTemplates — заготовки локальных предложений. Доля задает,
// какая часть остатка граммов уходит в блюдо.
var fallbackTemplates = []struct {
	name         string
	description  string
	ingredients  []string
	instructions string
	share        float64
}{
	{
		name:         "Куриная грудка с овощами",
		description:  "Сытный вариант, закрывающий большую часть остатка.",
		ingredients:  []string{"куриная грудка", "брокколи", "морковь", "оливковое масло"},
		instructions: "Обжарьте грудку на среднем огне, потушите овощи и подавайте вместе.",
		share:        0.9,
	},
	{
		name:         "Творог с ягодами",
		description:  "Средняя порция с упором на белок.",
		ingredients:  []string{"творог", "ягоды", "мед"},
		instructions: "Смешайте творог с ягодами, по вкусу добавьте мед.",
		share:        0.65,
	},
	{
		name:         "Омлет с зеленью",
		description:  "Легкая порция, оставляющая запас в бюджете.",
		ingredients:  []string{"яйца", "молоко", "зелень"},
		instructions: "Взбейте яйца с молоком, жарьте до готовности и посыпьте зеленью.",
		share:        0.4,
	},
}

// Fallback синтезирует предложения из самого остатка бюджета:
// каждое блюдо берет фиксированную долю оставшихся граммов, калории
// считаются из граммов с округлением вниз. При неотрицательном остатке
// такой набор по построению проходит проверку бюджета.
func Fallback(remaining models.MacroSet) []MealSuggestion {
	suggestions := make([]MealSuggestion, 0, len(fallbackTemplates))

	for _, tpl := range fallbackTemplates {
		macros := models.MacroSet{
			ProteinG: floor2(positive(remaining.ProteinG) * tpl.share),
			CarbsG:   floor2(positive(remaining.CarbsG) * tpl.share),
			FatG:     floor2(positive(remaining.FatG) * tpl.share),
		}

		kcal := macros.ProteinG*swap.KcalPerGramProtein +
			macros.CarbsG*swap.KcalPerGramCarbs +
			macros.FatG*swap.KcalPerGramFat

		// Граммы могут не помещаться в остаток калорий, если цели дня
		// заданы несогласованно. Тогда порция ужимается под калории.
		if ceiling := float64(remaining.Calories) * tpl.share; kcal > ceiling && kcal > 0 {
			factor := ceiling / kcal
			macros.ProteinG = floor2(macros.ProteinG * factor)
			macros.CarbsG = floor2(macros.CarbsG * factor)
			macros.FatG = floor2(macros.FatG * factor)
			kcal = macros.ProteinG*swap.KcalPerGramProtein +
				macros.CarbsG*swap.KcalPerGramCarbs +
				macros.FatG*swap.KcalPerGramFat
		}

		macros.Calories = int(math.Floor(kcal))
		suggestions = append(suggestions, MealSuggestion{
			Name:         tpl.name,
			Description:  tpl.description,
			Ingredients:  tpl.ingredients,
			Instructions: tpl.instructions,
			Macros:       macros,
		})
	}

	return suggestions
}

func positive(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func floor2(v float64) float64 {
	return math.Floor(v*100) / 100
}
