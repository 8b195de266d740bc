// Package budget содержит проверку кандидата против остатка бюджета слота.
// Проверка нулевой терпимости: превышение хотя бы по одному полю даже на
// минимальную величину делает кандидата невалидным, равенство допустимо.
package budget

import "example.com/macro-meal-planner/backend/internal/models"

// Violation называет поле бюджета, которое кандидат превысил.
type Violation string

const (
	ViolationCalories Violation = "calories"
	ViolationProtein  Violation = "protein_g"
	ViolationCarbs    Violation = "carbs_g"
	ViolationFat      Violation = "fat_g"
)

// Result описывает исход проверки. Violations перечисляет все
// превышенные поля, а не только первое: клиенту нужна полная картина.
type Result struct {
	OK         bool
	Violations []Violation
}

// Validate сравнивает кандидата с остатком бюджета слота.
// Отрицательный остаток (слот уже перерасходован) автоматически
// отклоняет любого кандидата с положительным значением этого поля.
func Validate(candidate, remaining models.MacroSet) Result {
	var violations []Violation

	if candidate.Calories > remaining.Calories {
		violations = append(violations, ViolationCalories)
	}
	if candidate.ProteinG > remaining.ProteinG {
		violations = append(violations, ViolationProtein)
	}
	if candidate.CarbsG > remaining.CarbsG {
		violations = append(violations, ViolationCarbs)
	}
	if candidate.FatG > remaining.FatG {
		violations = append(violations, ViolationFat)
	}

	return Result{
		OK:         len(violations) == 0,
		Violations: violations,
	}
}
