package ledger

import (
	"math"
	"time"

	"example.com/macro-meal-planner/backend/internal/models"
)

// Доли макронутриентов в дневной калорийности по умолчанию.
// Используются и для целей из профиля, и для запасного варианта.
const (
	proteinShare = 0.30
	carbsShare   = 0.40
	fatShare     = 0.30
)

// Поправка дневной калорийности в зависимости от цели пользователя.
var goalAdjustments = map[string]float64{
	"lose_weight": -500,
	"maintain":    0,
	"gain_muscle": 300,
}

var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// DeriveTargets вычисляет дневные цели из профиля по формуле
// Миффлина-Сан Жеора. Если профиль неполон, возвращает цели от
// defaultCalories и isDefault=true: пользователь еще может получать
// рекомендации, просто от консервативной базы.
func DeriveTargets(profile models.Profile, defaultCalories int, now time.Time) (models.MacroSet, bool) {
	if profile.Sex == nil || profile.BirthDate == nil || profile.HeightCM == nil ||
		profile.WeightKG == nil || profile.ActivityLevel == nil {
		return targetsFromCalories(defaultCalories), true
	}

	multiplier, ok := activityMultipliers[*profile.ActivityLevel]
	if !ok {
		return targetsFromCalories(defaultCalories), true
	}

	age := ageYears(*profile.BirthDate, now)
	bmr := 10*(*profile.WeightKG) + 6.25*(*profile.HeightCM) - 5*float64(age)
	if *profile.Sex == "male" {
		bmr += 5
	} else {
		bmr -= 161
	}

	tdee := bmr * multiplier
	if profile.Goal != nil {
		tdee += goalAdjustments[*profile.Goal]
	}

	calories := int(math.Round(tdee))
	if calories <= 0 {
		return targetsFromCalories(defaultCalories), true
	}

	return targetsFromCalories(calories), false
}

// targetsFromCalories раскладывает калорийность на граммы по долям
// 30/40/30 и энергетической ценности 4/4/9 ккал/г.
func targetsFromCalories(calories int) models.MacroSet {
	kcal := float64(calories)
	return models.MacroSet{
		Calories: calories,
		ProteinG: round2(kcal * proteinShare / 4),
		CarbsG:   round2(kcal * carbsShare / 4),
		FatG:     round2(kcal * fatShare / 9),
	}
}

func ageYears(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
