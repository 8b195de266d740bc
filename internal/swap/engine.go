// Package swap реализует перенос граммов одного макронутриента между
// двумя слотами дня. Перенос не создает и не уничтожает граммы:
// суммарное количество по категории за день остается прежним, меняется
// только распределение по слотам. Калории слотов пересчитываются из
// граммов, напрямую калории никогда не переносятся.
package swap

import (
	"errors"
	"fmt"
	"math"

	"example.com/macro-meal-planner/backend/internal/models"
)

// Энергетическая ценность грамма макронутриента (ккал/г).
const (
	KcalPerGramProtein = 4
	KcalPerGramCarbs   = 4
	KcalPerGramFat     = 9
)

// ConservationToleranceG — допуск на плавающую арифметику при проверке
// сохранения суммы граммов за день.
const ConservationToleranceG = 0.01

var (
	ErrInvalidAmount      = errors.New("swap amount must be greater than zero")
	ErrInsufficientAmount = errors.New("source slot does not hold the requested amount")
	ErrUnknownCategory    = errors.New("unknown macro category")
)

// Calories пересчитывает калорийность набора из граммов по формуле 4/4/9.
// Результат округляется до целой калории.
func Calories(m models.MacroSet) int {
	kcal := m.ProteinG*KcalPerGramProtein + m.CarbsG*KcalPerGramCarbs + m.FatG*KcalPerGramFat
	return int(math.Round(kcal))
}

// Apply переносит amountG граммов категории category из from в to и
// возвращает оба слота с пересчитанными калориями. Исходные значения
// не изменяются. Перенос отклоняется, если в from недостаточно граммов:
// частичные переносы запрещены.
func Apply(from, to models.MacroSet, category models.MacroCategory, amountG float64) (models.MacroSet, models.MacroSet, error) {
	if amountG <= 0 {
		return from, to, ErrInvalidAmount
	}

	available, err := gramsOf(from, category)
	if err != nil {
		return from, to, err
	}

	if available < amountG {
		return from, to, fmt.Errorf("%w: have %.2f g, need %.2f g", ErrInsufficientAmount, available, amountG)
	}

	newFrom := setGrams(from, category, round2(available-amountG))

	toGrams, err := gramsOf(to, category)
	if err != nil {
		return from, to, err
	}
	newTo := setGrams(to, category, round2(toGrams+amountG))

	newFrom.Calories = Calories(newFrom)
	newTo.Calories = Calories(newTo)

	return newFrom, newTo, nil
}

// Conserved проверяет, что перенос сохранил дневные суммы граммов по
// всем трем категориям в пределах допуска.
func Conserved(beforeFrom, beforeTo, afterFrom, afterTo models.MacroSet) bool {
	before := beforeFrom.Add(beforeTo)
	after := afterFrom.Add(afterTo)

	return math.Abs(before.ProteinG-after.ProteinG) <= ConservationToleranceG &&
		math.Abs(before.CarbsG-after.CarbsG) <= ConservationToleranceG &&
		math.Abs(before.FatG-after.FatG) <= ConservationToleranceG
}

func gramsOf(m models.MacroSet, category models.MacroCategory) (float64, error) {
	switch category {
	case models.MacroProtein:
		return m.ProteinG, nil
	case models.MacroCarbs:
		return m.CarbsG, nil
	case models.MacroFat:
		return m.FatG, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}

func setGrams(m models.MacroSet, category models.MacroCategory, grams float64) models.MacroSet {
	switch category {
	case models.MacroProtein:
		m.ProteinG = grams
	case models.MacroCarbs:
		m.CarbsG = grams
	case models.MacroFat:
		m.FatG = grams
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
