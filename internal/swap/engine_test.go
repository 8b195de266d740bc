package swap

import (
	"errors"
	"strings"
	"testing"

	"example.com/macro-meal-planner/backend/internal/models"
)

// TestApplyMovesGramsAndRecomputesCalories проверяет базовый перенос:
// граммы уходят из одного слота в другой, калории обоих пересчитаны
// по 4/4/9.
func TestApplyMovesGramsAndRecomputesCalories(t *testing.T) {
	from := models.MacroSet{Calories: 500, ProteinG: 40, CarbsG: 50, FatG: 10}
	to := models.MacroSet{Calories: 400, ProteinG: 20, CarbsG: 40, FatG: 12}

	newFrom, newTo, err := Apply(from, to, models.MacroCarbs, 15)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if newFrom.CarbsG != 35 {
		t.Errorf("newFrom.CarbsG = %.2f, want 35", newFrom.CarbsG)
	}
	if newTo.CarbsG != 55 {
		t.Errorf("newTo.CarbsG = %.2f, want 55", newTo.CarbsG)
	}

	// 40*4 + 35*4 + 10*9 = 390; 20*4 + 55*4 + 12*9 = 408.
	if newFrom.Calories != 390 {
		t.Errorf("newFrom.Calories = %d, want 390", newFrom.Calories)
	}
	if newTo.Calories != 408 {
		t.Errorf("newTo.Calories = %d, want 408", newTo.Calories)
	}

	// Нетронутые категории не меняются.
	if newFrom.ProteinG != 40 || newFrom.FatG != 10 {
		t.Errorf("untouched categories changed: protein %.2f, fat %.2f", newFrom.ProteinG, newFrom.FatG)
	}
}

// TestApplyConservation проверяет сохранение дневных сумм граммов.
func TestApplyConservation(t *testing.T) {
	from := models.MacroSet{ProteinG: 33.33, CarbsG: 47.17, FatG: 11.11}
	to := models.MacroSet{ProteinG: 21.9, CarbsG: 38.04, FatG: 9.95}

	newFrom, newTo, err := Apply(from, to, models.MacroProtein, 12.47)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !Conserved(from, to, newFrom, newTo) {
		t.Errorf("Conserved() = false: before %.4f g, after %.4f g",
			from.ProteinG+to.ProteinG, newFrom.ProteinG+newTo.ProteinG)
	}
}

// TestApplyExactAmountDrainsSlot проверяет перенос всего доступного
// количества: остаток ровно ноль, отказа нет.
func TestApplyExactAmountDrainsSlot(t *testing.T) {
	from := models.MacroSet{ProteinG: 25, CarbsG: 10, FatG: 5}
	to := models.MacroSet{ProteinG: 15}

	newFrom, newTo, err := Apply(from, to, models.MacroProtein, 25)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if newFrom.ProteinG != 0 {
		t.Errorf("newFrom.ProteinG = %.2f, want 0", newFrom.ProteinG)
	}
	if newTo.ProteinG != 40 {
		t.Errorf("newTo.ProteinG = %.2f, want 40", newTo.ProteinG)
	}
}

// TestApplyInsufficientAmount проверяет отказ при нехватке граммов.
// Частичный перенос запрещен, исходные слоты возвращаются без изменений.
func TestApplyInsufficientAmount(t *testing.T) {
	from := models.MacroSet{Calories: 145, ProteinG: 10, CarbsG: 15, FatG: 5}
	to := models.MacroSet{ProteinG: 20}

	gotFrom, gotTo, err := Apply(from, to, models.MacroFat, 5.01)
	if !errors.Is(err, ErrInsufficientAmount) {
		t.Fatalf("Apply() error = %v, want ErrInsufficientAmount", err)
	}

	// Текст ошибки уходит клиенту и должен называть точную нехватку.
	if msg := err.Error(); !strings.Contains(msg, "have 5.00 g") || !strings.Contains(msg, "need 5.01 g") {
		t.Errorf("error message lacks the shortfall: %q", msg)
	}

	if gotFrom != from || gotTo != to {
		t.Error("Apply() modified slots despite error")
	}
}

// TestApplyRejectsNonPositiveAmount проверяет отказ для нулевого и
// отрицательного количества.
func TestApplyRejectsNonPositiveAmount(t *testing.T) {
	from := models.MacroSet{ProteinG: 10}
	to := models.MacroSet{}

	for _, amount := range []float64{0, -3.5} {
		if _, _, err := Apply(from, to, models.MacroProtein, amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Apply(amount=%.1f) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

// TestApplyUnknownCategory проверяет отказ для неизвестной категории.
// Калории не являются переносимой категорией: они производная величина.
func TestApplyUnknownCategory(t *testing.T) {
	from := models.MacroSet{ProteinG: 10}
	to := models.MacroSet{}

	if _, _, err := Apply(from, to, models.MacroCategory("calories"), 5); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Apply() error = %v, want ErrUnknownCategory", err)
	}
}

// TestCalories проверяет формулу 4/4/9 и округление до целого.
func TestCalories(t *testing.T) {
	tests := []struct {
		name string
		in   models.MacroSet
		want int
	}{
		{"whole grams", models.MacroSet{ProteinG: 30, CarbsG: 40, FatG: 10}, 370},
		{"fractional grams", models.MacroSet{ProteinG: 12.3, CarbsG: 7.8, FatG: 4.4}, 120},
		{"zero", models.MacroSet{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Calories(tt.in); got != tt.want {
				t.Errorf("Calories(%+v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
