package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/macro-meal-planner/backend/internal/config"
	"example.com/macro-meal-planner/backend/internal/models"
	"example.com/macro-meal-planner/backend/internal/repository"
)

type fakeTargets struct {
	targets models.DailyTargets
	err     error
}

func (f *fakeTargets) GetForDate(_ context.Context, _ uuid.UUID, _ time.Time) (models.DailyTargets, error) {
	return f.targets, f.err
}

type fakeProfiles struct {
	profile models.Profile
	err     error
}

func (f *fakeProfiles) GetProfile(_ context.Context, _ uuid.UUID) (models.Profile, error) {
	return f.profile, f.err
}

type fakeMeals struct {
	sums map[models.MealSlot]models.MacroSet
	err  error
}

func (f *fakeMeals) SumBySlot(_ context.Context, _ uuid.UUID, _ time.Time) (map[models.MealSlot]models.MacroSet, error) {
	return f.sums, f.err
}

func testPlanner() config.PlannerConfig {
	return config.PlannerConfig{
		AllocBreakfast:  25,
		AllocLunch:      35,
		AllocDinner:     30,
		AllocSnack:      10,
		DefaultCalories: 2000,
	}
}

func newTestService(targets *fakeTargets, profiles *fakeProfiles, meals *fakeMeals) *Service {
	if targets == nil {
		targets = &fakeTargets{err: repository.ErrNotFound}
	}
	if profiles == nil {
		profiles = &fakeProfiles{err: repository.ErrNotFound}
	}
	if meals == nil {
		meals = &fakeMeals{}
	}
	return NewService(targets, profiles, meals, testPlanner())
}

// TestTargetsForDateStored проверяет приоритет явно сохраненных целей.
func TestTargetsForDateStored(t *testing.T) {
	stored := models.DailyTargets{
		Macros: models.MacroSet{Calories: 2400, ProteinG: 180, CarbsG: 240, FatG: 80},
	}
	svc := newTestService(&fakeTargets{targets: stored}, nil, nil)

	got, err := svc.TargetsForDate(context.Background(), uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("TargetsForDate() error = %v", err)
	}

	if got.Macros != stored.Macros {
		t.Errorf("Macros = %+v, want %+v", got.Macros, stored.Macros)
	}
	if got.IsDefault {
		t.Error("IsDefault = true for stored targets, want false")
	}
}

// TestTargetsForDateFromProfile проверяет вывод целей по формуле
// Миффлина-Сан Жеора из заполненного профиля.
func TestTargetsForDateFromProfile(t *testing.T) {
	sex := "male"
	birth := time.Date(1996, 3, 15, 0, 0, 0, 0, time.UTC)
	height := 180.0
	weight := 80.0
	activity := "moderate"
	goal := "maintain"

	profile := models.Profile{
		Sex:           &sex,
		BirthDate:     &birth,
		HeightCM:      &height,
		WeightKG:      &weight,
		ActivityLevel: &activity,
		Goal:          &goal,
	}

	svc := newTestService(nil, &fakeProfiles{profile: profile}, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC) }

	got, err := svc.TargetsForDate(context.Background(), uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("TargetsForDate() error = %v", err)
	}

	// BMR = 10*80 + 6.25*180 - 5*30 + 5 = 1780; TDEE = 1780*1.55 = 2759.
	if got.Macros.Calories != 2759 {
		t.Errorf("Calories = %d, want 2759", got.Macros.Calories)
	}
	if got.IsDefault {
		t.Error("IsDefault = true for complete profile, want false")
	}
}

// TestTargetsForDateDefault проверяет запасной вариант при пустом профиле.
func TestTargetsForDateDefault(t *testing.T) {
	svc := newTestService(nil, nil, nil)

	got, err := svc.TargetsForDate(context.Background(), uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("TargetsForDate() error = %v", err)
	}

	if !got.IsDefault {
		t.Error("IsDefault = false for empty profile, want true")
	}
	if got.Macros.Calories != 2000 {
		t.Errorf("Calories = %d, want 2000", got.Macros.Calories)
	}

	// 2000 ккал: белок 150 г, углеводы 200 г, жиры 66.67 г.
	if got.Macros.ProteinG != 150 || got.Macros.CarbsG != 200 || got.Macros.FatG != 66.67 {
		t.Errorf("macros = %.2f/%.2f/%.2f, want 150/200/66.67",
			got.Macros.ProteinG, got.Macros.CarbsG, got.Macros.FatG)
	}
}

// TestAllocate проверяет долю слота в дневных целях.
func TestAllocate(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	day := models.MacroSet{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 66.67}

	lunch := svc.Allocate(day, models.MealSlotLunch)
	want := models.MacroSet{Calories: 700, ProteinG: 52.5, CarbsG: 70, FatG: 23.33}
	if lunch != want {
		t.Errorf("Allocate(lunch) = %+v, want %+v", lunch, want)
	}

	snack := svc.Allocate(day, models.MealSlotSnack)
	if snack.Calories != 200 {
		t.Errorf("Allocate(snack).Calories = %d, want 200", snack.Calories)
	}
}

// TestRemainingForSlot проверяет остаток: выделено минус съедено.
func TestRemainingForSlot(t *testing.T) {
	stored := models.DailyTargets{
		Macros: models.MacroSet{Calories: 2000, ProteinG: 160, CarbsG: 200, FatG: 60},
	}
	meals := &fakeMeals{sums: map[models.MealSlot]models.MacroSet{
		models.MealSlotBreakfast: {Calories: 300, ProteinG: 25, CarbsG: 30, FatG: 8},
	}}

	svc := newTestService(&fakeTargets{targets: stored}, nil, meals)

	got, err := svc.RemainingForSlot(context.Background(), uuid.New(), time.Now(), models.MealSlotBreakfast)
	if err != nil {
		t.Fatalf("RemainingForSlot() error = %v", err)
	}

	// Завтрак: 25% от дня = 500 ккал / 40 г / 50 г / 15 г.
	wantRemaining := models.MacroSet{Calories: 200, ProteinG: 15, CarbsG: 20, FatG: 7}
	if got.Remaining != wantRemaining {
		t.Errorf("Remaining = %+v, want %+v", got.Remaining, wantRemaining)
	}
}

// TestRemainingForSlotGoesNegative проверяет, что перерасход не обрезается.
func TestRemainingForSlotGoesNegative(t *testing.T) {
	stored := models.DailyTargets{
		Macros: models.MacroSet{Calories: 2000, ProteinG: 160, CarbsG: 200, FatG: 60},
	}
	meals := &fakeMeals{sums: map[models.MealSlot]models.MacroSet{
		models.MealSlotSnack: {Calories: 450, ProteinG: 20, CarbsG: 60, FatG: 12},
	}}

	svc := newTestService(&fakeTargets{targets: stored}, nil, meals)

	got, err := svc.RemainingForSlot(context.Background(), uuid.New(), time.Now(), models.MealSlotSnack)
	if err != nil {
		t.Fatalf("RemainingForSlot() error = %v", err)
	}

	// Перекус: 10% от дня = 200 ккал / 16 г / 20 г / 6 г.
	if got.Remaining.Calories != -250 {
		t.Errorf("Remaining.Calories = %d, want -250", got.Remaining.Calories)
	}
	if got.Remaining.CarbsG != -40 {
		t.Errorf("Remaining.CarbsG = %.2f, want -40", got.Remaining.CarbsG)
	}
}

// TestDailyTotals проверяет агрегаты дня по всем слотам.
func TestDailyTotals(t *testing.T) {
	stored := models.DailyTargets{
		Macros: models.MacroSet{Calories: 2000, ProteinG: 160, CarbsG: 200, FatG: 60},
	}
	meals := &fakeMeals{sums: map[models.MealSlot]models.MacroSet{
		models.MealSlotBreakfast: {Calories: 400, ProteinG: 30, CarbsG: 40, FatG: 12},
		models.MealSlotLunch:     {Calories: 600, ProteinG: 45, CarbsG: 70, FatG: 18},
	}}

	svc := newTestService(&fakeTargets{targets: stored}, nil, meals)

	got, err := svc.DailyTotals(context.Background(), uuid.New(), time.Now())
	if err != nil {
		t.Fatalf("DailyTotals() error = %v", err)
	}

	if len(got.Slots) != 4 {
		t.Fatalf("len(Slots) = %d, want 4", len(got.Slots))
	}
	if got.Slots[0].Slot != models.MealSlotBreakfast || got.Slots[3].Slot != models.MealSlotSnack {
		t.Errorf("slot order = %s..%s, want breakfast..snack", got.Slots[0].Slot, got.Slots[3].Slot)
	}

	if got.Consumed.Calories != 1000 {
		t.Errorf("Consumed.Calories = %d, want 1000", got.Consumed.Calories)
	}
	if got.Remaining.Calories != 1000 {
		t.Errorf("Remaining.Calories = %d, want 1000", got.Remaining.Calories)
	}
	if got.Remaining.ProteinG != 85 {
		t.Errorf("Remaining.ProteinG = %.2f, want 85", got.Remaining.ProteinG)
	}
}
