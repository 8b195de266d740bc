// Package ledger ведет дневной бюджет макронутриентов: цели дня,
// распределение по слотам и остаток каждого слота с учетом уже
// съеденного. Остаток не обрезается снизу: перерасход слота виден
// клиенту как отрицательные значения.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"example.com/macro-meal-planner/backend/internal/config"
	"example.com/macro-meal-planner/backend/internal/models"
	"example.com/macro-meal-planner/backend/internal/repository"
)

// TargetSource отдает явно сохраненные цели дня.
type TargetSource interface {
	GetForDate(ctx context.Context, userID uuid.UUID, date time.Time) (models.DailyTargets, error)
}

// ProfileSource отдает профиль пользователя для вывода целей.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error)
}

// ConsumptionSource отдает суммы записанных приемов пищи по слотам.
type ConsumptionSource interface {
	SumBySlot(ctx context.Context, userID uuid.UUID, date time.Time) (map[models.MealSlot]models.MacroSet, error)
}

// SlotBudget описывает бюджет одного слота: выделено, съедено, остаток.
type SlotBudget struct {
	Slot      models.MealSlot
	Allocated models.MacroSet
	Consumed  models.MacroSet
	Remaining models.MacroSet
}

// DaySummary агрегирует бюджет всех слотов дня.
type DaySummary struct {
	Date      time.Time
	Targets   models.DailyTargets
	Slots     []SlotBudget
	Consumed  models.MacroSet
	Remaining models.MacroSet
}

type Service struct {
	targets  TargetSource
	profiles ProfileSource
	meals    ConsumptionSource
	planner  config.PlannerConfig
	now      func() time.Time
}

// NewService создает сервис дневного бюджета.
func NewService(targets TargetSource, profiles ProfileSource, meals ConsumptionSource, planner config.PlannerConfig) *Service {
	return &Service{
		targets:  targets,
		profiles: profiles,
		meals:    meals,
		planner:  planner,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// TargetsForDate возвращает цели дня. Приоритет: явно сохраненные цели,
// затем цели из профиля, затем значения по умолчанию (IsDefault=true).
func (s *Service) TargetsForDate(ctx context.Context, userID uuid.UUID, date time.Time) (models.DailyTargets, error) {
	stored, err := s.targets.GetForDate(ctx, userID, date)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.DailyTargets{}, fmt.Errorf("get stored targets: %w", err)
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return models.DailyTargets{}, fmt.Errorf("get profile: %w", err)
	}

	macros, isDefault := DeriveTargets(profile, s.planner.DefaultCalories, s.now())

	return models.DailyTargets{
		UserID:    userID,
		Date:      date,
		Macros:    macros,
		IsDefault: isDefault,
	}, nil
}

// Allocate выделяет слоту его долю дневных целей. Граммы округляются
// до сотых, калории до целых, поэтому сумма долей может отличаться от
// дневной цели на величину округления.
func (s *Service) Allocate(targets models.MacroSet, slot models.MealSlot) models.MacroSet {
	percent := float64(s.planner.AllocationPercent(string(slot)))
	return models.MacroSet{
		Calories: int(math.Round(float64(targets.Calories) * percent / 100)),
		ProteinG: round2(targets.ProteinG * percent / 100),
		CarbsG:   round2(targets.CarbsG * percent / 100),
		FatG:     round2(targets.FatG * percent / 100),
	}
}

// RemainingForSlot возвращает бюджет одного слота на дату.
func (s *Service) RemainingForSlot(ctx context.Context, userID uuid.UUID, date time.Time, slot models.MealSlot) (SlotBudget, error) {
	targets, err := s.TargetsForDate(ctx, userID, date)
	if err != nil {
		return SlotBudget{}, err
	}

	sums, err := s.meals.SumBySlot(ctx, userID, date)
	if err != nil {
		return SlotBudget{}, fmt.Errorf("sum meals by slot: %w", err)
	}

	return s.slotBudget(targets.Macros, slot, sums[slot]), nil
}

// DailyTotals возвращает бюджет всех слотов дня и дневные агрегаты.
func (s *Service) DailyTotals(ctx context.Context, userID uuid.UUID, date time.Time) (DaySummary, error) {
	targets, err := s.TargetsForDate(ctx, userID, date)
	if err != nil {
		return DaySummary{}, err
	}

	sums, err := s.meals.SumBySlot(ctx, userID, date)
	if err != nil {
		return DaySummary{}, fmt.Errorf("sum meals by slot: %w", err)
	}

	summary := DaySummary{
		Date:    date,
		Targets: targets,
		Slots:   make([]SlotBudget, 0, len(models.MealSlots)),
	}

	for _, slot := range models.MealSlots {
		sb := s.slotBudget(targets.Macros, slot, sums[slot])
		summary.Slots = append(summary.Slots, sb)
		summary.Consumed = summary.Consumed.Add(sb.Consumed)
	}

	summary.Remaining = targets.Macros.Sub(summary.Consumed)
	return summary, nil
}

func (s *Service) slotBudget(dayTargets models.MacroSet, slot models.MealSlot, consumed models.MacroSet) SlotBudget {
	allocated := s.Allocate(dayTargets, slot)
	return SlotBudget{
		Slot:      slot,
		Allocated: allocated,
		Consumed:  consumed,
		Remaining: allocated.Sub(consumed),
	}
}
