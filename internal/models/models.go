package models

import (
	"time"

	"github.com/google/uuid"
)

type MealSlot string

type MacroCategory string

const (
	MealSlotBreakfast MealSlot = "breakfast"
	MealSlotLunch     MealSlot = "lunch"
	MealSlotDinner    MealSlot = "dinner"
	MealSlotSnack     MealSlot = "snack"

	MacroProtein MacroCategory = "protein"
	MacroCarbs   MacroCategory = "carbs"
	MacroFat     MacroCategory = "fat"
)

// MealSlots перечисляет слоты в фиксированном порядке дня.
var MealSlots = []MealSlot{MealSlotBreakfast, MealSlotLunch, MealSlotDinner, MealSlotSnack}

// IsMealSlot проверяет, что значение является известным слотом.
func IsMealSlot(value MealSlot) bool {
	switch value {
	case MealSlotBreakfast, MealSlotLunch, MealSlotDinner, MealSlotSnack:
		return true
	default:
		return false
	}
}

// IsMacroCategory проверяет, что значение является обмениваемой категорией.
// Калории сюда намеренно не входят: они производная величина.
func IsMacroCategory(value MacroCategory) bool {
	switch value {
	case MacroProtein, MacroCarbs, MacroFat:
		return true
	default:
		return false
	}
}

type MacroSet struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// Add возвращает покомпонентную сумму двух наборов макросов.
func (m MacroSet) Add(other MacroSet) MacroSet {
	return MacroSet{
		Calories: m.Calories + other.Calories,
		ProteinG: m.ProteinG + other.ProteinG,
		CarbsG:   m.CarbsG + other.CarbsG,
		FatG:     m.FatG + other.FatG,
	}
}

// Sub возвращает покомпонентную разность. Отрицательные значения не
// обрезаются: перерасход бюджета несет смысл для потребителей.
func (m MacroSet) Sub(other MacroSet) MacroSet {
	return MacroSet{
		Calories: m.Calories - other.Calories,
		ProteinG: m.ProteinG - other.ProteinG,
		CarbsG:   m.CarbsG - other.CarbsG,
		FatG:     m.FatG - other.FatG,
	}
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Profile struct {
	UserID              uuid.UUID  `json:"user_id"`
	Goal                *string    `json:"goal,omitempty"`
	Sex                 *string    `json:"sex,omitempty"`
	BirthDate           *time.Time `json:"birth_date,omitempty"`
	HeightCM            *float64   `json:"height_cm,omitempty"`
	WeightKG            *float64   `json:"weight_kg,omitempty"`
	ActivityLevel       *string    `json:"activity_level,omitempty"`
	DietaryRestrictions []string   `json:"dietary_restrictions,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type DailyTargets struct {
	UserID    uuid.UUID `json:"user_id"`
	Date      time.Time `json:"date"`
	Macros    MacroSet  `json:"macros"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

type LoggedMeal struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Slot      MealSlot  `json:"slot"`
	Name      string    `json:"name"`
	Macros    MacroSet  `json:"macros"`
	LoggedAt  time.Time `json:"logged_at"`
	CreatedAt time.Time `json:"created_at"`
}

type PlanSlot struct {
	UserID    uuid.UUID `json:"user_id"`
	Date      time.Time `json:"date"`
	Slot      MealSlot  `json:"slot"`
	Macros    MacroSet  `json:"macros"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SwapRecord struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	Date      time.Time     `json:"date"`
	FromSlot  MealSlot      `json:"from_slot"`
	ToSlot    MealSlot      `json:"to_slot"`
	Category  MacroCategory `json:"category"`
	AmountG   float64       `json:"amount_g"`
	CreatedAt time.Time     `json:"created_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}
