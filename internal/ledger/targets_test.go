package ledger

import (
	"testing"
	"time"

	"example.com/macro-meal-planner/backend/internal/models"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func fullProfile() models.Profile {
	birth := time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)
	return models.Profile{
		Sex:           strPtr("female"),
		BirthDate:     &birth,
		HeightCM:      floatPtr(165),
		WeightKG:      floatPtr(60),
		ActivityLevel: strPtr("light"),
		Goal:          strPtr("maintain"),
	}
}

// TestDeriveTargetsFemale проверяет формулу для женского профиля.
func TestDeriveTargetsFemale(t *testing.T) {
	now := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)

	macros, isDefault := DeriveTargets(fullProfile(), 2000, now)
	if isDefault {
		t.Fatal("isDefault = true for complete profile")
	}

	// BMR = 10*60 + 6.25*165 - 5*36 - 161 = 1290.25; TDEE = 1290.25*1.375 ~ 1774.
	if macros.Calories != 1774 {
		t.Errorf("Calories = %d, want 1774", macros.Calories)
	}
}

// TestDeriveTargetsGoalAdjustment проверяет поправку на цель.
func TestDeriveTargetsGoalAdjustment(t *testing.T) {
	now := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)

	profile := fullProfile()
	profile.Goal = strPtr("lose_weight")
	losing, _ := DeriveTargets(profile, 2000, now)

	profile.Goal = strPtr("gain_muscle")
	gaining, _ := DeriveTargets(profile, 2000, now)

	if gaining.Calories-losing.Calories != 800 {
		t.Errorf("gain-lose delta = %d, want 800", gaining.Calories-losing.Calories)
	}
}

// TestDeriveTargetsIncompleteProfile проверяет запасной вариант.
func TestDeriveTargetsIncompleteProfile(t *testing.T) {
	profile := fullProfile()
	profile.WeightKG = nil

	macros, isDefault := DeriveTargets(profile, 1800, time.Now())
	if !isDefault {
		t.Fatal("isDefault = false for incomplete profile")
	}
	if macros.Calories != 1800 {
		t.Errorf("Calories = %d, want 1800", macros.Calories)
	}
}

// TestDeriveTargetsUnknownActivity проверяет неизвестный уровень активности.
func TestDeriveTargetsUnknownActivity(t *testing.T) {
	profile := fullProfile()
	profile.ActivityLevel = strPtr("couch")

	_, isDefault := DeriveTargets(profile, 2000, time.Now())
	if !isDefault {
		t.Fatal("isDefault = false for unknown activity level")
	}
}

// TestAgeYearsBirthdayBoundary проверяет возраст до и после дня рождения.
func TestAgeYearsBirthdayBoundary(t *testing.T) {
	birth := time.Date(2000, 5, 10, 0, 0, 0, 0, time.UTC)

	if got := ageYears(birth, time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC)); got != 25 {
		t.Errorf("ageYears before birthday = %d, want 25", got)
	}
	if got := ageYears(birth, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)); got != 26 {
		t.Errorf("ageYears on birthday = %d, want 26", got)
	}
}
