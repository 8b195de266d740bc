package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"example.com/macro-meal-planner/backend/internal/models"
)

// TestOrderSlots проверяет фиксированный порядок блокировки слотов.
func TestOrderSlots(t *testing.T) {
	first, second := orderSlots(models.MealSlotLunch, models.MealSlotBreakfast)
	if first != models.MealSlotBreakfast || second != models.MealSlotLunch {
		t.Errorf("orderSlots = %s, %s, want breakfast, lunch", first, second)
	}

	first, second = orderSlots(models.MealSlotDinner, models.MealSlotSnack)
	if first != models.MealSlotDinner || second != models.MealSlotSnack {
		t.Errorf("orderSlots = %s, %s, want dinner, snack", first, second)
	}
}

// TestIsRetryable проверяет распознавание конфликтов транзакций.
func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&pgconn.PgError{Code: "40001"}) {
		t.Error("serialization failure should be retryable")
	}
	if !IsRetryable(&pgconn.PgError{Code: "40P01"}) {
		t.Error("deadlock should be retryable")
	}
	if IsRetryable(&pgconn.PgError{Code: "23505"}) {
		t.Error("unique violation should not be retryable")
	}
	if IsRetryable(errors.New("plain error")) {
		t.Error("plain error should not be retryable")
	}
}
