package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/macro-meal-planner/backend/internal/auth"
	"example.com/macro-meal-planner/backend/internal/models"
	"example.com/macro-meal-planner/backend/internal/notifications"
	"example.com/macro-meal-planner/backend/internal/repository"
	"example.com/macro-meal-planner/backend/internal/swap"
)

// swapAttempts ограничивает повторы переноса при конфликте транзакций.
const swapAttempts = 3

type SwapHandler struct {
	Swaps *repository.SwapRepository
	Hub   *notifications.Hub
}

// NewSwapHandler создает обработчик переносов между слотами.
func NewSwapHandler(swaps *repository.SwapRepository, hub *notifications.Hub) *SwapHandler {
	return &SwapHandler{Swaps: swaps, Hub: hub}
}

type SwapRequest struct {
	Date     string               `json:"date"`
	FromSlot models.MealSlot      `json:"from_slot" validate:"required,meal_slot"`
	ToSlot   models.MealSlot      `json:"to_slot" validate:"required,meal_slot"`
	Category models.MacroCategory `json:"category" validate:"required,macro_category"`
	AmountG  float64              `json:"amount_g" validate:"required,gt=0"`
}

type SwapResponse struct {
	Swap  models.SwapRecord `json:"swap"`
	Slots []models.PlanSlot `json:"slots"`
}

type SwapStatusResponse struct {
	Date  string              `json:"date"`
	Slots []models.PlanSlot   `json:"slots"`
	Swaps []models.SwapRecord `json:"swaps"`
}

// Apply переносит граммы макронутриента между слотами.
// Конфликт с конкурирующим переносом того же дня разрешается повтором,
// после исчерпания попыток клиент получает 409.
func (h *SwapHandler) Apply(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req SwapRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.FromSlot == req.ToSlot {
		return badRequest(c, "from_slot and to_slot must differ")
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return badRequest(c, "invalid date, expected YYYY-MM-DD")
		}
		date = parsed
	}

	var record models.SwapRecord
	var slots []models.PlanSlot
	var err error

	for attempt := 1; attempt <= swapAttempts; attempt++ {
		record, slots, err = h.Swaps.Apply(c.Request().Context(), userID, date, req.FromSlot, req.ToSlot, req.Category, req.AmountG)
		if err == nil || !repository.IsRetryable(err) {
			break
		}
		slog.Warn("swap conflicted, retrying",
			"user_id", userID,
			"attempt", attempt,
			"error", err,
		)
	}

	if err != nil {
		switch {
		case errors.Is(err, swap.ErrInsufficientAmount):
			// Текст ошибки несет точную нехватку ("have X g, need Y g").
			return conflict(c, err.Error())
		case errors.Is(err, swap.ErrInvalidAmount), errors.Is(err, swap.ErrUnknownCategory), errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "invalid swap request")
		case repository.IsRetryable(err):
			return conflict(c, "swap conflicts with a concurrent change, try again")
		case errors.Is(err, repository.ErrConsistency):
			slog.Error("swap consistency check failed", "user_id", userID, "error", err)
			return serverError(c)
		default:
			return serverError(c)
		}
	}

	publishSwapApplied(h.Hub, userID, record)

	return c.JSON(http.StatusOK, SwapResponse{Swap: record, Slots: slots})
}

// Status возвращает текущие строки плана и историю переносов за день.
func (h *SwapHandler) Status(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	date, err := queryDate(c)
	if err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	slots, err := h.Swaps.ListSlots(c.Request().Context(), userID, date)
	if err != nil {
		return serverError(c)
	}

	swaps, err := h.Swaps.ListSwaps(c.Request().Context(), userID, date)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, SwapStatusResponse{
		Date:  date.Format(dateLayout),
		Slots: slots,
		Swaps: swaps,
	})
}
