package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/macro-meal-planner/backend/internal/auth"
	"example.com/macro-meal-planner/backend/internal/ledger"
	"example.com/macro-meal-planner/backend/internal/models"
	"example.com/macro-meal-planner/backend/internal/notifications"
	"example.com/macro-meal-planner/backend/internal/repository"
)

type MealHandler struct {
	Meals  *repository.MealRepository
	Ledger *ledger.Service
	Hub    *notifications.Hub
}

// NewMealHandler создает обработчик записанных приемов пищи.
func NewMealHandler(meals *repository.MealRepository, ledgerService *ledger.Service, hub *notifications.Hub) *MealHandler {
	return &MealHandler{Meals: meals, Ledger: ledgerService, Hub: hub}
}

type MealRequest struct {
	Slot     models.MealSlot `json:"slot" validate:"required,meal_slot"`
	Name     string          `json:"name" validate:"required,max=200"`
	Calories int             `json:"calories" validate:"gte=0"`
	ProteinG float64         `json:"protein_g" validate:"gte=0"`
	CarbsG   float64         `json:"carbs_g" validate:"gte=0"`
	FatG     float64         `json:"fat_g" validate:"gte=0"`
	LoggedAt *time.Time      `json:"logged_at"`
}

type MealResponse struct {
	Meal models.LoggedMeal `json:"meal"`
}

type MealListResponse struct {
	Date  string              `json:"date"`
	Meals []models.LoggedMeal `json:"meals"`
}

// Create записывает прием пищи.
func (h *MealHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	req, err := bindMealRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	loggedAt := time.Now().UTC()
	if req.LoggedAt != nil {
		loggedAt = req.LoggedAt.UTC()
	}

	meal, err := h.Meals.Create(c.Request().Context(), models.LoggedMeal{
		ID:     uuid.New(),
		UserID: userID,
		Slot:   req.Slot,
		Name:   strings.TrimSpace(req.Name),
		Macros: models.MacroSet{
			Calories: req.Calories,
			ProteinG: req.ProteinG,
			CarbsG:   req.CarbsG,
			FatG:     req.FatG,
		},
		LoggedAt: loggedAt,
	})
	if err != nil {
		return serverError(c)
	}

	h.notifyBudgetChange(c, userID, loggedAt, meal.Slot)

	return c.JSON(http.StatusCreated, MealResponse{Meal: meal})
}

// List возвращает приемы пищи за день.
func (h *MealHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	date, err := queryDate(c)
	if err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	meals, err := h.Meals.ListByDate(c.Request().Context(), userID, date)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, MealListResponse{
		Date:  date.Format(dateLayout),
		Meals: meals,
	})
}

// Update изменяет прием пищи.
func (h *MealHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	mealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid meal id")
	}

	req, err := bindMealRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.Meals.GetByID(c.Request().Context(), userID, mealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "meal not found")
		}
		return serverError(c)
	}

	loggedAt := existing.LoggedAt
	if req.LoggedAt != nil {
		loggedAt = req.LoggedAt.UTC()
	}

	meal, err := h.Meals.Update(c.Request().Context(), models.LoggedMeal{
		ID:     mealID,
		UserID: userID,
		Slot:   req.Slot,
		Name:   strings.TrimSpace(req.Name),
		Macros: models.MacroSet{
			Calories: req.Calories,
			ProteinG: req.ProteinG,
			CarbsG:   req.CarbsG,
			FatG:     req.FatG,
		},
		LoggedAt: loggedAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "meal not found")
		}
		return serverError(c)
	}

	h.notifyBudgetChange(c, userID, loggedAt, meal.Slot)
	if existing.Slot != meal.Slot {
		h.notifyBudgetChange(c, userID, existing.LoggedAt, existing.Slot)
	}

	return c.JSON(http.StatusOK, MealResponse{Meal: meal})
}

// Delete удаляет прием пищи.
func (h *MealHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	mealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid meal id")
	}

	existing, err := h.Meals.GetByID(c.Request().Context(), userID, mealID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "meal not found")
		}
		return serverError(c)
	}

	if err := h.Meals.Delete(c.Request().Context(), userID, mealID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "meal not found")
		}
		return serverError(c)
	}

	h.notifyBudgetChange(c, userID, existing.LoggedAt, existing.Slot)

	return c.NoContent(http.StatusNoContent)
}

func bindMealRequest(c echo.Context) (MealRequest, error) {
	var req MealRequest
	err := bindValid(c, &req)
	return req, err
}

func (h *MealHandler) notifyBudgetChange(c echo.Context, userID uuid.UUID, loggedAt time.Time, slot models.MealSlot) {
	date := time.Date(loggedAt.Year(), loggedAt.Month(), loggedAt.Day(), 0, 0, 0, 0, time.UTC)

	sb, err := h.Ledger.RemainingForSlot(c.Request().Context(), userID, date, slot)
	if err != nil {
		return
	}

	publishBudgetUpdate(h.Hub, userID, date.Format(dateLayout), slot, sb.Remaining)
}
