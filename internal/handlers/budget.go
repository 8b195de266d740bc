package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/macro-meal-planner/backend/internal/auth"
	"example.com/macro-meal-planner/backend/internal/ledger"
	"example.com/macro-meal-planner/backend/internal/models"
	"example.com/macro-meal-planner/backend/internal/repository"
)

const dateLayout = "2006-01-02"

type BudgetHandler struct {
	Ledger  *ledger.Service
	Targets *repository.TargetsRepository
}

// NewBudgetHandler создает обработчик дневного бюджета.
func NewBudgetHandler(ledgerService *ledger.Service, targets *repository.TargetsRepository) *BudgetHandler {
	return &BudgetHandler{Ledger: ledgerService, Targets: targets}
}

type SlotBudgetResponse struct {
	Date      string          `json:"date"`
	Slot      models.MealSlot `json:"slot"`
	Allocated models.MacroSet `json:"allocated"`
	Consumed  models.MacroSet `json:"consumed"`
	Remaining models.MacroSet `json:"remaining"`
}

type RemainingResponse struct {
	Date  string               `json:"date"`
	Slots []SlotBudgetResponse `json:"slots"`
}

type DailyBudgetResponse struct {
	Date      string               `json:"date"`
	Targets   models.MacroSet      `json:"targets"`
	IsDefault bool                 `json:"is_default"`
	Slots     []SlotBudgetResponse `json:"slots"`
	Consumed  models.MacroSet      `json:"consumed"`
	Remaining models.MacroSet      `json:"remaining"`
}

type TargetsResponse struct {
	Date    string          `json:"date"`
	Targets models.MacroSet `json:"targets"`
}

type SetTargetsRequest struct {
	Date     string  `json:"date" validate:"required"`
	Calories int     `json:"calories" validate:"required,gt=0"`
	ProteinG float64 `json:"protein_g" validate:"required,gt=0"`
	CarbsG   float64 `json:"carbs_g" validate:"required,gt=0"`
	FatG     float64 `json:"fat_g" validate:"required,gt=0"`
}

// Remaining возвращает остаток бюджета по слотам. Без параметра slot
// отдаются все слоты дня, иначе только указанный.
func (h *BudgetHandler) Remaining(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	date, err := queryDate(c)
	if err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	if raw := strings.TrimSpace(c.QueryParam("slot")); raw != "" {
		slot := models.MealSlot(raw)
		if !models.IsMealSlot(slot) {
			return badRequest(c, "invalid slot")
		}

		sb, err := h.Ledger.RemainingForSlot(c.Request().Context(), userID, date, slot)
		if err != nil {
			return serverError(c)
		}

		return c.JSON(http.StatusOK, RemainingResponse{
			Date:  date.Format(dateLayout),
			Slots: []SlotBudgetResponse{toSlotBudgetResponse(date, sb)},
		})
	}

	summary, err := h.Ledger.DailyTotals(c.Request().Context(), userID, date)
	if err != nil {
		return serverError(c)
	}

	response := RemainingResponse{
		Date:  date.Format(dateLayout),
		Slots: make([]SlotBudgetResponse, 0, len(summary.Slots)),
	}
	for _, sb := range summary.Slots {
		response.Slots = append(response.Slots, toSlotBudgetResponse(date, sb))
	}

	return c.JSON(http.StatusOK, response)
}

// Daily возвращает бюджет всех слотов дня.
func (h *BudgetHandler) Daily(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	date, err := queryDate(c)
	if err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	summary, err := h.Ledger.DailyTotals(c.Request().Context(), userID, date)
	if err != nil {
		return serverError(c)
	}

	response := DailyBudgetResponse{
		Date:      date.Format(dateLayout),
		Targets:   summary.Targets.Macros,
		IsDefault: summary.Targets.IsDefault,
		Slots:     make([]SlotBudgetResponse, 0, len(summary.Slots)),
		Consumed:  summary.Consumed,
		Remaining: summary.Remaining,
	}
	for _, sb := range summary.Slots {
		response.Slots = append(response.Slots, toSlotBudgetResponse(date, sb))
	}

	return c.JSON(http.StatusOK, response)
}

// SetTargets сохраняет явные цели на дату, перекрывая профиль.
func (h *BudgetHandler) SetTargets(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req SetTargetsRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return badRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	targets, err := h.Targets.Upsert(c.Request().Context(), models.DailyTargets{
		UserID: userID,
		Date:   date,
		Macros: models.MacroSet{
			Calories: req.Calories,
			ProteinG: req.ProteinG,
			CarbsG:   req.CarbsG,
			FatG:     req.FatG,
		},
	})
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, TargetsResponse{
		Date:    targets.Date.Format(dateLayout),
		Targets: targets.Macros,
	})
}

func toSlotBudgetResponse(date time.Time, sb ledger.SlotBudget) SlotBudgetResponse {
	return SlotBudgetResponse{
		Date:      date.Format(dateLayout),
		Slot:      sb.Slot,
		Allocated: sb.Allocated,
		Consumed:  sb.Consumed,
		Remaining: sb.Remaining,
	}
}

// queryDate читает параметр date, по умолчанию текущий день UTC.
func queryDate(c echo.Context) (time.Time, error) {
	value := strings.TrimSpace(c.QueryParam("date"))
	if value == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Parse(dateLayout, value)
}
