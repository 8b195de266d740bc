package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/macro-meal-planner/backend/internal/auth"
	"example.com/macro-meal-planner/backend/internal/ledger"
	"example.com/macro-meal-planner/backend/internal/models"
	"example.com/macro-meal-planner/backend/internal/repository"
	"example.com/macro-meal-planner/backend/internal/suggest"
)

type RecommendHandler struct {
	Suggest *suggest.Service
	Ledger  *ledger.Service
	Targets *repository.TargetsRepository
}

// NewRecommendHandler создает обработчик рекомендаций блюд.
func NewRecommendHandler(suggestService *suggest.Service, ledgerService *ledger.Service, targets *repository.TargetsRepository) *RecommendHandler {
	return &RecommendHandler{Suggest: suggestService, Ledger: ledgerService, Targets: targets}
}

type RecommendRequest struct {
	Date string          `json:"date"`
	Slot models.MealSlot `json:"slot" validate:"required,meal_slot"`
}

type RecommendResponse struct {
	Date string `json:"date"`
	suggest.RecommendationSet
}

// Recommend подбирает блюда под остаток бюджета слота.
func (h *RecommendHandler) Recommend(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req RecommendRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return badRequest(c, "invalid date, expected YYYY-MM-DD")
		}
		date = parsed
	}

	sb, err := h.Ledger.RemainingForSlot(c.Request().Context(), userID, date, req.Slot)
	if err != nil {
		return serverError(c)
	}

	var restrictions []string
	profile, err := h.Targets.GetProfile(c.Request().Context(), userID)
	if err == nil {
		restrictions = profile.DietaryRestrictions
	} else if !errors.Is(err, repository.ErrNotFound) {
		return serverError(c)
	}

	set, err := h.Suggest.Recommend(c.Request().Context(), suggest.RecommendInput{
		UserID:              userID,
		Slot:                req.Slot,
		Remaining:           sb.Remaining,
		DietaryRestrictions: restrictions,
	})
	if err != nil {
		switch {
		case errors.Is(err, suggest.ErrInsufficientBudget):
			return conflict(c, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return c.NoContent(http.StatusRequestTimeout)
		default:
			return serverError(c)
		}
	}

	return c.JSON(http.StatusOK, RecommendResponse{
		Date:              date.Format(dateLayout),
		RecommendationSet: set,
	})
}
