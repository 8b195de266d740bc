package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/macro-meal-planner/backend/internal/auth"
	"example.com/macro-meal-planner/backend/internal/models"
	"example.com/macro-meal-planner/backend/internal/repository"
)

type ProfileHandler struct {
	Targets *repository.TargetsRepository
}

// NewProfileHandler создает обработчик профиля питания.
func NewProfileHandler(targets *repository.TargetsRepository) *ProfileHandler {
	return &ProfileHandler{Targets: targets}
}

type ProfileRequest struct {
	Goal                *string  `json:"goal" validate:"omitempty,oneof=lose_weight maintain gain_muscle"`
	Sex                 *string  `json:"sex" validate:"omitempty,oneof=male female"`
	BirthDate           *string  `json:"birth_date"`
	HeightCM            *float64 `json:"height_cm" validate:"omitempty,gt=0,lte=300"`
	WeightKG            *float64 `json:"weight_kg" validate:"omitempty,gt=0,lte=500"`
	ActivityLevel       *string  `json:"activity_level" validate:"omitempty,oneof=sedentary light moderate active very_active"`
	DietaryRestrictions []string `json:"dietary_restrictions" validate:"omitempty,dive,max=100"`
}

type ProfileResponse struct {
	Profile models.Profile `json:"profile"`
}

// Get возвращает профиль текущего пользователя.
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	profile, err := h.Targets.GetProfile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, ProfileResponse{Profile: models.Profile{UserID: userID}})
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, ProfileResponse{Profile: profile})
}

// Update сохраняет профиль целиком.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProfileRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	var birthDate *time.Time
	if req.BirthDate != nil {
		parsed, err := time.Parse(dateLayout, *req.BirthDate)
		if err != nil {
			return badRequest(c, "invalid birth_date, expected YYYY-MM-DD")
		}
		if parsed.After(time.Now().UTC()) {
			return badRequest(c, "birth_date is in the future")
		}
		birthDate = &parsed
	}

	profile, err := h.Targets.UpsertProfile(c.Request().Context(), models.Profile{
		UserID:              userID,
		Goal:                req.Goal,
		Sex:                 req.Sex,
		BirthDate:           birthDate,
		HeightCM:            req.HeightCM,
		WeightKG:            req.WeightKG,
		ActivityLevel:       req.ActivityLevel,
		DietaryRestrictions: req.DietaryRestrictions,
	})
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, ProfileResponse{Profile: profile})
}
