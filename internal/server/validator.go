package server

import (
	"github.com/go-playground/validator/v10"

	"example.com/macro-meal-planner/backend/internal/models"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator создает валидатор на базе go-playground/validator
// с доменными проверками слота и категории макронутриента.
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("meal_slot", func(fl validator.FieldLevel) bool {
		return models.IsMealSlot(models.MealSlot(fl.Field().String()))
	})
	_ = v.RegisterValidation("macro_category", func(fl validator.FieldLevel) bool {
		return models.IsMacroCategory(models.MacroCategory(fl.Field().String()))
	})

	return &CustomValidator{validator: v}
}

// Validate запускает проверку структуры по тегам.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
