package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

// bindValid привязывает тело запроса и прогоняет его через валидатор.
// Текст ошибки безопасен для отдачи клиенту.
func bindValid(c echo.Context, target interface{}) error {
	if err := c.Bind(target); err != nil {
		return errors.New("invalid payload")
	}
	if err := c.Validate(target); err != nil {
		return errors.New("validation failed")
	}

	return nil
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, errorResponse{Error: message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: message})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
