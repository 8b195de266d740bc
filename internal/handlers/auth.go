package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/macro-meal-planner/backend/internal/auth"
	"example.com/macro-meal-planner/backend/internal/models"
	"example.com/macro-meal-planner/backend/internal/repository"
)

// errRefreshRejected помечает refresh-токен, не прошедший проверку:
// просроченный, отозванный или не совпавший по хешу.
var errRefreshRejected = errors.New("refresh token rejected")

type AuthHandler struct {
	Users        *repository.UserRepository
	Tokens       *repository.RefreshTokenRepository
	TokenManager *auth.TokenManager
}

// NewAuthHandler создает обработчик авторизации.
func NewAuthHandler(users *repository.UserRepository, tokens *repository.RefreshTokenRepository, manager *auth.TokenManager) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens, TokenManager: manager}
}

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     *string `json:"name" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  *string   `json:"name,omitempty"`
}

type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         AuthUser `json:"user"`
}

type UserResponse struct {
	User AuthUser `json:"user"`
}

// Register регистрирует пользователя и открывает сессию.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	passwordHash, err := auth.HashPassword(strings.TrimSpace(req.Password))
	if err != nil {
		return serverError(c)
	}

	user, err := h.Users.Create(c.Request().Context(), normalizeEmail(req.Email), passwordHash, normalizeName(req.Name))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "user already exists")
		}
		return serverError(c)
	}

	response, err := h.openSession(c.Request().Context(), user, nil)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, response)
}

// Login проверяет пароль и открывает сессию.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.Users.GetByEmail(c.Request().Context(), normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	if err = auth.ComparePassword(user.PasswordHash, strings.TrimSpace(req.Password)); err != nil {
		return unauthorized(c)
	}

	response, err := h.openSession(c.Request().Context(), user, nil)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, response)
}

// Refresh обменивает refresh-токен на новую пару, отзывая старый.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	stored, userID, err := h.verifyRefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, errRefreshRejected) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	user, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	response, err := h.openSession(c.Request().Context(), user, &stored.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, response)
}

// Logout отзывает refresh-токен. Повторный выход идемпотентен.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := bindValid(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	claims, err := h.TokenManager.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return unauthorized(c)
	}

	refreshID, err := uuid.Parse(claims.ID)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.Tokens.Revoke(c.Request().Context(), refreshID, nil); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// Me возвращает данные текущего пользователя.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, UserResponse{User: toAuthUser(user)})
}

// openSession выдает пару токенов и сохраняет refresh-токен. Если
// передан rotateFrom, старый токен атомарно отзывается вместе с
// записью нового.
func (h *AuthHandler) openSession(ctx context.Context, user models.User, rotateFrom *uuid.UUID) (AuthResponse, error) {
	refreshID := uuid.New()
	pair, err := h.TokenManager.NewTokenPair(user.ID, refreshID)
	if err != nil {
		return AuthResponse{}, err
	}

	refreshToken := models.RefreshToken{
		ID:        refreshID,
		UserID:    user.ID,
		TokenHash: auth.HashToken(pair.RefreshToken),
		ExpiresAt: pair.RefreshExpiresAt,
	}

	if rotateFrom != nil {
		err = h.Tokens.Rotate(ctx, *rotateFrom, refreshToken)
	} else {
		err = h.Tokens.Create(ctx, refreshToken)
	}
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toAuthUser(user),
	}, nil
}

func (h *AuthHandler) verifyRefreshToken(ctx context.Context, token string) (models.RefreshToken, uuid.UUID, error) {
	claims, err := h.TokenManager.ParseRefreshToken(token)
	if err != nil {
		return models.RefreshToken{}, uuid.Nil, errRefreshRejected
	}

	refreshID, err := uuid.Parse(claims.ID)
	if err != nil {
		return models.RefreshToken{}, uuid.Nil, errRefreshRejected
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.RefreshToken{}, uuid.Nil, errRefreshRejected
	}

	stored, err := h.Tokens.GetByID(ctx, refreshID)
	if err != nil {
		return models.RefreshToken{}, uuid.Nil, err
	}

	if stored.RevokedAt != nil || time.Now().After(stored.ExpiresAt) || stored.UserID != userID {
		return models.RefreshToken{}, uuid.Nil, errRefreshRejected
	}

	if !auth.CompareTokenHash(stored.TokenHash, token) {
		return models.RefreshToken{}, uuid.Nil, errRefreshRejected
	}

	return stored, userID, nil
}

func toAuthUser(user models.User) AuthUser {
	return AuthUser{ID: user.ID, Email: user.Email, Name: user.Name}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name *string) *string {
	if name == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
