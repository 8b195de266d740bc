package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/macro-meal-planner/backend/internal/auth"
	"example.com/macro-meal-planner/backend/internal/config"
	"example.com/macro-meal-planner/backend/internal/handlers"
	"example.com/macro-meal-planner/backend/internal/ledger"
	"example.com/macro-meal-planner/backend/internal/notifications"
	"example.com/macro-meal-planner/backend/internal/repository"
	"example.com/macro-meal-planner/backend/internal/suggest"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	mealRepo := repository.NewMealRepository(db)
	targetsRepo := repository.NewTargetsRepository(db)
	swapRepo := repository.NewSwapRepository(db)
	aiRepo := repository.NewAIRepository(db)
	notificationHub := notifications.NewHub()

	ledgerService := ledger.NewService(targetsRepo, targetsRepo, mealRepo, cfg.Planner)
	suggestService := suggest.NewService(buildProviderChain(cfg.AI), aiRepo)

	authHandler := handlers.NewAuthHandler(userRepo, tokenRepo, tokenManager)
	budgetHandler := handlers.NewBudgetHandler(ledgerService, targetsRepo)
	mealHandler := handlers.NewMealHandler(mealRepo, ledgerService, notificationHub)
	recommendHandler := handlers.NewRecommendHandler(suggestService, ledgerService, targetsRepo)
	swapHandler := handlers.NewSwapHandler(swapRepo, notificationHub)
	profileHandler := handlers.NewProfileHandler(targetsRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationHub)

	registerRoutes(
		e,
		authHandler,
		budgetHandler,
		mealHandler,
		recommendHandler,
		swapHandler,
		profileHandler,
		notificationHandler,
		auth.JWTMiddleware(tokenManager),
		rateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
		rateLimiter(cfg.AI.RateLimitPerMinute, cfg.AI.RateLimitBurst),
	)

	return e
}

// buildProviderChain создает цепочку AI-провайдеров в порядке из
// конфигурации. Неизвестные имена отбрасываются на этапе конфигурации.
func buildProviderChain(cfg config.AIConfig) *suggest.Chain {
	providers := make([]suggest.Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		var client suggest.Client
		switch pc.Name {
		case "gemini":
			client = suggest.NewGeminiClient(pc.APIKey, pc.BaseURL, pc.Model, cfg.Timeout, cfg.MaxOutputTokens)
		case "groq":
			client = suggest.NewGroqClient(pc.APIKey, pc.BaseURL, pc.Model, cfg.Timeout, cfg.MaxOutputTokens)
		default:
			continue
		}
		providers = append(providers, suggest.Provider{Name: pc.Name, Model: pc.Model, Client: client})
	}

	return suggest.NewChain(providers...)
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			logger.LogAttrs(c.Request().Context(), level, "request completed", attrs...)
			return nil
		},
	})
}

func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60.0),
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
