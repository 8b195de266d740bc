package server

import (
	"github.com/labstack/echo/v4"

	"example.com/macro-meal-planner/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	budgetHandler *handlers.BudgetHandler,
	mealHandler *handlers.MealHandler,
	recommendHandler *handlers.RecommendHandler,
	swapHandler *handlers.SwapHandler,
	profileHandler *handlers.ProfileHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	aiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")

	authGroup := api.Group("/auth", authRateLimiter)
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	budget := api.Group("/budget", authMiddleware)
	budget.GET("/remaining", budgetHandler.Remaining)
	budget.GET("/daily", budgetHandler.Daily)
	budget.PUT("/targets", budgetHandler.SetTargets)

	meals := api.Group("/meals", authMiddleware)
	meals.POST("", mealHandler.Create)
	meals.GET("", mealHandler.List)
	meals.PUT("/:id", mealHandler.Update)
	meals.DELETE("/:id", mealHandler.Delete)

	swaps := api.Group("/swap", authMiddleware)
	swaps.POST("", swapHandler.Apply)
	swaps.GET("/status", swapHandler.Status)

	profile := api.Group("/profile", authMiddleware)
	profile.GET("", profileHandler.Get)
	profile.PUT("", profileHandler.Update)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)

	aiGroup := api.Group("/ai", authMiddleware, aiRateLimiter)
	aiGroup.POST("/recommend", recommendHandler.Recommend)
}
