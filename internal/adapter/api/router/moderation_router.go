package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/handler"
	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
)

func SetupModerationRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	moderationHandler := handler.GetModerationHandler()

	moderation := e.Group("/v1/moderation")
	moderation.Use(authMiddleware.Authenticate)
	moderation.Use(middleware.ModeratorOnly)
	moderation.GET("/ads", moderationHandler.ListAds)
	moderation.PUT("/ads/:id/status", moderationHandler.SetStatus)
}
