package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/handler"
	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
)

func SetupThreadRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	threadHandler := handler.GetThreadHandler()

	threads := e.Group("/v1/threads")
	threads.Use(authMiddleware.Authenticate)
	threads.GET("/:surface", threadHandler.ListInbox)
	threads.GET("/:surface/:id", threadHandler.Open)
	threads.GET("/:surface/:id/messages", threadHandler.ListMessages)
	threads.POST("/:surface/:id/messages", threadHandler.Send)
	threads.POST("/:surface/:id/read", threadHandler.MarkRead)
	threads.POST("/support/:id/release", threadHandler.Release)
}
