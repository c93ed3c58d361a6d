package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/handler"
	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	authHandler := handler.GetAuthHandler()

	e.POST("/v1/auth/signup", authHandler.SignUp)
	e.POST("/v1/auth/signin", authHandler.SignIn)

	protected := e.Group("/v1/auth")
	protected.Use(authMiddleware.Authenticate)
	protected.POST("/signout", authHandler.SignOut)
	protected.GET("/me", authHandler.Me)
}
