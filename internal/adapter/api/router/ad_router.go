package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/handler"
	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
)

func SetupAdRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	adHandler := handler.GetAdHandler()
	threadHandler := handler.GetThreadHandler()

	e.GET("/v1/ads", adHandler.ListAds)
	e.GET("/v1/ads/:id", adHandler.GetAd, authMiddleware.OptionalAuth)

	myAds := e.Group("/v1/my-ads")
	myAds.Use(authMiddleware.Authenticate)
	myAds.GET("", adHandler.ListMyAds)
	myAds.POST("", adHandler.SubmitAd)
	myAds.PUT("/:id", adHandler.UpdateAd)

	e.POST("/v1/ads/:id/conversations", threadHandler.StartConversation, authMiddleware.Authenticate)
}
