package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/handler"
	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
	"github.com/Elmalamb/vdm/internal/infrastructure/ratelimit"
	"github.com/Elmalamb/vdm/pkg/response"
)

// SetupFunctionRouter mounts the callable functions. deleteAd reports its
// own authentication errors, so it only gets an optional session.
func SetupFunctionRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, relayLimiter *ratelimit.RateLimiter) {
	functionHandler := handler.GetFunctionHandler()

	functions := e.Group("/v1/functions")
	functions.POST("/deleteAd", functionHandler.DeleteAd, authMiddleware.OptionalAuth)
	functions.POST("/sendVisitorMessage", functionHandler.SendVisitorMessage,
		middleware.RateLimitByIP(relayLimiter, "sendVisitorMessage", response.FunctionErr))
}
