package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/handler"
	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
	"github.com/Elmalamb/vdm/internal/infrastructure/ratelimit"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, relayLimiter *ratelimit.RateLimiter, wsHandler *handler.WebSocketHandler) {
	SetupHealthRouter(e)
	SetupAuthRouter(e, authMiddleware)
	SetupAdRouter(e, authMiddleware)
	SetupModerationRouter(e, authMiddleware)
	SetupThreadRouter(e, authMiddleware)
	SetupFunctionRouter(e, authMiddleware, relayLimiter)
	SetupWebSocketRouter(e, wsHandler)
}
