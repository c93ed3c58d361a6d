package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/infrastructure/ratelimit"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/logger"
)

// RateLimitByIP throttles requests per client IP within scope. reject
// writes the refusal in the envelope of the protected endpoint.
func RateLimitByIP(limiter *ratelimit.RateLimiter, scope string, reject func(echo.Context, error) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			ok, retryAfter := limiter.Allow(scope + ":" + ip)
			if !ok {
				logger.Warn("Rate limit hit on %s for %s (retry in %v)", scope, ip, retryAfter)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				return reject(c, errors.TooManyRequests("Too many requests, please try again later"))
			}
			return next(c)
		}
	}
}
