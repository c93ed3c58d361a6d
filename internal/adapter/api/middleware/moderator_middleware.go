package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/response"
)

// ModeratorOnly must run after Authenticate.
func ModeratorOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session := SessionFrom(c)
		if session == nil {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}
		if !session.EmailVerified {
			return response.Error(c, errors.Unverified("Please verify your email address"))
		}
		if !session.IsModerator() {
			return response.Error(c, errors.Forbidden("Moderator privileges required", nil))
		}
		return next(c)
	}
}
