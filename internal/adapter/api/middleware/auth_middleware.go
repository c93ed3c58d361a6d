package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/response"
)

const (
	sessionKey = "session"
	uidKey     = "uid"
)

type SessionResolver interface {
	ResolveSession(ctx context.Context, idToken string) (*entity.Session, error)
}

type AuthMiddleware struct {
	resolver SessionResolver
}

func NewAuthMiddleware(resolver SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
	}
}

// Authenticate rejects requests without a valid bearer token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Error(c, errors.Unauthorized("Authorization header is required", nil))
		}

		idToken, ok := bearerToken(authHeader)
		if !ok {
			return response.Error(c, errors.Unauthorized("Invalid authorization format", nil))
		}

		session, err := m.resolver.ResolveSession(c.Request().Context(), idToken)
		if err != nil {
			return response.Error(c, err)
		}

		setSession(c, session)
		return next(c)
	}
}

// OptionalAuth attaches a session when a valid token is present and lets
// the request through as a visitor otherwise.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if idToken, ok := bearerToken(c.Request().Header.Get("Authorization")); ok {
			if session, err := m.resolver.ResolveSession(c.Request().Context(), idToken); err == nil {
				setSession(c, session)
			}
		}
		return next(c)
	}
}

// ResolveToken authenticates a raw token, for transports that cannot carry
// an Authorization header.
func (m *AuthMiddleware) ResolveToken(ctx context.Context, idToken string) (*entity.Session, error) {
	if idToken == "" {
		return nil, errors.Unauthorized("Authentication required", nil)
	}
	return m.resolver.ResolveSession(ctx, idToken)
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setSession(c echo.Context, session *entity.Session) {
	c.Set(sessionKey, session)
	c.Set(uidKey, session.UID)
}

// SessionFrom returns the caller's session, or nil for visitors.
func SessionFrom(c echo.Context) *entity.Session {
	session, _ := c.Get(sessionKey).(*entity.Session)
	return session
}
