package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/infrastructure/ratelimit"
	"github.com/Elmalamb/vdm/internal/testutil"
	"github.com/Elmalamb/vdm/internal/usecase"
	"github.com/Elmalamb/vdm/pkg/response"
)

func newAuth() *AuthMiddleware {
	users := testutil.NewUserRepository(&entity.User{ID: "M1", Email: "m@x.fr", Role: entity.RoleModerator})
	identity := testutil.NewIdentity(
		&testutil.Account{UID: "U1", Email: "u@x.fr", EmailVerified: true},
		&testutil.Account{UID: "M1", Email: "m@x.fr", EmailVerified: true},
	)
	return NewAuthMiddleware(usecase.NewAuthUseCase(users, identity, testutil.NewRoleCache()))
}

func serve(t *testing.T, token string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, *entity.Session) {
	t.Helper()
	e := echo.New()
	var seen *entity.Session
	h := func(c echo.Context) error {
		seen = SessionFrom(c)
		return c.NoContent(http.StatusNoContent)
	}
	e.GET("/", h, mw...)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthenticate(t *testing.T) {
	auth := newAuth()

	rec, session := serve(t, "Bearer "+testutil.Token("U1"), auth.Authenticate)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, session)
	assert.Equal(t, "U1", session.UID)

	rec, _ = serve(t, "", auth.Authenticate)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, "Token abc", auth.Authenticate)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve(t, "Bearer bogus", auth.Authenticate)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth(t *testing.T) {
	auth := newAuth()

	rec, session := serve(t, "Bearer bogus", auth.OptionalAuth)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, session)

	_, session = serve(t, "Bearer "+testutil.Token("U1"), auth.OptionalAuth)
	require.NotNil(t, session)
	assert.Equal(t, "U1", session.UID)
}

func TestModeratorOnly(t *testing.T) {
	auth := newAuth()

	rec, _ := serve(t, "Bearer "+testutil.Token("M1"), auth.Authenticate, ModeratorOnly)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = serve(t, "Bearer "+testutil.Token("U1"), auth.Authenticate, ModeratorOnly)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimitByIP(t *testing.T) {
	limiter := ratelimit.NewRateLimiter(2)
	mw := RateLimitByIP(limiter, "test", response.Error)

	for i := 0; i < 2; i++ {
		rec, _ := serve(t, "", mw)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec, _ := serve(t, "", mw)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
