package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/pkg/errors"
)

func TestSignUpThenSignInRequiresVerification(t *testing.T) {
	f := newFixture(t)
	creds := map[string]string{"email": "new@x.fr", "password": "secret1"}

	rec := f.do(t, http.MethodPost, "/v1/auth/signup", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/v1/auth/signup", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/auth/signin", "", creds)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	res := envelope(t, rec, nil)
	require.NotNil(t, res.Error)
	assert.Equal(t, errors.CodeUnverified, res.Error.Code)
}

func TestSignUp_Validation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{"email": "nope", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	res := envelope(t, rec, nil)
	assert.Equal(t, errors.CodeValidation, res.Error.Code)
	assert.Equal(t, "email must be a valid email address", res.Error.Message)

	rec = f.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]string{"email": "a@b.fr", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/auth/signin", "", map[string]string{"email": "seller@x.fr", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var auth authResponse
	envelope(t, rec, &auth)
	assert.Equal(t, "token-U1", auth.Token)
	assert.Equal(t, "U1", auth.User.ID)

	rec = f.do(t, http.MethodPost, "/v1/auth/signin", "", map[string]string{"email": "seller@x.fr", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeAndSignOut(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/auth/me", "M1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var session entity.Session
	envelope(t, rec, &session)
	assert.Equal(t, "M1", session.UID)
	assert.True(t, session.IsModerator())

	rec = f.do(t, http.MethodGet, "/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/auth/signout", "U1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"U1"}, f.identity.Revoked)
}
