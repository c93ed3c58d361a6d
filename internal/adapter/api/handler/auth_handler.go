package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
	"github.com/Elmalamb/vdm/internal/usecase"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

type authResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    string       `json:"expires_in"`
	User         userResponse `json:"user"`
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.authUseCase.SignUp(c.Request().Context(), usecase.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"user":    userResponse{ID: user.ID, Email: user.Email, Role: user.Role},
		"message": "Account created, check your inbox to verify your email address",
	})
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, authResponse{
		Token:        result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		User: userResponse{
			ID:            result.UID,
			Email:         result.Email,
			EmailVerified: result.EmailVerified,
		},
	})
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.authUseCase.SignOut(c.Request().Context(), middleware.SessionFrom(c)); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Successfully signed out",
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	session := middleware.SessionFrom(c)
	if session == nil {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}
	return response.Success(c, session)
}
