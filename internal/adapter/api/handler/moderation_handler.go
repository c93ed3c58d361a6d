package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
	"github.com/Elmalamb/vdm/internal/usecase"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/response"
)

type ModerationHandler struct {
	adUseCase *usecase.AdUseCase
}

func NewModerationHandler(adUseCase *usecase.AdUseCase) *ModerationHandler {
	return &ModerationHandler{
		adUseCase: adUseCase,
	}
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

func (h *ModerationHandler) ListAds(c echo.Context) error {
	ads, err := h.adUseCase.ListForModeration(c.Request().Context(), middleware.SessionFrom(c), c.QueryParam("status"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, ads)
}

func (h *ModerationHandler) SetStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ad, err := h.adUseCase.SetStatus(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), req.Status)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, ad)
}
