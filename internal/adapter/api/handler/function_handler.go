package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
	"github.com/Elmalamb/vdm/internal/usecase"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/response"
)

// FunctionHandler serves the callable endpoints under /v1/functions. Bodies
// are wrapped as {"data": {...}} and answered as {"result": {...}} or
// {"error": {"status", "message"}}.
type FunctionHandler struct {
	adUseCase    *usecase.AdUseCase
	relayUseCase *usecase.RelayUseCase
}

func NewFunctionHandler(adUseCase *usecase.AdUseCase, relayUseCase *usecase.RelayUseCase) *FunctionHandler {
	return &FunctionHandler{
		adUseCase:    adUseCase,
		relayUseCase: relayUseCase,
	}
}

type deleteAdRequest struct {
	Data struct {
		AdID string `json:"adId"`
	} `json:"data"`
}

type visitorMessageRequest struct {
	Data usecase.VisitorMessageInput `json:"data"`
}

func (h *FunctionHandler) DeleteAd(c echo.Context) error {
	var req deleteAdRequest
	if err := c.Bind(&req); err != nil {
		return response.FunctionErr(c, errors.BadRequest("The request body is malformed.", err))
	}

	if err := h.adUseCase.DeleteAd(c.Request().Context(), middleware.SessionFrom(c), req.Data.AdID); err != nil {
		return response.FunctionErr(c, err)
	}
	return response.FunctionResult(c, map[string]bool{"success": true})
}

func (h *FunctionHandler) SendVisitorMessage(c echo.Context) error {
	var req visitorMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.FunctionErr(c, errors.BadRequest("The request body is malformed.", err))
	}

	result, err := h.relayUseCase.SendVisitorMessage(c.Request().Context(), req.Data)
	if err != nil {
		return response.FunctionErr(c, err)
	}
	return response.FunctionResult(c, result)
}
