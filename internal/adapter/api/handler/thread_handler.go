package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
	"github.com/Elmalamb/vdm/internal/domain/entity"
	"github.com/Elmalamb/vdm/internal/usecase"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/response"
)

// ThreadHandler serves the three chat surfaces under /v1/threads/:surface.
type ThreadHandler struct {
	threadUseCase *usecase.ThreadUseCase
}

func NewThreadHandler(threadUseCase *usecase.ThreadUseCase) *ThreadHandler {
	return &ThreadHandler{
		threadUseCase: threadUseCase,
	}
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

func surfaceParam(c echo.Context) (entity.Surface, error) {
	surface, err := entity.ParseSurface(c.Param("surface"))
	if err != nil {
		return "", errors.BadRequest("Unknown chat surface", err)
	}
	return surface, nil
}

func (h *ThreadHandler) ListInbox(c echo.Context) error {
	surface, err := surfaceParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	views, err := h.threadUseCase.ListInbox(c.Request().Context(), middleware.SessionFrom(c), surface)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, views)
}

func (h *ThreadHandler) Open(c echo.Context) error {
	surface, err := surfaceParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	view, err := h.threadUseCase.Open(c.Request().Context(), middleware.SessionFrom(c), surface, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

func (h *ThreadHandler) ListMessages(c echo.Context) error {
	surface, err := surfaceParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	msgs, err := h.threadUseCase.ListMessages(c.Request().Context(), middleware.SessionFrom(c), surface, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, msgs)
}

func (h *ThreadHandler) Send(c echo.Context) error {
	surface, err := surfaceParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.threadUseCase.Send(c.Request().Context(), middleware.SessionFrom(c), usecase.SendInput{
		Surface: surface,
		ID:      c.Param("id"),
		Text:    req.Text,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, msg)
}

func (h *ThreadHandler) MarkRead(c echo.Context) error {
	surface, err := surfaceParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.threadUseCase.MarkRead(c.Request().Context(), middleware.SessionFrom(c), surface, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"read": true})
}

func (h *ThreadHandler) Release(c echo.Context) error {
	if err := h.threadUseCase.ReleaseAssignment(c.Request().Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"released": true})
}

// StartConversation sends a buyer's first message to the seller of an ad.
func (h *ThreadHandler) StartConversation(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.threadUseCase.StartConversation(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, msg)
}
