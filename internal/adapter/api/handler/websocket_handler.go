package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Elmalamb/vdm/internal/adapter/api/middleware"
	"github.com/Elmalamb/vdm/internal/domain/entity"
	ws "github.com/Elmalamb/vdm/internal/infrastructure/websocket"
	"github.com/Elmalamb/vdm/internal/usecase"
	"github.com/Elmalamb/vdm/pkg/errors"
	"github.com/Elmalamb/vdm/pkg/logger"
	"github.com/Elmalamb/vdm/pkg/response"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
	threadUseCase  *usecase.ThreadUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware, threadUseCase *usecase.ThreadUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
		threadUseCase:  threadUseCase,
	}
}

// HandleWebSocket streams one conversation: GET /ws?surface=&id=&token=.
// Every change to the message log is pushed as a ThreadView frame.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := h.authMiddleware.ResolveToken(ctx, c.QueryParam("token"))
	if err != nil {
		return response.Error(c, err)
	}
	surface, err := entity.ParseSurface(c.QueryParam("surface"))
	if err != nil {
		return response.Error(c, errors.BadRequest("Unknown chat surface", err))
	}
	id := c.QueryParam("id")

	// Fail before upgrading when the caller cannot read the conversation.
	if err := h.threadUseCase.Authorize(ctx, session, surface, id); err != nil {
		return response.Error(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed for %s: %v", session.UID, err)
		return nil
	}

	client := ws.NewClient(uuid.New().String(), session.UID, string(surface)+"/"+id, conn)
	if !h.wsManager.Register(client) {
		conn.Close()
		return nil
	}

	watchCtx, cancel := context.WithCancel(h.wsManager.Context())
	go client.WritePump()
	go func() {
		client.ReadPump()
		cancel()
	}()

	// This goroutine is the only writer to client.Send and closes it once
	// the watch is over, which ends the WritePump.
	go func() {
		defer client.Close()
		defer h.wsManager.Unregister(client)
		defer cancel()

		err := h.threadUseCase.Watch(watchCtx, session, surface, id, func(view *usecase.ThreadView) error {
			frame, err := json.Marshal(view)
			if err != nil {
				return err
			}
			select {
			case client.Send <- frame:
			case <-watchCtx.Done():
				return watchCtx.Err()
			}
			return nil
		})
		if err != nil && watchCtx.Err() == nil {
			logger.Warn("Watch on %s/%s ended for %s: %v", surface, id, session.UID, err)
		}
	}()

	return nil
}
