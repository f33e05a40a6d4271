package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edupath/edupath/internal/domain"
	"github.com/edupath/edupath/internal/middleware"
)

type createSessionRequest struct {
	Country string `json:"country"`
	// Restart forces a fresh session instead of resuming the latest one
	// for the country.
	Restart bool `json:"restart"`
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// CreateSession resolves the caller's session for a country.
// POST /api/chat/history
func (h *Handler) CreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, domain.ErrInvalidInput)
	}

	ctx := c.Request().Context()
	userID := middleware.UserID(c)

	var session *domain.ChatSession
	var err error
	if req.Restart {
		session, err = h.sessions.StartNew(ctx, userID, req.Country)
	} else {
		session, err = h.sessions.ResolveLatest(ctx, userID, req.Country)
	}
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]sessionJSON{"session": toSessionJSON(session)})
}

// GetHistory returns the ordered transcript for a session.
// GET /api/chat/history?sessionId=...
func (h *Handler) GetHistory(c echo.Context) error {
	sessionID := c.QueryParam("sessionId")
	if sessionID == "" {
		return jsonError(c, domain.ErrInvalidInput)
	}

	msgs, err := h.sessions.History(c.Request().Context(), middleware.UserID(c), sessionID)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]messageJSON{"messages": toMessagesJSON(msgs)})
}

// PostChat submits one user turn and returns the assistant's answer.
// POST /api/chat
func (h *Handler) PostChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, domain.ErrInvalidInput)
	}

	assistant, err := h.chat.SubmitTurn(c.Request().Context(), middleware.UserID(c), req.SessionID, req.Message)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": assistant.Content,
	})
}
