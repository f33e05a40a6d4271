// Package server provides the HTTP handlers for the assistant API.
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edupath/edupath/internal/middleware"
	"github.com/edupath/edupath/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	auth     *service.AuthService
	sessions *service.SessionService
	chat     *service.ChatService
}

// NewHandler creates a new handler.
func NewHandler(auth *service.AuthService, sessions *service.SessionService, chat *service.ChatService) *Handler {
	return &Handler{
		auth:     auth,
		sessions: sessions,
		chat:     chat,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/auth/signup", h.Signup)
	e.POST("/api/auth/login", h.Login)

	chat := e.Group("/api/chat", middleware.Auth(h.auth))
	chat.POST("", h.PostChat)
	chat.POST("/history", h.CreateSession)
	chat.GET("/history", h.GetHistory)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
