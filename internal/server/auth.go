package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edupath/edupath/internal/domain"
	"github.com/edupath/edupath/internal/service"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userJSON struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	Success bool     `json:"success"`
	User    userJSON `json:"user"`
	Token   string   `json:"token"`
}

// Signup registers a new account and returns an identity token.
// POST /api/auth/signup
func (h *Handler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, domain.ErrInvalidInput)
	}

	result, err := h.auth.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, toAuthResponse(result))
}

// Login exchanges credentials for an identity token.
// POST /api/auth/login
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, domain.ErrInvalidInput)
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, toAuthResponse(result))
}

func toAuthResponse(r *service.AuthResult) authResponse {
	return authResponse{
		Success: true,
		User: userJSON{
			ID:    r.User.ID,
			Email: r.User.Email,
			Name:  r.User.Name,
		},
		Token: r.Token,
	}
}
