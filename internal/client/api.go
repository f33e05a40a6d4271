// Package client provides the API client and the session controller that
// drives a conversation from the user's side.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// API is an HTTP client for the assistant server. The bearer token is held
// explicitly on the client rather than in any ambient global; WithToken
// returns an authenticated copy.
type API struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// WithToken returns a copy of the API that authenticates with token.
func (a *API) WithToken(token string) *API {
	cp := *a
	cp.token = token
	return &cp
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// Identity is the authenticated account returned by signup and login.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Token  string
}

// Message is one transcript entry as the server reports it.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *API) Signup(ctx context.Context, email, password, name string) (*Identity, error) {
	return a.authCall(ctx, "/api/auth/signup", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
}

func (a *API) Login(ctx context.Context, email, password string) (*Identity, error) {
	return a.authCall(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (a *API) authCall(ctx context.Context, path string, body map[string]string) (*Identity, error) {
	var resp struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
		Token string `json:"token"`
	}
	if err := a.do(ctx, "POST", path, body, &resp); err != nil {
		return nil, err
	}
	return &Identity{
		UserID: resp.User.ID,
		Email:  resp.User.Email,
		Name:   resp.User.Name,
		Token:  resp.Token,
	}, nil
}

// ResolveSession resolves or creates the caller's session for a country and
// returns its id. With restart set, a fresh session is always started.
func (a *API) ResolveSession(ctx context.Context, country string, restart bool) (string, error) {
	var resp struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	body := map[string]any{"country": country, "restart": restart}
	if err := a.do(ctx, "POST", "/api/chat/history", body, &resp); err != nil {
		return "", err
	}
	return resp.Session.ID, nil
}

// History returns the ordered transcript for a session.
func (a *API) History(ctx context.Context, sessionID string) ([]Message, error) {
	var resp struct {
		Messages []Message `json:"messages"`
	}
	if err := a.do(ctx, "GET", "/api/chat/history?sessionId="+sessionID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SubmitTurn sends one user utterance and returns the assistant's answer.
func (a *API) SubmitTurn(ctx context.Context, sessionID, text string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	body := map[string]string{"sessionId": sessionID, "message": text}
	if err := a.do(ctx, "POST", "/api/chat", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &errBody)
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
