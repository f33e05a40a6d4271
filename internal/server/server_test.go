package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/edupath/edupath/internal/repository"
	"github.com/edupath/edupath/internal/server"
	"github.com/edupath/edupath/internal/service"
)

type scriptedInference struct {
	answer string
	err    error
}

func (f *scriptedInference) Ask(ctx context.Context, priorTurns []service.TurnMessage, latestQuestion string) (*service.AskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.AskResponse{Answer: f.answer}, nil
}

type testEnv struct {
	e         *echo.Echo
	auth      *service.AuthService
	inference *scriptedInference
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := repository.NewMemoryUsers()
	sessions := repository.NewMemorySessions()
	messages := repository.NewMemoryMessages()
	inference := &scriptedInference{answer: "A student visa."}

	auth := service.NewAuthService(users, "test-secret")
	sessionSvc := service.NewSessionService(sessions, messages)
	chatSvc := service.NewChatService(sessions, messages, inference, 1)

	e := echo.New()
	server.NewHandler(auth, sessionSvc, chatSvc).RegisterRoutes(e)

	return &testEnv{e: e, auth: auth, inference: inference}
}

func (env *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) signupToken(t *testing.T, email string) string {
	t.Helper()
	result, err := env.auth.Register(context.Background(), email, "secret1", "Test User")
	assert.NoError(t, err)
	return result.Token
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "ana@example.com", "password": "secret1", "name": "Ana",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var signup struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	assert.True(t, signup.Success)
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, "ana@example.com", signup.User.Email)

	rec = env.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "ana@example.com", "password": "secret1", "name": "Ana",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ana@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusUnauthorized, env.request(t, http.MethodPost, "/api/chat/history", "", map[string]string{"country": "usa"}).Code)
	assert.Equal(t, http.StatusUnauthorized, env.request(t, http.MethodGet, "/api/chat/history?sessionId=s1", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.request(t, http.MethodPost, "/api/chat", "", map[string]string{"sessionId": "s1", "message": "hi"}).Code)
}

func TestChatFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupToken(t, "ana@example.com")

	rec := env.request(t, http.MethodPost, "/api/chat/history", token, map[string]any{"country": "usa"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Session struct {
			ID      string `json:"id"`
			Country string `json:"country"`
		} `json:"session"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Session.ID)
	assert.Equal(t, "usa", created.Session.Country)

	// Resolving again without restart resumes the same session.
	rec = env.request(t, http.MethodPost, "/api/chat/history", token, map[string]any{"country": "usa"})
	var resolved struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
	assert.Equal(t, created.Session.ID, resolved.Session.ID)

	// Restart forces a distinct session.
	rec = env.request(t, http.MethodPost, "/api/chat/history", token, map[string]any{"country": "usa", "restart": true})
	var restarted struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &restarted))
	assert.NotEqual(t, created.Session.ID, restarted.Session.ID)

	rec = env.request(t, http.MethodPost, "/api/chat", token, map[string]string{
		"sessionId": restarted.Session.ID, "message": "What visa do I need?",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var turn struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &turn))
	assert.True(t, turn.Success)
	assert.Equal(t, "A student visa.", turn.Message)

	rec = env.request(t, http.MethodGet, "/api/chat/history?sessionId="+restarted.Session.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	if assert.Len(t, history.Messages, 2) {
		assert.Equal(t, "user", history.Messages[0].Role)
		assert.Equal(t, "What visa do I need?", history.Messages[0].Content)
		assert.Equal(t, "assistant", history.Messages[1].Role)
		assert.Equal(t, "A student visa.", history.Messages[1].Content)
	}
}

func TestChatInferenceFailure(t *testing.T) {
	env := newTestEnv(t)
	env.inference.err = errors.New("timeout")
	token := env.signupToken(t, "ana@example.com")

	rec := env.request(t, http.MethodPost, "/api/chat/history", token, map[string]string{"country": "usa"})
	var created struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.request(t, http.MethodPost, "/api/chat", token, map[string]string{
		"sessionId": created.Session.ID, "message": "hello",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// The orphaned user message survives the failed turn.
	rec = env.request(t, http.MethodGet, "/api/chat/history?sessionId="+created.Session.ID, token, nil)
	var history struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	if assert.Len(t, history.Messages, 1) {
		assert.Equal(t, "user", history.Messages[0].Role)
	}
}

func TestHistoryOfForeignSessionForbidden(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.signupToken(t, "owner@example.com")
	intruderToken := env.signupToken(t, "intruder@example.com")

	rec := env.request(t, http.MethodPost, "/api/chat/history", ownerToken, map[string]string{"country": "usa"})
	var created struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.request(t, http.MethodGet, "/api/chat/history?sessionId="+created.Session.ID, intruderToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
