package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edupath/edupath/internal/config"
	"github.com/edupath/edupath/internal/domain"
	"github.com/edupath/edupath/internal/repository"
)

// Inference is the one RPC the turn pipeline needs from the backend.
type Inference interface {
	Ask(ctx context.Context, priorTurns []TurnMessage, latestQuestion string) (*AskResponse, error)
}

// ChatService runs one conversational turn: persist the user message, ask
// the inference backend, persist the answer, touch the session.
type ChatService struct {
	sessions  repository.Sessions
	messages  repository.Messages
	inference Inference
	window    int
	now       func() time.Time
}

func NewChatService(sessions repository.Sessions, messages repository.Messages, inference Inference, contextWindow int) *ChatService {
	if contextWindow < 1 {
		contextWindow = 1
	}
	return &ChatService{
		sessions:  sessions,
		messages:  messages,
		inference: inference,
		window:    contextWindow,
		now:       time.Now,
	}
}

// SubmitTurn processes one user utterance. On success exactly two messages
// exist for the turn, user first, and the session's activity timestamp is
// advanced. If the backend fails the user message is kept; nothing is rolled
// back server-side.
func (s *ChatService) SubmitTurn(ctx context.Context, callerID, sessionID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if sessionID == "" || text == "" {
		return nil, fmt.Errorf("%w: session id and message are required", domain.ErrInvalidInput)
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: get session: %v", domain.ErrStoreUnavailable, err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.UserID != callerID {
		return nil, domain.ErrForbidden
	}

	userMsg := &domain.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("%w: create user message: %v", domain.ErrStoreUnavailable, err)
	}

	resp, err := s.inference.Ask(ctx, s.contextWindow(ctx, sessionID, text), text)
	if err != nil {
		// The user message stays; the question is kept even without an answer.
		return nil, fmt.Errorf("%w: %v", domain.ErrInferenceUnavailable, err)
	}

	answer := resp.Answer
	if strings.TrimSpace(answer) == "" {
		answer = config.FallbackAnswer
	}

	assistantMsg := &domain.Message{
		ID:               uuid.NewString(),
		SessionID:        sessionID,
		Role:             domain.RoleAssistant,
		Content:          answer,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Cost:             decimal.NewFromFloat(resp.Usage.TotalCost),
		CreatedAt:        s.now().UTC(),
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("%w: create assistant message: %v", domain.ErrStoreUnavailable, err)
	}

	if err := s.sessions.Touch(ctx, sessionID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: touch session: %v", domain.ErrStoreUnavailable, err)
	}

	return assistantMsg, nil
}

// contextWindow assembles the last N turns to send alongside the latest
// question. The just-persisted user message is part of the window, so with
// the default size of 1 the backend sees only the current utterance. A read
// failure degrades to the single latest utterance rather than failing the turn.
func (s *ChatService) contextWindow(ctx context.Context, sessionID, latest string) []TurnMessage {
	msgs, err := s.messages.ListRecentBySession(ctx, sessionID, s.window)
	if err != nil {
		slog.Warn("load context window failed, sending latest turn only", "session_id", sessionID, "error", err)
		return []TurnMessage{{Role: domain.RoleUser, Content: latest}}
	}
	turns := make([]TurnMessage, len(msgs))
	for i, m := range msgs {
		turns[i] = TurnMessage{Role: m.Role, Content: m.Content}
	}
	return turns
}
