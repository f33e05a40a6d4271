package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edupath/edupath/internal/config"
	"github.com/edupath/edupath/internal/domain"
	"github.com/edupath/edupath/internal/repository"
)

// SessionService resolves country-scoped sessions and loads their history.
type SessionService struct {
	sessions repository.Sessions
	messages repository.Messages
	now      func() time.Time
}

func NewSessionService(sessions repository.Sessions, messages repository.Messages) *SessionService {
	return &SessionService{
		sessions: sessions,
		messages: messages,
		now:      time.Now,
	}
}

// StartNew always creates a fresh session for the (user, country) pair.
// An empty country falls back to the default.
func (s *SessionService) StartNew(ctx context.Context, userID, country string) (*domain.ChatSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if country == "" {
		country = config.DefaultCountry
	}

	now := s.now().UTC()
	session := &domain.ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Country:   country,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: create session: %v", domain.ErrStoreUnavailable, err)
	}
	return session, nil
}

// ResolveLatest reuses the most recent session for the (user, country) pair,
// creating one only when none exists. This is the resume path; StartNew is
// the explicit conversation restart.
func (s *SessionService) ResolveLatest(ctx context.Context, userID, country string) (*domain.ChatSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if country == "" {
		country = config.DefaultCountry
	}

	existing, err := s.sessions.GetLatestByUserAndCountry(ctx, userID, country)
	if err != nil {
		return nil, fmt.Errorf("%w: find session: %v", domain.ErrStoreUnavailable, err)
	}
	if existing != nil {
		return existing, nil
	}
	return s.StartNew(ctx, userID, country)
}

// History returns the session's messages in ascending creation order. A
// session id that resolves to nothing yields an empty slice; a session owned
// by a different user is rejected.
func (s *SessionService) History(ctx context.Context, callerID, sessionID string) ([]domain.Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: get session: %v", domain.ErrStoreUnavailable, err)
	}
	if session == nil {
		return []domain.Message{}, nil
	}
	if session.UserID != callerID {
		return nil, domain.ErrForbidden
	}

	msgs, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", domain.ErrStoreUnavailable, err)
	}
	return msgs, nil
}
