package repository

import (
	"context"
	"time"

	"github.com/edupath/edupath/internal/domain"
)

// Users defines persistence for user accounts.
type Users interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Sessions defines persistence for chat sessions.
type Sessions interface {
	Create(ctx context.Context, s *domain.ChatSession) error
	GetByID(ctx context.Context, id string) (*domain.ChatSession, error)
	// GetLatestByUserAndCountry returns the most recently created session
	// for the pair, or nil when the user has none for that country.
	GetLatestByUserAndCountry(ctx context.Context, userID, country string) (*domain.ChatSession, error)
	// Touch advances the session's last-activity timestamp. The stored
	// value never moves backwards.
	Touch(ctx context.Context, id string, at time.Time) error
}

// Messages defines persistence for conversation turns.
type Messages interface {
	Create(ctx context.Context, m *domain.Message) error
	// ListBySession returns all messages for a session in ascending
	// creation order, ties broken by insertion order. Unknown session ids
	// yield an empty slice.
	ListBySession(ctx context.Context, sessionID string) ([]domain.Message, error)
	// ListRecentBySession returns at most limit trailing messages for the
	// session, still in ascending order.
	ListRecentBySession(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)
}
