package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/edupath/edupath/internal/domain"
)

// In-memory implementations of the store interfaces. Used by tests and by
// anything that wants the pipeline without a database.

type MemoryUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]*domain.User)}
}

func (r *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *MemoryUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]*domain.ChatSession
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]*domain.ChatSession)}
}

func (r *MemorySessions) Create(ctx context.Context, s *domain.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *MemorySessions) GetByID(ctx context.Context, id string) (*domain.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *MemorySessions) GetLatestByUserAndCountry(ctx context.Context, userID, country string) (*domain.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.ChatSession
	for _, s := range r.sessions {
		if s.UserID != userID || s.Country != country {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *MemorySessions) Touch(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok && at.After(s.UpdatedAt) {
		s.UpdatedAt = at
	}
	return nil
}

type MemoryMessages struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func NewMemoryMessages() *MemoryMessages {
	return &MemoryMessages{}
}

func (r *MemoryMessages) Create(ctx context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, *m)
	return nil
}

func (r *MemoryMessages) ListBySession(ctx context.Context, sessionID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Message{}
	for _, m := range r.msgs {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	// Stable sort keeps insertion order for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryMessages) ListRecentBySession(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	all, err := r.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}
