package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edupath/edupath/internal/domain"
)

type PostgresUsers struct {
	db *pgxpool.Pool
}

func NewPostgresUsers(db *pgxpool.Pool) *PostgresUsers {
	return &PostgresUsers{db: db}
}

func (r *PostgresUsers) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// GetByID returns the user for id, or nil if not found.
func (r *PostgresUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, `WHERE id = $1`, id)
}

// GetByEmail returns the user with the given email, or nil if not found.
func (r *PostgresUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, `WHERE email = $1`, email)
}

func (r *PostgresUsers) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM users `+where,
		arg,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

type PostgresSessions struct {
	db *pgxpool.Pool
}

func NewPostgresSessions(db *pgxpool.Pool) *PostgresSessions {
	return &PostgresSessions{db: db}
}

func (r *PostgresSessions) Create(ctx context.Context, s *domain.ChatSession) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_sessions (id, user_id, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.Country, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// GetByID returns the session for id, or nil if not found.
func (r *PostgresSessions) GetByID(ctx context.Context, id string) (*domain.ChatSession, error) {
	var s domain.ChatSession
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, country, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.Country, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresSessions) GetLatestByUserAndCountry(ctx context.Context, userID, country string) (*domain.ChatSession, error) {
	var s domain.ChatSession
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, country, created_at, updated_at
		FROM chat_sessions
		WHERE user_id = $1 AND country = $2
		ORDER BY created_at DESC
		LIMIT 1`,
		userID, country,
	).Scan(&s.ID, &s.UserID, &s.Country, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresSessions) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE chat_sessions
		SET updated_at = GREATEST(updated_at, $2)
		WHERE id = $1`,
		id, at,
	)
	return err
}

type PostgresMessages struct {
	db *pgxpool.Pool
}

func NewPostgresMessages(db *pgxpool.Pool) *PostgresMessages {
	return &PostgresMessages{db: db}
}

func (r *PostgresMessages) Create(ctx context.Context, m *domain.Message) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO messages (id, session_id, role, content, prompt_tokens, completion_tokens, cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.SessionID, m.Role, m.Content, m.PromptTokens, m.CompletionTokens, m.Cost, m.CreatedAt,
	)
	return err
}

func (r *PostgresMessages) ListBySession(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, role, content, prompt_tokens, completion_tokens, cost, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY created_at ASC, seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (r *PostgresMessages) ListRecentBySession(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, role, content, prompt_tokens, completion_tokens, cost, created_at
		FROM (
			SELECT id, session_id, role, content, prompt_tokens, completion_tokens, cost, created_at, seq
			FROM messages
			WHERE session_id = $1
			ORDER BY created_at DESC, seq DESC
			LIMIT $2
		) tail
		ORDER BY created_at ASC, seq ASC`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]domain.Message, error) {
	msgs := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.PromptTokens, &m.CompletionTokens, &m.Cost, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
