package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChatSession is one ongoing conversation for a (user, country) pair.
// Country is fixed at creation; UpdatedAt is touched on every completed turn.
type ChatSession struct {
	ID        string
	UserID    string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one immutable turn within a session. Token and cost fields are
// zero for user messages; assistant messages carry whatever usage accounting
// the inference backend reported.
type Message struct {
	ID               string
	SessionID        string
	Role             string
	Content          string
	PromptTokens     int
	CompletionTokens int
	Cost             decimal.Decimal
	CreatedAt        time.Time
}
