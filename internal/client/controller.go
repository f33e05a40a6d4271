package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// State is the controller's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateReady
	StateSending
	// StateError is terminal: session setup failed and a new controller
	// is needed. Failed sends return to StateReady instead.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is one transcript line. LocalID is assigned client-side at insertion
// time, so a failed optimistic entry is removed by identity, never by
// content equality.
type Entry struct {
	LocalID string
	Role    string
	Content string
}

// SessionAPI is what the controller needs from the server.
type SessionAPI interface {
	ResolveSession(ctx context.Context, country string, restart bool) (string, error)
	History(ctx context.Context, sessionID string) ([]Message, error)
	SubmitTurn(ctx context.Context, sessionID, text string) (string, error)
}

// Controller drives one conversation: it resolves the session, keeps the
// in-memory transcript, and applies optimistic inserts with rollback.
// It is meant for a single goroutine; at most one turn is in flight.
type Controller struct {
	api     SessionAPI
	country string

	state      State
	sessionID  string
	transcript []Entry
	banner     string
}

func NewController(api SessionAPI, country string) *Controller {
	return &Controller{
		api:     api,
		country: country,
		state:   StateIdle,
	}
}

// Init resolves the session and loads its history. On failure the controller
// lands in StateError and stays there.
func (c *Controller) Init(ctx context.Context) error {
	if c.state != StateIdle {
		return fmt.Errorf("init from state %s", c.state)
	}
	c.state = StateInitializing

	sessionID, err := c.api.ResolveSession(ctx, c.country, false)
	if err != nil {
		c.fail(err)
		return err
	}

	history, err := c.api.History(ctx, sessionID)
	if err != nil {
		c.fail(err)
		return err
	}

	c.sessionID = sessionID
	c.transcript = make([]Entry, 0, len(history))
	for _, m := range history {
		c.transcript = append(c.transcript, Entry{
			LocalID: m.ID,
			Role:    m.Role,
			Content: m.Content,
		})
	}
	c.state = StateReady
	return nil
}

// Send submits one turn. The utterance is appended optimistically before the
// server confirms it; on failure that entry is removed, the banner is set,
// and the controller returns to StateReady so the user can resubmit.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("empty message")
	}
	if c.state != StateReady {
		return fmt.Errorf("send from state %s", c.state)
	}

	c.state = StateSending
	c.banner = ""

	provisional := Entry{
		LocalID: uuid.NewString(),
		Role:    "user",
		Content: text,
	}
	c.transcript = append(c.transcript, provisional)

	answer, err := c.api.SubmitTurn(ctx, c.sessionID, text)
	if err != nil {
		c.removeEntry(provisional.LocalID)
		c.banner = bannerFor(err)
		c.state = StateReady
		return err
	}

	c.transcript = append(c.transcript, Entry{
		LocalID: uuid.NewString(),
		Role:    "assistant",
		Content: answer,
	})
	c.state = StateReady
	return nil
}

func (c *Controller) State() State      { return c.state }
func (c *Controller) SessionID() string { return c.sessionID }
func (c *Controller) Banner() string    { return c.banner }

// Transcript returns a copy of the visible conversation.
func (c *Controller) Transcript() []Entry {
	out := make([]Entry, len(c.transcript))
	copy(out, c.transcript)
	return out
}

func (c *Controller) fail(err error) {
	c.state = StateError
	c.banner = bannerFor(err)
}

func (c *Controller) removeEntry(localID string) {
	for i, e := range c.transcript {
		if e.LocalID == localID {
			c.transcript = append(c.transcript[:i], c.transcript[i+1:]...)
			return
		}
	}
}

func bannerFor(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "An error occurred"
}
