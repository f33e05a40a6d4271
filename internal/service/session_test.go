package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edupath/edupath/internal/config"
	"github.com/edupath/edupath/internal/domain"
	"github.com/edupath/edupath/internal/repository"
)

func newSessionFixture() (*SessionService, *repository.MemorySessions, *repository.MemoryMessages) {
	sessions := repository.NewMemorySessions()
	messages := repository.NewMemoryMessages()
	return NewSessionService(sessions, messages), sessions, messages
}

func TestStartNewAlwaysCreatesDistinctSessions(t *testing.T) {
	svc, _, _ := newSessionFixture()
	ctx := context.Background()

	first, err := svc.StartNew(ctx, "u1", "usa")
	if err != nil {
		t.Fatalf("StartNew failed: %v", err)
	}
	second, err := svc.StartNew(ctx, "u1", "usa")
	if err != nil {
		t.Fatalf("StartNew failed: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct session ids, both %q", first.ID)
	}
}

func TestStartNewDefaultsCountry(t *testing.T) {
	svc, _, _ := newSessionFixture()

	session, err := svc.StartNew(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("StartNew failed: %v", err)
	}
	if session.Country != config.DefaultCountry {
		t.Fatalf("country = %q, want %q", session.Country, config.DefaultCountry)
	}
}

func TestStartNewRequiresUser(t *testing.T) {
	svc, _, _ := newSessionFixture()

	_, err := svc.StartNew(context.Background(), "", "usa")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestResolveLatestReusesMostRecent(t *testing.T) {
	svc, _, _ := newSessionFixture()
	ctx := context.Background()

	first, _ := svc.StartNew(ctx, "u1", "uk")
	second, _ := svc.StartNew(ctx, "u1", "uk")

	// Country scoping: a canada session must not shadow the uk one.
	_, _ = svc.StartNew(ctx, "u1", "canada")

	resolved, err := svc.ResolveLatest(ctx, "u1", "uk")
	if err != nil {
		t.Fatalf("ResolveLatest failed: %v", err)
	}
	if resolved.ID == first.ID {
		t.Fatalf("resolved the older session")
	}
	if resolved.ID != second.ID {
		t.Fatalf("resolved %q, want most recent %q", resolved.ID, second.ID)
	}
}

func TestResolveLatestCreatesWhenNoneExists(t *testing.T) {
	svc, _, _ := newSessionFixture()

	session, err := svc.ResolveLatest(context.Background(), "u1", "australia")
	if err != nil {
		t.Fatalf("ResolveLatest failed: %v", err)
	}
	if session.ID == "" || session.Country != "australia" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestHistoryOrderedByCreation(t *testing.T) {
	svc, sessions, messages := newSessionFixture()
	ctx := context.Background()

	_ = sessions.Create(ctx, &domain.ChatSession{ID: "s1", UserID: "u1", Country: "usa"})

	base := time.Now()
	// Inserted out of order on purpose.
	seed := []domain.Message{
		{ID: "m2", SessionID: "s1", Role: domain.RoleAssistant, Content: "b", CreatedAt: base.Add(time.Second)},
		{ID: "m1", SessionID: "s1", Role: domain.RoleUser, Content: "a", CreatedAt: base},
		{ID: "m3", SessionID: "s1", Role: domain.RoleUser, Content: "c", CreatedAt: base.Add(2 * time.Second)},
	}
	for i := range seed {
		_ = messages.Create(ctx, &seed[i])
	}

	history, err := svc.History(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	for i := 1; i < len(history); i++ {
		if history[i].CreatedAt.Before(history[i-1].CreatedAt) {
			t.Fatalf("history not sorted at index %d", i)
		}
	}
	if history[0].ID != "m1" || history[2].ID != "m3" {
		t.Fatalf("unexpected order: %q, %q, %q", history[0].ID, history[1].ID, history[2].ID)
	}
}

func TestHistoryIdempotent(t *testing.T) {
	svc, sessions, messages := newSessionFixture()
	ctx := context.Background()

	_ = sessions.Create(ctx, &domain.ChatSession{ID: "s1", UserID: "u1", Country: "usa"})
	_ = messages.Create(ctx, &domain.Message{ID: "m1", SessionID: "s1", Role: domain.RoleUser, Content: "hi", CreatedAt: time.Now()})

	first, err := svc.History(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	second, err := svc.History(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("history changed between reads: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("history changed at index %d", i)
		}
	}
}

func TestHistoryUnknownSessionIsEmpty(t *testing.T) {
	svc, _, _ := newSessionFixture()

	history, err := svc.History(context.Background(), "u1", "missing")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Fatalf("expected empty history, got %v", history)
	}
}

func TestHistoryRejectsForeignSession(t *testing.T) {
	svc, sessions, _ := newSessionFixture()
	ctx := context.Background()

	_ = sessions.Create(ctx, &domain.ChatSession{ID: "s1", UserID: "owner", Country: "usa"})

	_, err := svc.History(ctx, "intruder", "s1")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
