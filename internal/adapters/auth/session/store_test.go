package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"slot-swapper/internal/ports/auth"
)

func TestIssueVerifyRevoke(t *testing.T) {
	s := NewStore(time.Hour)
	ctx := context.Background()

	tok, err := s.Issue(ctx, "user1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	c, err := s.Verify(ctx, " "+tok+" ")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if c.UserID != "user1" {
		t.Fatalf("expected user1, got %q", c.UserID)
	}

	s.Revoke(ctx, tok)
	if _, err := s.Verify(ctx, tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after revoke, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	s := NewStore(time.Minute)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	tok, err := s.Issue(context.Background(), "user1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := s.Verify(context.Background(), tok); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestVerify_Empty(t *testing.T) {
	s := NewStore(0)
	if _, err := s.Verify(context.Background(), ""); !errors.Is(err, ErrTokenEmpty) {
		t.Fatalf("expected ErrTokenEmpty, got %v", err)
	}
	if _, err := s.Issue(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}
