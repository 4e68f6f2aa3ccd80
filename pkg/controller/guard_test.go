package controller

import (
	"errors"
	"testing"
	"time"
)

func TestGuard_Lifecycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewGuard(time.Minute)
	g.now = func() time.Time { return now }

	if err := g.Begin("a"); err != nil {
		t.Fatalf("first begin: %v", err)
	}
	if err := g.Begin("a"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}

	g.Finish("a", true)
	if err := g.Begin("a"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	now = now.Add(time.Minute)
	if err := g.Begin("a"); err != nil {
		t.Fatalf("expected token to be reusable after ttl, got %v", err)
	}
}

func TestGuard_FailureReleasesToken(t *testing.T) {
	g := NewGuard(time.Minute)
	if err := g.Begin("b"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	g.Finish("b", false)
	if g.Len() != 0 {
		t.Fatalf("expected released token, tracked=%d", g.Len())
	}
	if err := g.Begin("b"); err != nil {
		t.Fatalf("retry begin: %v", err)
	}
}

func TestGuard_EmptyTokenAndNilGuard(t *testing.T) {
	g := NewGuard(time.Minute)
	for i := 0; i < 2; i++ {
		if err := g.Begin(""); err != nil {
			t.Fatalf("empty token must not be guarded: %v", err)
		}
	}

	var none *Guard
	if err := none.Begin("x"); err != nil {
		t.Fatalf("nil guard: %v", err)
	}
	none.Finish("x", true)
	if n := none.Len(); n != 0 {
		t.Fatalf("nil guard Len() = %d", n)
	}
}

func TestNewSubmissionToken_Unique(t *testing.T) {
	a, b := NewSubmissionToken(), NewSubmissionToken()
	if a == "" || a == b {
		t.Fatalf("expected distinct tokens, got %q and %q", a, b)
	}
}
