package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-identity/app/service"
)

func TestSessionService_IssueAndVerify(t *testing.T) {
	svc := service.NewSessionService("test-secret", 15*time.Minute)

	token, err := svc.Issue(42, "user@example.com")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user ID 42, got %d", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("expected email to round-trip, got %q", claims.Email)
	}
	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
}

func TestSessionService_RejectsExpired(t *testing.T) {
	svc := service.NewSessionService("test-secret", -time.Minute)

	token, err := svc.Issue(1, "user@example.com")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, service.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestSessionService_RejectsWrongSecret(t *testing.T) {
	issuer := service.NewSessionService("secret-a", 15*time.Minute)
	verifier := service.NewSessionService("secret-b", 15*time.Minute)

	token, err := issuer.Issue(1, "user@example.com")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, service.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestSessionService_RejectsGarbage(t *testing.T) {
	svc := service.NewSessionService("test-secret", 15*time.Minute)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.Verify(token); !errors.Is(err, service.ErrInvalidSession) {
			t.Fatalf("expected ErrInvalidSession for %q, got %v", token, err)
		}
	}
}

func TestSessionService_TTLSeconds(t *testing.T) {
	svc := service.NewSessionService("test-secret", 2*time.Hour)
	if got := svc.TTLSeconds(); got != 7200 {
		t.Fatalf("expected 7200, got %d", got)
	}
}
