package auth

import (
	"errors"
	"testing"
	"time"

	"sdg-quest/internal/domain"
)

func TestIssueAndAuthorize(t *testing.T) {
	svc := NewTokenService("s3cret", time.Hour)

	token, err := svc.Issue("u1", "Alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "u1" || claims.Name != "Alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if err := svc.Authorize(token, "u1"); err != nil {
		t.Fatalf("authorize own user: %v", err)
	}
	if err := svc.Authorize(token, "u2"); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired for another user, got %v", err)
	}
}

func TestAuthorizeRejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewTokenService("s3cret", time.Minute)
	other := NewTokenService("other", time.Minute)

	foreign, err := other.Issue("u1", "")
	if err != nil {
		t.Fatalf("issue foreign: %v", err)
	}
	if err := svc.Authorize(foreign, "u1"); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired for foreign token, got %v", err)
	}

	token, err := svc.Issue("u1", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if err := svc.Authorize(token, "u1"); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired for expired token, got %v", err)
	}
}

func TestOpenModeAcceptsAnyNonEmptyToken(t *testing.T) {
	svc := NewTokenService("", 0)
	if svc.Enforcing() {
		t.Fatalf("service without a secret should not enforce")
	}
	if err := svc.Authorize("anything", "u1"); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if err := svc.Authorize("", "u1"); !errors.Is(err, domain.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired for empty token, got %v", err)
	}
	if _, err := svc.Issue("u1", ""); err == nil {
		t.Fatalf("issue should fail without a secret")
	}
}
