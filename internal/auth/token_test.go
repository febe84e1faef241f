package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/boaz-housing/internal/domain"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("test-secret", time.Hour)
	token, exp, err := tm.GenerateToken("session-1", "agent@boaz-housing.com", domain.RoleAgentBoaz)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %v", exp)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.SessionID != "session-1" {
		t.Errorf("session id = %q", claims.SessionID)
	}
	if claims.Email != "agent@boaz-housing.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Role != domain.RoleAgentBoaz {
		t.Errorf("role = %q", claims.Role)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	t.Parallel()

	tm := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}
	token, _, err := tm.GenerateToken("session-2", "client@example.com", domain.RoleClient)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := tm.ParseToken(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := NewTokenManager("right-secret", time.Hour).GenerateToken("sid", "a@b.c", domain.RoleClient)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := NewTokenManager("wrong-secret", time.Hour).ParseToken(token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestTokenManager_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenManager("k", time.Hour).ParseToken("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
