package unit

import (
	"testing"
	"time"

	"github.com/faithadeola/TrustRail/internal/auth"
)

func TestJWTMintAndParse(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	tok, err := m.Mint("u1", "biz-1", auth.RoleOwner, "s1", "access", 5*time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != "u1" || claims.BusinessID != "biz-1" || claims.SessionID != "s1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Role != auth.RoleOwner || claims.Type != "access" {
		t.Fatalf("unexpected role/type: %+v", claims)
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	tok, err := m.Mint("u1", "biz-1", auth.RoleStaff, "s1", "access", -time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}
	if _, err := m.Parse(tok); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestJWTRejectsWrongIssuerOrKey(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	tok, err := m.Mint("u1", "biz-1", auth.RoleOwner, "s1", "refresh", 5*time.Minute)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	other := auth.NewJWTManager("other-issuer", "aud", "secret")
	if _, err := other.Parse(tok); err == nil {
		t.Fatalf("expected issuer mismatch error")
	}

	wrongKey := auth.NewJWTManager("issuer", "aud", "not-the-secret")
	if _, err := wrongKey.Parse(tok); err == nil {
		t.Fatalf("expected signature error")
	}
}
