package jwthandling

import (
	"testing"
	"time"
)

func TestAdminSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateNewAdminSessionToken(time.Minute, "ana@corretora.example", "sign-key")
	if err != nil {
		t.Fatalf("GenerateNewAdminSessionToken: %v", err)
	}

	claims, valid, err := ValidateAdminSessionToken(token, "sign-key")
	if err != nil || !valid {
		t.Fatalf("token should be valid, got valid=%v err=%v", valid, err)
	}
	if claims.Email != "ana@corretora.example" {
		t.Errorf("email = %q", claims.Email)
	}
}

func TestAdminSessionTokenWrongKey(t *testing.T) {
	token, err := GenerateNewAdminSessionToken(time.Minute, "ana@corretora.example", "sign-key")
	if err != nil {
		t.Fatalf("GenerateNewAdminSessionToken: %v", err)
	}

	_, valid, err := ValidateAdminSessionToken(token, "other-key")
	if valid || err == nil {
		t.Error("token signed with a different key must not validate")
	}
}

func TestAdminSessionTokenExpired(t *testing.T) {
	token, err := GenerateNewAdminSessionToken(-time.Minute, "ana@corretora.example", "sign-key")
	if err != nil {
		t.Fatalf("GenerateNewAdminSessionToken: %v", err)
	}

	_, valid, _ := ValidateAdminSessionToken(token, "sign-key")
	if valid {
		t.Error("expired token must not validate")
	}
}
