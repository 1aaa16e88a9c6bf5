package security

import (
	"encoding/hex"
	"testing"
	"time"
)

func TestTokenIssuerIssue(t *testing.T) {
	issuer := NewTokenIssuer(7 * 24 * time.Hour)

	token, _, err := issuer.Issue()
	if err != nil {
		t.Fatalf("Issue() returned error: %v", err)
	}

	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex characters", len(token))
	}
	if _, err := hex.DecodeString(token); err != nil {
		t.Errorf("token is not valid hex: %v", err)
	}
}

func TestTokenIssuerExpiry(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 7 * 24 * time.Hour
	issuer := &TokenIssuer{ttl: ttl, now: func() time.Time { return fixed }}

	_, expiresAt, err := issuer.Issue()
	if err != nil {
		t.Fatalf("Issue() returned error: %v", err)
	}

	want := fixed.Add(ttl)
	if !expiresAt.Equal(want) {
		t.Errorf("expiry = %v, want %v", expiresAt, want)
	}
}

func TestTokenIssuerUniqueness(t *testing.T) {
	issuer := NewTokenIssuer(time.Hour)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, _, err := issuer.Issue()
		if err != nil {
			t.Fatalf("Issue() returned error: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token issued: %s", token)
		}
		seen[token] = true
	}
}
