package security

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	secret := "test-secret"

	token, err := IssueSessionToken(secret, 42, time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken() returned error: %v", err)
	}

	userID, err := ParseSessionToken(secret, token)
	if err != nil {
		t.Fatalf("ParseSessionToken() returned error: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := IssueSessionToken("secret-a", 42, time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken() returned error: %v", err)
	}

	if _, err := ParseSessionToken("secret-b", token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := IssueSessionToken("secret", 42, -time.Minute)
	if err != nil {
		t.Fatalf("IssueSessionToken() returned error: %v", err)
	}

	if _, err := ParseSessionToken("secret", token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestSessionTokenGarbage(t *testing.T) {
	if _, err := ParseSessionToken("secret", "not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() returned error: %v", err)
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("wrong password accepted")
	}
}
