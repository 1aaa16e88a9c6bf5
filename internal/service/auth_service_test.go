package service

import (
	"testing"
	"time"
)

func newAuthService(env *testEnv) *AuthService {
	return NewAuthService(env.users, "test-jwt-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	user, err := auth.Register("Alice@Example.com", "s3cure-password", "Alice")
	if err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}

	loggedIn, token, err := auth.Login("alice@example.com", "s3cure-password")
	if err != nil {
		t.Fatalf("Login() returned error: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("logged in user ID = %d, want %d", loggedIn.ID, user.ID)
	}
	if token == "" {
		t.Fatal("Login() returned empty session token")
	}

	sessionUser, err := auth.ValidateSession(token)
	if err != nil {
		t.Fatalf("ValidateSession() returned error: %v", err)
	}
	if sessionUser.ID != user.ID {
		t.Errorf("session user ID = %d, want %d", sessionUser.ID, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	if _, err := auth.Register("alice@example.com", "s3cure-password", "Alice"); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}
	_, err := auth.Register("ALICE@example.com", "another-password", "Alice Again")
	assertServiceError(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	if _, err := auth.Register("alice@example.com", "s3cure-password", "Alice"); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}
	_, _, err := auth.Login("alice@example.com", "wrong-password")
	assertServiceError(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	// Indistinguishable from a wrong password
	_, _, err := auth.Login("nobody@example.com", "whatever")
	assertServiceError(t, err, ErrInvalidCredentials)
}

func TestValidateSessionGarbage(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	_, err := auth.ValidateSession("not-a-token")
	assertServiceError(t, err, ErrInvalidSession)
}
