package service

import (
	"fmt"
	"strings"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/repository"
	"taskhive/internal/security"
	"taskhive/internal/validation"
)

// AuthService handles registration, login and session validation
type AuthService struct {
	users           *repository.UserRepository
	jwtSecret       string
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(users *repository.UserRepository, jwtSecret string, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		users:           users,
		jwtSecret:       jwtSecret,
		sessionDuration: sessionDuration,
	}
}

// SessionDuration returns how long issued sessions remain valid
func (s *AuthService) SessionDuration() time.Duration {
	return s.sessionDuration
}

// Register creates a new user account
func (s *AuthService) Register(email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.users.CreateUser(email, hash, strings.TrimSpace(name))
}

// Login verifies credentials and returns the user with a signed session
// token. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up account: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := security.IssueSessionToken(s.jwtSecret, user.ID, s.sessionDuration)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ValidateSession parses a session token and loads its user
func (s *AuthService) ValidateSession(token string) (*models.User, error) {
	userID, err := security.ParseSessionToken(s.jwtSecret, token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidSession
	}
	return user, nil
}
