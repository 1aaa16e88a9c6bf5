package service

import "errors"

// Workflow error taxonomy. Handlers map these to distinct user-facing
// messages because each one requires different remediation: an expired
// invitation needs a new invite, an already-used one just needs a login,
// a missing one means the link is wrong.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrExpired             = errors.New("invitation has expired")
	ErrAlreadyProcessed    = errors.New("already processed")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrAccountRequired     = errors.New("no account exists for the invited email")
	ErrDuplicateInvitation = errors.New("an active invitation already exists for this email")

	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid session")
)
