package handlers

import (
	"errors"
	"log"
	"net/http"

	"taskhive/internal/service"
	"taskhive/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

// mapServiceError translates the service error taxonomy into an HTTP
// status and user-facing message. Expired, already-used and missing
// tokens each get a distinct message because each needs different
// remediation from the user.
func mapServiceError(err error) (int, string) {
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Error()
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, service.ErrExpired):
		return http.StatusGone, "This invitation has expired. Ask for a new one."
	case errors.Is(err, service.ErrAlreadyProcessed):
		return http.StatusConflict, "This request was already processed"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "This action is not allowed in the current state"
	case errors.Is(err, service.ErrNotAuthorized):
		return http.StatusForbidden, "You are not allowed to do that"
	case errors.Is(err, service.ErrAccountRequired):
		return http.StatusUnprocessableEntity, "Create an account with the invited email first"
	case errors.Is(err, service.ErrDuplicateInvitation):
		return http.StatusConflict, "An active invitation already exists for this email"
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, "An account with this email already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, service.ErrInvalidSession):
		return http.StatusUnauthorized, "Your session is invalid or expired"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondServiceError writes a service error as JSON, logging unexpected
// failures
func respondServiceError(w http.ResponseWriter, err error) {
	status, msg := mapServiceError(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// respondBadRequest writes a 400 with the given message
func respondBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
