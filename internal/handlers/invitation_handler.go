package handlers

import (
	"net/http"
	"time"

	"taskhive/internal/service"
)

// InvitationHandler handles invitation lifecycle requests. Lookup, accept
// and reject are keyed by the emailed token rather than a numeric ID, and
// accept/reject work for visitors who are not logged in yet.
type InvitationHandler struct {
	invitations *service.InvitationService
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitations *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// Create issues an invitation to join a project
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid project ID")
		return
	}

	var req struct {
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	inv, err := h.invitations.Create(projectID, user.ID, req.Email, req.Message)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newInvitationView(inv, time.Now()))
}

// ListByProject returns a project's invitations
func (h *InvitationHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid project ID")
		return
	}

	invitations, err := h.invitations.ListByProject(projectID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	now := time.Now()
	views := make([]invitationView, 0, len(invitations))
	for i := range invitations {
		views = append(views, newInvitationView(&invitations[i], now))
	}
	writeJSON(w, http.StatusOK, views)
}

// Lookup is the public landing endpoint behind the emailed link. It shows
// the invitation and whether the invited email already has an account, so
// the frontend can route to login or registration.
func (h *InvitationHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondBadRequest(w, "Missing invitation token")
		return
	}

	inv, accountExists, err := h.invitations.Lookup(token)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"invitation":     newInvitationView(inv, time.Now()),
		"account_exists": accountExists,
	})
}

// Accept applies the accept transition. Requires a session; an anonymous
// visitor gets a response telling them to log in or register first.
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondBadRequest(w, "Missing invitation token")
		return
	}

	user := GetUserFromContext(r.Context())
	inv, err := h.invitations.Accept(token, user)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvitationView(inv, time.Now()))
}

// Reject applies the reject transition. Holding the emailed token is
// sufficient authority; no session is required.
func (h *InvitationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondBadRequest(w, "Missing invitation token")
		return
	}

	inv, err := h.invitations.Reject(token)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvitationView(inv, time.Now()))
}
