package handlers

import (
	"net/http"

	"taskhive/internal/service"
)

// LeaveHandler handles leave request lifecycle requests
type LeaveHandler struct {
	leaves *service.LeaveService
}

// NewLeaveHandler creates a new leave request handler
func NewLeaveHandler(leaves *service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaves: leaves}
}

// Request files a leave request for the caller
func (h *LeaveHandler) Request(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid project ID")
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	leave, err := h.leaves.Request(projectID, user.ID, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newLeaveRequestView(leave))
}

// ListByProject returns a project's leave requests for reviewers
func (h *LeaveHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid project ID")
		return
	}

	requests, err := h.leaves.ListByProject(projectID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	views := make([]leaveRequestView, 0, len(requests))
	for i := range requests {
		views = append(views, newLeaveRequestView(&requests[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

// Decide approves or rejects a pending leave request
func (h *LeaveHandler) Decide(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	requestID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid leave request ID")
		return
	}

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	leave, err := h.leaves.Decide(requestID, user.ID, req.Approve)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newLeaveRequestView(leave))
}
