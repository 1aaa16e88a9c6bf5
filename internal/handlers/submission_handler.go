package handlers

import (
	"net/http"

	"taskhive/internal/models"
	"taskhive/internal/service"
)

// SubmissionHandler handles submission and review requests
type SubmissionHandler struct {
	submissions *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Submit records a new submission against a task
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid task ID")
		return
	}

	var req struct {
		Text     string   `json:"text"`
		FileRefs []string `json:"file_refs"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	sub, err := h.submissions.Submit(taskID, user.ID, req.Text, req.FileRefs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSubmissionView(sub))
}

// ListByTask returns a task's submissions, newest first
func (h *SubmissionHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid task ID")
		return
	}

	submissions, err := h.submissions.ListByTask(taskID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	views := make([]submissionView, 0, len(submissions))
	for i := range submissions {
		views = append(views, newSubmissionView(&submissions[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

// Latest returns the task's current submission, or 404 if the task has
// never been submitted
func (h *SubmissionHandler) Latest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid task ID")
		return
	}

	sub, err := h.submissions.Latest(taskID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if sub == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "No submissions yet"})
		return
	}
	writeJSON(w, http.StatusOK, newSubmissionView(sub))
}

// Get returns one submission
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	submissionID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid submission ID")
		return
	}

	sub, err := h.submissions.Get(submissionID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubmissionView(sub))
}

// Review applies a review decision to a pending submission
func (h *SubmissionHandler) Review(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	submissionID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid submission ID")
		return
	}

	var req struct {
		Decision string `json:"decision"`
		Feedback string `json:"feedback"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	sub, err := h.submissions.Review(submissionID, user.ID, models.SubmissionStatus(req.Decision), req.Feedback)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSubmissionView(sub))
}
