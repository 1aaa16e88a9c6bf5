package handlers

import (
	"net/http"
	"strconv"

	"taskhive/internal/service"
)

// ProjectHandler handles project CRUD and membership requests
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// pathID parses the {id} path value as an int64
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// Create creates a project owned by the caller
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	project, err := h.projects.Create(user.ID, req.Name, req.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newProjectView(project))
}

// List returns the caller's projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	projects, err := h.projects.ListForUser(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	views := make([]projectView, 0, len(projects))
	for i := range projects {
		views = append(views, newProjectView(&projects[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

// Get returns one project
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid project ID")
		return
	}

	project, err := h.projects.Get(projectID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(project))
}

// Update edits a project's name and description
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid project ID")
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	project, err := h.projects.Update(projectID, user.ID, req.Name, req.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(project))
}

// AddMember adds a user to the project directly, bypassing the invitation
// flow. Adding an existing member is a no-op.
func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid project ID")
		return
	}

	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil || req.UserID <= 0 {
		respondBadRequest(w, "Invalid request body")
		return
	}

	added, err := h.projects.AddMember(projectID, user.ID, req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"added": added})
}

// RemoveMember removes a user from the project
func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid project ID")
		return
	}
	memberID, ok := pathID(r, "userID")
	if !ok {
		respondBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.projects.RemoveMember(projectID, user.ID, memberID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Members lists a project's members
func (h *ProjectHandler) Members(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid project ID")
		return
	}

	members, err := h.projects.Members(projectID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, memberView{
			UserID:   m.User.ID,
			Name:     m.User.Name,
			Email:    m.User.Email,
			Role:     string(m.Member.Role),
			JoinedAt: m.Member.JoinedAt,
		})
	}
	writeJSON(w, http.StatusOK, views)
}
