package handlers

import (
	"net/http"

	"taskhive/internal/models"
	"taskhive/internal/service"
)

// TaskHandler handles task CRUD requests
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create adds a task to a project
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid project ID")
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	task, err := h.tasks.Create(projectID, user.ID, req.Title, req.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTaskView(task))
}

// ListByProject returns a project's tasks
func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	projectID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid project ID")
		return
	}

	tasks, err := h.tasks.ListByProject(projectID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	views := make([]taskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, newTaskView(&tasks[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

// Get returns one task
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid task ID")
		return
	}

	task, err := h.tasks.Get(taskID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskView(task))
}

// UpdateStatus moves a task between progress states
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid task ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	task, err := h.tasks.UpdateStatus(taskID, user.ID, models.TaskStatus(req.Status))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskView(task))
}

// Assign sets or clears a task's assignee
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid task ID")
		return
	}

	var req struct {
		AssigneeID *int64 `json:"assignee_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "Invalid request body")
		return
	}

	task, err := h.tasks.Assign(taskID, user.ID, req.AssigneeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTaskView(task))
}
