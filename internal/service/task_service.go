package service

import (
	"fmt"
	"strings"

	"taskhive/internal/models"
	"taskhive/internal/repository"
	"taskhive/internal/validation"
)

// TaskService handles task CRUD within projects
type TaskService struct {
	tasks    *repository.TaskRepository
	projects *repository.ProjectRepository
}

// NewTaskService creates a new task service
func NewTaskService(tasks *repository.TaskRepository, projects *repository.ProjectRepository) *TaskService {
	return &TaskService{tasks: tasks, projects: projects}
}

// Create adds a task to a project. Any member may create tasks.
func (s *TaskService) Create(projectID, creatorID int64, title, description string) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validation.ValidationError{Field: "title", Message: "task title is required"}
	}

	project, err := s.projects.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}

	isMember, err := s.projects.IsMember(projectID, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check project membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotAuthorized
	}

	return s.tasks.CreateTask(projectID, title, description, creatorID)
}

// Get loads a task visible to project members
func (s *TaskService) Get(taskID, actorID int64) (*models.Task, error) {
	task, err := s.tasks.GetTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}

	isMember, err := s.projects.IsMember(task.ProjectID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check project membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotAuthorized
	}
	return task, nil
}

// ListByProject returns a project's tasks for its members
func (s *TaskService) ListByProject(projectID, actorID int64) ([]models.Task, error) {
	isMember, err := s.projects.IsMember(projectID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check project membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotAuthorized
	}
	return s.tasks.ListByProject(projectID)
}

// UpdateStatus moves a task between progress states
func (s *TaskService) UpdateStatus(taskID, actorID int64, status models.TaskStatus) (*models.Task, error) {
	if !status.IsValid() {
		return nil, ErrInvalidTransition
	}

	task, err := s.Get(taskID, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.UpdateStatus(taskID, status); err != nil {
		return nil, err
	}
	task.Status = status
	return task, nil
}

// Assign sets or clears a task's assignee. The assignee must be a member
// of the task's project.
func (s *TaskService) Assign(taskID, actorID int64, assigneeID *int64) (*models.Task, error) {
	task, err := s.Get(taskID, actorID)
	if err != nil {
		return nil, err
	}

	if assigneeID != nil {
		isMember, err := s.projects.IsMember(task.ProjectID, *assigneeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check assignee membership: %w", err)
		}
		if !isMember {
			return nil, ErrNotAuthorized
		}
	}

	if err := s.tasks.AssignTask(taskID, assigneeID); err != nil {
		return nil, err
	}
	task.AssigneeID = assigneeID
	return task, nil
}
