package repository

import (
	"database/sql"
	"fmt"
	"time"

	"taskhive/internal/database"
	"taskhive/internal/models"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	q database.DBTX
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{q: db}
}

// CreateTask creates a new task in a project
func (r *TaskRepository) CreateTask(projectID int64, title, description string, createdBy int64) (*models.Task, error) {
	query := `
		INSERT INTO tasks (project_id, title, description, status, created_by)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.q.ExecReturningID(query, projectID, title, description, string(models.TaskTodo), createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return &models.Task{
		ID:          id,
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      models.TaskTodo,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}, nil
}

// GetTaskByID retrieves a task by ID, or nil if it does not exist
func (r *TaskRepository) GetTaskByID(taskID int64) (*models.Task, error) {
	query := `
		SELECT id, project_id, title, description, status, assignee_id, created_by, created_at, updated_at
		FROM tasks WHERE id = ?
	`
	task := &models.Task{}
	var assigneeID sql.NullInt64
	var status string
	err := r.q.QueryRow(query, taskID).Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description,
		&status, &assigneeID, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	task.Status = models.TaskStatus(status)
	if assigneeID.Valid {
		task.AssigneeID = &assigneeID.Int64
	}
	return task, nil
}

// ListByProject retrieves all tasks in a project, newest first
func (r *TaskRepository) ListByProject(projectID int64) ([]models.Task, error) {
	query := `
		SELECT id, project_id, title, description, status, assignee_id, created_by, created_at, updated_at
		FROM tasks WHERE project_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.q.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		var assigneeID sql.NullInt64
		var status string
		if err := rows.Scan(
			&task.ID, &task.ProjectID, &task.Title, &task.Description,
			&status, &assigneeID, &task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		task.Status = models.TaskStatus(status)
		if assigneeID.Valid {
			task.AssigneeID = &assigneeID.Int64
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// UpdateStatus sets a task's progress status
func (r *TaskRepository) UpdateStatus(taskID int64, status models.TaskStatus) error {
	query := "UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.q.Exec(query, string(status), taskID); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}

// AssignTask sets or clears a task's assignee
func (r *TaskRepository) AssignTask(taskID int64, assigneeID *int64) error {
	query := "UPDATE tasks SET assignee_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.q.Exec(query, assigneeID, taskID); err != nil {
		return fmt.Errorf("failed to assign task: %w", err)
	}
	return nil
}
