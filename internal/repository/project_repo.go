package repository

import (
	"database/sql"
	"fmt"
	"time"

	"taskhive/internal/database"
	"taskhive/internal/models"
)

// ProjectRepository handles database operations for projects and memberships
type ProjectRepository struct {
	db *database.DB
	q  database.DBTX
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *database.DB) *ProjectRepository {
	return &ProjectRepository{db: db, q: db}
}

// WithTx returns a copy of the repository whose statements run on the
// given transaction
func (r *ProjectRepository) WithTx(tx *database.Tx) *ProjectRepository {
	return &ProjectRepository{db: r.db, q: tx}
}

// CreateProject creates a new project and adds the creator as its owner.
// Both writes happen in one transaction so a project can never exist
// without an owner membership.
func (r *ProjectRepository) CreateProject(name, description string, ownerID int64) (*models.Project, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO projects (name, description, owner_id) VALUES (?, ?, ?)"
	projectID, err := tx.ExecReturningID(query, name, description, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	query = "INSERT INTO project_members (project_id, user_id, role) VALUES (?, ?, ?)"
	if _, err := tx.Exec(query, projectID, ownerID, string(models.RoleOwner)); err != nil {
		return nil, fmt.Errorf("failed to add project owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Project{
		ID:          projectID,
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}, nil
}

// GetProjectByID retrieves a project by ID, or nil if it does not exist
func (r *ProjectRepository) GetProjectByID(projectID int64) (*models.Project, error) {
	query := "SELECT id, name, description, owner_id, created_at, updated_at FROM projects WHERE id = ?"
	project := &models.Project{}
	err := r.q.QueryRow(query, projectID).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.OwnerID,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// GetUserProjects retrieves all projects a user is a member of
func (r *ProjectRepository) GetUserProjects(userID int64) ([]models.Project, error) {
	query := `
		SELECT p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at
		FROM projects p
		INNER JOIN project_members pm ON p.id = pm.project_id
		WHERE pm.user_id = ?
		ORDER BY p.created_at DESC
	`
	rows, err := r.q.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(&project.ID, &project.Name, &project.Description,
			&project.OwnerID, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// UpdateProject updates a project's name and description
func (r *ProjectRepository) UpdateProject(projectID int64, name, description string) error {
	query := "UPDATE projects SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.q.Exec(query, name, description, projectID); err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// AddMemberIgnoreExisting inserts a membership row, doing nothing if the
// (project, user) pair already exists. Returns whether a row was inserted.
// Already-a-member is the expected common case, never an error.
func (r *ProjectRepository) AddMemberIgnoreExisting(projectID, userID int64, role models.MemberRole) (bool, error) {
	query := r.q.GetDialect().InsertIgnoreQuery(
		"project_members",
		[]string{"project_id", "user_id", "role"},
		[]string{"project_id", "user_id"},
	)
	result, err := r.q.Exec(query, projectID, userID, string(role))
	if err != nil {
		return false, fmt.Errorf("failed to add project member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check membership insert: %w", err)
	}
	return affected > 0, nil
}

// IsMember checks if a user is a member of a project
func (r *ProjectRepository) IsMember(projectID, userID int64) (bool, error) {
	query := "SELECT COUNT(*) FROM project_members WHERE project_id = ? AND user_id = ?"
	var count int
	if err := r.q.QueryRow(query, projectID, userID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check project membership: %w", err)
	}
	return count > 0, nil
}

// GetMemberRole returns the role a user holds in a project, and whether
// they are a member at all
func (r *ProjectRepository) GetMemberRole(projectID, userID int64) (models.MemberRole, bool, error) {
	query := "SELECT role FROM project_members WHERE project_id = ? AND user_id = ?"
	var role string
	err := r.q.QueryRow(query, projectID, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get member role: %w", err)
	}
	return models.MemberRole(role), true, nil
}

// GetMembers retrieves all members of a project with their user records
func (r *ProjectRepository) GetMembers(projectID int64) ([]models.ProjectMember, []models.User, error) {
	query := `
		SELECT pm.id, pm.project_id, pm.user_id, pm.role, pm.joined_at,
		       u.id, u.email, u.name, u.created_at
		FROM project_members pm
		INNER JOIN users u ON pm.user_id = u.id
		WHERE pm.project_id = ?
		ORDER BY pm.joined_at ASC
	`
	rows, err := r.q.Query(query, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query project members: %w", err)
	}
	defer rows.Close()

	var members []models.ProjectMember
	var users []models.User
	for rows.Next() {
		var member models.ProjectMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.ProjectID, &member.UserID, &member.Role, &member.JoinedAt,
			&user.ID, &user.Email, &user.Name, &user.CreatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan project member: %w", err)
		}
		members = append(members, member)
		users = append(users, user)
	}

	return members, users, nil
}

// CountMembershipRows counts membership rows for a (project, user) pair
func (r *ProjectRepository) CountMembershipRows(projectID, userID int64) (int, error) {
	query := "SELECT COUNT(*) FROM project_members WHERE project_id = ? AND user_id = ?"
	var count int
	if err := r.q.QueryRow(query, projectID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count membership rows: %w", err)
	}
	return count, nil
}

// RemoveMember removes a user from a project
func (r *ProjectRepository) RemoveMember(projectID, userID int64) error {
	query := "DELETE FROM project_members WHERE project_id = ? AND user_id = ?"
	if _, err := r.q.Exec(query, projectID, userID); err != nil {
		return fmt.Errorf("failed to remove project member: %w", err)
	}
	return nil
}
