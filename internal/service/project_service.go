package service

import (
	"fmt"
	"strings"

	"taskhive/internal/models"
	"taskhive/internal/repository"
	"taskhive/internal/validation"
)

// ProjectMemberView pairs a membership row with its user record for display
type ProjectMemberView struct {
	Member models.ProjectMember
	User   models.User
}

// ProjectService handles project CRUD and membership
type ProjectService struct {
	projects *repository.ProjectRepository
}

// NewProjectService creates a new project service
func NewProjectService(projects *repository.ProjectRepository) *ProjectService {
	return &ProjectService{projects: projects}
}

// Create creates a project owned by the given user
func (s *ProjectService) Create(ownerID int64, name, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation.ValidationError{Field: "name", Message: "project name is required"}
	}
	return s.projects.CreateProject(name, description, ownerID)
}

// Get loads a project visible to its members
func (s *ProjectService) Get(projectID, actorID int64) (*models.Project, error) {
	project, err := s.projects.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}

	isMember, err := s.projects.IsMember(projectID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check project membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotAuthorized
	}
	return project, nil
}

// ListForUser returns the projects the user belongs to
func (s *ProjectService) ListForUser(userID int64) ([]models.Project, error) {
	return s.projects.GetUserProjects(userID)
}

// Update changes a project's name and description. Only the owner or an
// admin may edit.
func (s *ProjectService) Update(projectID, actorID int64, name, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validation.ValidationError{Field: "name", Message: "project name is required"}
	}

	project, err := s.projects.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}

	role, isMember, err := s.projects.GetMemberRole(projectID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check actor role: %w", err)
	}
	if !isMember || !role.CanReview() {
		return nil, ErrNotAuthorized
	}

	if err := s.projects.UpdateProject(projectID, name, description); err != nil {
		return nil, err
	}
	project.Name = name
	project.Description = description
	return project, nil
}

// EnsureMember idempotently adds a user to a project with the member role.
// Calling it for an existing member is a no-op; the returned bool reports
// whether a new membership was actually created.
func (s *ProjectService) EnsureMember(projectID, userID int64) (bool, error) {
	project, err := s.projects.GetProjectByID(projectID)
	if err != nil {
		return false, err
	}
	if project == nil {
		return false, ErrNotFound
	}
	return s.projects.AddMemberIgnoreExisting(projectID, userID, models.RoleMember)
}

// AddMember lets an owner or admin add a user directly, bypassing the
// invitation flow. Idempotent like EnsureMember.
func (s *ProjectService) AddMember(projectID, actorID, userID int64) (bool, error) {
	role, isMember, err := s.projects.GetMemberRole(projectID, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to check actor role: %w", err)
	}
	if !isMember || !role.CanReview() {
		return false, ErrNotAuthorized
	}
	return s.EnsureMember(projectID, userID)
}

// RemoveMember lets an owner or admin remove a user from the project. The
// owner cannot be removed; ownership transfer is a separate concern.
func (s *ProjectService) RemoveMember(projectID, actorID, userID int64) error {
	project, err := s.projects.GetProjectByID(projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrNotFound
	}
	if project.OwnerID == userID {
		return ErrNotAuthorized
	}

	role, isMember, err := s.projects.GetMemberRole(projectID, actorID)
	if err != nil {
		return fmt.Errorf("failed to check actor role: %w", err)
	}
	if !isMember || !role.CanReview() {
		return ErrNotAuthorized
	}
	return s.projects.RemoveMember(projectID, userID)
}

// Members lists a project's members with their user records, visible to
// members only
func (s *ProjectService) Members(projectID, actorID int64) ([]ProjectMemberView, error) {
	isMember, err := s.projects.IsMember(projectID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check project membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotAuthorized
	}

	members, users, err := s.projects.GetMembers(projectID)
	if err != nil {
		return nil, err
	}

	views := make([]ProjectMemberView, len(members))
	for i := range members {
		views[i] = ProjectMemberView{Member: members[i], User: users[i]}
	}
	return views, nil
}
