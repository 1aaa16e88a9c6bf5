package models

import "time"

type Project struct {
	ID          int64
	Name        string
	Description string
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MemberRole is the role a user holds within a project
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// IsValid reports whether the role is one of the known roles
func (r MemberRole) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanReview reports whether the role may review submissions and decide
// leave requests
func (r MemberRole) CanReview() bool {
	return r == RoleOwner || r == RoleAdmin
}

// ProjectMember is the materialized (project, user, role) grant.
// The (project_id, user_id) pair is unique at the database level, which is
// what makes membership creation idempotent.
type ProjectMember struct {
	ID        int64
	ProjectID int64
	UserID    int64
	Role      MemberRole
	JoinedAt  time.Time
}
