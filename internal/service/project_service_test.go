package service

import (
	"testing"

	"taskhive/internal/models"
)

func TestProjectCreateAddsOwnerMembership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")

	project, err := env.projectSvc.Create(owner.ID, "Apollo", "moon stuff")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	role, isMember, err := env.projects.GetMemberRole(project.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetMemberRole() returned error: %v", err)
	}
	if !isMember || role != models.RoleOwner {
		t.Errorf("owner membership = (%s, %v), want (owner, true)", role, isMember)
	}
}

func TestProjectGetByNonMember(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	outsider := env.createUser(t, "outsider@example.com", "Oscar Outsider")
	project := env.createProject(t, owner.ID, "Apollo")

	_, err := env.projectSvc.Get(project.ID, outsider.ID)
	assertServiceError(t, err, ErrNotAuthorized)
}

func TestProjectAddMemberIdempotent(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	member := env.createUser(t, "member@example.com", "Mia Member")
	project := env.createProject(t, owner.ID, "Apollo")

	added, err := env.projectSvc.AddMember(project.ID, owner.ID, member.ID)
	if err != nil {
		t.Fatalf("AddMember() returned error: %v", err)
	}
	if !added {
		t.Error("first add should report a new membership")
	}

	added, err = env.projectSvc.AddMember(project.ID, owner.ID, member.ID)
	if err != nil {
		t.Fatalf("second AddMember() returned error: %v", err)
	}
	if added {
		t.Error("second add should be a no-op")
	}

	count, err := env.projects.CountMembershipRows(project.ID, member.ID)
	if err != nil {
		t.Fatalf("CountMembershipRows() returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("membership rows = %d, want 1", count)
	}
}

func TestProjectAddMemberByPlainMember(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	member := env.createUser(t, "member@example.com", "Mia Member")
	other := env.createUser(t, "other@example.com", "Oren Other")
	project := env.createProject(t, owner.ID, "Apollo")
	if _, err := env.projects.AddMemberIgnoreExisting(project.ID, member.ID, models.RoleMember); err != nil {
		t.Fatalf("AddMemberIgnoreExisting() returned error: %v", err)
	}

	_, err := env.projectSvc.AddMember(project.ID, member.ID, other.ID)
	assertServiceError(t, err, ErrNotAuthorized)
}

func TestProjectRemoveMember(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	member := env.createUser(t, "member@example.com", "Mia Member")
	project := env.createProject(t, owner.ID, "Apollo")
	if _, err := env.projects.AddMemberIgnoreExisting(project.ID, member.ID, models.RoleMember); err != nil {
		t.Fatalf("AddMemberIgnoreExisting() returned error: %v", err)
	}

	if err := env.projectSvc.RemoveMember(project.ID, owner.ID, member.ID); err != nil {
		t.Fatalf("RemoveMember() returned error: %v", err)
	}

	isMember, err := env.projects.IsMember(project.ID, member.ID)
	if err != nil {
		t.Fatalf("IsMember() returned error: %v", err)
	}
	if isMember {
		t.Error("member should be gone")
	}
}

func TestProjectRemoveOwnerRefused(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	project := env.createProject(t, owner.ID, "Apollo")

	err := env.projectSvc.RemoveMember(project.ID, owner.ID, owner.ID)
	assertServiceError(t, err, ErrNotAuthorized)
}
