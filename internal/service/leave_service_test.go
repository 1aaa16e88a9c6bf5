package service

import (
	"testing"

	"taskhive/internal/models"
)

func TestLeaveRequestApproveRemovesMembership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	member := env.createUser(t, "member@example.com", "Mia Member")
	project := env.createProject(t, owner.ID, "Apollo")
	if _, err := env.projects.AddMemberIgnoreExisting(project.ID, member.ID, models.RoleMember); err != nil {
		t.Fatalf("AddMemberIgnoreExisting() returned error: %v", err)
	}

	req, err := env.leaveSvc.Request(project.ID, member.ID, "moving teams")
	if err != nil {
		t.Fatalf("Request() returned error: %v", err)
	}
	if req.Status != models.LeavePending {
		t.Errorf("status = %s, want pending", req.Status)
	}
	if got := countNotifications(t, env, owner.ID, models.NotificationLeaveRequested); got != 1 {
		t.Errorf("owner got %d leave notifications, want 1", got)
	}

	decided, err := env.leaveSvc.Decide(req.ID, owner.ID, true)
	if err != nil {
		t.Fatalf("Decide() returned error: %v", err)
	}
	if decided.Status != models.LeaveApproved {
		t.Errorf("status = %s, want approved", decided.Status)
	}
	if decided.DecidedBy == nil || *decided.DecidedBy != owner.ID {
		t.Error("decider not recorded")
	}

	isMember, err := env.projects.IsMember(project.ID, member.ID)
	if err != nil {
		t.Fatalf("IsMember() returned error: %v", err)
	}
	if isMember {
		t.Error("approval should remove the membership")
	}

	if got := countNotifications(t, env, member.ID, models.NotificationLeaveApproved); got != 1 {
		t.Errorf("requester got %d approval notifications, want 1", got)
	}
}

func TestLeaveRequestRejectKeepsMembership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	member := env.createUser(t, "member@example.com", "Mia Member")
	project := env.createProject(t, owner.ID, "Apollo")
	if _, err := env.projects.AddMemberIgnoreExisting(project.ID, member.ID, models.RoleMember); err != nil {
		t.Fatalf("AddMemberIgnoreExisting() returned error: %v", err)
	}

	req, err := env.leaveSvc.Request(project.ID, member.ID, "second thoughts")
	if err != nil {
		t.Fatalf("Request() returned error: %v", err)
	}

	decided, err := env.leaveSvc.Decide(req.ID, owner.ID, false)
	if err != nil {
		t.Fatalf("Decide() returned error: %v", err)
	}
	if decided.Status != models.LeaveRejected {
		t.Errorf("status = %s, want rejected", decided.Status)
	}

	isMember, err := env.projects.IsMember(project.ID, member.ID)
	if err != nil {
		t.Fatalf("IsMember() returned error: %v", err)
	}
	if !isMember {
		t.Error("rejection must not remove the membership")
	}
}

func TestLeaveRequestDecideTwice(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	member := env.createUser(t, "member@example.com", "Mia Member")
	project := env.createProject(t, owner.ID, "Apollo")
	if _, err := env.projects.AddMemberIgnoreExisting(project.ID, member.ID, models.RoleMember); err != nil {
		t.Fatalf("AddMemberIgnoreExisting() returned error: %v", err)
	}

	req, err := env.leaveSvc.Request(project.ID, member.ID, "")
	if err != nil {
		t.Fatalf("Request() returned error: %v", err)
	}

	if _, err := env.leaveSvc.Decide(req.ID, owner.ID, false); err != nil {
		t.Fatalf("first Decide() returned error: %v", err)
	}
	_, err = env.leaveSvc.Decide(req.ID, owner.ID, true)
	assertServiceError(t, err, ErrAlreadyProcessed)

	// The rejection stands and the member stays
	isMember, err := env.projects.IsMember(project.ID, member.ID)
	if err != nil {
		t.Fatalf("IsMember() returned error: %v", err)
	}
	if !isMember {
		t.Error("second decide must not remove the membership")
	}
}

func TestLeaveRequestByOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	project := env.createProject(t, owner.ID, "Apollo")

	_, err := env.leaveSvc.Request(project.ID, owner.ID, "abandoning ship")
	assertServiceError(t, err, ErrNotAuthorized)
}

func TestLeaveRequestByNonMember(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	outsider := env.createUser(t, "outsider@example.com", "Oscar Outsider")
	project := env.createProject(t, owner.ID, "Apollo")

	_, err := env.leaveSvc.Request(project.ID, outsider.ID, "")
	assertServiceError(t, err, ErrNotAuthorized)
}

func TestLeaveRequestDecideByPlainMember(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	member := env.createUser(t, "member@example.com", "Mia Member")
	other := env.createUser(t, "other@example.com", "Oren Other")
	project := env.createProject(t, owner.ID, "Apollo")
	for _, u := range []*models.User{member, other} {
		if _, err := env.projects.AddMemberIgnoreExisting(project.ID, u.ID, models.RoleMember); err != nil {
			t.Fatalf("AddMemberIgnoreExisting() returned error: %v", err)
		}
	}

	req, err := env.leaveSvc.Request(project.ID, member.ID, "")
	if err != nil {
		t.Fatalf("Request() returned error: %v", err)
	}

	_, err = env.leaveSvc.Decide(req.ID, other.ID, true)
	assertServiceError(t, err, ErrNotAuthorized)
}
