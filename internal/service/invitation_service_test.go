package service

import (
	"sync"
	"testing"
	"time"

	"taskhive/internal/models"
)

func TestInvitationAcceptHappyPath(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	invitee := env.createUser(t, "invitee@example.com", "Ivan Invitee")
	project := env.createProject(t, owner.ID, "Apollo")

	inv, err := env.invitationSvc.Create(project.ID, owner.ID, invitee.Email, "join us")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}
	if inv.Status != models.InvitationPending {
		t.Fatalf("new invitation status = %s, want pending", inv.Status)
	}
	if inv.InviteeID == nil || *inv.InviteeID != invitee.ID {
		t.Error("invitee account should be linked at create time")
	}

	accepted, err := env.invitationSvc.Accept(inv.Token, invitee)
	if err != nil {
		t.Fatalf("Accept() returned error: %v", err)
	}
	if accepted.Status != models.InvitationAccepted {
		t.Errorf("status = %s, want accepted", accepted.Status)
	}
	if accepted.AcceptedAt == nil {
		t.Error("accepted_at should be set")
	}

	isMember, err := env.projects.IsMember(project.ID, invitee.ID)
	if err != nil {
		t.Fatalf("IsMember() returned error: %v", err)
	}
	if !isMember {
		t.Error("accepting should create the membership")
	}

	if got := countNotifications(t, env, owner.ID, models.NotificationInvitationAccepted); got != 1 {
		t.Errorf("inviter got %d accepted notifications, want 1", got)
	}
	if got := countNotifications(t, env, invitee.ID, models.NotificationProjectJoined); got != 1 {
		t.Errorf("invitee got %d joined notifications, want 1", got)
	}

	env.drainEmails()
	if got := env.transport.sentTo(invitee.Email); got < 2 {
		// invitation email at create + welcome email at accept
		t.Errorf("invitee received %d emails, want at least 2", got)
	}
}

func TestInvitationAcceptTwiceSequential(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	invitee := env.createUser(t, "invitee@example.com", "Ivan Invitee")
	project := env.createProject(t, owner.ID, "Apollo")

	inv, err := env.invitationSvc.Create(project.ID, owner.ID, invitee.Email, "")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	if _, err := env.invitationSvc.Accept(inv.Token, invitee); err != nil {
		t.Fatalf("first Accept() returned error: %v", err)
	}
	_, err = env.invitationSvc.Accept(inv.Token, invitee)
	assertServiceError(t, err, ErrAlreadyProcessed)

	// Exactly one membership row despite the repeat
	count, err := env.projects.CountMembershipRows(project.ID, invitee.ID)
	if err != nil {
		t.Fatalf("CountMembershipRows() returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("membership rows = %d, want 1", count)
	}
}

func TestInvitationAcceptConcurrent(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	invitee := env.createUser(t, "invitee@example.com", "Ivan Invitee")
	project := env.createProject(t, owner.ID, "Apollo")

	inv, err := env.invitationSvc.Create(project.ID, owner.ID, invitee.Email, "")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.invitationSvc.Accept(inv.Token, invitee)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			assertServiceError(t, err, ErrAlreadyProcessed)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}

	count, err := env.projects.CountMembershipRows(project.ID, invitee.ID)
	if err != nil {
		t.Fatalf("CountMembershipRows() returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("membership rows = %d, want 1", count)
	}

	// Only the winner fans out
	if got := countNotifications(t, env, owner.ID, models.NotificationInvitationAccepted); got != 1 {
		t.Errorf("inviter got %d accepted notifications, want 1", got)
	}
}

func TestInvitationAcceptExpired(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	invitee := env.createUser(t, "invitee@example.com", "Ivan Invitee")
	project := env.createProject(t, owner.ID, "Apollo")

	inv, err := env.invitationSvc.Create(project.ID, owner.ID, invitee.Email, "")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	// Move the service clock past the deadline
	env.invitationSvc.now = func() time.Time { return inv.ExpiresAt.Add(time.Minute) }

	_, err = env.invitationSvc.Accept(inv.Token, invitee)
	assertServiceError(t, err, ErrExpired)

	// The row is untouched: still pending in storage
	stored, err := env.invitations.GetByToken(inv.Token)
	if err != nil {
		t.Fatalf("GetByToken() returned error: %v", err)
	}
	if stored.Status != models.InvitationPending {
		t.Errorf("stored status = %s, want pending", stored.Status)
	}

	isMember, err := env.projects.IsMember(project.ID, invitee.ID)
	if err != nil {
		t.Fatalf("IsMember() returned error: %v", err)
	}
	if isMember {
		t.Error("expired accept must not create a membership")
	}
}

func TestInvitationRejectThenAccept(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	invitee := env.createUser(t, "invitee@example.com", "Ivan Invitee")
	project := env.createProject(t, owner.ID, "Apollo")

	inv, err := env.invitationSvc.Create(project.ID, owner.ID, invitee.Email, "")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	rejected, err := env.invitationSvc.Reject(inv.Token)
	if err != nil {
		t.Fatalf("Reject() returned error: %v", err)
	}
	if rejected.Status != models.InvitationRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}
	if rejected.RejectedAt == nil {
		t.Error("rejected_at should be set")
	}

	_, err = env.invitationSvc.Accept(inv.Token, invitee)
	assertServiceError(t, err, ErrAlreadyProcessed)

	isMember, err := env.projects.IsMember(project.ID, invitee.ID)
	if err != nil {
		t.Fatalf("IsMember() returned error: %v", err)
	}
	if isMember {
		t.Error("accept after reject must not create a membership")
	}

	if got := countNotifications(t, env, owner.ID, models.NotificationInvitationRejected); got != 1 {
		t.Errorf("inviter got %d rejected notifications, want 1", got)
	}
}

func TestInvitationAcceptWrongUser(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	stranger := env.createUser(t, "stranger@example.com", "Sam Stranger")
	project := env.createProject(t, owner.ID, "Apollo")

	inv, err := env.invitationSvc.Create(project.ID, owner.ID, "invitee@example.com", "")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	_, err = env.invitationSvc.Accept(inv.Token, stranger)
	assertServiceError(t, err, ErrNotAuthorized)
}

func TestInvitationAcceptWithoutAccount(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	project := env.createProject(t, owner.ID, "Apollo")

	inv, err := env.invitationSvc.Create(project.ID, owner.ID, "nobody@example.com", "")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	// Anonymous visitor, invited email has no account yet
	_, err = env.invitationSvc.Accept(inv.Token, nil)
	assertServiceError(t, err, ErrAccountRequired)

	// The invitation is still usable after registration
	invitee := env.createUser(t, "nobody@example.com", "Newly Registered")
	if _, err := env.invitationSvc.Accept(inv.Token, invitee); err != nil {
		t.Fatalf("Accept() after registration returned error: %v", err)
	}
}

func TestInvitationAcceptUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user@example.com", "User")

	_, err := env.invitationSvc.Accept("deadbeef", user)
	assertServiceError(t, err, ErrNotFound)
}

func TestInvitationCreateDuplicatePending(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	project := env.createProject(t, owner.ID, "Apollo")

	if _, err := env.invitationSvc.Create(project.ID, owner.ID, "invitee@example.com", ""); err != nil {
		t.Fatalf("first Create() returned error: %v", err)
	}
	_, err := env.invitationSvc.Create(project.ID, owner.ID, "invitee@example.com", "")
	assertServiceError(t, err, ErrDuplicateInvitation)
}

func TestInvitationCreateByNonMember(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	outsider := env.createUser(t, "outsider@example.com", "Oscar Outsider")
	project := env.createProject(t, owner.ID, "Apollo")

	_, err := env.invitationSvc.Create(project.ID, outsider.ID, "invitee@example.com", "")
	assertServiceError(t, err, ErrNotAuthorized)
}

func TestInvitationAcceptEmailFailureDoesNotFailTransition(t *testing.T) {
	env := newTestEnv(t)
	env.transport.sendErr = errTransportDown

	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	invitee := env.createUser(t, "invitee@example.com", "Ivan Invitee")
	project := env.createProject(t, owner.ID, "Apollo")

	inv, err := env.invitationSvc.Create(project.ID, owner.ID, invitee.Email, "")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	accepted, err := env.invitationSvc.Accept(inv.Token, invitee)
	if err != nil {
		t.Fatalf("Accept() must succeed despite email failure, got: %v", err)
	}
	if accepted.Status != models.InvitationAccepted {
		t.Errorf("status = %s, want accepted", accepted.Status)
	}

	// The durable in-app notifications still landed
	if got := countNotifications(t, env, invitee.ID, models.NotificationProjectJoined); got != 1 {
		t.Errorf("invitee got %d joined notifications, want 1", got)
	}
}

func TestInvitationAcceptAlreadyMember(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	invitee := env.createUser(t, "invitee@example.com", "Ivan Invitee")
	project := env.createProject(t, owner.ID, "Apollo")

	inv, err := env.invitationSvc.Create(project.ID, owner.ID, invitee.Email, "")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	// Admin added the user directly before they clicked the link
	if _, err := env.projects.AddMemberIgnoreExisting(project.ID, invitee.ID, models.RoleMember); err != nil {
		t.Fatalf("AddMemberIgnoreExisting() returned error: %v", err)
	}

	if _, err := env.invitationSvc.Accept(inv.Token, invitee); err != nil {
		t.Fatalf("Accept() for an existing member returned error: %v", err)
	}

	count, err := env.projects.CountMembershipRows(project.ID, invitee.ID)
	if err != nil {
		t.Fatalf("CountMembershipRows() returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("membership rows = %d, want 1", count)
	}
}

func TestExpiredPendingCount(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com", "Olive Owner")
	project := env.createProject(t, owner.ID, "Apollo")

	inv, err := env.invitationSvc.Create(project.ID, owner.ID, "a@example.com", "")
	if err != nil {
		t.Fatalf("Create() returned error: %v", err)
	}

	count, err := env.invitationSvc.ExpiredPendingCount()
	if err != nil {
		t.Fatalf("ExpiredPendingCount() returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("fresh invitation counted as expired: %d", count)
	}

	env.invitationSvc.now = func() time.Time { return inv.ExpiresAt.Add(time.Hour) }
	count, err = env.invitationSvc.ExpiredPendingCount()
	if err != nil {
		t.Fatalf("ExpiredPendingCount() returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("expired pending count = %d, want 1", count)
	}
}
