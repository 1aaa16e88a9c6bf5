package service

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"taskhive/internal/database"
	"taskhive/internal/models"
	"taskhive/internal/repository"
	"taskhive/internal/security"
	"taskhive/internal/validation"
)

// AccountLookup resolves user accounts without pulling in the full auth
// subsystem. Invitation creation and acceptance only need these two
// lookups.
type AccountLookup interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id int64) (*models.User, error)
}

// InvitationService drives the project invitation state machine:
// pending -> accepted | rejected, with expiry derived at read time.
type InvitationService struct {
	db          *database.DB
	invitations *repository.InvitationRepository
	projects    *repository.ProjectRepository
	accounts    AccountLookup
	tokens      *security.TokenIssuer
	notifier    *Notifier
	baseURL     string
	now         func() time.Time
}

// NewInvitationService creates a new invitation service
func NewInvitationService(
	db *database.DB,
	invitations *repository.InvitationRepository,
	projects *repository.ProjectRepository,
	accounts AccountLookup,
	tokens *security.TokenIssuer,
	notifier *Notifier,
	baseURL string,
) *InvitationService {
	return &InvitationService{
		db:          db,
		invitations: invitations,
		projects:    projects,
		accounts:    accounts,
		tokens:      tokens,
		notifier:    notifier,
		baseURL:     baseURL,
		now:         time.Now,
	}
}

// Create issues a new pending invitation. The invitee does not need an
// account yet; account creation is deferred to acceptance time.
func (s *InvitationService) Create(projectID, inviterID int64, inviteeEmail, message string) (*models.Invitation, error) {
	if err := validation.ValidateEmail(inviteeEmail); err != nil {
		return nil, err
	}

	project, err := s.projects.GetProjectByID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}

	inviter, err := s.accounts.FindByID(inviterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inviter: %w", err)
	}
	if inviter == nil {
		return nil, ErrNotFound
	}

	if _, isMember, err := s.projects.GetMemberRole(projectID, inviterID); err != nil {
		return nil, fmt.Errorf("failed to check inviter membership: %w", err)
	} else if !isMember {
		return nil, ErrNotAuthorized
	}

	outstanding, err := s.invitations.HasActivePending(projectID, inviteeEmail, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to check outstanding invitations: %w", err)
	}
	if outstanding {
		return nil, ErrDuplicateInvitation
	}

	token, expiresAt, err := s.tokens.Issue()
	if err != nil {
		return nil, fmt.Errorf("failed to issue invitation token: %w", err)
	}

	// Resolve the invitee lazily: link the account if one exists, but
	// never fail when it doesn't.
	var inviteeID *int64
	invitee, err := s.accounts.FindByEmail(inviteeEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invitee: %w", err)
	}
	if invitee != nil {
		inviteeID = &invitee.ID
	}

	inv := &models.Invitation{
		ProjectID:    projectID,
		InviterID:    inviterID,
		InviteeEmail: inviteeEmail,
		InviteeID:    inviteeID,
		Token:        token,
		Message:      message,
		Status:       models.InvitationPending,
		ExpiresAt:    expiresAt,
		CreatedAt:    s.now(),
		UpdatedAt:    s.now(),
		InviterName:  inviter.Name,
	}
	if err := s.invitations.Create(inv); err != nil {
		return nil, err
	}

	s.dispatch(inviterID, models.NotificationInvitationSent,
		"Invitation sent",
		fmt.Sprintf("You invited %s to join %s", inviteeEmail, project.Name),
		invitationMetadata(inv))
	s.notifier.SendEmail(invitationEmail(s.baseURL, inviteeEmail, inviter.Name, project.Name, message, token))

	return inv, nil
}

// Lookup loads an invitation by token for the public landing page and
// reports whether an account already exists for the invited email, so the
// caller can route the visitor to login or registration.
func (s *InvitationService) Lookup(token string) (*models.Invitation, bool, error) {
	inv, err := s.invitations.GetByToken(token)
	if err != nil {
		return nil, false, err
	}
	if inv == nil {
		return nil, false, ErrNotFound
	}

	account, err := s.accounts.FindByEmail(inv.InviteeEmail)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up invitee account: %w", err)
	}
	return inv, account != nil, nil
}

// Accept applies the pending -> accepted transition and materializes the
// project membership in the same transaction. The conditional update is
// the single source of truth for idempotency: when two requests race, the
// loser sees zero rows affected, gets ErrAlreadyProcessed, and performs no
// side effects.
func (s *InvitationService) Accept(token string, actingUser *models.User) (*models.Invitation, error) {
	inv, err := s.invitations.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	if inv.Status.IsTerminal() {
		return nil, ErrAlreadyProcessed
	}
	if inv.IsExpiredAt(s.now()) {
		// The row stays pending; expiry is a derived, user-facing
		// terminal condition, not a persisted write.
		return nil, ErrExpired
	}

	if actingUser == nil {
		account, err := s.accounts.FindByEmail(inv.InviteeEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to look up invitee account: %w", err)
		}
		if account == nil {
			return nil, ErrAccountRequired
		}
		return nil, ErrNotAuthorized
	}

	if actingUser.Email != inv.InviteeEmail && (inv.InviteeID == nil || *inv.InviteeID != actingUser.ID) {
		return nil, ErrNotAuthorized
	}

	now := s.now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	accepted, err := s.invitations.WithTx(tx).MarkAccepted(token, actingUser.ID, now)
	if err != nil {
		return nil, err
	}
	if !accepted {
		// Lost the race to a concurrent accept or reject.
		return nil, ErrAlreadyProcessed
	}

	// Membership creation rides in the same transaction so a crash can
	// never leave the invitation accepted without a membership. The
	// insert ignores an existing row: an admin may have added the user
	// directly before they clicked the link.
	if _, err := s.projects.WithTx(tx).AddMemberIgnoreExisting(inv.ProjectID, actingUser.ID, models.RoleMember); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit accept transaction: %w", err)
	}

	inv.Status = models.InvitationAccepted
	inv.AcceptedAt = &now
	inv.InviteeID = &actingUser.ID
	inv.UpdatedAt = now

	s.fanOutAccepted(inv, actingUser)

	return inv, nil
}

// Reject applies the pending -> rejected transition. Same loading, expiry,
// and idempotency rules as Accept; no membership side effect.
func (s *InvitationService) Reject(token string) (*models.Invitation, error) {
	inv, err := s.invitations.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	if inv.Status.IsTerminal() {
		return nil, ErrAlreadyProcessed
	}
	if inv.IsExpiredAt(s.now()) {
		return nil, ErrExpired
	}

	now := s.now()
	rejected, err := s.invitations.MarkRejected(token, now)
	if err != nil {
		return nil, err
	}
	if !rejected {
		return nil, ErrAlreadyProcessed
	}

	inv.Status = models.InvitationRejected
	inv.RejectedAt = &now
	inv.UpdatedAt = now

	project, err := s.projects.GetProjectByID(inv.ProjectID)
	projectName := ""
	if err == nil && project != nil {
		projectName = project.Name
	}

	s.dispatch(inv.InviterID, models.NotificationInvitationRejected,
		"Invitation declined",
		fmt.Sprintf("%s declined your invitation to join %s", inv.InviteeEmail, projectName),
		invitationMetadata(inv))

	if inviter, err := s.accounts.FindByID(inv.InviterID); err == nil && inviter != nil {
		s.notifier.SendEmail(invitationRejectedEmail(inviter.Email, inviter.Name, inv.InviteeEmail, projectName))
	}

	return inv, nil
}

// ListByProject returns a project's invitations for members of the project
func (s *InvitationService) ListByProject(projectID, actorID int64) ([]models.Invitation, error) {
	isMember, err := s.projects.IsMember(projectID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check project membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotAuthorized
	}
	return s.invitations.ListByProject(projectID)
}

// ExpiredPendingCount reports how many pending invitations are past their
// deadline. Hygiene only: expiry is derived at read time and needs no
// sweeper for correctness.
func (s *InvitationService) ExpiredPendingCount() (int, error) {
	return s.invitations.CountExpiredPending(s.now())
}

// fanOutAccepted dispatches the two notifications and two emails that
// follow a successful accept. Best effort: failures are logged, the
// transition has already committed.
func (s *InvitationService) fanOutAccepted(inv *models.Invitation, invitee *models.User) {
	project, err := s.projects.GetProjectByID(inv.ProjectID)
	projectName := ""
	if err == nil && project != nil {
		projectName = project.Name
	}

	s.dispatch(inv.InviterID, models.NotificationInvitationAccepted,
		"Invitation accepted",
		fmt.Sprintf("%s accepted your invitation to join %s", invitee.Name, projectName),
		invitationMetadata(inv))
	s.dispatch(invitee.ID, models.NotificationProjectJoined,
		"Welcome to the project",
		fmt.Sprintf("You joined %s", projectName),
		invitationMetadata(inv))

	if inviter, err := s.accounts.FindByID(inv.InviterID); err == nil && inviter != nil {
		s.notifier.SendEmail(invitationAcceptedEmail(inviter.Email, inviter.Name, invitee.Name, projectName))
	}
	s.notifier.SendEmail(welcomeEmail(s.baseURL, invitee.Email, invitee.Name, projectName))
}

func (s *InvitationService) dispatch(userID int64, ntype, title, message string, metadata map[string]string) {
	if err := s.notifier.Dispatch(userID, ntype, title, message, metadata); err != nil {
		log.Printf("Failed to dispatch %s notification to user %d: %v", ntype, userID, err)
	}
}

func invitationMetadata(inv *models.Invitation) map[string]string {
	return map[string]string{
		"invitation_id": strconv.FormatInt(inv.ID, 10),
		"project_id":    strconv.FormatInt(inv.ProjectID, 10),
	}
}
