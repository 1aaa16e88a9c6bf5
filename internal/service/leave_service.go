package service

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"taskhive/internal/database"
	"taskhive/internal/models"
	"taskhive/internal/repository"
)

// LeaveService drives the leave request state machine:
// pending -> approved | rejected. Approval removes the membership in the
// same transaction as the decision.
type LeaveService struct {
	db       *database.DB
	requests *repository.LeaveRequestRepository
	projects *repository.ProjectRepository
	accounts AccountLookup
	notifier *Notifier
	now      func() time.Time
}

// NewLeaveService creates a new leave request service
func NewLeaveService(
	db *database.DB,
	requests *repository.LeaveRequestRepository,
	projects *repository.ProjectRepository,
	accounts AccountLookup,
	notifier *Notifier,
) *LeaveService {
	return &LeaveService{
		db:       db,
		requests: requests,
		projects: projects,
		accounts: accounts,
		notifier: notifier,
		now:      time.Now,
	}
}

// Request files a pending leave request. The project owner cannot leave
// their own project; ownership must be transferred first, which is out of
// scope here, so the request is refused outright.
func (s *LeaveService) Request(projectID, userID int64, reason string) (*models.LeaveRequest, error) {
	project, err := s.projects.GetProjectByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.OwnerID == userID {
		return nil, ErrNotAuthorized
	}

	isMember, err := s.projects.IsMember(projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check project membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotAuthorized
	}

	req := &models.LeaveRequest{
		ProjectID: projectID,
		UserID:    userID,
		Reason:    reason,
		Status:    models.LeavePending,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	if err := s.requests.Create(req); err != nil {
		return nil, err
	}

	requesterName := "A member"
	if requester, err := s.accounts.FindByID(userID); err == nil && requester != nil {
		requesterName = requester.Name
	}
	if err := s.notifier.Dispatch(project.OwnerID, models.NotificationLeaveRequested,
		"Leave request",
		fmt.Sprintf("%s asked to leave %s", requesterName, project.Name),
		leaveMetadata(req)); err != nil {
		log.Printf("Failed to dispatch leave notification to user %d: %v", project.OwnerID, err)
	}

	return req, nil
}

// Decide approves or rejects a pending leave request. The conditional
// update resolves racing deciders; on approval the membership removal rides
// in the same transaction as the decision.
func (s *LeaveService) Decide(requestID, deciderID int64, approve bool) (*models.LeaveRequest, error) {
	req, err := s.requests.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if req.Status != models.LeavePending {
		return nil, ErrAlreadyProcessed
	}

	role, isMember, err := s.projects.GetMemberRole(req.ProjectID, deciderID)
	if err != nil {
		return nil, fmt.Errorf("failed to check decider role: %w", err)
	}
	if !isMember || !role.CanReview() {
		return nil, ErrNotAuthorized
	}

	status := models.LeaveRejected
	if approve {
		status = models.LeaveApproved
	}
	now := s.now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	decided, err := s.requests.WithTx(tx).MarkDecided(requestID, status, deciderID, now)
	if err != nil {
		return nil, err
	}
	if !decided {
		return nil, ErrAlreadyProcessed
	}

	if approve {
		if err := s.projects.WithTx(tx).RemoveMember(req.ProjectID, req.UserID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit leave decision: %w", err)
	}

	req.Status = status
	req.DecidedBy = &deciderID
	req.DecidedAt = &now
	req.UpdatedAt = now

	s.notifyDecided(req, approve)

	return req, nil
}

// ListByProject returns a project's leave requests for reviewers
func (s *LeaveService) ListByProject(projectID, actorID int64) ([]models.LeaveRequest, error) {
	role, isMember, err := s.projects.GetMemberRole(projectID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check actor role: %w", err)
	}
	if !isMember || !role.CanReview() {
		return nil, ErrNotAuthorized
	}
	return s.requests.ListByProject(projectID)
}

func (s *LeaveService) notifyDecided(req *models.LeaveRequest, approved bool) {
	project, err := s.projects.GetProjectByID(req.ProjectID)
	projectName := ""
	if err == nil && project != nil {
		projectName = project.Name
	}

	ntype := models.NotificationLeaveRejected
	title := "Leave request rejected"
	message := fmt.Sprintf("Your request to leave %s was rejected", projectName)
	if approved {
		ntype = models.NotificationLeaveApproved
		title = "Leave request approved"
		message = fmt.Sprintf("You have left %s", projectName)
	}

	if err := s.notifier.Dispatch(req.UserID, ntype, title, message, leaveMetadata(req)); err != nil {
		log.Printf("Failed to dispatch leave decision notification to user %d: %v", req.UserID, err)
	}

	if requester, err := s.accounts.FindByID(req.UserID); err == nil && requester != nil {
		s.notifier.SendEmail(leaveDecidedEmail(requester.Email, requester.Name, projectName, approved))
	}
}

func leaveMetadata(req *models.LeaveRequest) map[string]string {
	return map[string]string{
		"leave_request_id": strconv.FormatInt(req.ID, 10),
		"project_id":       strconv.FormatInt(req.ProjectID, 10),
	}
}
