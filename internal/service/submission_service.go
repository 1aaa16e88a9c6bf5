package service

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/repository"
)

// SubmissionService drives the submission review state machine. Every
// submit creates a fresh pending row; a review closes exactly one row and
// never touches earlier or later submissions for the same task.
type SubmissionService struct {
	submissions *repository.SubmissionRepository
	tasks       *repository.TaskRepository
	projects    *repository.ProjectRepository
	accounts    AccountLookup
	notifier    *Notifier
	now         func() time.Time
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	submissions *repository.SubmissionRepository,
	tasks *repository.TaskRepository,
	projects *repository.ProjectRepository,
	accounts AccountLookup,
	notifier *Notifier,
) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		tasks:       tasks,
		projects:    projects,
		accounts:    accounts,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Submit records a new pending submission against a task. Resubmission is
// always allowed: a task whose last submission was rejected or sent back
// for revision simply gets a new independent row.
func (s *SubmissionService) Submit(taskID, userID int64, text string, fileRefs []string) (*models.Submission, error) {
	task, err := s.tasks.GetTaskByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, ErrNotFound
	}

	isMember, err := s.projects.IsMember(task.ProjectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check project membership: %w", err)
	}
	if !isMember {
		return nil, ErrNotAuthorized
	}

	sub := &models.Submission{
		TaskID:         taskID,
		UserID:         userID,
		SubmissionText: text,
		FileRefs:       fileRefs,
		Status:         models.SubmissionPending,
		SubmittedAt:    s.now(),
	}
	if err := s.submissions.Create(sub); err != nil {
		return nil, err
	}

	s.notifySubmitted(task, sub)

	return sub, nil
}

// Review applies a review decision to a pending submission. The decision
// must be one of approved, rejected or revision_requested; anything else,
// including an attempt to re-review a closed submission, is rejected
// without side effects.
func (s *SubmissionService) Review(submissionID, reviewerID int64, decision models.SubmissionStatus, feedback string) (*models.Submission, error) {
	if !decision.IsReviewDecision() {
		return nil, ErrInvalidTransition
	}

	sub, err := s.submissions.GetByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	if sub.Status != models.SubmissionPending {
		return nil, ErrInvalidTransition
	}

	task, err := s.tasks.GetTaskByID(sub.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, ErrNotFound
	}

	role, isMember, err := s.projects.GetMemberRole(task.ProjectID, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check reviewer role: %w", err)
	}
	if !isMember || !role.CanReview() {
		return nil, ErrNotAuthorized
	}

	now := s.now()
	reviewed, err := s.submissions.MarkReviewed(submissionID, decision, feedback, reviewerID, now)
	if err != nil {
		return nil, err
	}
	if !reviewed {
		// Zero rows affected: the submission already left pending,
		// possibly under a concurrent reviewer that won the update.
		// Reviews are only legal from pending, so this is an invalid
		// transition, not a retry of the same one.
		return nil, ErrInvalidTransition
	}

	sub.Status = decision
	sub.AdminFeedback = feedback
	sub.ReviewerID = &reviewerID
	sub.ReviewedAt = &now

	s.notifyReviewed(task, sub)

	return sub, nil
}

// Get loads a submission visible to project members
func (s *SubmissionService) Get(submissionID, actorID int64) (*models.Submission, error) {
	sub, err := s.submissions.GetByID(submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	if err := s.requireMember(sub.TaskID, actorID); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListByTask returns a task's submissions, newest first
func (s *SubmissionService) ListByTask(taskID, actorID int64) ([]models.Submission, error) {
	if err := s.requireMember(taskID, actorID); err != nil {
		return nil, err
	}
	return s.submissions.ListByTask(taskID)
}

// Latest returns the task's current submission, or nil when the task has
// never been submitted
func (s *SubmissionService) Latest(taskID, actorID int64) (*models.Submission, error) {
	if err := s.requireMember(taskID, actorID); err != nil {
		return nil, err
	}
	return s.submissions.LatestByTask(taskID)
}

// requireMember resolves the task's project and checks the actor belongs
// to it
func (s *SubmissionService) requireMember(taskID, actorID int64) error {
	task, err := s.tasks.GetTaskByID(taskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return ErrNotFound
	}

	isMember, err := s.projects.IsMember(task.ProjectID, actorID)
	if err != nil {
		return fmt.Errorf("failed to check project membership: %w", err)
	}
	if !isMember {
		return ErrNotAuthorized
	}
	return nil
}

// notifySubmitted tells the project owner a submission arrived
func (s *SubmissionService) notifySubmitted(task *models.Task, sub *models.Submission) {
	project, err := s.projects.GetProjectByID(task.ProjectID)
	if err != nil || project == nil {
		log.Printf("Failed to load project %d for submission notification: %v", task.ProjectID, err)
		return
	}

	submitterName := "A member"
	if submitter, err := s.accounts.FindByID(sub.UserID); err == nil && submitter != nil {
		submitterName = submitter.Name
	}

	if err := s.notifier.Dispatch(project.OwnerID, models.NotificationSubmissionReceived,
		"New submission",
		fmt.Sprintf("%s submitted work for %s", submitterName, task.Title),
		submissionMetadata(task, sub)); err != nil {
		log.Printf("Failed to dispatch submission notification to user %d: %v", project.OwnerID, err)
	}
}

// notifyReviewed tells the submitter how the review went, in-app and by
// email
func (s *SubmissionService) notifyReviewed(task *models.Task, sub *models.Submission) {
	if err := s.notifier.Dispatch(sub.UserID, models.NotificationSubmissionReviewed,
		"Submission reviewed",
		fmt.Sprintf("Your submission for %s was %s", task.Title, sub.Status.Label()),
		submissionMetadata(task, sub)); err != nil {
		log.Printf("Failed to dispatch review notification to user %d: %v", sub.UserID, err)
	}

	if submitter, err := s.accounts.FindByID(sub.UserID); err == nil && submitter != nil {
		s.notifier.SendEmail(submissionReviewedEmail(submitter.Email, submitter.Name, task.Title, sub.Status.Label(), sub.AdminFeedback))
	}
}

func submissionMetadata(task *models.Task, sub *models.Submission) map[string]string {
	return map[string]string{
		"submission_id": strconv.FormatInt(sub.ID, 10),
		"task_id":       strconv.FormatInt(task.ID, 10),
		"project_id":    strconv.FormatInt(task.ProjectID, 10),
	}
}
