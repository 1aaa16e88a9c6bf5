package handlers

import (
	"time"

	"taskhive/internal/models"
)

// userView is the public shape of a user
type userView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserView(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

// projectView is the public shape of a project
type projectView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newProjectView(p *models.Project) projectView {
	return projectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// memberView pairs membership and user details
type memberView struct {
	UserID   int64     `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// invitationView is the public shape of an invitation. Status is the
// effective status at render time, so a stale pending row reads as
// expired without any database write.
type invitationView struct {
	ID           int64      `json:"id"`
	ProjectID    int64      `json:"project_id"`
	InviterName  string     `json:"inviter_name"`
	InviteeEmail string     `json:"invitee_email"`
	Message      string     `json:"message,omitempty"`
	Status       string     `json:"status"`
	ExpiresAt    time.Time  `json:"expires_at"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	RejectedAt   *time.Time `json:"rejected_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newInvitationView(inv *models.Invitation, now time.Time) invitationView {
	return invitationView{
		ID:           inv.ID,
		ProjectID:    inv.ProjectID,
		InviterName:  inv.InviterName,
		InviteeEmail: inv.InviteeEmail,
		Message:      inv.Message,
		Status:       string(inv.EffectiveStatusAt(now)),
		ExpiresAt:    inv.ExpiresAt,
		AcceptedAt:   inv.AcceptedAt,
		RejectedAt:   inv.RejectedAt,
		CreatedAt:    inv.CreatedAt,
	}
}

// taskView is the public shape of a task
type taskView struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	AssigneeID  *int64    `json:"assignee_id,omitempty"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTaskView(t *models.Task) taskView {
	return taskView{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		AssigneeID:  t.AssigneeID,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// submissionView is the public shape of a submission
type submissionView struct {
	ID          int64      `json:"id"`
	TaskID      int64      `json:"task_id"`
	UserID      int64      `json:"user_id"`
	Text        string     `json:"text"`
	FileRefs    []string   `json:"file_refs,omitempty"`
	Status      string     `json:"status"`
	Feedback    string     `json:"feedback,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewerID  *int64     `json:"reviewer_id,omitempty"`
}

func newSubmissionView(s *models.Submission) submissionView {
	return submissionView{
		ID:          s.ID,
		TaskID:      s.TaskID,
		UserID:      s.UserID,
		Text:        s.SubmissionText,
		FileRefs:    s.FileRefs,
		Status:      string(s.Status),
		Feedback:    s.AdminFeedback,
		SubmittedAt: s.SubmittedAt,
		ReviewedAt:  s.ReviewedAt,
		ReviewerID:  s.ReviewerID,
	}
}

// notificationView is the public shape of a notification
type notificationView struct {
	ID        int64             `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}

func newNotificationView(n *models.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Metadata:  n.Metadata,
		Read:      n.IsRead(),
		CreatedAt: n.CreatedAt,
	}
}

// leaveRequestView is the public shape of a leave request
type leaveRequestView struct {
	ID        int64      `json:"id"`
	ProjectID int64      `json:"project_id"`
	UserID    int64      `json:"user_id"`
	Reason    string     `json:"reason,omitempty"`
	Status    string     `json:"status"`
	DecidedBy *int64     `json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func newLeaveRequestView(req *models.LeaveRequest) leaveRequestView {
	return leaveRequestView{
		ID:        req.ID,
		ProjectID: req.ProjectID,
		UserID:    req.UserID,
		Reason:    req.Reason,
		Status:    string(req.Status),
		DecidedBy: req.DecidedBy,
		DecidedAt: req.DecidedAt,
		CreatedAt: req.CreatedAt,
	}
}
