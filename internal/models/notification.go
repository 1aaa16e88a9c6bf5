package models

import "time"

// Notification types dispatched by the workflow engine
const (
	NotificationInvitationSent     = "invitation_sent"
	NotificationInvitationAccepted = "invitation_accepted"
	NotificationInvitationRejected = "invitation_rejected"
	NotificationProjectJoined      = "project_joined"
	NotificationSubmissionReceived = "submission_received"
	NotificationSubmissionReviewed = "submission_reviewed"
	NotificationLeaveRequested     = "leave_requested"
	NotificationLeaveApproved      = "leave_approved"
	NotificationLeaveRejected      = "leave_rejected"
)

// Notification is the durable in-app record of a workflow event. It is
// authoritative for the unread badge; email is a best-effort copy.
type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Title     string
	Message   string
	Metadata  map[string]string
	ReadAt    *time.Time
	CreatedAt time.Time
}

// IsRead reports whether the notification has been read
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
