package models

import "time"

// LeaveRequestStatus is a closed set of leave request states. Same shape as
// an invitation, minus expiry.
type LeaveRequestStatus string

const (
	LeavePending  LeaveRequestStatus = "pending"
	LeaveApproved LeaveRequestStatus = "approved"
	LeaveRejected LeaveRequestStatus = "rejected"
)

var leaveTransitions = map[LeaveRequestStatus][]LeaveRequestStatus{
	LeavePending: {LeaveApproved, LeaveRejected},
}

// CanTransitionTo reports whether moving from s to target is legal
func (s LeaveRequestStatus) CanTransitionTo(target LeaveRequestStatus) bool {
	for _, t := range leaveTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// LeaveRequest asks a project admin for permission to leave the project
type LeaveRequest struct {
	ID        int64
	ProjectID int64
	UserID    int64
	Reason    string
	Status    LeaveRequestStatus
	DecidedBy *int64
	DecidedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
