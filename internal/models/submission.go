package models

import "time"

// SubmissionStatus is a closed set of review states. A submission leaves
// pending exactly once; re-review requires a fresh submission row.
type SubmissionStatus string

const (
	SubmissionPending           SubmissionStatus = "pending"
	SubmissionApproved          SubmissionStatus = "approved"
	SubmissionRejected          SubmissionStatus = "rejected"
	SubmissionRevisionRequested SubmissionStatus = "revision_requested"
)

// submissionTransitions is the full transition table. All review outcomes
// are terminal for the row; resubmission creates a new pending row instead
// of reopening this one.
var submissionTransitions = map[SubmissionStatus][]SubmissionStatus{
	SubmissionPending: {SubmissionApproved, SubmissionRejected, SubmissionRevisionRequested},
}

// CanTransitionTo reports whether moving from s to target is legal
func (s SubmissionStatus) CanTransitionTo(target SubmissionStatus) bool {
	for _, t := range submissionTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsReviewDecision reports whether the status is a valid reviewer decision
func (s SubmissionStatus) IsReviewDecision() bool {
	return SubmissionPending.CanTransitionTo(s)
}

// Label returns the human-readable form of the status for notifications
func (s SubmissionStatus) Label() string {
	switch s {
	case SubmissionRevisionRequested:
		return "sent back for revision"
	default:
		return string(s)
	}
}

// Submission is a unit of proof-of-work evidence submitted against a task.
// A task accumulates submissions over time; the newest row by submitted_at
// is authoritative for the task's current review state.
type Submission struct {
	ID             int64
	TaskID         int64
	UserID         int64
	SubmissionText string
	FileRefs       []string
	Status         SubmissionStatus
	AdminFeedback  string
	SubmittedAt    time.Time
	ReviewedAt     *time.Time
	ReviewerID     *int64
}
