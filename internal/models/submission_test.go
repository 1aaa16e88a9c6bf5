package models

import "testing"

func TestSubmissionStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from SubmissionStatus
		to   SubmissionStatus
		want bool
	}{
		{name: "pending to approved", from: SubmissionPending, to: SubmissionApproved, want: true},
		{name: "pending to rejected", from: SubmissionPending, to: SubmissionRejected, want: true},
		{name: "pending to revision requested", from: SubmissionPending, to: SubmissionRevisionRequested, want: true},
		{name: "approved is terminal", from: SubmissionApproved, to: SubmissionRejected, want: false},
		{name: "rejected is terminal", from: SubmissionRejected, to: SubmissionApproved, want: false},
		{name: "revision requested is terminal for the row", from: SubmissionRevisionRequested, to: SubmissionPending, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestSubmissionStatusIsReviewDecision(t *testing.T) {
	decisions := map[SubmissionStatus]bool{
		SubmissionApproved:          true,
		SubmissionRejected:          true,
		SubmissionRevisionRequested: true,
		SubmissionPending:           false,
		SubmissionStatus("bogus"):   false,
	}

	for status, want := range decisions {
		if got := status.IsReviewDecision(); got != want {
			t.Errorf("IsReviewDecision(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestMemberRoleCanReview(t *testing.T) {
	if !RoleOwner.CanReview() {
		t.Error("owner should be able to review")
	}
	if !RoleAdmin.CanReview() {
		t.Error("admin should be able to review")
	}
	if RoleMember.CanReview() {
		t.Error("member should not be able to review")
	}
}
