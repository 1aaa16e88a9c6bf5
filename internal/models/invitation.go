package models

import "time"

// InvitationStatus is a closed set of invitation states. Transitions are
// validated against invitationTransitions rather than compared inline at
// call sites, so an invalid value can never be written.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"

	// InvitationExpired is a derived, read-time view of a pending
	// invitation past its deadline. It is never persisted.
	InvitationExpired InvitationStatus = "expired"
)

// invitationTransitions is the full transition table. accepted and
// rejected are terminal.
var invitationTransitions = map[InvitationStatus][]InvitationStatus{
	InvitationPending: {InvitationAccepted, InvitationRejected},
}

// CanTransitionTo reports whether moving from s to target is legal
func (s InvitationStatus) CanTransitionTo(target InvitationStatus) bool {
	for _, t := range invitationTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is a persisted terminal state
func (s InvitationStatus) IsTerminal() bool {
	return s == InvitationAccepted || s == InvitationRejected
}

// Invitation offers a user membership in a project, bound to a single-use
// expiring token. Rows are never deleted; they are kept as an audit trail.
type Invitation struct {
	ID           int64
	ProjectID    int64
	InviterID    int64
	InviteeEmail string
	InviteeID    *int64
	Token        string
	Message      string
	Status       InvitationStatus
	ExpiresAt    time.Time
	AcceptedAt   *time.Time
	RejectedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// InviterName is populated via JOIN for display
	InviterName string
}

// IsExpiredAt reports whether the invitation is expired as observed at the
// given instant. Only pending invitations expire; accepted and rejected
// rows keep their terminal status forever.
func (i *Invitation) IsExpiredAt(now time.Time) bool {
	return i.Status == InvitationPending && now.After(i.ExpiresAt)
}

// EffectiveStatusAt returns the user-visible status at the given instant,
// substituting the derived expired view for stale pending rows.
func (i *Invitation) EffectiveStatusAt(now time.Time) InvitationStatus {
	if i.IsExpiredAt(now) {
		return InvitationExpired
	}
	return i.Status
}
