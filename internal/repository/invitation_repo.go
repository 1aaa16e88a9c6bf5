package repository

import (
	"database/sql"
	"fmt"
	"time"

	"taskhive/internal/database"
	"taskhive/internal/models"
)

// InvitationRepository handles database operations for project invitations.
// Invitations are never deleted; accepted and rejected rows stay behind as
// an audit trail.
type InvitationRepository struct {
	db *database.DB
	q  database.DBTX
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *database.DB) *InvitationRepository {
	return &InvitationRepository{db: db, q: db}
}

// WithTx returns a copy of the repository whose statements run on the
// given transaction
func (r *InvitationRepository) WithTx(tx *database.Tx) *InvitationRepository {
	return &InvitationRepository{db: r.db, q: tx}
}

// Create persists a new pending invitation and fills in its ID
func (r *InvitationRepository) Create(inv *models.Invitation) error {
	query := `
		INSERT INTO invitations
			(project_id, inviter_id, invitee_email, invitee_id, token, message, status, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.q.ExecReturningID(query,
		inv.ProjectID, inv.InviterID, inv.InviteeEmail, inv.InviteeID,
		inv.Token, inv.Message, string(inv.Status), inv.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	inv.ID = id
	return nil
}

const invitationColumns = `
	i.id, i.project_id, i.inviter_id, i.invitee_email, i.invitee_id,
	i.token, i.message, i.status, i.expires_at, i.accepted_at, i.rejected_at,
	i.created_at, i.updated_at, u.name
`

// GetByToken retrieves an invitation by token, or nil if no row matches
func (r *InvitationRepository) GetByToken(token string) (*models.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations i
		LEFT JOIN users u ON i.inviter_id = u.id
		WHERE i.token = ?
	`
	inv, err := scanInvitation(r.q.QueryRow(query, token))
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation by token: %w", err)
	}
	return inv, nil
}

// GetByID retrieves an invitation by ID, or nil if no row matches
func (r *InvitationRepository) GetByID(id int64) (*models.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations i
		LEFT JOIN users u ON i.inviter_id = u.id
		WHERE i.id = ?
	`
	inv, err := scanInvitation(r.q.QueryRow(query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

// ListByProject retrieves all invitations for a project, newest first
func (r *InvitationRepository) ListByProject(projectID int64) ([]models.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations i
		LEFT JOIN users u ON i.inviter_id = u.id
		WHERE i.project_id = ?
		ORDER BY i.created_at DESC
	`
	rows, err := r.q.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		inv, err := scanInvitationRow(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *inv)
	}

	return invitations, nil
}

// HasActivePending reports whether a pending, unexpired invitation already
// exists for the given project and email
func (r *InvitationRepository) HasActivePending(projectID int64, inviteeEmail string, now time.Time) (bool, error) {
	query := `
		SELECT COUNT(*) FROM invitations
		WHERE project_id = ? AND invitee_email = ? AND status = ? AND expires_at > ?
	`
	var count int
	err := r.q.QueryRow(query, projectID, inviteeEmail, string(models.InvitationPending), now).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check pending invitations: %w", err)
	}
	return count > 0, nil
}

// MarkAccepted performs the conditional accept transition. The WHERE
// status = 'pending' guard is the single source of truth for idempotency:
// when two requests race, exactly one sees a row affected and the loser
// must report the invitation as already processed.
func (r *InvitationRepository) MarkAccepted(token string, inviteeID int64, now time.Time) (bool, error) {
	query := `
		UPDATE invitations
		SET status = ?, accepted_at = ?, invitee_id = ?, updated_at = ?
		WHERE token = ? AND status = ?
	`
	result, err := r.q.Exec(query,
		string(models.InvitationAccepted), now, inviteeID, now,
		token, string(models.InvitationPending),
	)
	if err != nil {
		return false, fmt.Errorf("failed to accept invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check accept result: %w", err)
	}
	return affected > 0, nil
}

// MarkRejected performs the conditional reject transition, with the same
// race-resolution semantics as MarkAccepted
func (r *InvitationRepository) MarkRejected(token string, now time.Time) (bool, error) {
	query := `
		UPDATE invitations
		SET status = ?, rejected_at = ?, updated_at = ?
		WHERE token = ? AND status = ?
	`
	result, err := r.q.Exec(query,
		string(models.InvitationRejected), now, now,
		token, string(models.InvitationPending),
	)
	if err != nil {
		return false, fmt.Errorf("failed to reject invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check reject result: %w", err)
	}
	return affected > 0, nil
}

// CountExpiredPending counts pending invitations past their deadline.
// Expiry is derived at read time; this exists only for hygiene reporting.
func (r *InvitationRepository) CountExpiredPending(now time.Time) (int, error) {
	query := "SELECT COUNT(*) FROM invitations WHERE status = ? AND expires_at <= ?"
	var count int
	err := r.q.QueryRow(query, string(models.InvitationPending), now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expired invitations: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvitation(row *sql.Row) (*models.Invitation, error) {
	inv, err := scanInvitationRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func scanInvitationRow(row rowScanner) (*models.Invitation, error) {
	inv := &models.Invitation{}
	var inviteeID sql.NullInt64
	var acceptedAt, rejectedAt sql.NullTime
	var inviterName sql.NullString
	var status string

	err := row.Scan(
		&inv.ID, &inv.ProjectID, &inv.InviterID, &inv.InviteeEmail, &inviteeID,
		&inv.Token, &inv.Message, &status, &inv.ExpiresAt, &acceptedAt, &rejectedAt,
		&inv.CreatedAt, &inv.UpdatedAt, &inviterName,
	)
	if err != nil {
		return nil, err
	}

	inv.Status = models.InvitationStatus(status)
	if inviteeID.Valid {
		inv.InviteeID = &inviteeID.Int64
	}
	if acceptedAt.Valid {
		inv.AcceptedAt = &acceptedAt.Time
	}
	if rejectedAt.Valid {
		inv.RejectedAt = &rejectedAt.Time
	}
	if inviterName.Valid {
		inv.InviterName = inviterName.String
	}

	return inv, nil
}
