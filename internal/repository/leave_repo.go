package repository

import (
	"database/sql"
	"fmt"
	"time"

	"taskhive/internal/database"
	"taskhive/internal/models"
)

// LeaveRequestRepository handles database operations for leave requests
type LeaveRequestRepository struct {
	db *database.DB
	q  database.DBTX
}

// NewLeaveRequestRepository creates a new leave request repository
func NewLeaveRequestRepository(db *database.DB) *LeaveRequestRepository {
	return &LeaveRequestRepository{db: db, q: db}
}

// WithTx returns a copy of the repository whose statements run on the
// given transaction
func (r *LeaveRequestRepository) WithTx(tx *database.Tx) *LeaveRequestRepository {
	return &LeaveRequestRepository{db: r.db, q: tx}
}

// Create persists a new pending leave request and fills in its ID
func (r *LeaveRequestRepository) Create(req *models.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (project_id, user_id, reason, status)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.q.ExecReturningID(query, req.ProjectID, req.UserID, req.Reason, string(req.Status))
	if err != nil {
		return fmt.Errorf("failed to create leave request: %w", err)
	}
	req.ID = id
	return nil
}

// GetByID retrieves a leave request by ID, or nil if it does not exist
func (r *LeaveRequestRepository) GetByID(id int64) (*models.LeaveRequest, error) {
	query := `
		SELECT id, project_id, user_id, reason, status, decided_by, decided_at, created_at, updated_at
		FROM leave_requests WHERE id = ?
	`
	req := &models.LeaveRequest{}
	var status string
	var decidedBy sql.NullInt64
	var decidedAt sql.NullTime
	err := r.q.QueryRow(query, id).Scan(
		&req.ID, &req.ProjectID, &req.UserID, &req.Reason, &status,
		&decidedBy, &decidedAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leave request: %w", err)
	}

	req.Status = models.LeaveRequestStatus(status)
	if decidedBy.Valid {
		req.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		req.DecidedAt = &decidedAt.Time
	}
	return req, nil
}

// ListByProject retrieves all leave requests for a project, newest first
func (r *LeaveRequestRepository) ListByProject(projectID int64) ([]models.LeaveRequest, error) {
	query := `
		SELECT id, project_id, user_id, reason, status, decided_by, decided_at, created_at, updated_at
		FROM leave_requests
		WHERE project_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.q.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []models.LeaveRequest
	for rows.Next() {
		var req models.LeaveRequest
		var status string
		var decidedBy sql.NullInt64
		var decidedAt sql.NullTime
		if err := rows.Scan(
			&req.ID, &req.ProjectID, &req.UserID, &req.Reason, &status,
			&decidedBy, &decidedAt, &req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		req.Status = models.LeaveRequestStatus(status)
		if decidedBy.Valid {
			req.DecidedBy = &decidedBy.Int64
		}
		if decidedAt.Valid {
			req.DecidedAt = &decidedAt.Time
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// MarkDecided performs the conditional decision transition. Same
// race-resolution rule as invitations: only a pending request can be
// decided, and exactly one decider wins.
func (r *LeaveRequestRepository) MarkDecided(id int64, status models.LeaveRequestStatus, deciderID int64, now time.Time) (bool, error) {
	query := `
		UPDATE leave_requests
		SET status = ?, decided_by = ?, decided_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.q.Exec(query,
		string(status), deciderID, now, now,
		id, string(models.LeavePending),
	)
	if err != nil {
		return false, fmt.Errorf("failed to decide leave request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check decision result: %w", err)
	}
	return affected > 0, nil
}
