package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"taskhive/internal/database"
	"taskhive/internal/models"
)

// SubmissionRepository handles database operations for task submissions.
// Submissions are append-only history: a task accumulates rows and the
// newest one is authoritative for the task's review state.
type SubmissionRepository struct {
	q database.DBTX
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *database.DB) *SubmissionRepository {
	return &SubmissionRepository{q: db}
}

// Create persists a new pending submission and fills in its ID
func (r *SubmissionRepository) Create(sub *models.Submission) error {
	fileRefs, err := json.Marshal(sub.FileRefs)
	if err != nil {
		return fmt.Errorf("failed to encode file refs: %w", err)
	}

	query := `
		INSERT INTO task_submissions
			(task_id, user_id, submission_text, file_refs, status, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.q.ExecReturningID(query,
		sub.TaskID, sub.UserID, sub.SubmissionText, string(fileRefs),
		string(sub.Status), sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	sub.ID = id
	return nil
}

const submissionColumns = `
	id, task_id, user_id, submission_text, file_refs, status,
	admin_feedback, submitted_at, reviewed_at, reviewer_id
`

// GetByID retrieves a submission by ID, or nil if it does not exist
func (r *SubmissionRepository) GetByID(id int64) (*models.Submission, error) {
	query := "SELECT " + submissionColumns + " FROM task_submissions WHERE id = ?"
	sub, err := scanSubmissionNullable(r.q.QueryRow(query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

// ListByTask retrieves all submissions for a task, newest first
func (r *SubmissionRepository) ListByTask(taskID int64) ([]models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM task_submissions
		WHERE task_id = ?
		ORDER BY submitted_at DESC, id DESC
	`
	rows, err := r.q.Query(query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []models.Submission
	for rows.Next() {
		sub, err := scanSubmissionRow(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *sub)
	}

	return submissions, nil
}

// LatestByTask returns the newest submission for a task by submitted_at
// (id breaks ties), or nil if the task has none
func (r *SubmissionRepository) LatestByTask(taskID int64) (*models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM task_submissions
		WHERE task_id = ?
		ORDER BY submitted_at DESC, id DESC
		LIMIT 1
	`
	sub, err := scanSubmissionNullable(r.q.QueryRow(query, taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest submission: %w", err)
	}
	return sub, nil
}

// MarkReviewed performs the conditional review transition. Reviews are only
// legal from pending; the WHERE guard resolves races between two reviewers
// so exactly one decision lands.
func (r *SubmissionRepository) MarkReviewed(id int64, decision models.SubmissionStatus, feedback string, reviewerID int64, now time.Time) (bool, error) {
	query := `
		UPDATE task_submissions
		SET status = ?, admin_feedback = ?, reviewed_at = ?, reviewer_id = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.q.Exec(query,
		string(decision), feedback, now, reviewerID,
		id, string(models.SubmissionPending),
	)
	if err != nil {
		return false, fmt.Errorf("failed to review submission: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check review result: %w", err)
	}
	return affected > 0, nil
}

func scanSubmissionNullable(row *sql.Row) (*models.Submission, error) {
	sub, err := scanSubmissionRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func scanSubmissionRow(row rowScanner) (*models.Submission, error) {
	sub := &models.Submission{}
	var fileRefs string
	var status string
	var feedback sql.NullString
	var reviewedAt sql.NullTime
	var reviewerID sql.NullInt64

	err := row.Scan(
		&sub.ID, &sub.TaskID, &sub.UserID, &sub.SubmissionText, &fileRefs,
		&status, &feedback, &sub.SubmittedAt, &reviewedAt, &reviewerID,
	)
	if err != nil {
		return nil, err
	}

	sub.Status = models.SubmissionStatus(status)
	if feedback.Valid {
		sub.AdminFeedback = feedback.String
	}
	if reviewedAt.Valid {
		sub.ReviewedAt = &reviewedAt.Time
	}
	if reviewerID.Valid {
		sub.ReviewerID = &reviewerID.Int64
	}
	if fileRefs != "" {
		if err := json.Unmarshal([]byte(fileRefs), &sub.FileRefs); err != nil {
			return nil, fmt.Errorf("failed to decode file refs: %w", err)
		}
	}

	return sub, nil
}
