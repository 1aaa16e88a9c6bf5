package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"taskhive/internal/database"
)

// BackupData is the complete portable snapshot of the database. IDs are
// preserved so cross-table references survive a round trip between
// database engines.
type BackupData struct {
	Version       string               `json:"version"`
	ExportID      string               `json:"export_id"`
	ExportedAt    time.Time            `json:"exported_at"`
	Users         []UserBackup         `json:"users"`
	Projects      []ProjectBackup      `json:"projects"`
	Invitations   []InvitationBackup   `json:"invitations"`
	Tasks         []TaskBackup         `json:"tasks"`
	Submissions   []SubmissionBackup   `json:"submissions"`
	Notifications []NotificationBackup `json:"notifications"`
	LeaveRequests []LeaveRequestBackup `json:"leave_requests"`
}

// UserBackup is a user record for backup
type UserBackup struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProjectBackup is a project record with its memberships inlined
type ProjectBackup struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	OwnerID     int64          `json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Members     []MemberBackup `json:"members"`
}

// MemberBackup is a membership record for backup
type MemberBackup struct {
	UserID   int64     `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// InvitationBackup is an invitation record for backup
type InvitationBackup struct {
	ID           int64      `json:"id"`
	ProjectID    int64      `json:"project_id"`
	InviterID    int64      `json:"inviter_id"`
	InviteeEmail string     `json:"invitee_email"`
	InviteeID    *int64     `json:"invitee_id"`
	Token        string     `json:"token"`
	Message      string     `json:"message"`
	Status       string     `json:"status"`
	ExpiresAt    time.Time  `json:"expires_at"`
	AcceptedAt   *time.Time `json:"accepted_at"`
	RejectedAt   *time.Time `json:"rejected_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskBackup is a task record for backup
type TaskBackup struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	AssigneeID  *int64    `json:"assignee_id"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SubmissionBackup is a task submission record for backup
type SubmissionBackup struct {
	ID             int64      `json:"id"`
	TaskID         int64      `json:"task_id"`
	UserID         int64      `json:"user_id"`
	SubmissionText string     `json:"submission_text"`
	FileRefs       string     `json:"file_refs"`
	Status         string     `json:"status"`
	AdminFeedback  string     `json:"admin_feedback"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ReviewedAt     *time.Time `json:"reviewed_at"`
	ReviewerID     *int64     `json:"reviewer_id"`
}

// NotificationBackup is a notification record for backup
type NotificationBackup struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Metadata  string     `json:"metadata"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// LeaveRequestBackup is a leave request record for backup
type LeaveRequestBackup struct {
	ID        int64      `json:"id"`
	ProjectID int64      `json:"project_id"`
	UserID    int64      `json:"user_id"`
	Reason    string     `json:"reason"`
	Status    string     `json:"status"`
	DecidedBy *int64     `json:"decided_by"`
	DecidedAt *time.Time `json:"decided_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete snapshot of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	backup := &BackupData{
		Version:    "1.0",
		ExportID:   uuid.NewString(),
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportProjects(backup); err != nil {
		return fmt.Errorf("failed to export projects: %w", err)
	}
	if err := s.exportInvitations(backup); err != nil {
		return fmt.Errorf("failed to export invitations: %w", err)
	}
	if err := s.exportTasks(backup); err != nil {
		return fmt.Errorf("failed to export tasks: %w", err)
	}
	if err := s.exportSubmissions(backup); err != nil {
		return fmt.Errorf("failed to export submissions: %w", err)
	}
	if err := s.exportNotifications(backup); err != nil {
		return fmt.Errorf("failed to export notifications: %w", err)
	}
	if err := s.exportLeaveRequests(backup); err != nil {
		return fmt.Errorf("failed to export leave requests: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Database exported successfully to %s (export %s)", outputPath, backup.ExportID)
	log.Printf("Exported: %d users, %d projects, %d invitations, %d tasks, %d submissions, %d notifications, %d leave requests",
		len(backup.Users), len(backup.Projects), len(backup.Invitations),
		len(backup.Tasks), len(backup.Submissions), len(backup.Notifications), len(backup.LeaveRequests))

	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup stream
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, export %s, exported at: %s",
		backup.Version, backup.ExportID, backup.ExportedAt)

	// Import in order of foreign key dependencies
	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importProjects(backup.Projects); err != nil {
		return fmt.Errorf("failed to import projects: %w", err)
	}
	if err := s.importInvitations(backup.Invitations); err != nil {
		return fmt.Errorf("failed to import invitations: %w", err)
	}
	if err := s.importTasks(backup.Tasks); err != nil {
		return fmt.Errorf("failed to import tasks: %w", err)
	}
	if err := s.importSubmissions(backup.Submissions); err != nil {
		return fmt.Errorf("failed to import submissions: %w", err)
	}
	if err := s.importNotifications(backup.Notifications); err != nil {
		return fmt.Errorf("failed to import notifications: %w", err)
	}
	if err := s.importLeaveRequests(backup.LeaveRequests); err != nil {
		return fmt.Errorf("failed to import leave requests: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, email, password_hash, name, is_admin, created_at, updated_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportProjects(backup *BackupData) error {
	query := "SELECT id, name, description, owner_id, created_at, updated_at FROM projects ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p ProjectBackup
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		backup.Projects = append(backup.Projects, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range backup.Projects {
		memberQuery := "SELECT user_id, role, joined_at FROM project_members WHERE project_id = ? ORDER BY user_id"
		memberRows, err := s.db.Query(memberQuery, backup.Projects[i].ID)
		if err != nil {
			return err
		}
		for memberRows.Next() {
			var m MemberBackup
			if err := memberRows.Scan(&m.UserID, &m.Role, &m.JoinedAt); err != nil {
				memberRows.Close()
				return err
			}
			backup.Projects[i].Members = append(backup.Projects[i].Members, m)
		}
		if err := memberRows.Err(); err != nil {
			memberRows.Close()
			return err
		}
		memberRows.Close()
	}
	return nil
}

func (s *BackupService) exportInvitations(backup *BackupData) error {
	query := `
		SELECT id, project_id, inviter_id, invitee_email, invitee_id, token, message,
		       status, expires_at, accepted_at, rejected_at, created_at, updated_at
		FROM invitations ORDER BY id
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var inv InvitationBackup
		var inviteeID sql.NullInt64
		var acceptedAt, rejectedAt sql.NullTime
		if err := rows.Scan(&inv.ID, &inv.ProjectID, &inv.InviterID, &inv.InviteeEmail, &inviteeID,
			&inv.Token, &inv.Message, &inv.Status, &inv.ExpiresAt, &acceptedAt, &rejectedAt,
			&inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return err
		}
		if inviteeID.Valid {
			inv.InviteeID = &inviteeID.Int64
		}
		if acceptedAt.Valid {
			inv.AcceptedAt = &acceptedAt.Time
		}
		if rejectedAt.Valid {
			inv.RejectedAt = &rejectedAt.Time
		}
		backup.Invitations = append(backup.Invitations, inv)
	}
	return rows.Err()
}

func (s *BackupService) exportTasks(backup *BackupData) error {
	query := "SELECT id, project_id, title, description, status, assignee_id, created_by, created_at, updated_at FROM tasks ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TaskBackup
		var assigneeID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status,
			&assigneeID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
		if assigneeID.Valid {
			t.AssigneeID = &assigneeID.Int64
		}
		backup.Tasks = append(backup.Tasks, t)
	}
	return rows.Err()
}

func (s *BackupService) exportSubmissions(backup *BackupData) error {
	query := `
		SELECT id, task_id, user_id, submission_text, file_refs, status,
		       COALESCE(admin_feedback, ''), submitted_at, reviewed_at, reviewer_id
		FROM task_submissions ORDER BY id
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sub SubmissionBackup
		var reviewedAt sql.NullTime
		var reviewerID sql.NullInt64
		if err := rows.Scan(&sub.ID, &sub.TaskID, &sub.UserID, &sub.SubmissionText, &sub.FileRefs,
			&sub.Status, &sub.AdminFeedback, &sub.SubmittedAt, &reviewedAt, &reviewerID); err != nil {
			return err
		}
		if reviewedAt.Valid {
			sub.ReviewedAt = &reviewedAt.Time
		}
		if reviewerID.Valid {
			sub.ReviewerID = &reviewerID.Int64
		}
		backup.Submissions = append(backup.Submissions, sub)
	}
	return rows.Err()
}

func (s *BackupService) exportNotifications(backup *BackupData) error {
	query := "SELECT id, user_id, type, title, message, metadata, read_at, created_at FROM notifications ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var n NotificationBackup
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Metadata, &readAt, &n.CreatedAt); err != nil {
			return err
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		backup.Notifications = append(backup.Notifications, n)
	}
	return rows.Err()
}

func (s *BackupService) exportLeaveRequests(backup *BackupData) error {
	query := "SELECT id, project_id, user_id, reason, status, decided_by, decided_at, created_at, updated_at FROM leave_requests ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var req LeaveRequestBackup
		var decidedBy sql.NullInt64
		var decidedAt sql.NullTime
		if err := rows.Scan(&req.ID, &req.ProjectID, &req.UserID, &req.Reason, &req.Status,
			&decidedBy, &decidedAt, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return err
		}
		if decidedBy.Valid {
			req.DecidedBy = &decidedBy.Int64
		}
		if decidedAt.Valid {
			req.DecidedAt = &decidedAt.Time
		}
		backup.LeaveRequests = append(backup.LeaveRequests, req)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	for _, u := range users {
		query := `
			INSERT INTO users (id, email, password_hash, name, is_admin, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := s.db.Exec(query, u.ID, u.Email, u.PasswordHash, u.Name, u.IsAdmin, u.CreatedAt, u.UpdatedAt); err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
	}
	log.Printf("Imported %d users", len(users))
	return nil
}

func (s *BackupService) importProjects(projects []ProjectBackup) error {
	memberCount := 0
	for _, p := range projects {
		query := `
			INSERT INTO projects (id, name, description, owner_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		if _, err := s.db.Exec(query, p.ID, p.Name, p.Description, p.OwnerID, p.CreatedAt, p.UpdatedAt); err != nil {
			return fmt.Errorf("project %d: %w", p.ID, err)
		}

		for _, m := range p.Members {
			memberQuery := "INSERT INTO project_members (project_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)"
			if _, err := s.db.Exec(memberQuery, p.ID, m.UserID, m.Role, m.JoinedAt); err != nil {
				return fmt.Errorf("project %d member %d: %w", p.ID, m.UserID, err)
			}
			memberCount++
		}
	}
	log.Printf("Imported %d projects, %d memberships", len(projects), memberCount)
	return nil
}

func (s *BackupService) importInvitations(invitations []InvitationBackup) error {
	for _, inv := range invitations {
		query := `
			INSERT INTO invitations
				(id, project_id, inviter_id, invitee_email, invitee_id, token, message,
				 status, expires_at, accepted_at, rejected_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := s.db.Exec(query, inv.ID, inv.ProjectID, inv.InviterID, inv.InviteeEmail, inv.InviteeID,
			inv.Token, inv.Message, inv.Status, inv.ExpiresAt, inv.AcceptedAt, inv.RejectedAt,
			inv.CreatedAt, inv.UpdatedAt); err != nil {
			return fmt.Errorf("invitation %d: %w", inv.ID, err)
		}
	}
	log.Printf("Imported %d invitations", len(invitations))
	return nil
}

func (s *BackupService) importTasks(tasks []TaskBackup) error {
	for _, t := range tasks {
		query := `
			INSERT INTO tasks (id, project_id, title, description, status, assignee_id, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := s.db.Exec(query, t.ID, t.ProjectID, t.Title, t.Description, t.Status,
			t.AssigneeID, t.CreatedBy, t.CreatedAt, t.UpdatedAt); err != nil {
			return fmt.Errorf("task %d: %w", t.ID, err)
		}
	}
	log.Printf("Imported %d tasks", len(tasks))
	return nil
}

func (s *BackupService) importSubmissions(submissions []SubmissionBackup) error {
	for _, sub := range submissions {
		query := `
			INSERT INTO task_submissions
				(id, task_id, user_id, submission_text, file_refs, status,
				 admin_feedback, submitted_at, reviewed_at, reviewer_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := s.db.Exec(query, sub.ID, sub.TaskID, sub.UserID, sub.SubmissionText, sub.FileRefs,
			sub.Status, sub.AdminFeedback, sub.SubmittedAt, sub.ReviewedAt, sub.ReviewerID); err != nil {
			return fmt.Errorf("submission %d: %w", sub.ID, err)
		}
	}
	log.Printf("Imported %d submissions", len(submissions))
	return nil
}

func (s *BackupService) importNotifications(notifications []NotificationBackup) error {
	for _, n := range notifications {
		query := `
			INSERT INTO notifications (id, user_id, type, title, message, metadata, read_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := s.db.Exec(query, n.ID, n.UserID, n.Type, n.Title, n.Message, n.Metadata, n.ReadAt, n.CreatedAt); err != nil {
			return fmt.Errorf("notification %d: %w", n.ID, err)
		}
	}
	log.Printf("Imported %d notifications", len(notifications))
	return nil
}

func (s *BackupService) importLeaveRequests(requests []LeaveRequestBackup) error {
	for _, req := range requests {
		query := `
			INSERT INTO leave_requests (id, project_id, user_id, reason, status, decided_by, decided_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := s.db.Exec(query, req.ID, req.ProjectID, req.UserID, req.Reason, req.Status,
			req.DecidedBy, req.DecidedAt, req.CreatedAt, req.UpdatedAt); err != nil {
			return fmt.Errorf("leave request %d: %w", req.ID, err)
		}
	}
	log.Printf("Imported %d leave requests", len(requests))
	return nil
}
