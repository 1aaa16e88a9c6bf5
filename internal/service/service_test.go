package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"taskhive/internal/database"
	"taskhive/internal/models"
	"taskhive/internal/repository"
	"taskhive/internal/security"
)

var testSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id INTEGER NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE project_members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		role TEXT NOT NULL DEFAULT 'member',
		joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (project_id, user_id)
	)`,
	`CREATE TABLE invitations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		inviter_id INTEGER NOT NULL REFERENCES users(id),
		invitee_email TEXT NOT NULL,
		invitee_id INTEGER REFERENCES users(id),
		token TEXT UNIQUE NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		expires_at TIMESTAMP NOT NULL,
		accepted_at TIMESTAMP,
		rejected_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'todo',
		assignee_id INTEGER REFERENCES users(id),
		created_by INTEGER NOT NULL REFERENCES users(id),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE task_submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		submission_text TEXT NOT NULL DEFAULT '',
		file_refs TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'pending',
		admin_feedback TEXT,
		submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		reviewed_at TIMESTAMP,
		reviewer_id INTEGER REFERENCES users(id)
	)`,
	`CREATE TABLE notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		read_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE leave_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		decided_by INTEGER REFERENCES users(id),
		decided_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var errTransportDown = errors.New("smtp relay unavailable")

// fakeTransport records sent emails in memory and can be told to fail
type fakeTransport struct {
	mu      sync.Mutex
	sent    []Email
	sendErr error
}

func (f *fakeTransport) Send(ctx context.Context, to, subject, htmlBody, textBody string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, Email{To: to, Subject: subject, HTMLBody: htmlBody, TextBody: textBody})
	return "fake-message-id", nil
}

func (f *fakeTransport) sentTo(to string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, e := range f.sent {
		if e.To == to {
			count++
		}
	}
	return count
}

// testEnv wires the full service stack over a throwaway SQLite database
type testEnv struct {
	db            *database.DB
	users         *repository.UserRepository
	projects      *repository.ProjectRepository
	invitations   *repository.InvitationRepository
	tasks         *repository.TaskRepository
	submissions   *repository.SubmissionRepository
	notifications *repository.NotificationRepository
	leaves        *repository.LeaveRequestRepository
	transport     *fakeTransport
	notifier      *Notifier

	invitationSvc *InvitationService
	submissionSvc *SubmissionService
	projectSvc    *ProjectService
	taskSvc       *TaskService
	leaveSvc      *LeaveService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, stmt := range testSchema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("Failed to create test schema: %v", err)
		}
	}

	env := &testEnv{
		db:            db,
		users:         repository.NewUserRepository(db),
		projects:      repository.NewProjectRepository(db),
		invitations:   repository.NewInvitationRepository(db),
		tasks:         repository.NewTaskRepository(db),
		submissions:   repository.NewSubmissionRepository(db),
		notifications: repository.NewNotificationRepository(db),
		leaves:        repository.NewLeaveRequestRepository(db),
		transport:     &fakeTransport{},
	}

	env.notifier = NewNotifier(env.notifications, env.transport, 16)
	t.Cleanup(env.notifier.Close)

	tokens := security.NewTokenIssuer(7 * 24 * time.Hour)
	env.invitationSvc = NewInvitationService(db, env.invitations, env.projects, env.users, tokens, env.notifier, "http://localhost:8080")
	env.submissionSvc = NewSubmissionService(env.submissions, env.tasks, env.projects, env.users, env.notifier)
	env.projectSvc = NewProjectService(env.projects)
	env.taskSvc = NewTaskService(env.tasks, env.projects)
	env.leaveSvc = NewLeaveService(db, env.leaves, env.projects, env.users, env.notifier)

	return env
}

func (env *testEnv) createUser(t *testing.T, email, name string) *models.User {
	t.Helper()
	user, err := env.users.CreateUser(email, "hashed-password", name)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

func (env *testEnv) createProject(t *testing.T, ownerID int64, name string) *models.Project {
	t.Helper()
	project, err := env.projects.CreateProject(name, "", ownerID)
	if err != nil {
		t.Fatalf("Failed to create project %s: %v", name, err)
	}
	return project
}

func (env *testEnv) createTask(t *testing.T, projectID, creatorID int64, title string) *models.Task {
	t.Helper()
	task, err := env.tasks.CreateTask(projectID, title, "", creatorID)
	if err != nil {
		t.Fatalf("Failed to create task %s: %v", title, err)
	}
	return task
}

// drainEmails closes and replaces nothing; it just waits briefly for the
// notifier worker to process queued email
func (env *testEnv) drainEmails() {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		env.transport.mu.Lock()
		queued := len(env.notifier.queue)
		env.transport.mu.Unlock()
		if queued == 0 {
			// Give the worker a moment to finish the in-flight send
			time.Sleep(20 * time.Millisecond)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func countNotifications(t *testing.T, env *testEnv, userID int64, ntype string) int {
	t.Helper()
	notifications, err := env.notifications.ListByUserAndType(userID, ntype)
	if err != nil {
		t.Fatalf("Failed to list notifications: %v", err)
	}
	return len(notifications)
}

func assertServiceError(t *testing.T, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Fatalf("error = %v, want %v", got, want)
	}
}
