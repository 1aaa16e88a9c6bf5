package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"taskhive/internal/config"
	"taskhive/internal/database"
	"taskhive/internal/handlers"
	"taskhive/internal/repository"
	"taskhive/internal/security"
	"taskhive/internal/service"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	leaveRepo := repository.NewLeaveRequestRepository(db)

	// Email transport and notification fan-out
	emailService, err := service.NewEmailService(cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.EmailDebug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	notifier := service.NewNotifier(notificationRepo, emailService, cfg.EmailQueueSize)
	defer notifier.Close()

	// Services
	tokens := security.NewTokenIssuer(cfg.InvitationTTL)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.SessionDuration)
	projectService := service.NewProjectService(projectRepo)
	invitationService := service.NewInvitationService(db, invitationRepo, projectRepo, userRepo, tokens, notifier, cfg.AppBaseURL)
	taskService := service.NewTaskService(taskRepo, projectRepo)
	submissionService := service.NewSubmissionService(submissionRepo, taskRepo, projectRepo, userRepo, notifier)
	leaveService := service.NewLeaveService(db, leaveRepo, projectRepo, userRepo, notifier)

	// Handlers
	limiter := security.NewRateLimiter(20, time.Minute)
	middleware := handlers.NewMiddleware(authService, limiter)
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	taskHandler := handlers.NewTaskHandler(taskService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	leaveHandler := handlers.NewLeaveHandler(leaveService)
	healthHandler := handlers.NewHealthHandler(db, config.Capabilities{
		DatabaseType: cfg.DatabaseType,
		EmailEnabled: emailService.IsEnabled(),
	})

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)

	// Invitation landing routes reached from emailed links. The token in
	// the URL authorizes lookup and reject; accept additionally needs a
	// session so the membership lands on the right account.
	mux.HandleFunc("GET /invitations/lookup", middleware.RateLimit(invitationHandler.Lookup))
	mux.HandleFunc("POST /invitations/accept", middleware.OptionalAuth(invitationHandler.Accept))
	mux.HandleFunc("POST /invitations/reject", middleware.RateLimit(invitationHandler.Reject))

	// Authenticated routes
	mux.HandleFunc("GET /me", middleware.RequireAuth(authHandler.Me))

	mux.HandleFunc("POST /projects", middleware.RequireAuth(projectHandler.Create))
	mux.HandleFunc("GET /projects", middleware.RequireAuth(projectHandler.List))
	mux.HandleFunc("GET /projects/{id}", middleware.RequireAuth(projectHandler.Get))
	mux.HandleFunc("PUT /projects/{id}", middleware.RequireAuth(projectHandler.Update))
	mux.HandleFunc("GET /projects/{id}/members", middleware.RequireAuth(projectHandler.Members))
	mux.HandleFunc("POST /projects/{id}/members", middleware.RequireAuth(projectHandler.AddMember))
	mux.HandleFunc("DELETE /projects/{id}/members/{userID}", middleware.RequireAuth(projectHandler.RemoveMember))

	mux.HandleFunc("POST /projects/{id}/invitations", middleware.RequireAuth(invitationHandler.Create))
	mux.HandleFunc("GET /projects/{id}/invitations", middleware.RequireAuth(invitationHandler.ListByProject))

	mux.HandleFunc("POST /projects/{id}/tasks", middleware.RequireAuth(taskHandler.Create))
	mux.HandleFunc("GET /projects/{id}/tasks", middleware.RequireAuth(taskHandler.ListByProject))
	mux.HandleFunc("GET /tasks/{id}", middleware.RequireAuth(taskHandler.Get))
	mux.HandleFunc("PUT /tasks/{id}/status", middleware.RequireAuth(taskHandler.UpdateStatus))
	mux.HandleFunc("PUT /tasks/{id}/assignee", middleware.RequireAuth(taskHandler.Assign))

	mux.HandleFunc("POST /tasks/{id}/submissions", middleware.RequireAuth(submissionHandler.Submit))
	mux.HandleFunc("GET /tasks/{id}/submissions", middleware.RequireAuth(submissionHandler.ListByTask))
	mux.HandleFunc("GET /tasks/{id}/submissions/latest", middleware.RequireAuth(submissionHandler.Latest))
	mux.HandleFunc("GET /submissions/{id}", middleware.RequireAuth(submissionHandler.Get))
	mux.HandleFunc("POST /submissions/{id}/review", middleware.RequireAuth(submissionHandler.Review))

	mux.HandleFunc("GET /notifications", middleware.RequireAuth(notificationHandler.List))
	mux.HandleFunc("GET /notifications/unread-count", middleware.RequireAuth(notificationHandler.UnreadCount))
	mux.HandleFunc("POST /notifications/{id}/read", middleware.RequireAuth(notificationHandler.MarkRead))
	mux.HandleFunc("POST /notifications/read-all", middleware.RequireAuth(notificationHandler.MarkAllRead))

	mux.HandleFunc("POST /projects/{id}/leave-requests", middleware.RequireAuth(leaveHandler.Request))
	mux.HandleFunc("GET /projects/{id}/leave-requests", middleware.RequireAuth(leaveHandler.ListByProject))
	mux.HandleFunc("POST /leave-requests/{id}/decide", middleware.RequireAuth(leaveHandler.Decide))

	handler := handlers.Logging(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Hourly hygiene report on expired invitations. Expiry is derived at
	// read time, so this never rewrites rows; it only surfaces backlog.
	go reportExpiredInvitations(invitationService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

func reportExpiredInvitations(invitations *service.InvitationService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		count, err := invitations.ExpiredPendingCount()
		if err != nil {
			log.Printf("Error counting expired invitations: %v", err)
			continue
		}
		if count > 0 {
			log.Printf("%d pending invitations have expired", count)
		}
	}
}
