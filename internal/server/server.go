package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskdeck/apiserver/config"
	"github.com/taskdeck/apiserver/internal/db"
	"github.com/taskdeck/apiserver/internal/events"
	"github.com/taskdeck/apiserver/internal/handlers"
	"github.com/taskdeck/apiserver/internal/jobs"
	"github.com/taskdeck/apiserver/internal/notify"
	"github.com/taskdeck/apiserver/internal/services"
	"github.com/taskdeck/apiserver/internal/store"
)

// Server wraps the HTTP server, the digest job and their dependencies.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	digestJob  *jobs.DigestJob
	publisher  events.Publisher
}

// New constructs a Server with all routes and the digest job wired up.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	taskRepo := store.NewTaskRepository(dbConn)

	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo)
	digestService := services.NewDigestService(taskRepo, cfg.Digest.FallbackRecipient)

	var sender notify.Sender
	if cfg.SMTP.Configured() {
		smtpSender, err := notify.NewSMTPSender(cfg.SMTP)
		if err != nil {
			_ = dbConn.Close()
			return nil, err
		}
		sender = smtpSender
	}
	notifier := notify.NewNotifier(sender, cfg.Digest.Interval)

	publisher, err := events.NewPublisher(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	digestJob := jobs.NewDigestJob(digestService, notifier, publisher, cfg.Events.Channel, cfg.Digest.Interval)

	requireAuth := handlers.RequireAuth(jwtSecret)
	optionalAuth := handlers.OptionalAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)

	router.Get("/", handlers.Healthz)
	router.Get("/healthz", handlers.Healthz)

	registerRoutes := func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, userService, jwtSecret, cfg.Auth.TokenTTL)
		})
		r.Route("/tasks", func(r chi.Router) {
			handlers.TaskRouter(r, taskService, requireAuth, optionalAuth)
		})
	}
	registerRoutes(router)
	// Backward-compatible prefix so both /tasks and /api/tasks resolve.
	router.Route("/api", registerRoutes)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		digestJob:  digestJob,
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start schedules the digest job and runs the HTTP server.
func (s *Server) Start() error {
	if err := s.digestJob.Start(); err != nil {
		return err
	}
	slog.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the digest job and releases all resources.
func (s *Server) Shutdown() error {
	if s.digestJob != nil {
		s.digestJob.Stop()
	}
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
