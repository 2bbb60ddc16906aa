package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/theBenForce/CareerCraft-sub000/events"
	"github.com/theBenForce/CareerCraft-sub000/repository"
	"github.com/theBenForce/CareerCraft-sub000/storage"
	"gorm.io/gorm"
)

// Server holds all server dependencies
type Server struct {
	config   *Config
	store    *repository.Store
	gormDB   *gorm.DB
	uploader storage.Uploader

	authService *AuthService
	hub         *events.Hub
	upgrader    websocket.Upgrader

	setupEndpoints       *SetupEndpoints
	authEndpoints        *AuthEndpoints
	companyEndpoints     *CompanyEndpoints
	contactEndpoints     *ContactEndpoints
	applicationEndpoints *ApplicationEndpoints
	activityEndpoints    *ActivityEndpoints
	tagEndpoints         *TagEndpoints
	linkEndpoints        *LinkEndpoints
	fileEndpoints        *FileEndpoints
}

// NewServer wires the endpoint structs over a store and an uploader. The
// gorm handle is only used for the health check ping and may be nil when
// the document backend is active.
func NewServer(config *Config, store *repository.Store, gormDB *gorm.DB, uploader storage.Uploader) *Server {
	s := &Server{
		config:   config,
		store:    store,
		gormDB:   gormDB,
		uploader: uploader,
		hub:      events.NewHub(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}

	s.authService = NewAuthService(store, config.JWT.Secret)
	s.setupEndpoints = NewSetupEndpoints(store)
	s.authEndpoints = NewAuthEndpoints(s.authService)
	s.companyEndpoints = NewCompanyEndpoints(store, s.hub)
	s.contactEndpoints = NewContactEndpoints(store, s.hub)
	s.applicationEndpoints = NewApplicationEndpoints(store, s.hub)
	s.activityEndpoints = NewActivityEndpoints(store, s.hub)
	s.tagEndpoints = NewTagEndpoints(store, s.hub)
	s.linkEndpoints = NewLinkEndpoints(store, s.hub)
	s.fileEndpoints = NewFileEndpoints(store, uploader, s.hub)

	go s.hub.Run()
	return s
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		s.setupEndpoints.RegisterRoutes(r)
		s.authEndpoints.RegisterRoutes(r)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authService.Middleware)
			s.companyEndpoints.RegisterRoutes(r)
			s.contactEndpoints.RegisterRoutes(r)
			s.applicationEndpoints.RegisterRoutes(r)
			s.activityEndpoints.RegisterRoutes(r)
			s.tagEndpoints.RegisterRoutes(r)
			s.linkEndpoints.RegisterRoutes(r)
			s.fileEndpoints.RegisterRoutes(r)
			r.Get("/events", s.eventsHandler)
		})
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	// Parse allowed origins (comma-separated list)
	allowedOrigins := strings.Split(allowedOriginsStr, ",")

	// Trim whitespace from origins
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	// Check if origin is in allowed list
	for _, allowed := range allowedOrigins {
		if allowed == origin {
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "up"

	if s.gormDB != nil {
		if sqlDB, err := s.gormDB.DB(); err != nil {
			dbStatus = "down"
			status = "degraded"
		} else if err := sqlDB.Ping(); err != nil {
			dbStatus = "down"
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"database": dbStatus,
	})
}

// eventsHandler upgrades an authenticated connection to the live change
// feed. Each mutation made through the API shows up here as one event.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("Event feed connection established", "user_id", user.ID)

	client := s.hub.RegisterClient(conn, user.ID)
	go client.WritePump()
	go client.ReadPump()
}
