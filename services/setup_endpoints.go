package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/theBenForce/CareerCraft-sub000/models"
	"github.com/theBenForce/CareerCraft-sub000/repository"
	"golang.org/x/crypto/bcrypt"
)

// SetupEndpoints handles first-run initialization. The application is
// single-user: once any account exists, setup is permanently closed.
type SetupEndpoints struct {
	store *repository.Store
}

func NewSetupEndpoints(store *repository.Store) *SetupEndpoints {
	return &SetupEndpoints{store: store}
}

func (e *SetupEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/setup", e.Status)
	r.Post("/setup", e.Setup)
}

func (e *SetupEndpoints) Status(w http.ResponseWriter, r *http.Request) {
	count, err := e.store.Users.Count(r.Context(), repository.Filter{})
	if err != nil {
		slog.Error("Failed to count users", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to check setup status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"setupRequired": count == 0})
}

func (e *SetupEndpoints) Setup(w http.ResponseWriter, r *http.Request) {
	count, err := e.store.Users.Count(r.Context(), repository.Filter{})
	if err != nil {
		slog.Error("Failed to count users", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to check setup status")
		return
	}
	if count > 0 {
		writeError(w, http.StatusBadRequest, "Setup has already been completed")
		return
	}

	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := &models.User{
		Email:     req.Email,
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := e.store.Users.Create(r.Context(), user); err != nil {
		slog.Error("Failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	slog.Info("Initial user created", "user_id", user.ID, "email", user.Email)
	writeJSON(w, http.StatusCreated, map[string]any{
		"user":    user,
		"message": "Setup completed",
	})
}
