package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type AuthEndpoints struct {
	authService *AuthService
}

func NewAuthEndpoints(authService *AuthService) *AuthEndpoints {
	return &AuthEndpoints{authService: authService}
}

func (e *AuthEndpoints) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", e.Login)
	r.Post("/auth/logout", e.Logout)
	r.Post("/auth/refresh", e.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(e.authService.Middleware)
		r.Get("/auth/me", e.Me)
	})
}

func (e *AuthEndpoints) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	authResponse, err := e.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("Login failed", "email", req.Email, "error", err)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	e.authService.SetAuthCookies(w, authResponse.AccessToken, authResponse.RefreshToken)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":    authResponse.User,
		"message": "Login successful",
	})
}

func (e *AuthEndpoints) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken := e.authService.GetTokenFromCookie(r, "access_token")
	if accessToken != "" {
		if user, err := e.authService.VerifyAccessToken(r.Context(), accessToken); err == nil {
			if err := e.authService.Logout(r.Context(), user.ID); err != nil {
				slog.Error("Failed to invalidate refresh tokens", "user_id", user.ID, "error", err)
			}
		}
	}

	e.authService.ClearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logout successful"})
}

func (e *AuthEndpoints) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := e.authService.GetTokenFromCookie(r, "refresh_token")
	if refreshToken == "" {
		writeError(w, http.StatusUnauthorized, "No refresh token provided")
		return
	}

	authResponse, err := e.authService.RefreshToken(r.Context(), refreshToken)
	if err != nil {
		e.authService.ClearAuthCookies(w)
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	e.authService.SetAuthCookies(w, authResponse.AccessToken, "")
	writeJSON(w, http.StatusOK, map[string]any{
		"user":    authResponse.User,
		"message": "Token refreshed",
	})
}

func (e *AuthEndpoints) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
