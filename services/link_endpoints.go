package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/theBenForce/CareerCraft-sub000/events"
	"github.com/theBenForce/CareerCraft-sub000/models"
	"github.com/theBenForce/CareerCraft-sub000/repository"
)

type LinkEndpoints struct {
	store *repository.Store
	hub   *events.Hub
}

func NewLinkEndpoints(store *repository.Store, hub *events.Hub) *LinkEndpoints {
	return &LinkEndpoints{store: store, hub: hub}
}

func (e *LinkEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/links", e.List)
	r.Post("/links", e.Create)
	r.Get("/links/{id}", e.Get)
	r.Put("/links/{id}", e.Update)
	r.Delete("/links/{id}", e.Delete)
}

func (e *LinkEndpoints) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	where := repository.Filter{"userId": user.ID}
	for _, parent := range []string{"companyId", "contactId", "jobApplicationId"} {
		if v := r.URL.Query().Get(parent); v != "" {
			where[parent] = v
		}
	}

	links, err := e.store.Links.FindMany(r.Context(), where,
		repository.Options{OrderBy: "createdAt desc"})
	if err != nil {
		slog.Error("Failed to list links", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch links")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"links": links,
		"count": len(links),
	})
}

func (e *LinkEndpoints) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	link, err := e.store.Links.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get link", "link_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch link")
		return
	}
	if link == nil {
		writeError(w, http.StatusNotFound, "Link not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"link": link})
}

func (e *LinkEndpoints) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.Link
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "Link URL is required")
		return
	}

	parents := 0
	if req.CompanyID != nil && *req.CompanyID != "" {
		parents++
	}
	if req.ContactID != nil && *req.ContactID != "" {
		parents++
	}
	if req.JobApplicationID != nil && *req.JobApplicationID != "" {
		parents++
	}
	if parents != 1 {
		writeError(w, http.StatusBadRequest, "Exactly one of companyId, contactId, or jobApplicationId must be provided")
		return
	}

	var (
		owns bool
		err  error
	)
	switch {
	case req.CompanyID != nil && *req.CompanyID != "":
		owns, err = owned(r.Context(), e.store.Companies, *req.CompanyID, user.ID)
	case req.ContactID != nil && *req.ContactID != "":
		owns, err = owned(r.Context(), e.store.Contacts, *req.ContactID, user.ID)
	default:
		owns, err = owned(r.Context(), e.store.JobApplications, *req.JobApplicationID, user.ID)
	}
	if err != nil {
		slog.Error("Failed to verify link parent", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to verify record")
		return
	}
	if !owns {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}

	link := &models.Link{
		UserID:           user.ID,
		URL:              req.URL,
		Label:            req.Label,
		CompanyID:        req.CompanyID,
		ContactID:        req.ContactID,
		JobApplicationID: req.JobApplicationID,
	}
	if err := e.store.Links.Create(r.Context(), link); err != nil {
		slog.Error("Failed to create link", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create link")
		return
	}

	notify(e.hub, user.ID, "link", "created", link.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"link":    link,
		"message": "Link created",
	})
}

func (e *LinkEndpoints) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := e.store.Links.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get link", "link_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch link")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Link not found")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The parent assignment is fixed at creation; only url and label move.
	changes := pickFields(body, "url", "label")
	if url, ok := changes["url"]; ok && (url == nil || url == "") {
		writeError(w, http.StatusBadRequest, "Link URL is required")
		return
	}

	link, err := e.store.Links.Update(r.Context(), id, changes)
	if err != nil {
		slog.Error("Failed to update link", "link_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update link")
		return
	}

	notify(e.hub, user.ID, "link", "updated", id)
	writeJSON(w, http.StatusOK, map[string]any{
		"link":    link,
		"message": "Link updated",
	})
}

func (e *LinkEndpoints) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	link, err := e.store.Links.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get link", "link_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch link")
		return
	}
	if link == nil {
		writeError(w, http.StatusNotFound, "Link not found")
		return
	}

	if _, err := e.store.Links.Delete(r.Context(), id); err != nil {
		slog.Error("Failed to delete link", "link_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete link")
		return
	}

	notify(e.hub, user.ID, "link", "deleted", id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Link deleted"})
}
