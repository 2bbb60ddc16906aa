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

type TagEndpoints struct {
	store    *repository.Store
	hub      *events.Hub
	cascades cascades
}

func NewTagEndpoints(store *repository.Store, hub *events.Hub) *TagEndpoints {
	return &TagEndpoints{store: store, hub: hub, cascades: cascades{store: store}}
}

func (e *TagEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/tags", e.List)
	r.Post("/tags", e.Create)
	r.Get("/tags/{id}", e.Get)
	r.Put("/tags/{id}", e.Update)
	r.Delete("/tags/{id}", e.Delete)

	r.Get("/tags/{id}/contacts", e.ListContacts)
	r.Get("/tags/{id}/companies", e.ListCompanies)
}

func (e *TagEndpoints) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tags, err := e.store.Tags.FindMany(r.Context(),
		repository.Filter{"userId": user.ID},
		repository.Options{OrderBy: "name asc"})
	if err != nil {
		slog.Error("Failed to list tags", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch tags")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tags":  tags,
		"count": len(tags),
	})
}

func (e *TagEndpoints) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	tag, err := e.store.Tags.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get tag", "tag_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch tag")
		return
	}
	if tag == nil {
		writeError(w, http.StatusNotFound, "Tag not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tag": tag})
}

func (e *TagEndpoints) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.Tag
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Tag name is required")
		return
	}

	// Names are unique per user. Both backends take the same path here,
	// so the 409 does not depend on driver error translation.
	count, err := e.store.Tags.Count(r.Context(),
		repository.Filter{"userId": user.ID, "name": req.Name})
	if err != nil {
		slog.Error("Failed to check tag name", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create tag")
		return
	}
	if count > 0 {
		writeError(w, http.StatusConflict, "A tag with this name already exists")
		return
	}

	tag := &models.Tag{
		UserID:      user.ID,
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	}
	if err := e.store.Tags.Create(r.Context(), tag); err != nil {
		slog.Error("Failed to create tag", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create tag")
		return
	}

	notify(e.hub, user.ID, "tag", "created", tag.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"tag":     tag,
		"message": "Tag created",
	})
}

func (e *TagEndpoints) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := e.store.Tags.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get tag", "tag_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch tag")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Tag not found")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	changes := pickFields(body, "name", "color", "description")
	if name, ok := changes["name"]; ok && (name == nil || name == "") {
		writeError(w, http.StatusBadRequest, "Tag name is required")
		return
	}

	if name, ok := changes["name"].(string); ok && name != existing.Name {
		count, err := e.store.Tags.Count(r.Context(),
			repository.Filter{"userId": user.ID, "name": name})
		if err != nil {
			slog.Error("Failed to check tag name", "user_id", user.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to update tag")
			return
		}
		if count > 0 {
			writeError(w, http.StatusConflict, "A tag with this name already exists")
			return
		}
	}

	tag, err := e.store.Tags.Update(r.Context(), id, changes)
	if err != nil {
		slog.Error("Failed to update tag", "tag_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update tag")
		return
	}

	notify(e.hub, user.ID, "tag", "updated", id)
	writeJSON(w, http.StatusOK, map[string]any{
		"tag":     tag,
		"message": "Tag updated",
	})
}

func (e *TagEndpoints) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := e.store.Tags.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get tag", "tag_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch tag")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Tag not found")
		return
	}

	if err := e.cascades.DeleteTag(r.Context(), id); err != nil {
		slog.Error("Failed to delete tag", "tag_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete tag")
		return
	}

	notify(e.hub, user.ID, "tag", "deleted", id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Tag deleted"})
}

// ListContacts returns the user's contacts carrying this tag.
func (e *TagEndpoints) ListContacts(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	owns, err := owned(r.Context(), e.store.Tags, id, user.ID)
	if err != nil {
		slog.Error("Failed to verify tag", "tag_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to verify tag")
		return
	}
	if !owns {
		writeError(w, http.StatusNotFound, "Tag not found")
		return
	}

	joins, err := e.store.ContactTags.FindMany(r.Context(),
		repository.Filter{"tagId": id}, repository.Options{})
	if err != nil {
		slog.Error("Failed to list tagged contacts", "tag_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch contacts")
		return
	}

	contacts := make([]models.Contact, 0, len(joins))
	for i := range joins {
		contact, err := e.store.Contacts.FindUnique(r.Context(),
			repository.Filter{"id": joins[i].ContactID, "userId": user.ID},
			repository.Options{Include: []string{"Company"}})
		if err != nil {
			slog.Error("Failed to fetch contact", "contact_id", joins[i].ContactID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch contacts")
			return
		}
		if contact != nil {
			contacts = append(contacts, *contact)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contacts": contacts,
		"count":    len(contacts),
	})
}

// ListCompanies returns the user's companies carrying this tag.
func (e *TagEndpoints) ListCompanies(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	owns, err := owned(r.Context(), e.store.Tags, id, user.ID)
	if err != nil {
		slog.Error("Failed to verify tag", "tag_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to verify tag")
		return
	}
	if !owns {
		writeError(w, http.StatusNotFound, "Tag not found")
		return
	}

	joins, err := e.store.CompanyTags.FindMany(r.Context(),
		repository.Filter{"tagId": id}, repository.Options{})
	if err != nil {
		slog.Error("Failed to list tagged companies", "tag_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch companies")
		return
	}

	companies := make([]models.Company, 0, len(joins))
	for i := range joins {
		company, err := e.store.Companies.FindUnique(r.Context(),
			repository.Filter{"id": joins[i].CompanyID, "userId": user.ID},
			repository.Options{})
		if err != nil {
			slog.Error("Failed to fetch company", "company_id", joins[i].CompanyID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch companies")
			return
		}
		if company != nil {
			companies = append(companies, *company)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"companies": companies,
		"count":     len(companies),
	})
}
