package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/theBenForce/CareerCraft-sub000/events"
	"github.com/theBenForce/CareerCraft-sub000/models"
	"github.com/theBenForce/CareerCraft-sub000/repository"
)

type ContactEndpoints struct {
	store    *repository.Store
	hub      *events.Hub
	cascades cascades
}

func NewContactEndpoints(store *repository.Store, hub *events.Hub) *ContactEndpoints {
	return &ContactEndpoints{store: store, hub: hub, cascades: cascades{store: store}}
}

func (e *ContactEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/contacts", e.List)
	r.Post("/contacts", e.Create)
	r.Get("/contacts/{id}", e.Get)
	r.Put("/contacts/{id}", e.Update)
	r.Delete("/contacts/{id}", e.Delete)

	r.Get("/contacts/{id}/activities", e.ListActivities)

	tags := e.tagAssociation()
	r.Post("/contacts/{id}/tags", tags.Attach)
	r.Delete("/contacts/{id}/tags", tags.Detach)

	files := e.fileAssociation()
	r.Post("/contacts/{id}/files", files.Attach)
	r.Delete("/contacts/{id}/files", files.Detach)
}

func (e *ContactEndpoints) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	where := repository.Filter{"userId": user.ID}
	if companyID := r.URL.Query().Get("companyId"); companyID != "" {
		where["companyId"] = companyID
	}

	contacts, err := e.store.Contacts.FindMany(r.Context(), where,
		repository.Options{Include: []string{"Company", "Tags"}, OrderBy: "createdAt desc"})
	if err != nil {
		slog.Error("Failed to list contacts", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch contacts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contacts": contacts,
		"count":    len(contacts),
	})
}

func (e *ContactEndpoints) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	contact, err := e.store.Contacts.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID},
		repository.Options{Include: []string{"Company", "Links", "Tags", "Files"}})
	if err != nil {
		slog.Error("Failed to get contact", "contact_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch contact")
		return
	}
	if contact == nil {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"contact": contact})
}

func (e *ContactEndpoints) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.Contact
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.LastName == "" {
		writeError(w, http.StatusBadRequest, "Contact last name is required")
		return
	}

	if req.CompanyID != nil {
		ok, err := owned(r.Context(), e.store.Companies, *req.CompanyID, user.ID)
		if err != nil {
			slog.Error("Failed to verify company", "company_id", *req.CompanyID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to verify company")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Company not found")
			return
		}
	}

	contact := &models.Contact{
		UserID:     user.ID,
		CompanyID:  req.CompanyID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   req.Position,
		Department: req.Department,
		Image:      req.Image,
		Summary:    req.Summary,
		Notes:      req.Notes,
	}
	if err := e.store.Contacts.Create(r.Context(), contact); err != nil {
		slog.Error("Failed to create contact", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create contact")
		return
	}

	notify(e.hub, user.ID, "contact", "created", contact.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"contact": contact,
		"message": "Contact created",
	})
}

func (e *ContactEndpoints) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := e.store.Contacts.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get contact", "contact_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch contact")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	changes := pickFields(body, "companyId", "firstName", "lastName", "email",
		"phone", "position", "department", "image", "summary", "notes")
	if lastName, ok := changes["lastName"]; ok && (lastName == nil || lastName == "") {
		writeError(w, http.StatusBadRequest, "Contact last name is required")
		return
	}

	if companyID, ok := changes["companyId"].(string); ok && companyID != "" {
		ok, err := owned(r.Context(), e.store.Companies, companyID, user.ID)
		if err != nil {
			slog.Error("Failed to verify company", "company_id", companyID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to verify company")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Company not found")
			return
		}
	}

	contact, err := e.store.Contacts.Update(r.Context(), id, changes)
	if err != nil {
		slog.Error("Failed to update contact", "contact_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update contact")
		return
	}

	notify(e.hub, user.ID, "contact", "updated", id)
	writeJSON(w, http.StatusOK, map[string]any{
		"contact": contact,
		"message": "Contact updated",
	})
}

func (e *ContactEndpoints) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := e.store.Contacts.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get contact", "contact_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch contact")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}

	if err := e.cascades.DeleteContact(r.Context(), id); err != nil {
		slog.Error("Failed to delete contact", "contact_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete contact")
		return
	}

	notify(e.hub, user.ID, "contact", "deleted", id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Contact deleted"})
}

// ListActivities returns activities linked to the contact through the
// activity_contacts join.
func (e *ContactEndpoints) ListActivities(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	ok, err := owned(r.Context(), e.store.Contacts, id, user.ID)
	if err != nil {
		slog.Error("Failed to verify contact", "contact_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to verify contact")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Contact not found")
		return
	}

	joins, err := e.store.ActivityContacts.FindMany(r.Context(),
		repository.Filter{"contactId": id}, repository.Options{})
	if err != nil {
		slog.Error("Failed to list contact activities", "contact_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch activities")
		return
	}

	activities := make([]models.Activity, 0, len(joins))
	for i := range joins {
		activity, err := e.store.Activities.FindUnique(r.Context(),
			repository.Filter{"id": joins[i].ActivityID, "userId": user.ID},
			repository.Options{Include: []string{"Tags"}})
		if err != nil {
			slog.Error("Failed to fetch activity", "activity_id", joins[i].ActivityID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch activities")
			return
		}
		if activity != nil {
			activities = append(activities, *activity)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activities": activities,
		"count":      len(activities),
	})
}

func (e *ContactEndpoints) tagAssociation() association {
	return association{
		hub:        e.hub,
		entity:     "contact",
		childField: "tagId",
		ownsParent: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Contacts, id, userID)
		},
		ownsChild: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Tags, id, userID)
		},
		attach: e.contactTags().attach,
		detach: e.contactTags().detach,
	}
}

func (e *ContactEndpoints) fileAssociation() association {
	return association{
		hub:        e.hub,
		entity:     "contact",
		childField: "fileId",
		ownsParent: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Contacts, id, userID)
		},
		ownsChild: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Files, id, userID)
		},
		attach: e.contactFiles().attach,
		detach: e.contactFiles().detach,
	}
}

func (e *ContactEndpoints) contactTags() pairSet[models.ContactTag] {
	return pairSet[models.ContactTag]{
		coll:      e.store.ContactTags,
		parentKey: "contactId",
		childKey:  "tagId",
		newPair: func(parentID, childID string) *models.ContactTag {
			return &models.ContactTag{ContactID: parentID, TagID: childID}
		},
		pairID: func(j *models.ContactTag) string { return j.ID },
	}
}

func (e *ContactEndpoints) contactFiles() pairSet[models.ContactFile] {
	return pairSet[models.ContactFile]{
		coll:      e.store.ContactFiles,
		parentKey: "contactId",
		childKey:  "fileId",
		newPair: func(parentID, childID string) *models.ContactFile {
			return &models.ContactFile{ContactID: parentID, FileID: childID}
		},
		pairID: func(j *models.ContactFile) string { return j.ID },
	}
}
