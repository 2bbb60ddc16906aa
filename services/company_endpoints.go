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

type CompanyEndpoints struct {
	store    *repository.Store
	hub      *events.Hub
	cascades cascades
}

func NewCompanyEndpoints(store *repository.Store, hub *events.Hub) *CompanyEndpoints {
	return &CompanyEndpoints{store: store, hub: hub, cascades: cascades{store: store}}
}

func (e *CompanyEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/companies", e.List)
	r.Post("/companies", e.Create)
	r.Get("/companies/{id}", e.Get)
	r.Put("/companies/{id}", e.Update)
	r.Delete("/companies/{id}", e.Delete)

	r.Get("/companies/{id}/contacts", e.ListContacts)
	r.Get("/companies/{id}/activities", e.ListActivities)

	tags := e.tagAssociation()
	r.Post("/companies/{id}/tags", tags.Attach)
	r.Delete("/companies/{id}/tags", tags.Detach)

	files := e.fileAssociation()
	r.Post("/companies/{id}/files", files.Attach)
	r.Delete("/companies/{id}/files", files.Detach)
}

func (e *CompanyEndpoints) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	companies, err := e.store.Companies.FindMany(r.Context(),
		repository.Filter{"userId": user.ID},
		repository.Options{Include: []string{"Tags", "Contacts"}, OrderBy: "createdAt desc"})
	if err != nil {
		slog.Error("Failed to list companies", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch companies")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"companies": companies,
		"count":     len(companies),
	})
}

func (e *CompanyEndpoints) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	company, err := e.store.Companies.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID},
		repository.Options{Include: []string{"Contacts", "JobApplications", "Activities", "Links", "Tags", "Files"}})
	if err != nil {
		slog.Error("Failed to get company", "company_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch company")
		return
	}
	if company == nil {
		writeError(w, http.StatusNotFound, "Company not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"company": company})
}

func (e *CompanyEndpoints) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.Company
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Company name is required")
		return
	}

	company := &models.Company{
		UserID:      user.ID,
		Name:        req.Name,
		Industry:    req.Industry,
		Description: req.Description,
		Location:    req.Location,
		Size:        req.Size,
		Logo:        req.Logo,
		Notes:       req.Notes,
	}
	if err := e.store.Companies.Create(r.Context(), company); err != nil {
		slog.Error("Failed to create company", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create company")
		return
	}

	notify(e.hub, user.ID, "company", "created", company.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"company": company,
		"message": "Company created",
	})
}

func (e *CompanyEndpoints) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := e.store.Companies.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get company", "company_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch company")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Company not found")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	changes := pickFields(body, "name", "industry", "description", "location", "size", "logo", "notes")
	if name, ok := changes["name"]; ok && (name == nil || name == "") {
		writeError(w, http.StatusBadRequest, "Company name is required")
		return
	}

	company, err := e.store.Companies.Update(r.Context(), id, changes)
	if err != nil {
		slog.Error("Failed to update company", "company_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update company")
		return
	}

	notify(e.hub, user.ID, "company", "updated", id)
	writeJSON(w, http.StatusOK, map[string]any{
		"company": company,
		"message": "Company updated",
	})
}

func (e *CompanyEndpoints) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := e.store.Companies.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get company", "company_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch company")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Company not found")
		return
	}

	if err := e.cascades.DeleteCompany(r.Context(), id); err != nil {
		slog.Error("Failed to delete company", "company_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete company")
		return
	}

	notify(e.hub, user.ID, "company", "deleted", id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Company deleted"})
}

func (e *CompanyEndpoints) ListContacts(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	contacts, err := e.store.Contacts.FindMany(r.Context(),
		repository.Filter{"companyId": id, "userId": user.ID},
		repository.Options{Include: []string{"Tags"}, OrderBy: "createdAt desc"})
	if err != nil {
		slog.Error("Failed to list company contacts", "company_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch contacts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contacts": contacts,
		"count":    len(contacts),
	})
}

func (e *CompanyEndpoints) ListActivities(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	activities, err := e.store.Activities.FindMany(r.Context(),
		repository.Filter{"companyId": id, "userId": user.ID},
		repository.Options{Include: []string{"Contacts", "Tags"}, OrderBy: "date desc"})
	if err != nil {
		slog.Error("Failed to list company activities", "company_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch activities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activities": activities,
		"count":      len(activities),
	})
}

func (e *CompanyEndpoints) tagAssociation() association {
	return association{
		hub:        e.hub,
		entity:     "company",
		childField: "tagId",
		ownsParent: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Companies, id, userID)
		},
		ownsChild: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Tags, id, userID)
		},
		attach: e.companyTags().attach,
		detach: e.companyTags().detach,
	}
}

func (e *CompanyEndpoints) fileAssociation() association {
	return association{
		hub:        e.hub,
		entity:     "company",
		childField: "fileId",
		ownsParent: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Companies, id, userID)
		},
		ownsChild: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Files, id, userID)
		},
		attach: e.companyFiles().attach,
		detach: e.companyFiles().detach,
	}
}

func (e *CompanyEndpoints) companyTags() pairSet[models.CompanyTag] {
	return pairSet[models.CompanyTag]{
		coll:      e.store.CompanyTags,
		parentKey: "companyId",
		childKey:  "tagId",
		newPair: func(parentID, childID string) *models.CompanyTag {
			return &models.CompanyTag{CompanyID: parentID, TagID: childID}
		},
		pairID: func(j *models.CompanyTag) string { return j.ID },
	}
}

func (e *CompanyEndpoints) companyFiles() pairSet[models.CompanyFile] {
	return pairSet[models.CompanyFile]{
		coll:      e.store.CompanyFiles,
		parentKey: "companyId",
		childKey:  "fileId",
		newPair: func(parentID, childID string) *models.CompanyFile {
			return &models.CompanyFile{CompanyID: parentID, FileID: childID}
		},
		pairID: func(j *models.CompanyFile) string { return j.ID },
	}
}
