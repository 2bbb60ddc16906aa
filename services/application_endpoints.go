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

type ApplicationEndpoints struct {
	store    *repository.Store
	hub      *events.Hub
	cascades cascades
}

func NewApplicationEndpoints(store *repository.Store, hub *events.Hub) *ApplicationEndpoints {
	return &ApplicationEndpoints{store: store, hub: hub, cascades: cascades{store: store}}
}

func (e *ApplicationEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/applications", e.List)
	r.Post("/applications", e.Create)
	r.Get("/applications/{id}", e.Get)
	r.Put("/applications/{id}", e.Update)
	r.Delete("/applications/{id}", e.Delete)

	r.Get("/applications/{id}/activities", e.ListActivities)

	files := e.fileAssociation()
	r.Post("/applications/{id}/files", files.Attach)
	r.Delete("/applications/{id}/files", files.Detach)
}

func (e *ApplicationEndpoints) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	where := repository.Filter{"userId": user.ID}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ValidStatus(status) {
			writeError(w, http.StatusBadRequest, "Invalid application status")
			return
		}
		where["status"] = status
	}
	if companyID := r.URL.Query().Get("companyId"); companyID != "" {
		where["companyId"] = companyID
	}

	applications, err := e.store.JobApplications.FindMany(r.Context(), where,
		repository.Options{Include: []string{"Company"}, OrderBy: "createdAt desc"})
	if err != nil {
		slog.Error("Failed to list applications", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch applications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"applications": applications,
		"count":        len(applications),
	})
}

func (e *ApplicationEndpoints) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	application, err := e.store.JobApplications.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID},
		repository.Options{Include: []string{"Company", "Activities", "Links", "Files"}})
	if err != nil {
		slog.Error("Failed to get application", "application_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch application")
		return
	}
	if application == nil {
		writeError(w, http.StatusNotFound, "Application not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"application": application})
}

func (e *ApplicationEndpoints) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	companyID, _ := body["companyId"].(string)
	position, _ := body["position"].(string)
	if companyID == "" {
		writeError(w, http.StatusBadRequest, "companyId is required")
		return
	}
	if position == "" {
		writeError(w, http.StatusBadRequest, "Position is required")
		return
	}

	ownsCompany, err := owned(r.Context(), e.store.Companies, companyID, user.ID)
	if err != nil {
		slog.Error("Failed to verify company", "company_id", companyID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to verify company")
		return
	}
	if !ownsCompany {
		writeError(w, http.StatusNotFound, "Company not found")
		return
	}

	application := &models.JobApplication{
		UserID:    user.ID,
		CompanyID: companyID,
		Position:  position,
		Status:    models.StatusApplied,
		Priority:  "medium",
	}
	if status, ok := body["status"].(string); ok && status != "" {
		if !models.ValidStatus(status) {
			writeError(w, http.StatusBadRequest, "Invalid application status")
			return
		}
		application.Status = status
	}
	if priority, ok := body["priority"].(string); ok && priority != "" {
		if !models.ValidPriority(priority) {
			writeError(w, http.StatusBadRequest, "Invalid application priority")
			return
		}
		application.Priority = priority
	}
	application.JobDescription, _ = body["jobDescription"].(string)
	application.Salary, _ = body["salary"].(string)
	application.Source, _ = body["source"].(string)
	application.Notes, _ = body["notes"].(string)

	for _, field := range []string{"appliedDate", "responseDate", "interviewDate", "offerDate"} {
		if raw, ok := body[field].(string); ok && raw != "" {
			t, err := parseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, field+" is not a valid date")
				return
			}
			switch field {
			case "appliedDate":
				application.AppliedDate = &t
			case "responseDate":
				application.ResponseDate = &t
			case "interviewDate":
				application.InterviewDate = &t
			case "offerDate":
				application.OfferDate = &t
			}
		}
	}

	if err := e.store.JobApplications.Create(r.Context(), application); err != nil {
		slog.Error("Failed to create application", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create application")
		return
	}

	notify(e.hub, user.ID, "application", "created", application.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"application": application,
		"message":     "Application created",
	})
}

func (e *ApplicationEndpoints) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := e.store.JobApplications.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get application", "application_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch application")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Application not found")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	changes := pickFields(body, "position", "status", "priority", "jobDescription",
		"salary", "source", "notes", "appliedDate", "responseDate", "interviewDate", "offerDate")

	if position, ok := changes["position"]; ok && (position == nil || position == "") {
		writeError(w, http.StatusBadRequest, "Position is required")
		return
	}
	if status, ok := changes["status"].(string); ok && !models.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "Invalid application status")
		return
	}
	if priority, ok := changes["priority"].(string); ok && !models.ValidPriority(priority) {
		writeError(w, http.StatusBadRequest, "Invalid application priority")
		return
	}
	for _, field := range []string{"appliedDate", "responseDate", "interviewDate", "offerDate"} {
		if err := convertDate(changes, field); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	application, err := e.store.JobApplications.Update(r.Context(), id, changes)
	if err != nil {
		slog.Error("Failed to update application", "application_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update application")
		return
	}

	notify(e.hub, user.ID, "application", "updated", id)
	writeJSON(w, http.StatusOK, map[string]any{
		"application": application,
		"message":     "Application updated",
	})
}

func (e *ApplicationEndpoints) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := e.store.JobApplications.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get application", "application_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch application")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Application not found")
		return
	}

	if err := e.cascades.DeleteJobApplication(r.Context(), id); err != nil {
		slog.Error("Failed to delete application", "application_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete application")
		return
	}

	notify(e.hub, user.ID, "application", "deleted", id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Application deleted"})
}

func (e *ApplicationEndpoints) ListActivities(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	activities, err := e.store.Activities.FindMany(r.Context(),
		repository.Filter{"jobApplicationId": id, "userId": user.ID},
		repository.Options{Include: []string{"Contacts", "Tags"}, OrderBy: "date desc"})
	if err != nil {
		slog.Error("Failed to list application activities", "application_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch activities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activities": activities,
		"count":      len(activities),
	})
}

func (e *ApplicationEndpoints) fileAssociation() association {
	return association{
		hub:        e.hub,
		entity:     "application",
		childField: "fileId",
		ownsParent: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.JobApplications, id, userID)
		},
		ownsChild: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Files, id, userID)
		},
		attach: e.applicationFiles().attach,
		detach: e.applicationFiles().detach,
	}
}

func (e *ApplicationEndpoints) applicationFiles() pairSet[models.JobApplicationFile] {
	return pairSet[models.JobApplicationFile]{
		coll:      e.store.JobApplicationFiles,
		parentKey: "jobApplicationId",
		childKey:  "fileId",
		newPair: func(parentID, childID string) *models.JobApplicationFile {
			return &models.JobApplicationFile{JobApplicationID: parentID, FileID: childID}
		},
		pairID: func(j *models.JobApplicationFile) string { return j.ID },
	}
}
