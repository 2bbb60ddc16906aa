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

type ActivityEndpoints struct {
	store    *repository.Store
	hub      *events.Hub
	cascades cascades
}

func NewActivityEndpoints(store *repository.Store, hub *events.Hub) *ActivityEndpoints {
	return &ActivityEndpoints{store: store, hub: hub, cascades: cascades{store: store}}
}

func (e *ActivityEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/activities", e.List)
	r.Post("/activities", e.Create)
	r.Get("/activities/{id}", e.Get)
	r.Put("/activities/{id}", e.Update)
	r.Delete("/activities/{id}", e.Delete)

	contacts := e.contactAssociation()
	r.Post("/activities/{id}/contacts", contacts.Attach)
	r.Delete("/activities/{id}/contacts", contacts.Detach)

	tags := e.tagAssociation()
	r.Post("/activities/{id}/tags", tags.Attach)
	r.Delete("/activities/{id}/tags", tags.Detach)

	files := e.fileAssociation()
	r.Post("/activities/{id}/files", files.Attach)
	r.Delete("/activities/{id}/files", files.Detach)
}

func (e *ActivityEndpoints) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	where := repository.Filter{"userId": user.ID}
	if activityType := r.URL.Query().Get("type"); activityType != "" {
		if !models.ValidActivityType(activityType) {
			writeError(w, http.StatusBadRequest, "Invalid activity type")
			return
		}
		where["type"] = activityType
	}
	if companyID := r.URL.Query().Get("companyId"); companyID != "" {
		where["companyId"] = companyID
	}

	activities, err := e.store.Activities.FindMany(r.Context(), where,
		repository.Options{Include: []string{"Company", "Contacts", "Tags"}, OrderBy: "date desc"})
	if err != nil {
		slog.Error("Failed to list activities", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch activities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activities": activities,
		"count":      len(activities),
	})
}

func (e *ActivityEndpoints) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	activity, err := e.store.Activities.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID},
		repository.Options{Include: []string{"Company", "JobApplication", "Contacts", "Tags", "Files"}})
	if err != nil {
		slog.Error("Failed to get activity", "activity_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}
	if activity == nil {
		writeError(w, http.StatusNotFound, "Activity not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"activity": activity})
}

func (e *ActivityEndpoints) Create(w http.ResponseWriter, r *http.Request) {
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

	activityType, _ := body["type"].(string)
	if activityType == "" {
		writeError(w, http.StatusBadRequest, "Activity type is required")
		return
	}
	if !models.ValidActivityType(activityType) {
		writeError(w, http.StatusBadRequest, "Invalid activity type")
		return
	}
	rawDate, _ := body["date"].(string)
	if rawDate == "" {
		writeError(w, http.StatusBadRequest, "Activity date is required")
		return
	}
	date, err := parseDate(rawDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date is not a valid date")
		return
	}

	activity := &models.Activity{
		UserID: user.ID,
		Type:   activityType,
		Date:   date,
	}
	activity.Subject, _ = body["subject"].(string)
	activity.Description, _ = body["description"].(string)
	activity.Note, _ = body["note"].(string)
	if duration, ok := body["duration"].(float64); ok {
		minutes := int(duration)
		activity.Duration = &minutes
	}
	if raw, ok := body["followUpDate"].(string); ok && raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "followUpDate is not a valid date")
			return
		}
		activity.FollowUpDate = &t
	}

	if companyID, ok := body["companyId"].(string); ok && companyID != "" {
		owns, err := owned(r.Context(), e.store.Companies, companyID, user.ID)
		if err != nil {
			slog.Error("Failed to verify company", "company_id", companyID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to verify company")
			return
		}
		if !owns {
			writeError(w, http.StatusNotFound, "Company not found")
			return
		}
		activity.CompanyID = &companyID
	}
	if applicationID, ok := body["jobApplicationId"].(string); ok && applicationID != "" {
		owns, err := owned(r.Context(), e.store.JobApplications, applicationID, user.ID)
		if err != nil {
			slog.Error("Failed to verify application", "application_id", applicationID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to verify application")
			return
		}
		if !owns {
			writeError(w, http.StatusNotFound, "Application not found")
			return
		}
		activity.JobApplicationID = &applicationID
	}

	// Contacts named at creation time are attached in the same request.
	var contactIDs []string
	if raw, ok := body["contactIds"].([]any); ok {
		for _, v := range raw {
			contactID, ok := v.(string)
			if !ok || contactID == "" {
				continue
			}
			owns, err := owned(r.Context(), e.store.Contacts, contactID, user.ID)
			if err != nil {
				slog.Error("Failed to verify contact", "contact_id", contactID, "error", err)
				writeError(w, http.StatusInternalServerError, "Failed to verify contact")
				return
			}
			if !owns {
				writeError(w, http.StatusNotFound, "Contact not found")
				return
			}
			contactIDs = append(contactIDs, contactID)
		}
	}

	if err := e.store.Activities.Create(r.Context(), activity); err != nil {
		slog.Error("Failed to create activity", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create activity")
		return
	}

	pairs := e.activityContacts()
	for _, contactID := range contactIDs {
		if err := pairs.attach(r.Context(), activity.ID, contactID); err != nil && err != errAlreadyAttached {
			slog.Error("Failed to link contact", "activity_id", activity.ID, "contact_id", contactID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to link contact")
			return
		}
	}

	notify(e.hub, user.ID, "activity", "created", activity.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"activity": activity,
		"message":  "Activity created",
	})
}

func (e *ActivityEndpoints) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := e.store.Activities.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get activity", "activity_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Activity not found")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	changes := pickFields(body, "type", "subject", "description", "date",
		"duration", "note", "followUpDate", "companyId", "jobApplicationId")

	if activityType, ok := changes["type"].(string); ok && !models.ValidActivityType(activityType) {
		writeError(w, http.StatusBadRequest, "Invalid activity type")
		return
	}
	if date, ok := changes["date"]; ok && date == nil {
		writeError(w, http.StatusBadRequest, "Activity date is required")
		return
	}
	for _, field := range []string{"date", "followUpDate"} {
		if err := convertDate(changes, field); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if duration, ok := changes["duration"].(float64); ok {
		changes["duration"] = int(duration)
	}

	// Reparenting is allowed, but only onto the caller's own records.
	if companyID, ok := changes["companyId"].(string); ok && companyID != "" {
		owns, err := owned(r.Context(), e.store.Companies, companyID, user.ID)
		if err != nil {
			slog.Error("Failed to verify company", "company_id", companyID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to verify company")
			return
		}
		if !owns {
			writeError(w, http.StatusNotFound, "Company not found")
			return
		}
	}
	if applicationID, ok := changes["jobApplicationId"].(string); ok && applicationID != "" {
		owns, err := owned(r.Context(), e.store.JobApplications, applicationID, user.ID)
		if err != nil {
			slog.Error("Failed to verify application", "application_id", applicationID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to verify application")
			return
		}
		if !owns {
			writeError(w, http.StatusNotFound, "Application not found")
			return
		}
	}

	activity, err := e.store.Activities.Update(r.Context(), id, changes)
	if err != nil {
		slog.Error("Failed to update activity", "activity_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update activity")
		return
	}

	notify(e.hub, user.ID, "activity", "updated", id)
	writeJSON(w, http.StatusOK, map[string]any{
		"activity": activity,
		"message":  "Activity updated",
	})
}

func (e *ActivityEndpoints) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	existing, err := e.store.Activities.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get activity", "activity_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Activity not found")
		return
	}

	if err := e.cascades.DeleteActivity(r.Context(), id); err != nil {
		slog.Error("Failed to delete activity", "activity_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete activity")
		return
	}

	notify(e.hub, user.ID, "activity", "deleted", id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Activity deleted"})
}

func (e *ActivityEndpoints) contactAssociation() association {
	return association{
		hub:        e.hub,
		entity:     "activity",
		childField: "contactId",
		ownsParent: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Activities, id, userID)
		},
		ownsChild: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Contacts, id, userID)
		},
		attach: e.activityContacts().attach,
		detach: e.activityContacts().detach,
	}
}

func (e *ActivityEndpoints) tagAssociation() association {
	return association{
		hub:        e.hub,
		entity:     "activity",
		childField: "tagId",
		ownsParent: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Activities, id, userID)
		},
		ownsChild: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Tags, id, userID)
		},
		attach: e.activityTags().attach,
		detach: e.activityTags().detach,
	}
}

func (e *ActivityEndpoints) fileAssociation() association {
	return association{
		hub:        e.hub,
		entity:     "activity",
		childField: "fileId",
		ownsParent: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Activities, id, userID)
		},
		ownsChild: func(ctx context.Context, userID, id string) (bool, error) {
			return owned(ctx, e.store.Files, id, userID)
		},
		attach: e.activityFiles().attach,
		detach: e.activityFiles().detach,
	}
}

func (e *ActivityEndpoints) activityContacts() pairSet[models.ActivityContact] {
	return pairSet[models.ActivityContact]{
		coll:      e.store.ActivityContacts,
		parentKey: "activityId",
		childKey:  "contactId",
		newPair: func(parentID, childID string) *models.ActivityContact {
			return &models.ActivityContact{ActivityID: parentID, ContactID: childID}
		},
		pairID: func(j *models.ActivityContact) string { return j.ID },
	}
}

func (e *ActivityEndpoints) activityTags() pairSet[models.ActivityTag] {
	return pairSet[models.ActivityTag]{
		coll:      e.store.ActivityTags,
		parentKey: "activityId",
		childKey:  "tagId",
		newPair: func(parentID, childID string) *models.ActivityTag {
			return &models.ActivityTag{ActivityID: parentID, TagID: childID}
		},
		pairID: func(j *models.ActivityTag) string { return j.ID },
	}
}

func (e *ActivityEndpoints) activityFiles() pairSet[models.ActivityFile] {
	return pairSet[models.ActivityFile]{
		coll:      e.store.ActivityFiles,
		parentKey: "activityId",
		childKey:  "fileId",
		newPair: func(parentID, childID string) *models.ActivityFile {
			return &models.ActivityFile{ActivityID: parentID, FileID: childID}
		},
		pairID: func(j *models.ActivityFile) string { return j.ID },
	}
}
