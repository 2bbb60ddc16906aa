package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/theBenForce/CareerCraft-sub000/events"
	"github.com/theBenForce/CareerCraft-sub000/models"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError sends the error taxonomy's JSON shape. The message is the one
// the client sees; underlying errors are logged server-side only.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// currentUser pulls the authenticated user that the auth middleware stored
// in the request context.
func currentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value("user").(*models.User)
	return user, ok
}

// parseDate accepts RFC 3339 timestamps and plain dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// pickFields copies only the allowed keys out of a decoded request body,
// so callers can't touch id, userId or timestamps through an update.
func pickFields(body map[string]any, fields ...string) map[string]any {
	changes := map[string]any{}
	for _, f := range fields {
		if v, ok := body[f]; ok {
			changes[f] = v
		}
	}
	return changes
}

// convertDate replaces a string date field with its parsed time.Time.
// Explicit nulls pass through so a caller can clear a date.
func convertDate(changes map[string]any, field string) error {
	v, ok := changes[field]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%s must be a date string", field)
	}
	t, err := parseDate(s)
	if err != nil {
		return fmt.Errorf("%s is not a valid date", field)
	}
	changes[field] = t
	return nil
}

// notify publishes a change event, best effort. A nil hub means the event
// feed is disabled.
func notify(hub *events.Hub, userID, entity, action, id string) {
	if hub == nil {
		return
	}
	hub.Publish(events.Event{UserID: userID, Entity: entity, Action: action, ID: id})
}
