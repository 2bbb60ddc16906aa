package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/theBenForce/CareerCraft-sub000/events"
	"github.com/theBenForce/CareerCraft-sub000/repository"
)

var (
	errAlreadyAttached = errors.New("association already exists")
	errNotAttached     = errors.New("association not found")
)

// pairSet wraps a join collection with the two filter keys that identify a
// pair. attach is create-if-absent, detach is delete-if-present; both are
// symmetric across the relational and document backends because they only
// use Count, FindUnique, Create and Delete.
type pairSet[J any] struct {
	coll      repository.Collection[J]
	parentKey string
	childKey  string
	newPair   func(parentID, childID string) *J
	pairID    func(*J) string
}

func (p pairSet[J]) attach(ctx context.Context, parentID, childID string) error {
	where := repository.Filter{p.parentKey: parentID, p.childKey: childID}
	count, err := p.coll.Count(ctx, where)
	if err != nil {
		return err
	}
	if count > 0 {
		return errAlreadyAttached
	}
	return p.coll.Create(ctx, p.newPair(parentID, childID))
}

func (p pairSet[J]) detach(ctx context.Context, parentID, childID string) error {
	where := repository.Filter{p.parentKey: parentID, p.childKey: childID}
	pair, err := p.coll.FindUnique(ctx, where, repository.Options{})
	if err != nil {
		return err
	}
	if pair == nil {
		return errNotAttached
	}
	_, err = p.coll.Delete(ctx, p.pairID(pair))
	return err
}

// owned reports whether a record with the given id exists for this user.
func owned[T any](ctx context.Context, coll repository.Collection[T], id, userID string) (bool, error) {
	record, err := coll.FindUnique(ctx, repository.Filter{"id": id, "userId": userID}, repository.Options{})
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

// association describes one attach/detach sub-resource, e.g. a company's
// tags. Attach takes the child id from the JSON body, detach from a query
// parameter of the same name.
type association struct {
	hub        *events.Hub
	entity     string
	childField string
	ownsParent func(ctx context.Context, userID, parentID string) (bool, error)
	ownsChild  func(ctx context.Context, userID, childID string) (bool, error)
	attach     func(ctx context.Context, parentID, childID string) error
	detach     func(ctx context.Context, parentID, childID string) error
}

func (a association) Attach(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	parentID := chi.URLParam(r, "id")

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	childID, _ := body[a.childField].(string)
	if childID == "" {
		writeError(w, http.StatusBadRequest, a.childField+" is required")
		return
	}

	if !a.checkOwnership(w, r.Context(), user.ID, parentID, childID) {
		return
	}

	if err := a.attach(r.Context(), parentID, childID); err != nil {
		if errors.Is(err, errAlreadyAttached) {
			writeError(w, http.StatusConflict, "Association already exists")
			return
		}
		slog.Error("Failed to create association", "entity", a.entity, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create association")
		return
	}

	notify(a.hub, user.ID, a.entity, "updated", parentID)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Association created"})
}

func (a association) Detach(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	parentID := chi.URLParam(r, "id")

	childID := r.URL.Query().Get(a.childField)
	if childID == "" {
		writeError(w, http.StatusBadRequest, a.childField+" is required")
		return
	}

	if !a.checkOwnership(w, r.Context(), user.ID, parentID, childID) {
		return
	}

	if err := a.detach(r.Context(), parentID, childID); err != nil {
		if errors.Is(err, errNotAttached) {
			writeError(w, http.StatusNotFound, "Association not found")
			return
		}
		slog.Error("Failed to delete association", "entity", a.entity, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete association")
		return
	}

	notify(a.hub, user.ID, a.entity, "updated", parentID)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Association deleted"})
}

func (a association) checkOwnership(w http.ResponseWriter, ctx context.Context, userID, parentID, childID string) bool {
	ok, err := a.ownsParent(ctx, userID, parentID)
	if err != nil {
		slog.Error("Failed to verify record ownership", "entity", a.entity, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to verify record")
		return false
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Record not found")
		return false
	}

	ok, err = a.ownsChild(ctx, userID, childID)
	if err != nil {
		slog.Error("Failed to verify record ownership", "entity", a.entity, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to verify record")
		return false
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Record not found")
		return false
	}
	return true
}
