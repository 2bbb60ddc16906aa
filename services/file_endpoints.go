package services

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/theBenForce/CareerCraft-sub000/events"
	"github.com/theBenForce/CareerCraft-sub000/models"
	"github.com/theBenForce/CareerCraft-sub000/repository"
	"github.com/theBenForce/CareerCraft-sub000/storage"
)

type FileEndpoints struct {
	store    *repository.Store
	uploader storage.Uploader
	hub      *events.Hub
	cascades cascades
}

func NewFileEndpoints(store *repository.Store, uploader storage.Uploader, hub *events.Hub) *FileEndpoints {
	return &FileEndpoints{store: store, uploader: uploader, hub: hub, cascades: cascades{store: store}}
}

func (e *FileEndpoints) RegisterRoutes(r chi.Router) {
	r.Get("/files", e.List)
	r.Post("/files", e.Upload)
	r.Get("/files/{id}", e.Get)
	r.Delete("/files/{id}", e.Delete)
}

func (e *FileEndpoints) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	where := repository.Filter{"userId": user.ID}
	if category := r.URL.Query().Get("category"); category != "" {
		where["category"] = category
	}

	files, err := e.store.Files.FindMany(r.Context(), where,
		repository.Options{OrderBy: "createdAt desc"})
	if err != nil {
		slog.Error("Failed to list files", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch files")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"files": files,
		"count": len(files),
	})
}

func (e *FileEndpoints) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	file, err := e.store.Files.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get file", "file_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch file")
		return
	}
	if file == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"file": file,
		"url":  e.uploader.URL(file.Category, file.FileName),
	})
}

func (e *FileEndpoints) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	upload, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A file is required")
		return
	}
	defer upload.Close()

	category := r.FormValue("category")
	if category == "" {
		category = "attachments"
	}

	contentType := header.Header.Get("Content-Type")
	result, err := e.uploader.Upload(r.Context(), storage.UploadInput{
		Reader:      upload,
		Size:        header.Size,
		Category:    category,
		ContentType: contentType,
	})
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			writeError(w, http.StatusBadRequest, "File exceeds the maximum upload size")
			return
		}
		if errors.Is(err, storage.ErrUnsupportedType) {
			writeError(w, http.StatusBadRequest, "Unsupported file type")
			return
		}
		slog.Error("Failed to store file", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	file := &models.File{
		UserID:       user.ID,
		FileName:     result.FileName,
		OriginalName: header.Filename,
		MimeType:     contentType,
		Size:         result.Size,
		Category:     category,
	}
	if err := e.store.Files.Create(r.Context(), file); err != nil {
		slog.Error("Failed to record file", "user_id", user.ID, "error", err)
		if cleanupErr := e.uploader.Delete(r.Context(), category, result.FileName); cleanupErr != nil {
			slog.Error("Failed to clean up stored file", "file_name", result.FileName, "error", cleanupErr)
		}
		writeError(w, http.StatusInternalServerError, "Failed to record file")
		return
	}

	notify(e.hub, user.ID, "file", "created", file.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"file":    file,
		"url":     e.uploader.URL(category, result.FileName),
		"message": "File uploaded",
	})
}

func (e *FileEndpoints) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	file, err := e.store.Files.FindUnique(r.Context(),
		repository.Filter{"id": id, "userId": user.ID}, repository.Options{})
	if err != nil {
		slog.Error("Failed to get file", "file_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch file")
		return
	}
	if file == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	if err := e.cascades.DeleteFile(r.Context(), id); err != nil {
		slog.Error("Failed to delete file", "file_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	// Remove content after the metadata; a stray object is recoverable,
	// a dangling record is not.
	if err := e.uploader.Delete(r.Context(), file.Category, file.FileName); err != nil {
		slog.Error("Failed to remove stored file", "file_name", file.FileName, "error", err)
	}

	notify(e.hub, user.ID, "file", "deleted", id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "File deleted"})
}
