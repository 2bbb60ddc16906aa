// Package storage persists uploaded attachments. Two backends exist, a
// local directory tree and an S3-compatible object store, behind one
// Uploader interface; the server picks one at startup.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oklog/ulid/v2"
)

// MaxUploadSize is the largest accepted attachment, five megabytes.
const MaxUploadSize = 5 << 20

var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// allowedTypes maps accepted content types to the extension used for the
// stored object name.
var allowedTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

type UploadInput struct {
	Reader      io.Reader
	Size        int64
	Category    string
	ContentType string
}

type UploadResult struct {
	FileName string
	Size     int64
}

// Uploader stores and removes attachment content. Object names are
// generated here so neither backend trusts client-supplied names.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	Delete(ctx context.Context, category, fileName string) error
	URL(category, fileName string) string
}

// Validate rejects uploads before any bytes are written.
func Validate(contentType string, size int64) error {
	if size > MaxUploadSize {
		return ErrFileTooLarge
	}
	if _, ok := allowedTypes[contentType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return nil
}

// NewObjectName generates a unique storage name for a content type.
func NewObjectName(contentType string) string {
	return ulid.Make().String() + allowedTypes[contentType]
}
