package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
)

// Fallback tries the primary backend and falls back to the secondary when
// the primary fails, so a flaky object store degrades to local disk instead
// of failing the upload. Deletes go to both backends since either may hold
// the object.
type Fallback struct {
	primary   Uploader
	secondary Uploader
}

func NewFallback(primary, secondary Uploader) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if err := Validate(input.ContentType, input.Size); err != nil {
		return nil, err
	}

	// A failed primary may have consumed part of the reader, so the payload
	// is buffered up front and the retry gets a fresh reader. Validate has
	// already capped the size.
	payload, err := io.ReadAll(io.LimitReader(input.Reader, MaxUploadSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(payload)) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}
	input.Reader = bytes.NewReader(payload)

	result, err := f.primary.Upload(ctx, input)
	if err == nil {
		return result, nil
	}
	// Validation failures are the caller's problem, not the backend's.
	if errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrUnsupportedType) {
		return nil, err
	}

	slog.Warn("Primary storage failed, falling back", "error", err)
	input.Reader = bytes.NewReader(payload)
	return f.secondary.Upload(ctx, input)
}

func (f *Fallback) Delete(ctx context.Context, category, fileName string) error {
	errPrimary := f.primary.Delete(ctx, category, fileName)
	errSecondary := f.secondary.Delete(ctx, category, fileName)
	if errPrimary != nil {
		return errPrimary
	}
	return errSecondary
}

func (f *Fallback) URL(category, fileName string) string {
	return f.primary.URL(category, fileName)
}
