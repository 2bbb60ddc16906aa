package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Local writes attachments under baseDir/<category>/<name> and serves them
// through the configured public base URL.
type Local struct {
	baseDir string
	baseURL string
}

func NewLocal(baseDir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Local{baseDir: baseDir, baseURL: baseURL}, nil
}

func (l *Local) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if err := Validate(input.ContentType, input.Size); err != nil {
		return nil, err
	}

	dir := filepath.Join(l.baseDir, input.Category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create category directory: %w", err)
	}

	name := NewObjectName(input.ContentType)
	path := filepath.Join(dir, name)

	out, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	// LimitReader guards against a caller that lied about Size.
	written, err := io.Copy(out, io.LimitReader(input.Reader, MaxUploadSize+1))
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if written > MaxUploadSize {
		os.Remove(path)
		return nil, ErrFileTooLarge
	}

	slog.Info("Stored file locally", "path", path, "size", written)
	return &UploadResult{FileName: name, Size: written}, nil
}

func (l *Local) Delete(ctx context.Context, category, fileName string) error {
	path := filepath.Join(l.baseDir, category, filepath.Base(fileName))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

func (l *Local) URL(category, fileName string) string {
	return l.baseURL + "/" + category + "/" + fileName
}
