package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(dir, "/uploads")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	content := []byte("fake image bytes")
	result, err := local.Upload(context.Background(), UploadInput{
		Reader:      bytes.NewReader(content),
		Size:        int64(len(content)),
		Category:    "logos",
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.HasSuffix(result.FileName, ".png") {
		t.Errorf("fileName = %q, want a .png extension", result.FileName)
	}
	if result.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", result.Size, len(content))
	}

	stored, err := os.ReadFile(filepath.Join(dir, "logos", result.FileName))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Error("stored bytes differ from the upload")
	}

	if got := local.URL("logos", result.FileName); got != "/uploads/logos/"+result.FileName {
		t.Errorf("url = %q", got)
	}

	if err := local.Delete(context.Background(), "logos", result.FileName); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "logos", result.FileName)); !os.IsNotExist(err) {
		t.Error("expected the file to be removed")
	}

	// Deleting a missing file is not an error.
	if err := local.Delete(context.Background(), "logos", result.FileName); err != nil {
		t.Errorf("second delete err = %v, want nil", err)
	}
}

func TestLocalRejectsBadUploads(t *testing.T) {
	local, err := NewLocal(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	_, err = local.Upload(context.Background(), UploadInput{
		Reader:      bytes.NewReader([]byte("x")),
		Size:        1,
		Category:    "docs",
		ContentType: "application/x-msdownload",
	})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}

	_, err = local.Upload(context.Background(), UploadInput{
		Reader:      bytes.NewReader([]byte("x")),
		Size:        MaxUploadSize + 1,
		Category:    "logos",
		ContentType: "image/png",
	})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestFallbackUsesSecondaryOnFailure(t *testing.T) {
	// A primary pointed at an unwritable path fails; the secondary catches it.
	primary := &Local{baseDir: "/proc/unwritable", baseURL: "/primary"}
	secondary, err := NewLocal(t.TempDir(), "/secondary")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	fb := NewFallback(primary, secondary)

	content := []byte("fake image bytes")
	result, err := fb.Upload(context.Background(), UploadInput{
		Reader:      bytes.NewReader(content),
		Size:        int64(len(content)),
		Category:    "logos",
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if result.FileName == "" {
		t.Fatal("expected a stored file name")
	}

	// Validation failures must not fall through to the secondary.
	_, err = fb.Upload(context.Background(), UploadInput{
		Reader:      bytes.NewReader(content),
		Size:        int64(len(content)),
		Category:    "logos",
		ContentType: "text/html",
	})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}
}

// halfReadUploader consumes part of the payload before failing, the way a
// dropped object-store connection does mid-transfer.
type halfReadUploader struct{}

func (halfReadUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	buf := make([]byte, input.Size/2)
	if _, err := io.ReadFull(input.Reader, buf); err != nil {
		return nil, err
	}
	return nil, errors.New("connection reset")
}

func (halfReadUploader) Delete(ctx context.Context, category, fileName string) error { return nil }
func (halfReadUploader) URL(category, fileName string) string                        { return "" }

func TestFallbackRetriesWithFullPayload(t *testing.T) {
	dir := t.TempDir()
	secondary, err := NewLocal(dir, "/secondary")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	fb := NewFallback(halfReadUploader{}, secondary)

	content := []byte("0123456789abcdef")
	result, err := fb.Upload(context.Background(), UploadInput{
		Reader:      bytes.NewReader(content),
		Size:        int64(len(content)),
		Category:    "logos",
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if result.Size != int64(len(content)) {
		t.Errorf("size = %d, want %d", result.Size, len(content))
	}

	stored, err := os.ReadFile(filepath.Join(dir, "logos", result.FileName))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Errorf("stored %q (%d bytes), want the full %d-byte upload", stored, len(stored), len(content))
	}
}
