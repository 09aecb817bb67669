package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"

	"github.com/google/uuid"
)

var allowedExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// LocalStore keeps images on the local filesystem and serves them through
// the API's /images route.
type LocalStore struct {
	baseURL   string
	imagesDir string
}

func NewLocalStore(baseURL, uploadsDir string) (*LocalStore, error) {
	imagesDir := filepath.Join(uploadsDir, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &LocalStore{
		baseURL:   strings.TrimRight(baseURL, "/"),
		imagesDir: imagesDir,
	}, nil
}

// NewImageKey builds a unique key for an order photo of the given content
// type, e.g. sanitization/ORD-001/before-<uuid>.jpg.
func NewImageKey(orderID, stage, contentType string) (string, error) {
	ext, ok := allowedExtensions[contentType]
	if !ok {
		return "", domain.NewValidationError("content_type", fmt.Sprintf("unsupported image type %q", contentType))
	}
	if orderID == "" || strings.ContainsAny(orderID, `/\`) {
		return "", domain.NewValidationError("order_id", "is invalid")
	}
	if stage != "before" && stage != "after" {
		return "", domain.NewValidationError("stage", "must be one of [before after]")
	}
	return path.Join("sanitization", orderID, stage+"-"+uuid.NewString()+ext), nil
}

// ContentType guesses the image MIME type from a key's extension.
func ContentType(key string) string {
	ext := strings.ToLower(path.Ext(key))
	for ct, e := range allowedExtensions {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}

func (s *LocalStore) URL(key string) string {
	return s.baseURL + "/api/v1/images/" + key
}

func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(file, r)
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	logger.Debug("Image stored", "key", key, "bytes", n)
	return s.URL(key), nil
}

func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.NewNotFoundError("image", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// resolve maps key into imagesDir, refusing anything that escapes it.
func (s *LocalStore) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || clean != "/"+key {
		return "", domain.NewValidationError("key", "is invalid")
	}
	return filepath.Join(s.imagesDir, filepath.FromSlash(clean[1:])), nil
}
