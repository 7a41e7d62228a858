// Package storage keeps uploaded avatars on the local filesystem.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "anime-tracker-backend/internal/common/errors"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// LocalStore writes files into Dir and exposes them under URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
}

// NewLocalStore creates the target directory if needed.
func NewLocalStore(dir, urlPrefix string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStore{
		Dir:       dir,
		URLPrefix: "/" + strings.Trim(urlPrefix, "/"),
		MaxBytes:  maxBytes,
	}, nil
}

// Save stores the file under <uuid><ext> and returns its public URL.
// Old files are never removed.
func (s *LocalStore) Save(file *multipart.FileHeader) (string, error) {
	if s.MaxBytes > 0 && file.Size > s.MaxBytes {
		return "", apperrors.NewValidationError("avatar", fmt.Sprintf("file exceeds %d bytes", s.MaxBytes))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", apperrors.NewValidationError("avatar", "unsupported image type").
			WithDetail("extension", ext)
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", apperrors.NewValidationError("avatar", "file is not an image").
			WithDetail("content_type", ct)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write avatar file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close avatar file: %w", err)
	}

	return path.Join(s.URLPrefix, name), nil
}
