package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage persists uploaded blobs on disk and serves them through a
// stable public URL. It stands in for an external object store behind the
// same narrow interface: save bytes under a folder, get back a URL.
type LocalStorage struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBaseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Save writes the blob under the target folder using a random filename that
// keeps the original extension, and returns the public URL.
func (s *LocalStorage) Save(folder, originalName string, data []byte) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	rel := path.Join(folder, name)
	full := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return s.publicBaseURL + "/" + rel, nil
}

// SaveStream copies from reader into the target folder, returning the URL.
func (s *LocalStorage) SaveStream(folder, originalName string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload stream: %w", err)
	}
	return s.Save(folder, originalName, data)
}

// Delete removes a stored file given its public URL. Unknown URLs are ignored.
func (s *LocalStorage) Delete(publicURL string) error {
	rel, ok := strings.CutPrefix(publicURL, s.publicBaseURL+"/")
	if !ok {
		return nil
	}
	full := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Dir exposes the base directory (used to mount the static file route).
func (s *LocalStorage) Dir() string {
	return s.baseDir
}
