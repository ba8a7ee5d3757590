// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage persists generated files and resolves their public URLs
type FileStorage interface {
	Save(filename string, data []byte) error
	Read(filename string) ([]byte, error)
	Exists(filename string) bool
	PublicURL(filename string) string
}

// LocalFileStorage stores files on the local filesystem under a root directory
type LocalFileStorage struct {
	root          string
	publicBaseURL string
}

// NewLocalFileStorage creates the root directory if needed and returns the storage
func NewLocalFileStorage(root, publicBaseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	return &LocalFileStorage{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Save writes a new file. Existing files are never overwritten; generated
// filenames are unique so a collision means a caller bug.
func (s *LocalFileStorage) Save(filename string, data []byte) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}

	return nil
}

// Read returns the contents of a stored file
func (s *LocalFileStorage) Read(filename string) ([]byte, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	return data, nil
}

// Exists reports whether a stored file is present
func (s *LocalFileStorage) Exists(filename string) bool {
	path, err := s.resolve(filename)
	if err != nil {
		return false
	}

	_, err = os.Stat(path)
	return err == nil
}

// PublicURL returns the URL clients use to fetch a stored file
func (s *LocalFileStorage) PublicURL(filename string) string {
	return s.publicBaseURL + "/" + filename
}

// resolve joins the filename under the root and rejects path traversal
func (s *LocalFileStorage) resolve(filename string) (string, error) {
	cleaned := filepath.Clean(filename)
	if cleaned != filename || strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid filename: %s", filename)
	}
	return filepath.Join(s.root, cleaned), nil
}
