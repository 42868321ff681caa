package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// ImageStore abstracts where uploaded product images live. Save returns
// the stored path, which is what gets persisted on the product row.
type ImageStore interface {
	Save(filename string, src io.Reader) (string, error)
	Remove(path string) error
}

type localStore struct {
	dir    string
	logger *slog.Logger
}

// NewLocalStore creates an ImageStore backed by a directory on local disk
func NewLocalStore(dir string, logger *slog.Logger) ImageStore {
	return &localStore{
		dir:    dir,
		logger: logger,
	}
}

func (s *localStore) Save(filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		s.logger.Error("❌ [Storage] Failed to create upload directory", "dir", s.dir, "error", err)
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	// Sanitize: never let a caller-supplied name escape the upload dir
	path := filepath.Join(s.dir, filepath.Base(filename))

	file, err := os.Create(path)
	if err != nil {
		s.logger.Error("❌ [Storage] Failed to create file", "path", path, "error", err)
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, src); err != nil {
		// Do not leave a half-written file behind
		os.Remove(path)
		s.logger.Error("❌ [Storage] Failed to write file", "path", path, "error", err)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("💾 [Storage] File stored", "path", path)
	return path, nil
}

func (s *localStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("⚠️ [Storage] Failed to delete file from disk", "path", path, "error", err)
		return err
	}
	return nil
}
