// Package storage persists vault containers on disk. Writes are atomic
// with respect to process crash: data lands in a temp file that is
// fsynced and renamed into place, so a crash never leaves a truncated
// vault behind.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/TheMichaelB/lockbox/internal/events"
	"github.com/TheMichaelB/lockbox/internal/models"
)

// FileStore implements vault file operations.
type FileStore struct {
	logger *events.Logger
}

// NewFileStore creates a file store.
func NewFileStore(logger *events.Logger) *FileStore {
	return &FileStore{
		logger: logger.WithField("component", "file_store"),
	}
}

// Exists reports whether a vault file is present at path.
func (s *FileStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Read loads the full contents of the vault file.
func (s *FileStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.ErrVaultNotFound
		}
		return nil, &models.IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// WriteAtomic replaces the file at path with data. The temp file is
// created in the same directory so the final rename stays on one
// filesystem.
func (s *FileStore) WriteAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &models.IOError{Op: "mkdir", Path: dir, Err: err}
	}

	s.logger.WithFields(map[string]interface{}{
		"path": path,
		"size": len(data),
	}).Debug("Writing vault file")

	tempPath := fmt.Sprintf("%s.tmp.%d", path, time.Now().UnixNano())

	if err := os.WriteFile(tempPath, data, mode); err != nil {
		return &models.IOError{Op: "write", Path: tempPath, Err: err}
	}

	if err := syncFile(tempPath); err != nil {
		_ = os.Remove(tempPath)
		return &models.IOError{Op: "sync", Path: tempPath, Err: err}
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return &models.IOError{Op: "rename", Path: path, Err: err}
	}

	return nil
}

func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
