// Package storage provides the disk file provider for dish images.
package storage

import (
	"errors"         // Error matching
	"io"             // Stream copy
	"io/fs"          // Not-exist check on delete
	"mime/multipart" // Uploaded file handles
	"os"             // File system operations
	"path/filepath"  // Path handling

	"github.com/google/uuid" // Unique stored filenames
)

// DiskStorage stores uploaded files under a single directory
type DiskStorage struct {
	dir string // Target directory
}

// NewDiskStorage creates the directory if needed and returns the provider
func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStorage{dir: dir}, nil
}

// SaveFile persists an uploaded file and returns the stored filename.
// The stored name is prefixed with a UUID so client filenames never collide.
func (s *DiskStorage) SaveFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open() // Open the uploaded file
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.New().String() + "-" + filepath.Base(file.Filename) // Stored filename
	dst, err := os.Create(filepath.Join(s.dir, name))                // Create the target file
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil { // Copy the contents
		return "", err
	}
	return name, nil
}

// DeleteFile removes a stored file. A file that is already gone is not an error.
func (s *DiskStorage) DeleteFile(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
