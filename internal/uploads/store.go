// Package uploads stores job-posting images on local disk.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the maximum upload size")
	ErrUnsupportedType = errors.New("file is not a supported image type")
)

// allowedTypes are the image MIME types accepted for job postings.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Store saves uploaded images under a single directory with
// collision-free names.
type Store struct {
	dir     string
	maxSize int64
}

// NewStore creates the upload directory if needed.
func NewStore(dir string, maxSizeMB int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir, maxSize: maxSizeMB << 20}, nil
}

// Dir returns the directory uploaded files are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Save validates and stores an uploaded file, returning the stored filename.
// The content type is sniffed from the bytes, not taken from the request.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", ErrFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if !allowedTypes[mtype.String()] {
		return "", ErrUnsupportedType
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.NewString() + mtype.Extension()
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, f); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return name, nil
}

// Remove deletes a stored file by name. Missing files are not an error.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}
	// Uploads live in a flat directory; reject anything path-like.
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("invalid upload name %q", name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveUnreferenced deletes stored files that are not in refs and are older
// than minAge, returning how many were removed. minAge keeps files uploaded
// by in-flight requests safe.
func (s *Store) RemoveUnreferenced(refs []string, minAge time.Duration) (int, error) {
	referenced := make(map[string]bool, len(refs))
	for _, ref := range refs {
		referenced[ref] = true
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read uploads dir: %w", err)
	}

	cutoff := time.Now().Add(-minAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}
