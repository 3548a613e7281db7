// Package artifacts stores uploaded resumes, videos and audio on local disk.
// Stored files are referenced by opaque relative paths such as
// "videos/4f9c....webm".
package artifacts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kinds of artifacts, each stored in its own directory.
const (
	KindResume = "resumes"
	KindVideo  = "videos"
	KindAudio  = "audio"
)

// TooLargeError is returned when an upload exceeds its size limit.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("upload exceeds %d bytes", e.Limit)
}

// Store writes artifacts under a root directory.
type Store struct {
	root string
}

// NewStore creates the root directory if needed and returns a Store over it.
func NewStore(root string) (*Store, error) {
	for _, kind := range []string{KindResume, KindVideo, KindAudio} {
		if err := os.MkdirAll(filepath.Join(root, kind), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// Save copies at most limit bytes from r into a new file of the given kind.
// The original filename only contributes its extension.
func (s *Store) Save(kind, filename string, r io.Reader, limit int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 {
		ext = ""
	}
	rel := filepath.ToSlash(filepath.Join(kind, uuid.NewString()+ext))

	f, err := os.OpenFile(filepath.Join(s.root, rel), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create artifact: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	closeErr := f.Close()
	if err == nil && n > limit {
		err = &TooLargeError{Limit: limit}
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.root, rel))
		return "", err
	}
	return rel, nil
}

// Open opens a stored artifact by the path Save returned.
func (s *Store) Open(rel string) (*os.File, error) {
	path, err := s.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes a stored artifact. Missing files are not an error.
func (s *Store) Remove(rel string) error {
	path, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid artifact path %q", rel)
	}
	return filepath.Join(s.root, clean), nil
}
