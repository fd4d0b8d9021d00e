// Package media stores uploaded post images on local disk.
package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload is an image payload already accepted by the form layer.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Storage saves uploads under Dir/posts and returns a relative reference.
type Storage struct {
	Dir string
}

func NewStorage(dir string) *Storage { return &Storage{Dir: dir} }

// Save writes the upload and returns its reference, e.g. "posts/<uuid>.png".
func (s *Storage) Save(ctx context.Context, up *Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(up.Filename)))
	ref := filepath.ToSlash(filepath.Join("posts", uuid.NewString()+ext))
	dst := filepath.Join(s.Dir, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, up.Body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close media file: %w", err)
	}
	return ref, nil
}

// Remove deletes a stored reference; a missing file is not an error.
func (s *Storage) Remove(ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(ref)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path resolves a reference to its file on disk.
func (s *Storage) Path(ref string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(ref))
}
