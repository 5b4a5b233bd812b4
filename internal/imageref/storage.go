package imageref

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ============================================================
// Blob Storage
// ============================================================

// FileScheme prefixes references to images kept on disk instead of inline.
const FileScheme = "file://"

// BlobStorage keeps image files grouped per owner (a building or parking
// draft) under one root directory.
type BlobStorage struct {
	root string
}

func NewBlobStorage(root string) *BlobStorage {
	return &BlobStorage{root: root}
}

func (s *BlobStorage) OwnerDir(owner string) string {
	return filepath.Join(s.root, owner)
}

func (s *BlobStorage) ImagePath(owner, base, ext string) string {
	return filepath.Join(s.OwnerDir(owner), base+ext)
}

func (s *BlobStorage) EnsureDir(owner string) error {
	path := s.OwnerDir(owner)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir image dir: %w", err)
	}
	return nil
}

// Save writes data and returns the reference stored in entities.
func (s *BlobStorage) Save(owner, base, ext string, data []byte) (string, error) {
	if err := s.EnsureDir(owner); err != nil {
		return "", err
	}
	target := s.ImagePath(owner, base, ext)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	return FileScheme + filepath.ToSlash(abs), nil
}

// Load reads an image back from a reference produced by Save.
func (s *BlobStorage) Load(ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, FileScheme) {
		return nil, fmt.Errorf("not a file reference: %.32s", ref)
	}
	return os.ReadFile(filepath.FromSlash(strings.TrimPrefix(ref, FileScheme)))
}
