package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// DiskStore writes blobs into a directory served as static files.
type DiskStore struct {
	fs      afero.Fs
	dir     string
	baseURL string
}

// NewDiskStore creates dir on fs if needed. Production passes afero.NewOsFs().
func NewDiskStore(fs afero.Fs, dir, baseURL string) (*DiskStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &DiskStore{fs: fs, dir: dir, baseURL: baseURL}, nil
}

// Store writes data under name. The name must not contain path separators.
func (s *DiskStore) Store(_ context.Context, data []byte, name, _ string) (string, error) {
	if name == "" || name != path.Base(filepath.ToSlash(name)) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	target := filepath.Join(s.dir, name)
	if err := afero.WriteFile(s.fs, target, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", name, err)
	}
	return name, nil
}

func (s *DiskStore) BaseURL() string {
	return s.baseURL
}

// Dir is the directory the HTTP layer serves as static content.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Exists reports whether a blob with the given reference has been stored.
func (s *DiskStore) Exists(ref string) bool {
	_, err := s.fs.Stat(filepath.Join(s.dir, ref))
	return err == nil
}
