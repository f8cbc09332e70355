package photo

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore persists blobs as plain files in a single flat directory. Saving
// an existing name truncates and overwrites it.
type DiskStore struct {
	dir string
}

// NewDiskStore builds a store over an existing directory.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Save writes the reader's contents under the given name. The size hint is
// unused on disk.
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader, size int64) error {
	file, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("create blob file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		return fmt.Errorf("write blob file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close blob file: %w", err)
	}
	return nil
}

// Open returns a reader over the named blob, or ErrFileNotFound. Names with
// path components never resolve outside the directory.
func (s *DiskStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, ErrFileNotFound
	}

	file, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("open blob file: %w", err)
	}
	return file, nil
}
