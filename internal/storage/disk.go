package storage

import (
	"fmt"
	"os"
)

// EnsureUploadDir creates the flat blob directory if it does not exist.
func EnsureUploadDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}
	return nil
}
