package storage

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// NewBadgerDB opens the embedded metadata database, creating its directory
// if absent.
func NewBadgerDB(dir string) (*badger.DB, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create badger directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}
