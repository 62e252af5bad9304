// Package knownitems keeps the product code to display name table that the menu
// builder fills and the promotion resolver reads.
package knownitems

import (
	"fmt"

	"github.com/philippgille/gokv"
	"github.com/philippgille/gokv/encoding"
	"github.com/philippgille/gokv/file"
	"github.com/philippgille/gokv/syncmap"

	"mcorder/internal/models"
)

// Table maps product codes to display names
type Table struct {
	store gokv.Store
}

// NewMemory creates a table that lives for the lifetime of the process
func NewMemory() *Table {
	return &Table{store: syncmap.NewStore(syncmap.Options{Codec: encoding.JSON})}
}

// NewFile creates a table persisted as one JSON file per code under dir, so names
// learned in one run are known to the next.
func NewFile(dir string) (*Table, error) {
	ext := "json"
	store, err := file.NewStore(file.Options{
		Directory:         dir,
		FilenameExtension: &ext,
		Codec:             encoding.JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open known items in %s: %w", dir, err)
	}
	return &Table{store: store}, nil
}

// Put records the display name of a code
func (t *Table) Put(code models.ProductCode, name string) error {
	if code == "" {
		return nil
	}
	if err := t.store.Set(string(code), name); err != nil {
		return fmt.Errorf("failed to store name for %s: %w", code, err)
	}
	return nil
}

// Get returns the display name of a code, ok is false when the code is unknown
func (t *Table) Get(code models.ProductCode) (string, bool, error) {
	if code == "" {
		return "", false, nil
	}
	var name string
	found, err := t.store.Get(string(code), &name)
	if err != nil {
		return "", false, fmt.Errorf("failed to read name for %s: %w", code, err)
	}
	return name, found, nil
}

func (t *Table) Close() error {
	return t.store.Close()
}
